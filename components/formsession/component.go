package formsession

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formstate/pkg/schema"
)

// Component is a small, extraction-friendly wrapper around the session
// handler, its configuration, and routing helpers.
type Component struct {
	opts    Options
	handler *Handler
}

// New constructs a component serving forms with default options plus any
// overrides.
func New(forms *schema.Store, fns ...OptionFn) (*Component, error) {
	opts := NewOptions(fns...)
	handler, err := NewHandlerWithOptions(forms, opts)
	if err != nil {
		return nil, err
	}
	return &Component{opts: opts, handler: handler}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns a standalone net/http handler serving the endpoints at the
// component's route path.
func (c *Component) Handler() http.Handler {
	r := chi.NewRouter()
	_, _ = RegisterRoutes(r, "", c.handler)
	return r
}

// Sessions reports the number of live sessions.
func (c *Component) Sessions() int {
	return c.handler.Sessions()
}

// RegisterRoutes registers the component handler under basePath on r.
func (c *Component) RegisterRoutes(r chi.Router, basePath string) (string, error) {
	return RegisterRoutes(r, basePath, c.handler)
}
