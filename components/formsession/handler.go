package formsession

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Error codes carried in error responses.
const (
	CodeBadRequest        = "bad_request"
	CodeForbidden         = "forbidden"
	CodeNotFound          = "not_found"
	CodeContractViolation = "contract_violation"
	CodeInvalidSubmission = "invalid_submission"
	CodeInternal          = "internal_error"
)

// HTTPError is an error that carries the HTTP status to respond with.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError pairs an error with an HTTP status code. Guards return it to
// pick the rejection status.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type formsResponse struct {
	Data []string `json:"data"`
}

type openRequest struct {
	Defaults map[string]engine.Value `json:"defaults"`
}

type sessionResponse struct {
	ID    string           `json:"id"`
	Form  string           `json:"form"`
	State engine.FormState `json:"state"`
}

type setFieldRequest struct {
	Value *engine.Value `json:"value"`
}

type submitResponse struct {
	Valid   bool              `json:"valid"`
	Form    string            `json:"form"`
	Payload map[string]any    `json:"payload,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	State   *engine.FormState `json:"state,omitempty"`
}

// Handler serves the session endpoints for every form in a schema store.
type Handler struct {
	forms   *schema.Store
	engines map[string]*engine.Engine
	store   *Store
	logger  *logrus.Logger
	metrics *Metrics
	opts    Options
}

// NewHandler compiles every form in forms and prepares the session store.
func NewHandler(forms *schema.Store, fns ...OptionFn) (*Handler, error) {
	return NewHandlerWithOptions(forms, NewOptions(fns...))
}

// NewHandlerWithOptions builds a handler from a pre-constructed Options value.
func NewHandlerWithOptions(forms *schema.Store, opts Options) (*Handler, error) {
	if forms.Empty() {
		return nil, errors.New("formsession: no forms to serve")
	}
	opts = NewOptions(func(o *Options) { *o = opts })

	h := &Handler{
		forms:   forms,
		engines: make(map[string]*engine.Engine),
		logger:  opts.Logger,
		metrics: NewMetrics(opts.Registerer),
		opts:    opts,
	}
	for _, id := range forms.IDs() {
		form, _ := forms.Form(id)
		eng, err := engine.New(form)
		if err != nil {
			return nil, fmt.Errorf("formsession: form %q: %w", id, err)
		}
		h.engines[id] = eng
	}
	h.store = NewStore(opts.Capacity, opts.TTL, func(id string) {
		h.metrics.sessionRemoved()
	})
	return h, nil
}

// Register mounts the session endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.opts.Guard != nil {
			r.Use(h.guard)
		}
		r.Get("/forms", h.HandleListForms)
		r.Get("/forms/{form}", h.HandleGetForm)
		r.Get("/forms/{form}/payload-schema", h.HandlePayloadSchema)
		r.Post("/forms/{form}/sessions", h.HandleOpen)
		r.Get("/sessions/{id}", h.HandleGetSession)
		r.Put("/sessions/{id}/fields/{key}", h.HandleSetField)
		r.Post("/sessions/{id}/submit", h.HandleSubmit)
		r.Delete("/sessions/{id}", h.HandleAbandon)
	})
}

// Sessions reports the number of live sessions.
func (h *Handler) Sessions() int {
	return h.store.Len()
}

// HandleListForms handles GET /forms.
func (h *Handler) HandleListForms(w http.ResponseWriter, r *http.Request) {
	ids := h.forms.IDs()
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, formsResponse{Data: ids})
}

// HandleGetForm handles GET /forms/{form}.
func (h *Handler) HandleGetForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.forms.Form(chi.URLParam(r, "form"))
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, schema.ErrFormNotFound)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// HandlePayloadSchema handles GET /forms/{form}/payload-schema.
func (h *Handler) HandlePayloadSchema(w http.ResponseWriter, r *http.Request) {
	form, ok := h.forms.Form(chi.URLParam(r, "form"))
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, schema.ErrFormNotFound)
		return
	}
	writeJSON(w, http.StatusOK, openapi.PayloadSchema(form))
}

// HandleOpen handles POST /forms/{form}/sessions.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "form")
	eng, ok := h.engines[formID]
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, schema.ErrFormNotFound)
		return
	}

	var req openRequest
	if err := h.decode(w, r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}

	state, err := eng.Initialize(req.Defaults)
	if err != nil {
		h.contractViolation(w, formID, "", err)
		return
	}

	sess := h.store.create(formID, eng, state)
	h.metrics.sessionOpened(formID)
	h.logger.WithFields(logrus.Fields{"session": sess.id, "form": formID}).Info("session opened")

	writeJSON(w, http.StatusCreated, sessionResponse{ID: sess.id, Form: formID, State: state})
}

// HandleGetSession handles GET /sessions/{id}.
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.acquire(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, err)
		return
	}
	resp := sessionResponse{ID: sess.id, Form: sess.form, State: sess.state.Clone()}
	h.store.release(sess)

	writeJSON(w, http.StatusOK, resp)
}

// HandleSetField handles PUT /sessions/{id}/fields/{key}.
func (h *Handler) HandleSetField(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req setFieldRequest
	if err := h.decode(w, r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	if req.Value == nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, errors.New("value is required"))
		return
	}

	sess, err := h.store.acquire(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, err)
		return
	}
	defer h.store.release(sess)

	next, err := sess.engine.SetFieldValue(sess.state, key, *req.Value)
	if err != nil {
		h.contractViolation(w, sess.form, sess.id, err)
		return
	}
	h.store.update(sess, next)

	valid := next.Error(key) == ""
	h.metrics.fieldChanged(sess.form, valid)
	h.logger.WithFields(logrus.Fields{
		"session": sess.id,
		"form":    sess.form,
		"field":   key,
		"valid":   valid,
	}).Debug("field updated")

	writeJSON(w, http.StatusOK, sessionResponse{ID: sess.id, Form: sess.form, State: next})
}

// HandleSubmit handles POST /sessions/{id}/submit. A valid submission returns
// the payload and ends the session; an invalid one keeps the session open
// with every error surfaced.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.acquire(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, err)
		return
	}
	defer h.store.release(sess)

	fields := logrus.Fields{"session": sess.id, "form": sess.form}

	next, valid, err := sess.engine.ValidateAll(sess.state)
	if err != nil {
		h.contractViolation(w, sess.form, sess.id, err)
		return
	}
	h.metrics.submitted(sess.form, valid)

	if !valid {
		h.store.update(sess, next)
		h.logger.WithFields(fields).WithField("errors", len(next.Errors())).Info("submission rejected")
		writeJSON(w, http.StatusUnprocessableEntity, submitResponse{
			Valid:  false,
			Form:   sess.form,
			Errors: render.SurfacedErrors(next),
			State:  &next,
		})
		return
	}

	opts := append([]render.SubmissionOption{render.WithFieldOrder(sess.engine.Keys())}, h.opts.Submission...)
	sub, err := render.BuildSubmission(next, opts...)
	if err == nil {
		err = openapi.ValidatePayload(sess.engine.Form(), sub.Values)
	}
	if errors.Is(err, render.ErrMarkup) {
		h.logger.WithFields(fields).WithError(err).Warn("submission payload rejected")
		writeError(w, http.StatusUnprocessableEntity, CodeInvalidSubmission, err)
		return
	}
	if err != nil {
		h.logger.WithFields(fields).WithError(err).Error("submission payload rejected")
		writeError(w, http.StatusInternalServerError, CodeInternal, errors.New("submission payload could not be built"))
		return
	}

	h.store.remove(sess)
	h.logger.WithFields(fields).Info("submission accepted")
	writeJSON(w, http.StatusOK, submitResponse{Valid: true, Form: sess.form, Payload: sub.Values})
}

// HandleAbandon handles DELETE /sessions/{id}.
func (h *Handler) HandleAbandon(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.acquire(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, err)
		return
	}
	h.store.remove(sess)
	h.store.release(sess)

	h.logger.WithFields(logrus.Fields{"session": sess.id, "form": sess.form}).Info("session abandoned")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) contractViolation(w http.ResponseWriter, form, sessionID string, err error) {
	if !engine.IsContractViolation(err) {
		h.logger.WithError(err).Error("engine call failed")
		writeError(w, http.StatusInternalServerError, CodeInternal, errors.New(http.StatusText(http.StatusInternalServerError)))
		return
	}
	h.metrics.contractViolation(form)
	h.logger.WithFields(logrus.Fields{"session": sessionID, "form": form}).WithError(err).Warn("contract violation")
	writeError(w, http.StatusUnprocessableEntity, CodeContractViolation, err)
}

// decode reads a JSON body into dst. An empty body is accepted when optional
// is set.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	body := http.MaxBytesReader(w, r.Body, h.opts.MaxBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *Handler) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.opts.Guard(r); err != nil {
			writeGuardError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func writeGuardError(w http.ResponseWriter, err error) {
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	writeError(w, code, CodeForbidden, errors.New(http.StatusText(code)))
}
