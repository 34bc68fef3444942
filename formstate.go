// Package formstate is the top-level entry point for the form validation and
// derived-field-state engine. It re-exports the engine types so callers that
// only need the three entry points (Initialize, SetFieldValue, ValidateAll)
// can import a single package.
package formstate

import (
	"fmt"

	"github.com/goliatone/go-formstate/pkg/engine"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// Engine aliases the compiled form engine.
type Engine = engine.Engine

// FormState aliases the immutable per-form state value.
type FormState = engine.FormState

// FieldState aliases the per-field state.
type FieldState = engine.FieldState

// Value aliases the field value type.
type Value = engine.Value

// ContractError aliases the caller-misuse error type.
type ContractError = engine.ContractError

// Text returns a single-string value for text and radio fields.
func Text(s string) Value {
	return engine.Text(s)
}

// Selection returns a collection value for checkbox groups.
func Selection(items ...string) Value {
	return engine.Selection(items...)
}

// New compiles a form definition.
func New(form schema.Form) (*Engine, error) {
	return engine.New(form)
}

// NewSample compiles the bundled sample form.
func NewSample() (*Engine, error) {
	form, err := schema.SampleForm()
	if err != nil {
		return nil, err
	}
	return engine.New(form)
}

// LoadFile compiles the form id declared in the JSON or YAML document at path.
func LoadFile(path, id string) (*Engine, error) {
	store, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	form, ok := store.Form(id)
	if !ok {
		return nil, fmt.Errorf("formstate: %s: %w: %q", path, schema.ErrFormNotFound, id)
	}
	return engine.New(form)
}

// LoadStore returns the forms declared in the JSON or YAML document at path,
// or the bundled forms when path is empty.
func LoadStore(path string) (*schema.Store, error) {
	if path == "" {
		return schema.Embedded()
	}
	return schema.LoadFile(path)
}
