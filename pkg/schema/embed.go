package schema

import (
	"embed"
	"errors"
	"io/fs"
)

// ErrFormNotFound reports a form identifier missing from a store.
var ErrFormNotFound = errors.New("schema: form not found")

//go:embed forms/*
var embeddedForms embed.FS

// SampleFormID identifies the bundled phone confirmation form.
const SampleFormID = "sample"

// EmbeddedFS returns the bundled form definitions. Callers may pass this
// filesystem to LoadFS to use the default configuration.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedForms, "forms")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Embedded loads the bundled forms.
func Embedded() (*Store, error) {
	return LoadFS(EmbeddedFS())
}

// SampleForm returns the bundled sample form definition.
func SampleForm() (Form, error) {
	store, err := Embedded()
	if err != nil {
		return Form{}, err
	}
	form, ok := store.Form(SampleFormID)
	if !ok {
		return Form{}, ErrFormNotFound
	}
	return form, nil
}

// MustSampleForm panics when the bundled sample cannot be loaded.
func MustSampleForm() Form {
	form, err := SampleForm()
	if err != nil {
		panic(err)
	}
	return form
}
