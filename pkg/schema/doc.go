// Package schema declares form definitions consumed by the engine: fields with
// a kind (text, radio, checkbox-group), ordered rule lists, declared defaults,
// and dependencies that gate a dependent field on a controller's value.
//
// Definitions live in JSON or YAML documents keyed under `forms`. LoadFile and
// LoadFS parse and validate them; Embedded exposes the bundled sample form.
package schema
