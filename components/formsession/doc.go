// Package formsession exposes form engines over JSON HTTP endpoints. A client
// opens a session for a form, sets field values one at a time, and submits.
// Sessions live only in an expiring in-memory cache and are dropped on
// submit, abandon or expiry.
//
// Every response carries the full form state, so clients render values,
// visibility and errors straight from it. Errors are always present in the
// state; clients show a field's error once the field is touched or the state
// is submitted.
package formsession
