// Package engine implements the form validation and derived-field-state
// engine. An Engine is compiled once from a schema.Form and then used as a set
// of pure functions over FormState values:
//
//   - Initialize builds the opening state from declared and caller defaults.
//   - SetFieldValue applies one user change: the field's own rules, the rules
//     of fields that read it (cross-field equality), then dependency
//     propagation.
//   - ValidateAll recomputes everything for submission.
//   - ApplyDependencyEffects runs propagation alone and is idempotent.
//
// Validation failures are data on FieldState.Error. Misuse such as unknown
// keys or values of the wrong kind is returned as *ContractError and never
// alters the input state.
package engine
