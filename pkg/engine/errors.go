package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField reports a key the form does not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrValueKind reports a single value given to a checkbox group or a
	// collection given to a text/radio field.
	ErrValueKind = errors.New("value kind does not match field kind")
	// ErrStateMismatch reports a FormState that was not produced by this
	// engine (wrong form, missing or extra keys, corrupted value kinds).
	ErrStateMismatch = errors.New("state does not belong to this form")
)

// ContractError is a programming mistake made by the caller. It is distinct
// from field validation failures, which are reported as data on FormState.
type ContractError struct {
	Op  string
	Key string
	Err error
}

func (e *ContractError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Key == "" {
		return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("engine: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *ContractError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsContractViolation reports whether err (or anything it wraps) is a
// ContractError.
func IsContractViolation(err error) bool {
	var contract *ContractError
	return errors.As(err, &contract)
}

func contractErr(op, key string, err error) error {
	return &ContractError{Op: op, Key: key, Err: err}
}
