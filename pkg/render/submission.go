package render

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/engine"
)

var (
	// ErrNotSubmitted is returned when a payload is requested from a state
	// that did not go through ValidateAll.
	ErrNotSubmitted = errors.New("render: state was not validated for submission")
	// ErrInvalidSubmission is returned when the validated state has errors.
	ErrInvalidSubmission = errors.New("render: state has validation errors")
	// ErrMarkup is returned when a submitted value holds markup the
	// sanitizer would remove.
	ErrMarkup = errors.New("render: value contains markup")
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// Submission is the plain payload handed to whatever transport the host uses.
type Submission struct {
	Form   string         `json:"form"`
	Values map[string]any `json:"values"`
	// Order lists the keys in declaration order for ordered encodings.
	Order []string `json:"-"`
}

// BuildSubmission extracts the payload from a validated, valid state. Values
// are never rewritten: a string or selection item the sanitizer would change
// fails with ErrMarkup, so hosts can echo the payload back without escaping.
func BuildSubmission(state engine.FormState, opts ...SubmissionOption) (Submission, error) {
	if !state.Submitted {
		return Submission{}, ErrNotSubmitted
	}
	if !state.Valid() {
		return Submission{}, ErrInvalidSubmission
	}

	cfg := submissionConfig{policy: defaultSanitizer()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	values := state.Values()
	if cfg.policy != nil {
		for key, value := range values {
			if !plainValue(cfg.policy, value) {
				return Submission{}, fmt.Errorf("%w: field %q", ErrMarkup, key)
			}
		}
	}

	return Submission{
		Form:   state.Form,
		Values: values,
		Order:  orderedKeys(values, cfg.order),
	}, nil
}

func plainValue(policy *bluemonday.Policy, value any) bool {
	switch typed := value.(type) {
	case string:
		return plainString(policy, typed)
	case []string:
		for _, item := range typed {
			if !plainString(policy, item) {
				return false
			}
		}
	}
	return true
}

func plainString(policy *bluemonday.Policy, raw string) bool {
	if raw == "" {
		return true
	}
	// The policy escapes entities on the way out; compare as plain text.
	return html.UnescapeString(policy.Sanitize(raw)) == raw
}

func defaultSanitizer() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

func orderedKeys(values map[string]any, preferred []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, key := range preferred {
		if _, ok := values[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	var rest []string
	for key := range values {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
