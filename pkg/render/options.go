package render

import "github.com/microcosm-cc/bluemonday"

// OutputFormat controls how a submission payload is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ContentType reports the media type for the format.
func (f OutputFormat) ContentType() string {
	switch f {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Valid reports whether f is a known format.
func (f OutputFormat) Valid() bool {
	switch f {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return true
	default:
		return false
	}
}

// SubmissionOption configures BuildSubmission.
type SubmissionOption func(*submissionConfig)

type submissionConfig struct {
	policy *bluemonday.Policy
	order  []string
}

// WithSanitizer replaces the default strict policy used to detect markup in
// submitted strings. Passing nil disables the check.
func WithSanitizer(policy *bluemonday.Policy) SubmissionOption {
	return func(cfg *submissionConfig) {
		cfg.policy = policy
	}
}

// WithFieldOrder fixes the key order used by ordered encodings.
func WithFieldOrder(keys []string) SubmissionOption {
	return func(cfg *submissionConfig) {
		cfg.order = append([]string(nil), keys...)
	}
}
