package render

import (
	"sort"

	"github.com/goliatone/go-formstate/pkg/engine"
)

// ErrorMapping splits the engine's field errors into the messages the
// presentation layer should display now and the ones it should hold back
// because the field was never touched and the form was not submitted.
type ErrorMapping struct {
	Fields  map[string]string
	Pending map[string]string
}

// MapErrors classifies every non-empty field error in state. Hidden fields
// never carry errors, so they never appear in either map.
func MapErrors(state engine.FormState) ErrorMapping {
	mapping := ErrorMapping{}
	for key, field := range state.Fields {
		if field.Error == "" {
			continue
		}
		if state.Surfaced(key) {
			if mapping.Fields == nil {
				mapping.Fields = make(map[string]string)
			}
			mapping.Fields[key] = field.Error
			continue
		}
		if mapping.Pending == nil {
			mapping.Pending = make(map[string]string)
		}
		mapping.Pending[key] = field.Error
	}
	return mapping
}

// SurfacedErrors returns only the errors that are eligible for display.
func SurfacedErrors(state engine.FormState) map[string]string {
	return MapErrors(state).Fields
}

// Keys returns the surfaced field keys in the order given, skipping keys that
// have nothing to show. Use the engine's declaration order for stable output.
func (m ErrorMapping) Keys(order []string) []string {
	if len(m.Fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(m.Fields))
	seen := make(map[string]struct{}, len(m.Fields))
	for _, key := range order {
		if _, ok := m.Fields[key]; ok {
			out = append(out, key)
			seen[key] = struct{}{}
		}
	}
	var rest []string
	for key := range m.Fields {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
