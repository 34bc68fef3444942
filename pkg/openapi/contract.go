package openapi

import (
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/schema"
)

// Extension keys attached to property schemas for constraints OpenAPI cannot
// express on its own.
const (
	ExtensionDependsOn = "x-formstate-depends-on"
	ExtensionEquals    = "x-formstate-equals"
	ExtensionKind      = "x-formstate-kind"
)

// ErrInvalidPayload wraps every payload validation failure.
var ErrInvalidPayload = errors.New("openapi: payload does not match form contract")

// PayloadSchema derives the object schema of a submitted payload. Every
// declared key is present in a payload; dependents may be empty because a
// hidden dependent is always reset, so their required/minSelected rules are
// only recorded through ExtensionDependsOn.
func PayloadSchema(form schema.Form) *openapi3.Schema {
	controllers := dependencyIndex(form)

	root := openapi3.NewObjectSchema()
	root.Title = form.Title
	root.Description = form.Description
	closed := false
	root.AdditionalProperties = openapi3.AdditionalProperties{Has: &closed}

	for _, field := range form.Fields {
		dep, conditional := controllers[field.Key]
		prop := propertySchema(field, conditional)
		if conditional {
			prop.Extensions[ExtensionDependsOn] = map[string]any{
				"controller":  dep.Controller,
				"affirmative": dep.AffirmativeValue(),
			}
		}
		root.WithProperty(field.Key, prop)
		root.Required = append(root.Required, field.Key)
	}
	return root
}

func propertySchema(field schema.Field, conditional bool) *openapi3.Schema {
	var prop *openapi3.Schema
	if field.Kind.Multi() {
		items := openapi3.NewStringSchema()
		if len(field.Options) > 0 {
			items.WithEnum(enumValues(field.Options, false)...)
		}
		prop = openapi3.NewArraySchema().WithItems(items).WithUniqueItems(true)
	} else {
		prop = openapi3.NewStringSchema()
		if field.Kind == schema.FieldKindRadio && len(field.Options) > 0 {
			allowEmpty := conditional || !hasRule(field, schema.RuleRequired)
			prop.WithEnum(enumValues(field.Options, allowEmpty)...)
		}
	}
	prop.Title = field.Label
	prop.Description = field.Help
	prop.Extensions = map[string]any{ExtensionKind: string(field.Kind)}

	for _, rule := range field.Rules {
		switch rule.Type {
		case schema.RuleRequired:
			if conditional {
				continue
			}
			if field.Kind.Multi() {
				prop.WithMinItems(1)
			} else {
				prop.WithMinLength(1)
			}
		case schema.RuleMinSelected:
			if !conditional {
				prop.WithMinItems(1)
			}
		case schema.RulePattern:
			// Empty values pass pattern rules; emptiness is the required rule's call.
			prop.WithPattern(`^$|(?:` + rule.Pattern + `)`)
		case schema.RuleEquals:
			prop.Extensions[ExtensionEquals] = rule.Field
		}
	}
	return prop
}

// ValidatePayload checks values, as produced by FormState.Values or a decoded
// JSON body, against the form's payload schema. Cross-field equality is
// checked here too since the schema only records it as an extension; hidden
// dependents are skipped.
func ValidatePayload(form schema.Form, values map[string]any) error {
	payload := make(map[string]any, len(values))
	for key, value := range values {
		payload[key] = jsonValue(value)
	}

	if err := PayloadSchema(form).VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: form %q: %v", ErrInvalidPayload, form.ID, err)
	}

	controllers := dependencyIndex(form)
	for _, field := range form.Fields {
		if dep, ok := controllers[field.Key]; ok && payload[dep.Controller] != dep.AffirmativeValue() {
			continue
		}
		for _, rule := range field.Rules {
			if rule.Type != schema.RuleEquals {
				continue
			}
			if fmt.Sprint(payload[field.Key]) != fmt.Sprint(payload[rule.Field]) {
				return fmt.Errorf("%w: form %q: field %q must equal %q", ErrInvalidPayload, form.ID, field.Key, rule.Field)
			}
		}
	}
	return nil
}

// jsonValue converts typed slices into the []any shape the schema visitor
// understands.
func jsonValue(value any) any {
	switch typed := value.(type) {
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out
	default:
		return value
	}
}

func enumValues(options []string, allowEmpty bool) []any {
	out := make([]any, 0, len(options)+1)
	for _, option := range options {
		out = append(out, option)
	}
	if allowEmpty {
		out = append(out, "")
	}
	return out
}

func hasRule(field schema.Field, ruleType schema.RuleType) bool {
	for _, rule := range field.Rules {
		if rule.Type == ruleType {
			return true
		}
	}
	return false
}

// dependencyIndex maps each dependent key to the dependency gating it.
func dependencyIndex(form schema.Form) map[string]schema.Dependency {
	out := make(map[string]schema.Dependency, len(form.Dependencies))
	for _, dep := range form.Dependencies {
		out[dep.Dependent] = dep
	}
	return out
}
