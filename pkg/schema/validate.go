package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	errFormIDMissing = errors.New("schema: form id is required")
	errFormNoFields  = errors.New("schema: form declares no fields")
	// ErrDependencyCycle is returned when controllers depend on each other.
	ErrDependencyCycle = errors.New("schema: dependency cycle")
)

// Validate checks a form definition for structural consistency: unique keys,
// known kinds and rules, rule parameters, default shapes, and dependencies
// that reference declared fields without forming cycles.
func Validate(form Form) error {
	if strings.TrimSpace(form.ID) == "" {
		return errFormIDMissing
	}
	if len(form.Fields) == 0 {
		return fmt.Errorf("%w (form %q)", errFormNoFields, form.ID)
	}

	seen := make(map[string]Field, len(form.Fields))
	for _, field := range form.Fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			return fmt.Errorf("schema: form %q declares a field with an empty key", form.ID)
		}
		if key != field.Key {
			return fmt.Errorf("schema: form %q field key %q has surrounding whitespace", form.ID, field.Key)
		}
		if _, exists := seen[key]; exists {
			return fmt.Errorf("schema: form %q declares duplicate field %q", form.ID, key)
		}
		seen[key] = field
	}

	for _, field := range form.Fields {
		if err := validateField(field, seen); err != nil {
			return fmt.Errorf("schema: form %q field %q: %w", form.ID, field.Key, err)
		}
	}

	if _, err := DependencyOrder(form); err != nil {
		return fmt.Errorf("schema: form %q: %w", form.ID, err)
	}
	return nil
}

func validateField(field Field, fields map[string]Field) error {
	if !field.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", field.Kind)
	}

	options := make(map[string]struct{}, len(field.Options))
	for _, option := range field.Options {
		if option == "" {
			return errors.New("options must not be empty strings")
		}
		if _, dup := options[option]; dup {
			return fmt.Errorf("duplicate option %q", option)
		}
		options[option] = struct{}{}
	}

	text, items, err := field.DefaultValue()
	if err != nil {
		return err
	}
	if len(options) > 0 {
		if text != "" {
			if _, ok := options[text]; !ok {
				return fmt.Errorf("default %q is not a declared option", text)
			}
		}
		for _, item := range items {
			if _, ok := options[item]; !ok {
				return fmt.Errorf("default item %q is not a declared option", item)
			}
		}
	}

	for idx, rule := range field.Rules {
		if err := validateRule(field, rule, fields); err != nil {
			return fmt.Errorf("rule %d (%s): %w", idx, rule.Type, err)
		}
	}
	return nil
}

func validateRule(field Field, rule Rule, fields map[string]Field) error {
	switch rule.Type {
	case RuleRequired:
		return nil
	case RulePattern:
		if field.Kind.Multi() {
			return errors.New("pattern rules apply to single-value fields")
		}
		if strings.TrimSpace(rule.Pattern) == "" {
			return errors.New("pattern is required")
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
		return nil
	case RuleEquals:
		if field.Kind.Multi() {
			return errors.New("equals rules apply to single-value fields")
		}
		other := strings.TrimSpace(rule.Field)
		if other == "" {
			return errors.New("field reference is required")
		}
		if other == field.Key {
			return errors.New("field cannot reference itself")
		}
		target, ok := fields[other]
		if !ok {
			return fmt.Errorf("references unknown field %q", other)
		}
		if target.Kind.Multi() {
			return fmt.Errorf("references multi-value field %q", other)
		}
		return nil
	case RuleMinSelected:
		if !field.Kind.Multi() {
			return errors.New("minSelected rules apply to checkbox groups")
		}
		return nil
	default:
		return fmt.Errorf("unknown rule type %q", rule.Type)
	}
}

// DefaultValue normalises the declared default into its single or multi form
// according to the field kind. Documents decode lists as []any, which is
// accepted alongside []string.
func (f Field) DefaultValue() (string, []string, error) {
	if f.Default == nil {
		return "", nil, nil
	}
	if !f.Kind.Multi() {
		text, ok := f.Default.(string)
		if !ok {
			return "", nil, fmt.Errorf("default must be a string, got %T", f.Default)
		}
		return text, nil, nil
	}

	switch typed := f.Default.(type) {
	case []string:
		return "", append([]string(nil), typed...), nil
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			str, ok := item.(string)
			if !ok {
				return "", nil, fmt.Errorf("default items must be strings, got %T", item)
			}
			out = append(out, str)
		}
		return "", out, nil
	default:
		return "", nil, fmt.Errorf("default must be a list of strings, got %T", f.Default)
	}
}

// DependencyOrder validates the form's dependencies and returns them sorted so
// that a dependency controlled by another dependent is applied after it. Each
// dependent may have a single controller.
func DependencyOrder(form Form) ([]Dependency, error) {
	if len(form.Dependencies) == 0 {
		return nil, nil
	}

	fields := make(map[string]Field, len(form.Fields))
	for _, field := range form.Fields {
		fields[field.Key] = field
	}

	byDependent := make(map[string]Dependency, len(form.Dependencies))
	for _, dep := range form.Dependencies {
		controller, ok := fields[dep.Controller]
		if !ok {
			return nil, fmt.Errorf("dependency references unknown controller %q", dep.Controller)
		}
		if _, ok := fields[dep.Dependent]; !ok {
			return nil, fmt.Errorf("dependency references unknown dependent %q", dep.Dependent)
		}
		if dep.Controller == dep.Dependent {
			return nil, fmt.Errorf("field %q cannot control itself", dep.Controller)
		}
		if controller.Kind.Multi() {
			return nil, fmt.Errorf("controller %q must be a single-value field", dep.Controller)
		}
		if dep.PolicyOrDefault() != PolicyReset {
			return nil, fmt.Errorf("dependency %s -> %s: unknown policy %q", dep.Controller, dep.Dependent, dep.Policy)
		}
		if _, dup := byDependent[dep.Dependent]; dup {
			return nil, fmt.Errorf("field %q has more than one controller", dep.Dependent)
		}
		byDependent[dep.Dependent] = dep
	}

	const (
		visiting = iota + 1
		done
	)
	marks := make(map[string]int, len(byDependent))
	ordered := make([]Dependency, 0, len(byDependent))

	var visit func(dependent string) error
	visit = func(dependent string) error {
		dep, controlled := byDependent[dependent]
		if !controlled {
			return nil
		}
		switch marks[dependent] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w through %q", ErrDependencyCycle, dependent)
		}
		marks[dependent] = visiting
		if err := visit(dep.Controller); err != nil {
			return err
		}
		marks[dependent] = done
		ordered = append(ordered, dep)
		return nil
	}

	// Declaration order keeps the result deterministic.
	for _, dep := range form.Dependencies {
		if err := visit(dep.Dependent); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
