package schema

import (
	"sort"
	"strings"
)

// FieldKind enumerates the input shapes the engine understands.
type FieldKind string

const (
	FieldKindText          FieldKind = "text"
	FieldKindRadio         FieldKind = "radio"
	FieldKindCheckboxGroup FieldKind = "checkbox-group"
)

// Multi reports whether values of this kind are ordered string collections.
func (k FieldKind) Multi() bool {
	return k == FieldKindCheckboxGroup
}

// Valid reports whether the kind is one of the declared constants.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldKindText, FieldKindRadio, FieldKindCheckboxGroup:
		return true
	default:
		return false
	}
}

// RuleType identifies a validator in a field's rule list.
type RuleType string

const (
	RuleRequired    RuleType = "required"
	RulePattern     RuleType = "pattern"
	RuleEquals      RuleType = "equals"
	RuleMinSelected RuleType = "minSelected"
)

// DependencyPolicy describes what happens to a dependent field when its
// controller leaves the affirmative value.
type DependencyPolicy string

const (
	// PolicyReset clears and hides the dependent on any non-affirmative value.
	PolicyReset DependencyPolicy = "reset"
)

// DefaultAffirmative is the controller value that reveals dependents when a
// dependency does not declare its own.
const DefaultAffirmative = "yes"

// Rule declares a single validator. Only the parameters relevant to Type are
// read: Pattern for pattern rules, Field for equals rules.
type Rule struct {
	Type    RuleType `json:"type" yaml:"type"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
	Pattern string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Field   string   `json:"field,omitempty" yaml:"field,omitempty"`
}

// Field describes one named unit of user input.
type Field struct {
	Key         string    `json:"key" yaml:"key"`
	Kind        FieldKind `json:"kind" yaml:"kind"`
	Label       string    `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Help        string    `json:"help,omitempty" yaml:"help,omitempty"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
	// Default is a string for text/radio fields or a list of strings for
	// checkbox groups. Documents decode it as any; DefaultValue normalises it.
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
	Rules   []Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Dependency gates the visibility and content of Dependent on the value held
// by Controller.
type Dependency struct {
	Controller  string           `json:"controller" yaml:"controller"`
	Dependent   string           `json:"dependent" yaml:"dependent"`
	Affirmative string           `json:"affirmative,omitempty" yaml:"affirmative,omitempty"`
	Policy      DependencyPolicy `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// AffirmativeValue returns the declared affirmative value or DefaultAffirmative.
func (d Dependency) AffirmativeValue() string {
	if strings.TrimSpace(d.Affirmative) == "" {
		return DefaultAffirmative
	}
	return d.Affirmative
}

// PolicyOrDefault returns the declared policy or PolicyReset.
func (d Dependency) PolicyOrDefault() DependencyPolicy {
	if d.Policy == "" {
		return PolicyReset
	}
	return d.Policy
}

// Form is a complete form definition.
type Form struct {
	ID           string       `json:"id" yaml:"id"`
	Title        string       `json:"title,omitempty" yaml:"title,omitempty"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	Fields       []Field      `json:"fields" yaml:"fields"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Field returns the field declared under key.
func (f Form) Field(key string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return Field{}, false
}

// Keys returns field keys in declaration order.
func (f Form) Keys() []string {
	keys := make([]string, 0, len(f.Fields))
	for _, field := range f.Fields {
		keys = append(keys, field.Key)
	}
	return keys
}

// Store holds forms keyed by identifier.
type Store struct {
	forms map[string]Form
}

// NewStore builds a store from already-validated forms. Later forms win on
// duplicate identifiers.
func NewStore(forms ...Form) *Store {
	store := &Store{forms: make(map[string]Form, len(forms))}
	for _, form := range forms {
		store.forms[form.ID] = form
	}
	return store
}

// Form returns the definition registered under id.
func (s *Store) Form(id string) (Form, bool) {
	if s == nil {
		return Form{}, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// IDs returns the registered form identifiers sorted alphabetically.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}
