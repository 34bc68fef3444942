package engine

import (
	"fmt"

	"github.com/goliatone/go-formstate/pkg/schema"
)

type compiledField struct {
	key   string
	multi bool
	rules []rule
	def   Value
}

type compiledDependency struct {
	controller  string
	dependent   string
	affirmative string
}

// Engine is a compiled form definition. It holds no per-form state, so a
// single Engine can serve any number of FormState values concurrently.
type Engine struct {
	form   schema.Form
	order  []string
	fields map[string]compiledField
	// referers maps a field to the fields whose rules read it.
	referers map[string][]string
	// deps is ordered so controllers settle before their dependents.
	deps []compiledDependency
}

// New validates and compiles a form definition.
func New(form schema.Form) (*Engine, error) {
	if err := schema.Validate(form); err != nil {
		return nil, err
	}

	eng := &Engine{
		form:     form,
		order:    form.Keys(),
		fields:   make(map[string]compiledField, len(form.Fields)),
		referers: make(map[string][]string),
	}

	for _, field := range form.Fields {
		rules, err := compileRules(field)
		if err != nil {
			return nil, err
		}
		text, items, err := field.DefaultValue()
		if err != nil {
			return nil, fmt.Errorf("engine: field %q: %w", field.Key, err)
		}
		def := Text(text)
		if field.Kind.Multi() {
			def = Selection(items...)
		}
		eng.fields[field.Key] = compiledField{
			key:   field.Key,
			multi: field.Kind.Multi(),
			rules: rules,
			def:   def,
		}
		for _, r := range rules {
			for _, ref := range r.references() {
				eng.referers[ref] = appendUnique(eng.referers[ref], field.Key)
			}
		}
	}

	ordered, err := schema.DependencyOrder(form)
	if err != nil {
		return nil, fmt.Errorf("engine: form %q: %w", form.ID, err)
	}
	for _, dep := range ordered {
		eng.deps = append(eng.deps, compiledDependency{
			controller:  dep.Controller,
			dependent:   dep.Dependent,
			affirmative: dep.AffirmativeValue(),
		})
	}
	return eng, nil
}

// MustNew panics when the form cannot be compiled. Useful for tests and
// embedded definitions.
func MustNew(form schema.Form) *Engine {
	eng, err := New(form)
	if err != nil {
		panic(err)
	}
	return eng
}

// Form returns the definition the engine was compiled from.
func (e *Engine) Form() schema.Form {
	return e.form
}

// Keys returns field keys in declaration order.
func (e *Engine) Keys() []string {
	return append([]string(nil), e.order...)
}

// Initialize builds the opening FormState. defaults may be partial and
// override the schema's declared defaults; unspecified fields start empty.
// Errors are computed for every field but nothing is touched, so the
// presentation layer keeps them hidden until interaction or ValidateAll.
func (e *Engine) Initialize(defaults map[string]Value) (FormState, error) {
	const op = "initialize"
	for key, value := range defaults {
		field, ok := e.fields[key]
		if !ok {
			return FormState{}, contractErr(op, key, ErrUnknownField)
		}
		if value.multi != field.multi {
			return FormState{}, contractErr(op, key, ErrValueKind)
		}
	}

	state := FormState{
		Form:   e.form.ID,
		Fields: make(map[string]FieldState, len(e.order)),
	}
	for _, key := range e.order {
		field := e.fields[key]
		def := field.def.clone()
		if override, ok := defaults[key]; ok {
			def = override.clone()
			if def.multi {
				def = Selection(def.items...)
			}
		}
		state.Fields[key] = FieldState{
			Value:   def.clone(),
			Visible: true,
			Default: def,
		}
	}

	e.propagate(state)
	for _, key := range e.order {
		e.revalidate(state, key)
	}
	return state, nil
}

// SetFieldValue records a user change to key. It marks the field touched,
// re-runs its rules, re-runs the rules of every field that reads key (such as
// a confirmation field reading the primary field), and then propagates
// dependency effects. The returned state is fully settled.
//
// Invalid content is reported through the field's error. A *ContractError is
// returned, together with the unchanged input state, for unknown keys, values
// of the wrong kind, or a state built by another engine.
func (e *Engine) SetFieldValue(state FormState, key string, value Value) (FormState, error) {
	const op = "set field value"
	if err := e.check(state); err != nil {
		return state, contractErr(op, "", err)
	}
	field, ok := e.fields[key]
	if !ok {
		return state, contractErr(op, key, ErrUnknownField)
	}
	if value.multi != field.multi {
		return state, contractErr(op, key, ErrValueKind)
	}

	next := state.Clone()
	current := next.Fields[key]
	current.Value = value.clone()
	if current.Value.multi {
		current.Value = Selection(current.Value.items...)
	}
	current.Touched = true
	next.Fields[key] = current

	e.revalidate(next, key)
	e.revalidateReferers(next, key)
	e.propagate(next)
	return next, nil
}

// ValidateAll recomputes every error regardless of touch, marks the state as
// submitted so errors become displayable, and reports whether the form is
// valid.
func (e *Engine) ValidateAll(state FormState) (FormState, bool, error) {
	if err := e.check(state); err != nil {
		return state, false, contractErr("validate all", "", err)
	}
	next := state.Clone()
	e.propagate(next)
	for _, key := range e.order {
		e.revalidate(next, key)
	}
	next.Submitted = true
	return next, next.Valid(), nil
}

// ApplyDependencyEffects runs dependency propagation on its own. Applying it
// twice without an intervening change yields the same state.
func (e *Engine) ApplyDependencyEffects(state FormState) (FormState, error) {
	if err := e.check(state); err != nil {
		return state, contractErr("apply dependency effects", "", err)
	}
	next := state.Clone()
	e.propagate(next)
	return next, nil
}

// propagate applies every dependency in controller-first order. A dependent
// whose controller is not affirmative is emptied, hidden and cleared. An
// affirmative controller reveals the dependent and re-runs its rules; the
// declared default is applied only on the first reveal of an untouched
// dependent whose controller never answered otherwise.
func (e *Engine) propagate(state FormState) {
	for _, dep := range e.deps {
		controller := state.Fields[dep.controller]
		dependent := state.Fields[dep.dependent]
		compiled := e.fields[dep.dependent]

		open := controller.Visible && !controller.Value.multi && controller.Value.text == dep.affirmative
		if !open {
			dependent.Value = emptyValue(compiled.multi)
			dependent.Visible = false
			dependent.Error = ""
			if controller.Visible && !controller.Value.IsEmpty() {
				dependent.Resolved = true
			}
			state.Fields[dep.dependent] = dependent
			e.revalidateReferers(state, dep.dependent)
			continue
		}

		dependent.Visible = true
		if !dependent.Touched && !dependent.Resolved {
			dependent.Value = dependent.Default.clone()
		}
		dependent.Resolved = true
		state.Fields[dep.dependent] = dependent
		e.revalidate(state, dep.dependent)
		e.revalidateReferers(state, dep.dependent)
	}
}

// revalidate recomputes key's error from its rules. Hidden fields are valid.
func (e *Engine) revalidate(state FormState, key string) {
	current := state.Fields[key]
	current.Error = ""
	if current.Visible {
		values := func(other string) Value { return state.Fields[other].Value }
		for _, r := range e.fields[key].rules {
			if message, ok := r.check(current.Value, values); !ok {
				current.Error = message
				break
			}
		}
	}
	state.Fields[key] = current
}

func (e *Engine) revalidateReferers(state FormState, key string) {
	for _, referer := range e.referers[key] {
		e.revalidate(state, referer)
	}
}

func (e *Engine) check(state FormState) error {
	if state.Form != e.form.ID || len(state.Fields) != len(e.order) {
		return ErrStateMismatch
	}
	for key, field := range e.fields {
		current, ok := state.Fields[key]
		if !ok {
			return ErrStateMismatch
		}
		if current.Value.multi != field.multi || current.Default.multi != field.multi {
			return ErrStateMismatch
		}
	}
	return nil
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
