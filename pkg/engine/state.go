package engine

// FieldState is the derived state of one declared field.
type FieldState struct {
	Value   Value  `json:"value"`
	Error   string `json:"error,omitempty"`
	Visible bool   `json:"visible"`
	Touched bool   `json:"touched"`
	// Default is the value a dependent takes on its first reveal.
	Default Value `json:"-"`
	// Resolved is set once a dependent's controller has answered or the
	// dependent has been shown. From then on a reveal keeps the current
	// value instead of restoring Default.
	Resolved bool `json:"-"`
}

// Valid reports whether the field currently has no error.
func (f FieldState) Valid() bool {
	return f.Error == ""
}

// FormState maps every declared field key to its state. Engine operations
// take a FormState and return a new one; the argument is never modified.
type FormState struct {
	Form      string                `json:"form"`
	Submitted bool                  `json:"submitted"`
	Fields    map[string]FieldState `json:"fields"`
}

// Field returns the state for key.
func (s FormState) Field(key string) (FieldState, bool) {
	field, ok := s.Fields[key]
	return field, ok
}

// Value returns the value held by key, or the zero Value for unknown keys.
func (s FormState) Value(key string) Value {
	return s.Fields[key].Value
}

// Error returns the error held by key ("" when valid or unknown).
func (s FormState) Error(key string) string {
	return s.Fields[key].Error
}

// Surfaced reports whether the presentation layer should display key's error:
// the field was touched or the form went through ValidateAll.
func (s FormState) Surfaced(key string) bool {
	field, ok := s.Fields[key]
	if !ok {
		return false
	}
	return field.Touched || s.Submitted
}

// Valid reports whether no field carries an error.
func (s FormState) Valid() bool {
	for _, field := range s.Fields {
		if field.Error != "" {
			return false
		}
	}
	return true
}

// Values returns the plain key -> value map handed to submission code. Values
// are string or []string.
func (s FormState) Values() map[string]any {
	out := make(map[string]any, len(s.Fields))
	for key, field := range s.Fields {
		out[key] = field.Value.Interface()
	}
	return out
}

// Errors returns the non-empty errors keyed by field, regardless of touch.
func (s FormState) Errors() map[string]string {
	out := make(map[string]string)
	for key, field := range s.Fields {
		if field.Error != "" {
			out[key] = field.Error
		}
	}
	return out
}

// Clone returns a deep copy.
func (s FormState) Clone() FormState {
	out := FormState{
		Form:      s.Form,
		Submitted: s.Submitted,
		Fields:    make(map[string]FieldState, len(s.Fields)),
	}
	for key, field := range s.Fields {
		field.Value = field.Value.clone()
		field.Default = field.Default.clone()
		out.Fields[key] = field
	}
	return out
}
