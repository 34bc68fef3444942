package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Value holds a field's content: a single string for text and radio fields or
// an ordered, duplicate-free collection for checkbox groups. The zero Value is
// the empty single string.
type Value struct {
	multi bool
	text  string
	items []string
}

// Text returns a single-string value.
func Text(s string) Value {
	return Value{text: s}
}

// Selection returns a collection value. Duplicates are dropped, keeping the
// first occurrence so toggling order is preserved.
func Selection(items ...string) Value {
	out := Value{multi: true}
	if len(items) == 0 {
		return out
	}
	seen := make(map[string]struct{}, len(items))
	out.items = make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out.items = append(out.items, item)
	}
	return out
}

// ValueFrom converts a decoded payload (string, []string or []any of strings)
// into a Value.
func ValueFrom(raw any) (Value, error) {
	switch typed := raw.(type) {
	case string:
		return Text(typed), nil
	case []string:
		return Selection(typed...), nil
	case []any:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			str, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("engine: selection items must be strings, got %T", item)
			}
			items = append(items, str)
		}
		return Selection(items...), nil
	case Value:
		return typed.clone(), nil
	default:
		return Value{}, fmt.Errorf("engine: unsupported value type %T", raw)
	}
}

// Multi reports whether the value is a collection.
func (v Value) Multi() bool {
	return v.multi
}

// String returns the single string content. Collections return their items
// joined by ", " which is only meant for display.
func (v Value) String() string {
	if v.multi {
		return strings.Join(v.items, ", ")
	}
	return v.text
}

// Items returns a copy of the collection items (nil for single values).
func (v Value) Items() []string {
	if !v.multi {
		return nil
	}
	return append([]string{}, v.items...)
}

// IsEmpty reports whether the value equals its kind's empty form.
func (v Value) IsEmpty() bool {
	if v.multi {
		return len(v.items) == 0
	}
	return v.text == ""
}

// Contains reports whether a collection holds item.
func (v Value) Contains(item string) bool {
	for _, existing := range v.items {
		if existing == item {
			return true
		}
	}
	return false
}

// Equal compares kind and content; collection order is significant.
func (v Value) Equal(other Value) bool {
	if v.multi != other.multi {
		return false
	}
	if !v.multi {
		return v.text == other.text
	}
	if len(v.items) != len(other.items) {
		return false
	}
	for i := range v.items {
		if v.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

// Interface returns the plain representation handed to submission code:
// string or []string (never nil for collections).
func (v Value) Interface() any {
	if v.multi {
		return v.Items()
	}
	return v.text
}

// MarshalJSON encodes single values as strings and collections as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts a string or an array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("engine: decode selection: %w", err)
		}
		*v = Selection(items...)
		return nil
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return fmt.Errorf("engine: value must be a string or an array of strings: %w", err)
	}
	*v = Text(text)
	return nil
}

func (v Value) clone() Value {
	if !v.multi {
		return v
	}
	return Value{multi: true, items: append([]string(nil), v.items...)}
}

func emptyValue(multi bool) Value {
	return Value{multi: multi}
}
