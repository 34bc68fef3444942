package engine

import (
	"fmt"
	"html"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/schema"
)

// Default messages used when a rule does not declare its own.
const (
	MessageRequired    = "Field is required."
	MessagePattern     = "Value does not match the required format."
	MessageEquals      = "Values do not match."
	MessageMinSelected = "Select at least one option."
	MessageOption      = "Select a valid option."
	MessageMarkup      = "Markup is not allowed."
)

var (
	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// lookup resolves the current value of another field while a rule runs.
type lookup func(key string) Value

// rule is a compiled predicate. check returns the failure message and false
// when the predicate does not hold.
type rule interface {
	check(value Value, values lookup) (string, bool)
	// references lists other fields whose values the predicate reads.
	references() []string
}

type requiredRule struct{ message string }

func (r requiredRule) check(value Value, _ lookup) (string, bool) {
	if value.IsEmpty() {
		return r.message, false
	}
	return "", true
}

func (requiredRule) references() []string { return nil }

// patternRule passes empty values; emptiness belongs to requiredRule.
type patternRule struct {
	re      *regexp.Regexp
	message string
}

func (r patternRule) check(value Value, _ lookup) (string, bool) {
	if value.IsEmpty() || r.re.MatchString(value.String()) {
		return "", true
	}
	return r.message, false
}

func (patternRule) references() []string { return nil }

type equalsRule struct {
	field   string
	message string
}

func (r equalsRule) check(value Value, values lookup) (string, bool) {
	if value.Equal(values(r.field)) {
		return "", true
	}
	return r.message, false
}

func (r equalsRule) references() []string { return []string{r.field} }

type minSelectedRule struct{ message string }

func (r minSelectedRule) check(value Value, _ lookup) (string, bool) {
	if len(value.items) > 0 {
		return "", true
	}
	return r.message, false
}

func (minSelectedRule) references() []string { return nil }

// optionsRule enforces membership in the declared options. Empty values pass.
type optionsRule struct {
	options map[string]struct{}
	message string
}

func (r optionsRule) check(value Value, _ lookup) (string, bool) {
	if value.multi {
		for _, item := range value.items {
			if _, ok := r.options[item]; !ok {
				return r.message, false
			}
		}
		return "", true
	}
	if value.text == "" {
		return "", true
	}
	if _, ok := r.options[value.text]; !ok {
		return r.message, false
	}
	return "", true
}

func (optionsRule) references() []string { return nil }

// plainTextRule rejects text that a strict HTML policy would rewrite, so a
// valid value reaches the submission unchanged.
type plainTextRule struct {
	policy  *bluemonday.Policy
	message string
}

func (r plainTextRule) check(value Value, _ lookup) (string, bool) {
	if value.text == "" || html.UnescapeString(r.policy.Sanitize(value.text)) == value.text {
		return "", true
	}
	return r.message, false
}

func (plainTextRule) references() []string { return nil }

func strictPolicy() *bluemonday.Policy {
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return plainPolicy
}

func compileRules(field schema.Field) ([]rule, error) {
	rules := make([]rule, 0, len(field.Rules)+1)
	for idx, declared := range field.Rules {
		switch declared.Type {
		case schema.RuleRequired:
			rules = append(rules, requiredRule{message: messageOr(declared.Message, MessageRequired)})
		case schema.RulePattern:
			re, err := regexp.Compile(declared.Pattern)
			if err != nil {
				return nil, fmt.Errorf("engine: field %q rule %d: %w", field.Key, idx, err)
			}
			rules = append(rules, patternRule{re: re, message: messageOr(declared.Message, MessagePattern)})
		case schema.RuleEquals:
			rules = append(rules, equalsRule{field: declared.Field, message: messageOr(declared.Message, MessageEquals)})
		case schema.RuleMinSelected:
			rules = append(rules, minSelectedRule{message: messageOr(declared.Message, MessageMinSelected)})
		default:
			return nil, fmt.Errorf("engine: field %q rule %d: unknown rule type %q", field.Key, idx, declared.Type)
		}
	}

	if len(field.Options) > 0 && field.Kind != schema.FieldKindText {
		options := make(map[string]struct{}, len(field.Options))
		for _, option := range field.Options {
			options[option] = struct{}{}
		}
		rules = append(rules, optionsRule{options: options, message: MessageOption})
	}
	if field.Kind == schema.FieldKindText {
		rules = append(rules, plainTextRule{policy: strictPolicy(), message: MessageMarkup})
	}
	return rules, nil
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
