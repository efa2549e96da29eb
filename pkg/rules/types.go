package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type names the value kind a rule expects.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeFloat   Type = "float"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeEnum    Type = "enum"
	TypeDate    Type = "date"
	TypeURL     Type = "url"
	TypeEmail   Type = "email"
	TypeAny     Type = "any"
)

// Valid reports whether t is empty or one of the known types.
func (t Type) Valid() bool {
	switch t {
	case "", TypeString, TypeNumber, TypeInteger, TypeFloat, TypeBoolean, TypeArray,
		TypeObject, TypeEnum, TypeDate, TypeURL, TypeEmail, TypeAny:
		return true
	default:
		return false
	}
}

// Trigger is the interaction event that causes a rule to run.
type Trigger string

const (
	TriggerChange Trigger = "change"
	TriggerBlur   Trigger = "blur"
)

// Triggers lists the events a rule reacts to. Documents may use a single
// scalar ("blur") or a list ([blur, change]).
type Triggers []Trigger

// Has reports whether trigger is listed.
func (t Triggers) Has(trigger Trigger) bool {
	for _, candidate := range t {
		if candidate == trigger {
			return true
		}
	}
	return false
}

// UnmarshalYAML accepts a scalar or a sequence.
func (t *Triggers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = parseTriggers(node.Value)
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*t = parseTriggers(values...)
		return nil
	default:
		return fmt.Errorf("rules: trigger must be a string or a list, got %v", node.Tag)
	}
}

// UnmarshalJSON accepts a string or an array of strings.
func (t *Triggers) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = parseTriggers(single)
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("rules: trigger must be a string or a list: %w", err)
	}
	*t = parseTriggers(values...)
	return nil
}

func parseTriggers(values ...string) Triggers {
	var out Triggers
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			trimmed := strings.ToLower(strings.TrimSpace(part))
			if trimmed == "" {
				continue
			}
			out = append(out, Trigger(trimmed))
		}
	}
	return out
}

// ValidatorFunc is a custom check attached to a rule. A non-nil error fails
// the field; its text becomes the message unless empty.
type ValidatorFunc func(ctx context.Context, rule Rule, value any) error

// Rule is a single validation constraint. Numeric bounds are pointers so a
// zero bound can be told apart from an absent one.
type Rule struct {
	Required   bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Type       Type          `json:"type,omitempty" yaml:"type,omitempty"`
	Min        *float64      `json:"min,omitempty" yaml:"min,omitempty"`
	Max        *float64      `json:"max,omitempty" yaml:"max,omitempty"`
	Len        *float64      `json:"len,omitempty" yaml:"len,omitempty"`
	Pattern    string        `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum       []any         `json:"enum,omitempty" yaml:"enum,omitempty"`
	Whitespace bool          `json:"whitespace,omitempty" yaml:"whitespace,omitempty"`
	Trigger    Triggers      `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Message    string        `json:"message,omitempty" yaml:"message,omitempty"`
	Validator  ValidatorFunc `json:"-" yaml:"-"`
}

// AppliesTo reports whether the rule runs for trigger. An empty trigger
// (bulk validation) or a rule without triggers always applies.
func (r Rule) AppliesTo(trigger Trigger) bool {
	if trigger == "" || len(r.Trigger) == 0 {
		return true
	}
	return r.Trigger.Has(trigger)
}

// Set maps dotted field paths to their ordered rules.
type Set map[string][]Rule

// For returns a copy of the rules registered for key.
func (s Set) For(key string) []Rule {
	if len(s) == 0 {
		return nil
	}
	rules := s[key]
	if len(rules) == 0 {
		return nil
	}
	return append([]Rule(nil), rules...)
}

// Clone returns a shallow copy of the set with copied rule slices.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	for key, rules := range s {
		out[key] = append([]Rule(nil), rules...)
	}
	return out
}

// Filter returns the rules that apply to trigger, preserving order.
func Filter(rules []Rule, trigger Trigger) []Rule {
	if len(rules) == 0 {
		return nil
	}
	out := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.AppliesTo(trigger) {
			out = append(out, rule)
		}
	}
	return out
}

// Compose merges item-level rules ahead of form-level rules. A non-nil
// required flag overrides Required on every rule; when no rule carries a
// required constraint a {Required: *required} rule is appended.
func Compose(item, form []Rule, required *bool) []Rule {
	out := make([]Rule, 0, len(item)+len(form)+1)
	out = append(out, item...)
	out = append(out, form...)
	if required == nil {
		return out
	}

	overridden := false
	for idx := range out {
		if out[idx].Required {
			out[idx].Required = *required
			overridden = true
		}
	}
	if !overridden && *required {
		out = append(out, Rule{Required: true})
	}
	return out
}

// IsRequired reports whether any rule declares a required constraint.
func IsRequired(rules []Rule) bool {
	for _, rule := range rules {
		if rule.Required {
			return true
		}
	}
	return false
}

// Ptr is a helper for the optional numeric bounds.
func Ptr[T any](v T) *T {
	return &v
}
