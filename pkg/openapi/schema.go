package openapi

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/rules"
)

type extension struct {
	Message string         `json:"message"`
	Trigger rules.Triggers `json:"trigger"`
}

func walkObject(schema *openapi3.Schema, prefix string, set rules.Set, model map[string]any) {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		path := joinPath(prefix, name)

		if prop.Default != nil {
			model[name] = prop.Default
		}

		if isType(prop, openapi3.TypeObject) && len(prop.Properties) > 0 {
			nested, _ := model[name].(map[string]any)
			if nested == nil {
				nested = make(map[string]any)
			}
			walkObject(prop, path, set, nested)
			if required[name] {
				set[path] = append(set[path], withExtension(prop, rules.Rule{Required: true, Type: rules.TypeObject}))
			}
			if len(nested) > 0 {
				model[name] = nested
			}
			continue
		}

		if list := propertyRules(prop, required[name]); len(list) > 0 {
			set[path] = append(set[path], list...)
		}
	}
}

func propertyRules(prop *openapi3.Schema, required bool) []rules.Rule {
	var out []rules.Rule
	if required {
		out = append(out, withExtension(prop, rules.Rule{Required: true}))
	}

	rule := rules.Rule{Type: ruleType(prop), Pattern: prop.Pattern}
	switch {
	case isType(prop, openapi3.TypeString):
		if prop.MinLength > 0 {
			rule.Min = rules.Ptr(float64(prop.MinLength))
		}
		if prop.MaxLength != nil {
			rule.Max = rules.Ptr(float64(*prop.MaxLength))
		}
	case isType(prop, openapi3.TypeInteger), isType(prop, openapi3.TypeNumber):
		rule.Min = prop.Min
		rule.Max = prop.Max
	case isType(prop, openapi3.TypeArray):
		if prop.MinItems > 0 {
			rule.Min = rules.Ptr(float64(prop.MinItems))
		}
		if prop.MaxItems != nil {
			rule.Max = rules.Ptr(float64(*prop.MaxItems))
		}
		if prop.Items != nil && prop.Items.Value != nil && len(prop.Items.Value.Enum) > 0 {
			rule.Enum = append([]any(nil), prop.Items.Value.Enum...)
		}
	}
	if len(prop.Enum) > 0 {
		rule.Enum = append([]any(nil), prop.Enum...)
	}

	if rule.Type != "" || rule.Pattern != "" || rule.Min != nil || rule.Max != nil || len(rule.Enum) > 0 {
		out = append(out, withExtension(prop, rule))
	}
	return out
}

func ruleType(prop *openapi3.Schema) rules.Type {
	switch {
	case isType(prop, openapi3.TypeString):
		switch strings.ToLower(prop.Format) {
		case "email":
			return rules.TypeEmail
		case "uri", "url":
			return rules.TypeURL
		case "date", "date-time":
			return rules.TypeDate
		}
		return rules.TypeString
	case isType(prop, openapi3.TypeInteger):
		return rules.TypeInteger
	case isType(prop, openapi3.TypeNumber):
		return rules.TypeNumber
	case isType(prop, openapi3.TypeBoolean):
		return rules.TypeBoolean
	case isType(prop, openapi3.TypeArray):
		return rules.TypeArray
	case isType(prop, openapi3.TypeObject):
		return rules.TypeObject
	}
	return ""
}

func withExtension(prop *openapi3.Schema, rule rules.Rule) rules.Rule {
	raw, ok := prop.Extensions[ExtensionKey]
	if !ok {
		return rule
	}
	var ext extension
	data, err := json.Marshal(raw)
	if err != nil || json.Unmarshal(data, &ext) != nil {
		return rule
	}
	if ext.Message != "" {
		rule.Message = ext.Message
	}
	if len(ext.Trigger) > 0 {
		rule.Trigger = ext.Trigger
	}
	return rule
}

func isType(schema *openapi3.Schema, kind string) bool {
	return schema.Type != nil && schema.Type.Is(kind)
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
