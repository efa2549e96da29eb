package validator

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"

	"github.com/goliatone/go-formstate/pkg/rules"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (e *Engine) check(field string, value any, rule rules.Rule) (string, bool) {
	empty := IsEmpty(value)

	if rule.Required && empty {
		return e.fail(rule, e.messages.Required, field)
	}
	if empty {
		return "", true
	}
	if rule.Whitespace {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return e.fail(rule, e.messages.Whitespace, field)
		}
	}

	kind := rule.Type
	if kind == "" {
		kind = inferType(value)
	}

	if !matchesType(kind, value) {
		return e.fail(rule, e.messages.Type, field, kind)
	}
	if message, ok := e.checkRange(field, value, kind, rule); !ok {
		return message, false
	}
	if rule.Pattern != "" {
		pattern, err := e.compile(rule.Pattern)
		if err != nil || !pattern.MatchString(stringify(value)) {
			return e.fail(rule, e.messages.Pattern, field, stringify(value), rule.Pattern)
		}
	}
	if len(rule.Enum) > 0 && !inEnum(value, rule.Enum) {
		return e.fail(rule, e.messages.Enum, field, joinEnum(rule.Enum))
	}
	return "", true
}

func (e *Engine) checkRange(field string, value any, kind rules.Type, rule rules.Rule) (string, bool) {
	if rule.Min == nil && rule.Max == nil && rule.Len == nil {
		return "", true
	}

	var (
		measure  float64
		messages RangeMessages
	)
	switch {
	case kind == rules.TypeArray || (kind == rules.TypeAny && isList(value)):
		measure = float64(reflect.ValueOf(value).Len())
		messages = e.messages.Array
	case isNumericType(kind):
		n, _ := toNumber(value)
		measure = n
		messages = e.messages.Number
	default:
		s, ok := value.(string)
		if !ok {
			if n, isNum := toNumber(value); isNum {
				measure = n
				messages = e.messages.Number
				break
			}
			return "", true
		}
		measure = float64(utf8.RuneCountInString(s))
		messages = e.messages.String
	}

	switch {
	case rule.Len != nil:
		if measure != *rule.Len {
			return e.fail(rule, messages.Len, field, formatNumber(*rule.Len))
		}
	case rule.Min != nil && rule.Max == nil:
		if measure < *rule.Min {
			return e.fail(rule, messages.Min, field, formatNumber(*rule.Min))
		}
	case rule.Max != nil && rule.Min == nil:
		if measure > *rule.Max {
			return e.fail(rule, messages.Max, field, formatNumber(*rule.Max))
		}
	default:
		if measure < *rule.Min || measure > *rule.Max {
			return e.fail(rule, messages.Range, field, formatNumber(*rule.Min), formatNumber(*rule.Max))
		}
	}
	return "", true
}

func (e *Engine) compile(expr string) (*regexp.Regexp, error) {
	if cached, ok := e.patterns.Get(expr); ok {
		if pattern, ok := cached.(*regexp.Regexp); ok {
			return pattern, nil
		}
	}
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	e.patterns.Set(expr, pattern, cache.DefaultExpiration)
	return pattern, nil
}

// IsEmpty reports whether value counts as missing for required checks: nil,
// nil pointers, the empty string and empty slices or arrays.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	case reflect.Slice:
		return rv.IsNil() || rv.Len() == 0
	case reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}

func inferType(value any) rules.Type {
	switch {
	case isList(value):
		return rules.TypeArray
	case isNumber(value):
		return rules.TypeNumber
	default:
		if _, ok := value.(string); ok {
			return rules.TypeString
		}
		return rules.TypeAny
	}
}

func matchesType(kind rules.Type, value any) bool {
	switch kind {
	case rules.TypeString:
		_, ok := value.(string)
		return ok
	case rules.TypeNumber:
		return isNumber(value)
	case rules.TypeInteger:
		n, ok := toNumber(value)
		return ok && math.Trunc(n) == n
	case rules.TypeFloat:
		n, ok := toNumber(value)
		return ok && math.Trunc(n) != n
	case rules.TypeBoolean:
		_, ok := value.(bool)
		return ok
	case rules.TypeArray:
		return isList(value)
	case rules.TypeObject:
		kind := reflect.Indirect(reflect.ValueOf(value)).Kind()
		return kind == reflect.Map || kind == reflect.Struct
	case rules.TypeDate:
		return isDate(value)
	case rules.TypeURL:
		s, ok := value.(string)
		if !ok {
			return false
		}
		u, err := url.ParseRequestURI(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	case rules.TypeEmail:
		s, ok := value.(string)
		return ok && emailPattern.MatchString(s)
	default:
		return true
	}
}

func isNumericType(kind rules.Type) bool {
	return kind == rules.TypeNumber || kind == rules.TypeInteger || kind == rules.TypeFloat
}

func isList(value any) bool {
	kind := reflect.ValueOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

func isNumber(value any) bool {
	_, ok := toNumber(value)
	return ok
}

func toNumber(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func isDate(value any) bool {
	switch v := value.(type) {
	case time.Time:
		return !v.IsZero()
	case *time.Time:
		return v != nil && !v.IsZero()
	case string:
		for _, layout := range []string{time.RFC3339, time.DateOnly, time.DateTime} {
			if _, err := time.Parse(layout, v); err == nil {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// inEnum checks scalar membership; for lists every element must be a member.
func inEnum(value any, enum []any) bool {
	if isList(value) {
		rv := reflect.ValueOf(value)
		for idx := 0; idx < rv.Len(); idx++ {
			if !inEnum(rv.Index(idx).Interface(), enum) {
				return false
			}
		}
		return true
	}
	for _, candidate := range enum {
		if equalValues(value, candidate) {
			return true
		}
	}
	return false
}

func equalValues(a, b any) bool {
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

func joinEnum(enum []any) string {
	parts := make([]string, 0, len(enum))
	for _, value := range enum {
		parts = append(parts, stringify(value))
	}
	return strings.Join(parts, ", ")
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	if n, ok := toNumber(value); ok {
		return formatNumber(n)
	}
	return fmt.Sprint(value)
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
