package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages. Field keys match the attached field keys.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrors normalises server error payloads (dotted paths, JSON pointers,
// bracket indexes, optional body/request wrappers) onto the given field
// keys. Paths that match no key become form-level messages.
func MapErrors(keys []string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	known := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key = strings.TrimSpace(key); key != "" {
			known[key] = struct{}{}
		}
	}

	for _, raw := range sortedKeys(payload) {
		messages := normalizeMessages(payload[raw])
		if len(messages) == 0 {
			continue
		}
		key := matchKey(raw, known)
		if key == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[key] = normalizeMessages(append(mapping.Fields[key], messages...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// ApplyErrors maps payload onto the fields of f and marks each matched field
// as failed with its first message. The mapping is returned so callers can
// render the form-level messages.
func ApplyErrors(f *form.Form, payload map[string][]string) ErrorMapping {
	fields := f.Fields()
	keys := make([]string, 0, len(fields))
	for _, field := range fields {
		keys = append(keys, field.Key())
	}
	mapping := MapErrors(keys, payload)
	for key, messages := range mapping.Fields {
		if field, ok := f.Field(key); ok {
			field.SetError(messages[0])
		}
	}
	return mapping
}

func matchKey(raw string, known map[string]struct{}) string {
	if isFormLevelKey(raw) {
		return ""
	}
	segments := parseSegments(raw)
	if len(segments) == 0 {
		return ""
	}

	best := ""
	for _, variant := range [][]string{
		segments,
		dropWrappers(segments),
		dropIndexes(segments),
		dropIndexes(dropWrappers(segments)),
	} {
		candidate := longestKnownPrefix(variant, known)
		if candidate == "" {
			continue
		}
		if best == "" || strings.Count(candidate, ".") > strings.Count(best, ".") {
			best = candidate
		}
	}
	return best
}

func longestKnownPrefix(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func parseSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body": {}, "request": {}, "payload": {}, "data": {}, "attributes": {},
}

func dropWrappers(segments []string) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func dropIndexes(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func normalizeMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	}
	return false
}

func sortedKeys(payload map[string][]string) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
