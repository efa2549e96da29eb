package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFieldNotFound is returned when a key has no attached field.
	ErrFieldNotFound = errors.New("form: field not found")
	// ErrDuplicateField is returned when a second field instance registers an
	// existing key.
	ErrDuplicateField = errors.New("form: duplicate field key")
	// ErrNilField is returned when a nil field is attached.
	ErrNilField = errors.New("form: field is nil")
	// ErrNotAttached is returned by field operations that need a form.
	ErrNotAttached = errors.New("form: field is not attached to a form")
	// ErrNotObservable is returned by Watch when the model cannot publish
	// changes.
	ErrNotObservable = errors.New("form: model does not support subscriptions")
)

// FieldError lists the messages of one failing field.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// ValidationError carries the failing fields of a validation run, in field
// registration order.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "form: validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field.Field, strings.Join(field.Messages, ", ")))
	}
	return "form: validation failed: " + strings.Join(parts, "; ")
}

// Len reports the number of failing fields.
func (e *ValidationError) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Fields)
}

// Keys returns the failing field keys in order.
func (e *ValidationError) Keys() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		keys = append(keys, field.Field)
	}
	return keys
}

// Has reports whether key failed.
func (e *ValidationError) Has(key string) bool {
	return e.Messages(key) != nil
}

// Messages returns the messages recorded for key.
func (e *ValidationError) Messages(key string) []string {
	if e == nil {
		return nil
	}
	for _, field := range e.Fields {
		if field.Field == key {
			return append([]string(nil), field.Messages...)
		}
	}
	return nil
}

// Map flattens the result into the key to messages shape used by error
// payloads.
func (e *ValidationError) Map() map[string][]string {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e.Fields))
	for _, field := range e.Fields {
		out[field.Field] = append([]string(nil), field.Messages...)
	}
	return out
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
