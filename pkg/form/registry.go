package form

import (
	"fmt"
	"strings"
	"sync"
)

// Registry is the ordered set of attached fields.
type Registry struct {
	mu     sync.RWMutex
	fields []*Field
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends field. Registering the same instance twice is a no-op; a
// different instance with an existing non-empty key is rejected.
func (r *Registry) Register(field *Field) error {
	if field == nil {
		return ErrNilField
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.fields {
		if existing == field {
			return nil
		}
		if field.key != "" && existing.key == field.key {
			return fmt.Errorf("%w: %q", ErrDuplicateField, field.key)
		}
	}
	r.fields = append(r.fields, field)
	return nil
}

// Unregister removes field and reports whether it was present.
func (r *Registry) Unregister(field *Field) bool {
	if field == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for idx, existing := range r.fields {
		if existing == field {
			r.fields = append(r.fields[:idx], r.fields[idx+1:]...)
			return true
		}
	}
	return false
}

// FieldsMatching returns every field when keys is empty, otherwise the fields
// whose key is listed, in registration order.
func (r *Registry) FieldsMatching(keys ...string) []*Field {
	wanted := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			wanted[trimmed] = struct{}{}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Field, 0, len(r.fields))
	for _, field := range r.fields {
		if len(wanted) > 0 {
			if _, ok := wanted[field.key]; !ok {
				continue
			}
		}
		out = append(out, field)
	}
	return out
}

// Lookup returns the field registered for key.
func (r *Registry) Lookup(key string) (*Field, bool) {
	if key == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, field := range r.fields {
		if field.key == key {
			return field, true
		}
	}
	return nil, false
}

// Len reports the number of registered fields.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fields)
}
