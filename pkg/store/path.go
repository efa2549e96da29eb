package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Segments splits a dotted path, dropping empty segments.
func Segments(path string) []string {
	parts := strings.Split(strings.TrimSpace(path), ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getPath(root map[string]any, path string) (any, bool) {
	segments := Segments(path)
	if root == nil || len(segments) == 0 {
		return nil, false
	}
	current := any(root)
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// deletePath removes the value at path and returns it.
func deletePath(root map[string]any, path string) (any, bool) {
	segments := Segments(path)
	if root == nil || len(segments) == 0 {
		return nil, false
	}
	parent := any(root)
	if len(segments) > 1 {
		var ok bool
		parent, ok = getPath(root, strings.Join(segments[:len(segments)-1], "."))
		if !ok {
			return nil, false
		}
	}
	last := segments[len(segments)-1]
	switch node := parent.(type) {
	case map[string]any:
		old, ok := node[last]
		if !ok {
			return nil, false
		}
		delete(node, last)
		return old, true
	case []any:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(node) {
			return nil, false
		}
		old := node[idx]
		node[idx] = nil
		return old, true
	}
	return nil, false
}

func setPath(root map[string]any, path string, value any) error {
	if root == nil {
		return fmt.Errorf("store: root map is nil")
	}
	segments := Segments(path)
	if len(segments) == 0 {
		return fmt.Errorf("store: path is required")
	}
	_, err := assign(root, segments, value, path)
	return err
}

// assign writes value below node and returns the (possibly grown or newly
// created) container so parents can store it back.
func assign(node any, segments []string, value any, path string) (any, error) {
	if len(segments) == 0 {
		return value, nil
	}
	segment, rest := segments[0], segments[1:]

	switch typed := node.(type) {
	case nil:
		if idx, err := strconv.Atoi(segment); err == nil {
			if idx < 0 {
				return nil, fmt.Errorf("store: negative index in path %q", path)
			}
			list := make([]any, idx+1)
			child, err := assign(nil, rest, value, path)
			if err != nil {
				return nil, err
			}
			list[idx] = child
			return list, nil
		}
		child, err := assign(nil, rest, value, path)
		if err != nil {
			return nil, err
		}
		return map[string]any{segment: child}, nil

	case map[string]any:
		child, err := assign(typed[segment], rest, value, path)
		if err != nil {
			return nil, err
		}
		typed[segment] = child
		return typed, nil

	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf("store: expected numeric segment, got %q in path %q", segment, path)
		}
		if idx < 0 {
			return nil, fmt.Errorf("store: negative index in path %q", path)
		}
		if idx >= len(typed) {
			typed = append(typed, make([]any, idx+1-len(typed))...)
		}
		child, err := assign(typed[idx], rest, value, path)
		if err != nil {
			return nil, err
		}
		typed[idx] = child
		return typed, nil

	default:
		return nil, fmt.Errorf("store: cannot descend into %T at segment %q of path %q", node, segment, path)
	}
}
