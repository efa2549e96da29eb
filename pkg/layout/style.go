package layout

import (
	"sort"
	"strconv"
	"strings"
)

// Style is a set of CSS declarations.
type Style map[string]string

// Get returns the value of property, "" when unset.
func (s Style) Get(property string) string {
	return s[property]
}

// String renders the declarations sorted by property.
func (s Style) String() string {
	if len(s) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for idx, key := range keys {
		if idx > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(s[key])
		b.WriteByte(';')
	}
	return b.String()
}

// AddUnit appends px to bare numbers. Other values, including "auto", are
// returned unchanged.
func AddUnit(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value + "px"
	}
	return value
}

// Pixels parses "120" or "120px".
func Pixels(value string) (float64, bool) {
	value = strings.TrimSuffix(strings.TrimSpace(value), "px")
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func formatPixels(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64) + "px"
}
