// Package formstate wires the field registry, validation coordinator and
// store into ready-to-use forms. The building blocks live under pkg/; this
// package offers the common constructors.
package formstate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/form"
	pkgopenapi "github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/vanilla"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/store"
)

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// ValidationError aliases form.ValidationError.
type ValidationError = form.ValidationError

// LoadRules reads rule documents from files or directories and merges them.
// A path defined by two sources is an error.
func LoadRules(paths ...string) (rules.Set, error) {
	set := make(rules.Set)
	origin := make(map[string]string)
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("formstate: rules %s: %w", path, err)
		}
		var loaded rules.Set
		if info.IsDir() {
			loaded, err = rules.LoadFS(os.DirFS(path))
		} else {
			loaded, err = rules.LoadFile(path)
		}
		if err != nil {
			return nil, err
		}
		for key, list := range loaded {
			if prev, exists := origin[key]; exists {
				return nil, fmt.Errorf("formstate: duplicate rule path %q (%s and %s)", key, prev, path)
			}
			origin[key] = path
			set[key] = list
		}
	}
	return set, nil
}

// LoadModel reads a JSON or YAML object used as the initial model.
func LoadModel(path string) (map[string]any, error) {
	if !isModelFile(path) {
		return nil, fmt.Errorf("formstate: model %s: unsupported extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formstate: read model %s: %w", path, err)
	}
	return ParseModel(data, path)
}

// ParseModel decodes a JSON or YAML object. source names the data in errors.
func ParseModel(data []byte, source string) (map[string]any, error) {
	values := make(map[string]any)
	if len(strings.TrimSpace(string(data))) == 0 {
		return values, nil
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("formstate: parse model %s: %w", source, err)
	}
	return values, nil
}

// NewForm seeds a store with values and attaches one field per rule path in
// lexical order. Options apply to the form; WithRuleSet is implied.
func NewForm(values map[string]any, set rules.Set, options ...form.Option) (*form.Form, *store.Store, error) {
	model := store.New(values)
	opts := append([]form.Option{form.WithRuleSet(set)}, options...)
	f := form.New(model, opts...)

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := f.Attach(form.NewField(key, form.WithLabel(Label(key)))); err != nil {
			return nil, nil, err
		}
	}
	return f, model, nil
}

// NewFormFromOpenAPI derives rules and defaults from the request body of
// operationID and builds a form over them. Entries in values override the
// schema defaults.
func NewFormFromOpenAPI(ctx context.Context, raw []byte, operationID string, values map[string]any, options ...form.Option) (*form.Form, *store.Store, error) {
	set, defaults, err := pkgopenapi.RulesFromDocument(ctx, raw, operationID)
	if err != nil {
		return nil, nil, err
	}
	return NewForm(MergeValues(defaults, values), set, options...)
}

// MergeValues overlays override onto base. Nested objects merge key by key;
// every other value in override replaces the base value.
func MergeValues(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		left, lok := out[key].(map[string]any)
		right, rok := value.(map[string]any)
		if lok && rok {
			out[key] = MergeValues(left, right)
			continue
		}
		out[key] = value
	}
	return out
}

// Label turns the last segment of a dotted path into a display label.
func Label(key string) string {
	segment := key
	if idx := strings.LastIndex(key, "."); idx >= 0 {
		segment = key[idx+1:]
	}
	segment = strings.NewReplacer("_", " ", "-", " ").Replace(segment)
	if segment == "" {
		return key
	}
	return strings.ToUpper(segment[:1]) + segment[1:]
}

// RenderHTML renders f with the vanilla renderer.
func RenderHTML(ctx context.Context, f *form.Form, opts RenderOptions, options ...vanilla.Option) ([]byte, error) {
	renderer, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, f, opts)
}

// EmbeddedTemplates exposes the built-in vanilla templates so callers can
// extend or override them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

func isModelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
