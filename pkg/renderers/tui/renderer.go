// Package tui fills a form interactively on the terminal. Every attached
// field is prompted in order, answers are written to the form model and
// checked with the change trigger, and a final full validation decides the
// outcome.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/rules"
)

// Name is the registry name of the renderer.
const Name = "tui"

// Writer is the part of the model the filler needs to store answers.
// *store.Store satisfies it.
type Writer interface {
	Set(path string, value any) error
}

// Snapshotter models can report every value, used for JSON output.
type Snapshotter interface {
	Values() map[string]any
}

// Renderer prompts for each field and serialises the result.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	maxAttempts  int
	theme        Theme
	logger       *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer. Without a driver the survey terminal driver
// is used.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxAttempts:  3,
		theme:        Theme{ErrorPrefix: "✗ "},
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unsupported output format %q", r.outputFormat)
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render runs the prompts. A final validation failure is returned as the
// *form.ValidationError alongside no output.
func (r *Renderer) Render(ctx context.Context, f *form.Form, _ render.RenderOptions) ([]byte, error) {
	if f == nil {
		return nil, errors.New("tui: form is nil")
	}
	writer, ok := f.Model().(Writer)
	if !ok {
		return nil, ErrModelNotWritable
	}

	for _, field := range f.Fields() {
		if field.Key() == "" {
			continue
		}
		if err := r.fill(ctx, f, writer, field); err != nil {
			return nil, err
		}
	}

	if err := f.Validate(ctx); err != nil {
		return nil, err
	}
	return r.output(f)
}

func (r *Renderer) fill(ctx context.Context, f *form.Form, writer Writer, field *form.Field) error {
	for attempt := 1; ; attempt++ {
		value, err := r.ask(ctx, f, field)
		if err != nil {
			return fmt.Errorf("tui: prompt %q: %w", field.Key(), err)
		}
		if err := writer.Set(field.Key(), value); err != nil {
			return fmt.Errorf("tui: store %q: %w", field.Key(), err)
		}
		message, err := f.ValidateField(ctx, field.Key(), rules.TriggerChange)
		if err != nil {
			return err
		}
		if message == "" {
			return nil
		}

		r.logger.Debug("tui answer rejected", slog.String("key", field.Key()), slog.Int("attempt", attempt))
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
			return err
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Key())
		}
	}
}

func (r *Renderer) ask(ctx context.Context, f *form.Form, field *form.Field) (any, error) {
	list := field.Rules()
	message := promptMessage(field)
	current, _ := f.Model().Get(field.Key())
	kind := ruleType(list)
	options := enumOptions(list)

	switch {
	case kind == rules.TypeBoolean:
		def, _ := current.(bool)
		return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: def})
	case kind == rules.TypeArray && len(options) > 0:
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: selectedIndices(options, current),
		})
		if err != nil {
			return nil, err
		}
		out := make([]any, 0, len(indices))
		for _, idx := range indices {
			out = append(out, options[idx])
		}
		return out, nil
	case len(options) > 0:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, fmt.Sprint(current)),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(options) {
			return nil, fmt.Errorf("tui: selection %d out of range", idx)
		}
		return enumValue(list, options[idx]), nil
	}

	cfg := InputConfig{Message: message, Default: stringValue(current)}
	var (
		answer string
		err    error
	)
	if isSecret(field.Key()) {
		answer, err = r.driver.Password(ctx, cfg)
	} else {
		answer, err = r.driver.Input(ctx, cfg)
	}
	if err != nil {
		return nil, err
	}
	return convert(kind, answer), nil
}

func (r *Renderer) output(f *form.Form) ([]byte, error) {
	values := make(map[string]any)
	if snap, ok := f.Model().(Snapshotter); ok {
		values = snap.Values()
	} else {
		for _, field := range f.Fields() {
			if field.Key() == "" {
				continue
			}
			if value, ok := f.Model().Get(field.Key()); ok {
				values[field.Key()] = value
			}
		}
	}

	if r.outputFormat == OutputFormatJSON {
		return json.MarshalIndent(values, "", "  ")
	}

	var b strings.Builder
	for _, field := range f.Fields() {
		if field.Key() == "" {
			continue
		}
		value, _ := f.Model().Get(field.Key())
		label := field.Label()
		if label == "" {
			label = field.Key()
		}
		fmt.Fprintf(&b, "%s%s: %s\n", r.theme.InfoPrefix, label, stringValue(value))
	}
	return []byte(b.String()), nil
}

func promptMessage(field *form.Field) string {
	label := field.Label()
	if label == "" {
		label = field.Key()
	}
	if field.IsRequired() {
		return label + " *"
	}
	return label
}

func ruleType(list []rules.Rule) rules.Type {
	for _, rule := range list {
		if rule.Type != "" {
			return rule.Type
		}
	}
	return ""
}

func enumOptions(list []rules.Rule) []string {
	for _, rule := range list {
		if len(rule.Enum) == 0 {
			continue
		}
		out := make([]string, 0, len(rule.Enum))
		for _, value := range rule.Enum {
			out = append(out, fmt.Sprint(value))
		}
		return out
	}
	return nil
}

// enumValue returns the declared enum member so numeric enums keep their
// type.
func enumValue(list []rules.Rule, option string) any {
	for _, rule := range list {
		for _, value := range rule.Enum {
			if fmt.Sprint(value) == option {
				return value
			}
		}
	}
	return option
}

func selectedIndices(options []string, current any) []int {
	items, ok := current.([]any)
	if !ok {
		return nil
	}
	var out []int
	for _, item := range items {
		if idx := indexOf(options, fmt.Sprint(item)); idx >= 0 {
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}

func convert(kind rules.Type, answer string) any {
	trimmed := strings.TrimSpace(answer)
	switch kind {
	case rules.TypeInteger:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
	case rules.TypeNumber, rules.TypeFloat:
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return n
		}
	}
	return answer
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func isSecret(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "password") || strings.Contains(lower, "secret")
}
