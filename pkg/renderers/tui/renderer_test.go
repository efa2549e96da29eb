package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/store"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	infoMessages []string
	prompts      []string
	inputPos     int
	passPos      int
	selectPos    int
	multiPos     int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRenderFillsEveryPromptKind(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Ada", "36"},
		passwords: []string{"hunter22"},
		selectIdx: []int{1},
		multiIdx:  [][]int{{0, 2}},
		confirm:   []bool{true},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	model := store.New(map[string]any{})
	f := form.New(model)
	for _, field := range []*form.Field{
		form.NewField("name", form.WithLabel("Name"), form.WithRequired(true)),
		form.NewField("age", form.WithRules(rules.Rule{Type: rules.TypeInteger})),
		form.NewField("password", form.WithLabel("Password")),
		form.NewField("region", form.WithRules(rules.Rule{Enum: []any{"shanghai", "beijing"}})),
		form.NewField("type", form.WithRules(rules.Rule{Type: rules.TypeArray, Enum: []any{"a", "b", "c"}})),
		form.NewField("delivery", form.WithRules(rules.Rule{Type: rules.TypeBoolean})),
	} {
		if err := f.Attach(field); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := r.Render(context.Background(), f, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	want := map[string]any{
		"name":     "Ada",
		"age":      int64(36),
		"password": "hunter22",
		"region":   "beijing",
		"type":     []any{"a", "c"},
		"delivery": true,
	}
	if diff := cmp.Diff(want, model.Values()); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
	if driver.prompts[0] != "Name *" {
		t.Fatalf("expected required marker on prompt, got %q", driver.prompts[0])
	}
}

func TestRenderRepromptsInvalidAnswers(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", "Ada"}}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	f := form.New(store.New(nil))
	if err := f.Attach(form.NewField("name", form.WithLabel("Name"),
		form.WithRules(rules.Rule{Required: true, Message: "Please input name", Trigger: rules.Triggers{rules.TriggerChange}}))); err != nil {
		t.Fatal(err)
	}

	out, err := r.Render(context.Background(), f, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if diff := cmp.Diff([]string{"✗ Please input name"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if string(out) != "Name: Ada\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if r.ContentType() != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRenderStopsAfterMaxAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", ""}}
	r, err := New(WithPromptDriver(driver), WithMaxAttempts(2))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	f := form.New(store.New(nil))
	_ = f.Attach(form.NewField("name", form.WithRequired(true)))

	if _, err := r.Render(context.Background(), f, render.RenderOptions{}); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestRenderFinalValidationFailure(t *testing.T) {
	driver := &stubDriver{inputs: []string{"a"}}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	f := form.New(store.New(nil))
	_ = f.Attach(form.NewField("name", form.WithRules(
		rules.Rule{Min: rules.Ptr(3.0), Message: "too short", Trigger: rules.Triggers{rules.TriggerBlur}},
	)))

	_, err = r.Render(context.Background(), f, render.RenderOptions{})
	verr, ok := form.AsValidationError(err)
	if !ok || !verr.Has("name") {
		t.Fatalf("expected blur rule to fail final validation, got %v", err)
	}
}

type readOnlyModel struct{}

func (readOnlyModel) Get(string) (any, bool)  { return nil, false }
func (readOnlyModel) Reset(string, any) error { return nil }

func TestRenderRequiresWritableModel(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(context.Background(), form.New(readOnlyModel{}), render.RenderOptions{}); !errors.Is(err, ErrModelNotWritable) {
		t.Fatalf("expected ErrModelNotWritable, got %v", err)
	}
	if _, err := New(WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
