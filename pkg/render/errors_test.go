package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/store"
)

func TestMapErrorsNormalisesPaths(t *testing.T) {
	keys := []string{"name", "owner", "owner.email", "owner.phone", "tags"}
	payload := map[string][]string{
		"/body/name":                 {"Name is required"},
		"body.owner.email":           {"Email invalid", " Email invalid "},
		"$.body.tags[0]":             {"Tags must be unique"},
		"request.payload.owner":      {"Owner missing"},
		"non_field_errors":           {"Form level error"},
		"body/owner/phone/~1number":  {"Phone malformed"},
		"request/body/unknown-field": {"Falls back to form errors"},
		"":                           {"Unscoped form error"},
	}

	mapped := render.MapErrors(keys, payload)

	wantFields := map[string][]string{
		"name":        {"Name is required"},
		"owner.email": {"Email invalid"},
		"tags":        {"Tags must be unique"},
		"owner":       {"Owner missing"},
		"owner.phone": {"Phone malformed"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Unscoped form error", "Form level error", "Falls back to form errors"}
	if diff := cmp.Diff(wantForm, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyErrorsMarksFields(t *testing.T) {
	f := form.New(store.New(map[string]any{"email": "a@b.co"}))
	email := form.NewField("email")
	if err := f.Attach(email); err != nil {
		t.Fatal(err)
	}

	mapping := render.ApplyErrors(f, map[string][]string{"body.email": {"Email already taken"}})
	if email.State() != form.StateError || email.Message() != "Email already taken" {
		t.Fatalf("unexpected field state %q %q", email.State(), email.Message())
	}
	if mapping.Form != nil {
		t.Fatalf("expected no form errors, got %v", mapping.Form)
	}
}

type namedRenderer struct{ render.Renderer }

func (namedRenderer) Name() string { return "HTML" }

func TestRegistry(t *testing.T) {
	registry := render.NewRegistry()
	if err := registry.Register(namedRenderer{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(namedRenderer{}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil renderer to fail")
	}
	if !registry.Has("html") {
		t.Fatalf("expected case-insensitive lookup")
	}
	if _, err := registry.Get("tui"); err == nil {
		t.Fatalf("expected missing renderer error")
	}
	if diff := cmp.Diff([]string{"html"}, registry.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
