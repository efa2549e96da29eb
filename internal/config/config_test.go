package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formstate/pkg/layout"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", `
rules:
  - rules.yaml
model: model.json
layout:
  label_position: top
  label_width: auto
  size: small
validator:
  all_rules: true
  messages:
    required: "%s must be set"
output: json
watch:
  debounce: 250ms
`)

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff([]string{"rules.yaml"}, cfg.Rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if cfg.Model != "model.json" {
		t.Fatalf("model = %q", cfg.Model)
	}
	wantLayout := layout.FormProps{LabelPosition: layout.LabelTop, LabelWidth: "auto", Size: layout.SizeSmall}
	if diff := cmp.Diff(wantLayout, cfg.Layout); diff != "" {
		t.Fatalf("layout mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Validator.AllRules || cfg.Validator.Messages.Required != "%s must be set" {
		t.Fatalf("validator = %+v", cfg.Validator)
	}
	if cfg.Output != OutputJSON {
		t.Fatalf("output = %q", cfg.Output)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Fatalf("debounce = %s", cfg.Watch.Debounce)
	}
	if cfg.Render.Method != "POST" {
		t.Fatalf("render method default lost: %q", cfg.Render.Method)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.HasRules() {
		t.Fatal("expected no rule sources")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "formstate.yaml", "output: text\nlog:\n  level: info\n")
	t.Setenv("FORMSTATE_OUTPUT", "json")
	t.Setenv("FORMSTATE_LOG_LEVEL", "debug")
	t.Setenv("FORMSTATE_OPENAPI_DOCUMENT", "api.yaml")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Output != OutputJSON || cfg.Log.Level != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.OpenAPI.Document != "api.yaml" || !cfg.HasRules() {
		t.Fatalf("openapi override not applied: %+v", cfg.OpenAPI)
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	cases := map[string]Config{
		"output":    {Output: "xml"},
		"size":      {Output: OutputText, Layout: layout.FormProps{Size: "huge"}},
		"position":  {Output: OutputText, Layout: layout.FormProps{LabelPosition: "bottom"}},
		"operation": {Output: OutputText, OpenAPI: OpenAPI{Operation: "createPet"}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
