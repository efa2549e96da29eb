package gotemplate_test

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-formstate/pkg/render/template/gotemplate"
)

//go:embed testdata/*.tmpl
var testTemplates embed.FS

func newEngine(t *testing.T, options ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()
	sub, err := fs.Sub(testTemplates, "testdata")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(sub)}, options...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngineRenderTemplate(t *testing.T) {
	engine := newEngine(t)

	var out strings.Builder
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!" || out.String() != got {
		t.Fatalf("unexpected output %q / %q", got, out.String())
	}
}

func TestEngineGlobalContext(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "  staging "},
	}))
	got, err := engine.Render("global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "staging" {
		t.Fatalf("expected staging, got %q", got)
	}
}

func TestEngineRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	got, err := engine.RenderTemplate("filter", map[string]any{"name": "ada", "width": "80"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA! 80px" {
		t.Fatalf("unexpected output %q", got)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestEngineRenderString(t *testing.T) {
	engine := newEngine(t)
	type view struct {
		Name string `json:"name"`
	}
	got, err := engine.Render("Hi {{ name }}", view{Name: "Grace"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hi Grace" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}
