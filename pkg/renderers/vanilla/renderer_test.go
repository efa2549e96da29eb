package vanilla_test

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/layout"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/vanilla"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/store"
)

func newForm(t *testing.T, props layout.FormProps, values map[string]any, fields ...*form.Field) *form.Form {
	t.Helper()
	f := form.New(store.New(values), form.WithLayout(props))
	for _, field := range fields {
		if err := f.Attach(field); err != nil {
			t.Fatalf("attach: %v", err)
		}
	}
	return f
}

func renderForm(t *testing.T, r *vanilla.Renderer, f *form.Form, opts render.RenderOptions) string {
	t.Helper()
	out, err := r.Render(context.Background(), f, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func assertContains(t *testing.T, html string, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected output to contain %q\n%s", fragment, html)
		}
	}
}

func TestRenderLabelWidth(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	f := newForm(t, layout.FormProps{LabelWidth: "80px"}, map[string]any{"name": ""},
		form.NewField("name", form.WithLabel("Activity Name")))

	html := renderForm(t, r, f, render.RenderOptions{Action: "/activities"})
	assertContains(t, html,
		`<form class="el-form el-form--label-right el-form--default"`,
		`action="/activities" method="post"`,
		`class="el-form-item__label" for="formstate-name" style="width: 80px;">Activity Name</label>`,
		`class="el-form-item__content" style="margin-left: 80px;"`,
		`name="name" value=""`,
	)
	if r.Name() != "vanilla" || !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected renderer identity")
	}
}

func TestRenderValidationState(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	required := rules.Rule{Required: true, Message: "Please input name"}
	f := newForm(t, layout.FormProps{Size: layout.SizeSmall}, map[string]any{"name": "", "nick": ""},
		form.NewField("name", form.WithLabel("Name"), form.WithRules(required)),
		form.NewField("nick", form.WithLabel("Nick"), form.WithRules(required), form.WithShowMessage(false)),
	)
	_ = f.Validate(context.Background())

	html := renderForm(t, r, f, render.RenderOptions{})
	assertContains(t, html,
		`class="el-form-item el-form-item--small is-error is-required asterisk-left" data-field="name"`,
		`<div class="el-form-item__error" role="alert">Please input name</div>`,
	)
	if strings.Count(html, "el-form-item__error") != 1 {
		t.Fatalf("expected a single visible error\n%s", html)
	}
}

func TestRenderServerErrorsAndSanitising(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	f := newForm(t, layout.FormProps{}, map[string]any{"email": "a@b.co"},
		form.NewField("email", form.WithLabel(`<script>alert(1)</script>E-mail`)))

	html := renderForm(t, r, f, render.RenderOptions{Errors: map[string][]string{
		"/body/email": {"Email already taken"},
		"__all__":     {"Try again later"},
	}})
	assertContains(t, html,
		`>E-mail</label>`,
		`Email already taken`,
		`<p class="el-form__error" role="alert">Try again later</p>`,
		`value="a@b.co"`,
	)
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected label markup to be stripped\n%s", html)
	}
	field, _ := f.Field("email")
	if field.State() != form.StateNone {
		t.Fatalf("server errors must not change field state")
	}
}

func TestRenderThemeNamespace(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"namespace": "acme", "brand": "#123456"},
		Variants: map[string]theme.Variant{
			"dark": {Tokens: map[string]string{"brand": "#654321"}},
		},
	}
	r, err := vanilla.New(vanilla.WithTheme(vanilla.ThemeFromManifest(manifest, "dark")))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	f := newForm(t, layout.FormProps{Inline: true}, nil, form.NewField("name", form.WithLabel("Name")))

	html := renderForm(t, r, f, render.RenderOptions{})
	assertContains(t, html,
		`class="acme-form acme-form--label-right acme-form--default acme-form--inline"`,
		`style="--brand: #654321;"`,
		`class="acme-form-item acme-form-item--default asterisk-left"`,
	)
}

func TestScrollIntoViewMarksNextRender(t *testing.T) {
	r, err := vanilla.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	f := form.New(store.New(nil), form.WithScroller(r), form.WithScrollOptions(form.ScrollOptions{Block: "center"}))
	if err := f.Attach(form.NewField("name")); err != nil {
		t.Fatal(err)
	}

	f.ScrollToField("name")
	html := renderForm(t, r, f, render.RenderOptions{})
	assertContains(t, html, `data-field="name" data-scroll-into-view="center"`)

	again := renderForm(t, r, f, render.RenderOptions{})
	if strings.Contains(again, "data-scroll-into-view") {
		t.Fatalf("expected scroll mark to be consumed")
	}
}

func TestThemeFromManifestAssets(t *testing.T) {
	cfg := vanilla.ThemeFromManifest(&theme.Manifest{
		Name:   "acme",
		Assets: theme.Assets{Prefix: "/assets/acme/", Files: map[string]string{"stylesheet": "theme.css"}},
	}, "")
	if got := cfg.AssetURL("stylesheet"); got != "/assets/acme/theme.css" {
		t.Fatalf("unexpected asset url %q", got)
	}
	if cfg.AssetURL("missing") != "" {
		t.Fatalf("expected empty url for missing asset")
	}
	if vanilla.ThemeFromManifest(nil, "") != nil {
		t.Fatalf("expected nil config for nil manifest")
	}
}
