// Package vanilla renders a form as plain HTML using the embedded pongo2
// template and the class/style rules of the layout package.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/layout"
	"github.com/goliatone/go-formstate/pkg/render"
	rendertemplate "github.com/goliatone/go-formstate/pkg/render/template"
	"github.com/goliatone/go-formstate/pkg/render/template/gotemplate"
)

// Name is the registry name of the renderer.
const Name = "vanilla"

const formTemplate = "form"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	theme            *theme.RendererConfig
	measurer         layout.Measurer
	logger           *slog.Logger
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTheme applies a resolved theme. The namespace token replaces the class
// prefix and the CSS variables are emitted on the form element.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithMeasurer replaces the label measurer used for auto label widths.
func WithMeasurer(m layout.Measurer) Option {
	return func(cfg *config) {
		cfg.measurer = m
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

type scrollMark struct {
	key   string
	block string
}

// Renderer is the HTML renderer. It also implements form.Scroller: the
// requested field is marked with data-scroll-into-view on the next render so
// a client script can scroll to it.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	theme     *theme.RendererConfig
	measurer  layout.Measurer
	logger    *slog.Logger
	policy    *bluemonday.Policy

	mu     sync.Mutex
	scroll *scrollMark
}

var (
	_ render.Renderer = (*Renderer)(nil)
	_ form.Scroller   = (*Renderer)(nil)
)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		measurer:   layout.NewRuneWidthMeasurer(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates: renderer,
		theme:     cfg.theme,
		measurer:  cfg.measurer,
		logger:    cfg.logger,
		policy:    bluemonday.StrictPolicy(),
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// ScrollIntoView marks field for the next render.
func (r *Renderer) ScrollIntoView(field *form.Field, opts form.ScrollOptions) error {
	if field == nil {
		return form.ErrNilField
	}
	block := opts.Block
	if block == "" {
		block = "start"
	}
	r.mu.Lock()
	r.scroll = &scrollMark{key: field.Key(), block: block}
	r.mu.Unlock()
	return nil
}

// Render executes the form template. Server errors in options are shown on
// the matching items without changing the field state.
func (r *Renderer) Render(ctx context.Context, f *form.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if f == nil {
		return nil, fmt.Errorf("vanilla renderer: form is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := r.view(f, options)
	result, err := r.templates.RenderTemplate(formTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	r.logger.Debug("vanilla form rendered", slog.Int("fields", len(f.Fields())), slog.Int("bytes", len(result)))
	return []byte(result), nil
}

func (r *Renderer) namespace() string {
	if r.theme != nil {
		if ns := strings.TrimSpace(r.theme.Tokens[NamespaceToken]); ns != "" {
			return ns
		}
	}
	return layout.DefaultNamespace
}

func (r *Renderer) takeScroll() *scrollMark {
	r.mu.Lock()
	defer r.mu.Unlock()
	mark := r.scroll
	r.scroll = nil
	return mark
}
