package cli

import (
	"fmt"
	"os"
	"sort"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
	"github.com/goliatone/go-formstate/pkg/renderers/vanilla"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		name       string
		validate   bool
		errorsFile string
		outFile    string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the form with a registered renderer (HTML by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			registry, html, err := a.renderers()
			if err != nil {
				return err
			}
			chosen, err := registry.Get(name)
			if err != nil {
				return fmt.Errorf("%w (available: %v)", err, registry.Names())
			}

			sess, err := a.newSession(ctx, form.WithScroller(html), form.WithScrollToError(validate))
			if err != nil {
				return err
			}
			if validate {
				if err := sess.form.Validate(ctx); err != nil {
					if _, ok := form.AsValidationError(err); !ok {
						return err
					}
				}
			}

			opts := render.RenderOptions{
				Action: a.cfg.Render.Action,
				Method: a.cfg.Render.Method,
				Title:  a.cfg.Render.Title,
			}
			if errorsFile != "" {
				if opts.Errors, err = loadErrors(errorsFile); err != nil {
					return err
				}
			}

			out, err := chosen.Render(ctx, sess.form, opts)
			if err != nil {
				return err
			}
			if outFile != "" {
				if err := os.WriteFile(outFile, out, 0o644); err != nil {
					return fmt.Errorf("cli: write %s: %w", outFile, err)
				}
				a.logger.Info("form rendered", "renderer", chosen.Name(), "file", outFile, "bytes", len(out))
				return nil
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "renderer", vanilla.Name, "renderer name")
	flags.BoolVar(&validate, "validate", false, "validate before rendering so field errors show")
	flags.StringVar(&errorsFile, "errors", "", "server error payload (JSON or YAML) to overlay")
	flags.StringVar(&outFile, "out", "", "write output to this file instead of stdout")
	return cmd
}

// renderers registers the HTML and terminal renderers. The HTML renderer is
// also returned so it can act as the form scroller.
func (a *app) renderers() (*render.Registry, *vanilla.Renderer, error) {
	html, err := a.htmlRenderer()
	if err != nil {
		return nil, nil, err
	}
	terminal, err := a.terminalRenderer()
	if err != nil {
		return nil, nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, nil, err
	}
	if err := registry.Register(terminal); err != nil {
		return nil, nil, err
	}
	return registry, html, nil
}

func (a *app) htmlRenderer() (*vanilla.Renderer, error) {
	opts := []vanilla.Option{vanilla.WithLogger(a.logger)}
	if dir := a.cfg.Render.Templates; dir != "" {
		opts = append(opts, vanilla.WithTemplatesDir(dir))
	}
	if a.cfg.Render.Theme != "" || len(a.cfg.Render.Tokens) > 0 {
		manifest := &theme.Manifest{Name: a.cfg.Render.Theme, Tokens: a.cfg.Render.Tokens}
		opts = append(opts, vanilla.WithTheme(vanilla.ThemeFromManifest(manifest, a.cfg.Render.Variant)))
	}
	return vanilla.New(opts...)
}

func (a *app) terminalRenderer() (*tui.Renderer, error) {
	driver := a.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(a.errOut)
	}
	format := tui.OutputFormatPrettyText
	if a.cfg.Output == config.OutputJSON {
		format = tui.OutputFormatJSON
	}
	return tui.New(
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(format),
		tui.WithTheme(tui.Theme{ErrorPrefix: "✗ "}),
		tui.WithLogger(a.logger),
	)
}

// loadErrors reads a server error payload mapping paths to one message or a
// list of messages.
func loadErrors(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: read errors %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("cli: parse errors %s: %w", path, err)
	}
	payload := make(map[string][]string, len(raw))
	flattenErrors("", raw, payload)
	return payload, nil
}

func flattenErrors(prefix string, raw map[string]any, out map[string][]string) {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		switch v := raw[key].(type) {
		case string:
			out[path] = append(out[path], v)
		case []any:
			for _, item := range v {
				out[path] = append(out[path], fmt.Sprint(item))
			}
		case map[string]any:
			flattenErrors(path, v, out)
		case nil:
		default:
			out[path] = append(out[path], fmt.Sprint(v))
		}
	}
}
