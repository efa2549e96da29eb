package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
)

func newFillCommand(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Prompt for every field and print the collected model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			registry, _, err := a.renderers()
			if err != nil {
				return err
			}
			filler, err := registry.Get(tui.Name)
			if err != nil {
				return err
			}
			sess, err := a.newSession(ctx)
			if err != nil {
				return err
			}

			out, err := filler.Render(ctx, sess.form, render.RenderOptions{})
			if verr, ok := form.AsValidationError(err); ok {
				if werr := writeReport(cmd.ErrOrStderr(), a.cfg.Output, newReport(verr)); werr != nil {
					return werr
				}
				return ErrInvalid
			}
			if err != nil {
				return err
			}

			if save {
				if a.cfg.Model == "" {
					return fmt.Errorf("cli: --save needs a model file")
				}
				if err := saveModel(a.cfg.Model, sess.store.Values()); err != nil {
					return err
				}
				a.logger.Info("model saved", "file", a.cfg.Model)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the answers back to the model file")
	return cmd
}

func saveModel(path string, values map[string]any) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(values)
	default:
		data, err = json.MarshalIndent(values, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("cli: encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cli: write model %s: %w", path, err)
	}
	return nil
}
