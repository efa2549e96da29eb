// Package cli implements the formstate command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
)

// ErrInvalid is returned when the model fails validation. The report has
// already been printed.
var ErrInvalid = errors.New("cli: model is invalid")

// Exit codes.
const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitError   = 2
)

// Option configures the command tree.
type Option func(*app)

// WithOutput redirects standard output and error.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *app) {
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.errOut = errOut
		}
	}
}

// WithInput sets the reader used by interactive prompts.
func WithInput(in io.Reader) Option {
	return func(a *app) {
		if in != nil {
			a.in = in
		}
	}
}

// WithPromptDriver replaces the survey prompt driver used by fill.
func WithPromptDriver(driver tui.PromptDriver) Option {
	return func(a *app) {
		a.driver = driver
	}
}

type app struct {
	out        io.Writer
	errOut     io.Writer
	in         io.Reader
	driver     tui.PromptDriver
	v          *viper.Viper
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

// NewRootCommand builds the formstate command tree.
func NewRootCommand(options ...Option) *cobra.Command {
	a := &app{
		out:    os.Stdout,
		errOut: os.Stderr,
		in:     os.Stdin,
		v:      viper.New(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}

	root := &cobra.Command{
		Use:           "formstate",
		Short:         "Validate, render and fill forms described by rule files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.SetIn(a.in)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./formstate.yaml)")
	flags.StringSlice("rules", nil, "rule files or directories")
	flags.String("model", "", "model file (JSON or YAML)")
	flags.String("openapi", "", "OpenAPI document providing rules")
	flags.String("operation", "", "OpenAPI operation id")
	flags.Bool("validate-openapi", false, "validate the OpenAPI document before deriving rules")
	flags.StringP("output", "o", "", "output format: text or json")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	for key, flag := range map[string]string{
		"rules":             "rules",
		"model":             "model",
		"openapi.document":  "openapi",
		"openapi.operation": "operation",
		"openapi.validate":  "validate-openapi",
		"output":            "output",
		"log.level":         "log-level",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newValidateCommand(a),
		newRenderCommand(a),
		newFillCommand(a),
		newWatchCommand(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(a.errOut, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("config loaded", "file", a.v.ConfigFileUsed(), "rules", len(cfg.Rules), "openapi", cfg.OpenAPI.Document)
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("cli: log level %q: %w", level, err)
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          "formstate",
		Level:           lvl,
		ReportTimestamp: true,
	})
	return slog.New(handler), nil
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, options ...Option) error {
	root := NewRootCommand(options...)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalid):
		return ExitInvalid
	default:
		return ExitError
	}
}
