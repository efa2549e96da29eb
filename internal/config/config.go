// Package config loads the formstate CLI configuration from formstate.yaml,
// FORMSTATE_ environment variables and command flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/goliatone/go-formstate/pkg/layout"
	"github.com/goliatone/go-formstate/pkg/validator"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "FORMSTATE"

// FileName is the config file looked up when no explicit path is given.
const FileName = "formstate"

// Config is the resolved CLI configuration.
type Config struct {
	Rules     []string         `mapstructure:"rules"`
	Model     string           `mapstructure:"model"`
	OpenAPI   OpenAPI          `mapstructure:"openapi"`
	Layout    layout.FormProps `mapstructure:"layout"`
	Validator Validator        `mapstructure:"validator"`
	Render    Render           `mapstructure:"render"`
	Output    string           `mapstructure:"output"`
	Log       Log              `mapstructure:"log"`
	Watch     Watch            `mapstructure:"watch"`
}

// OpenAPI points at a document whose request body schema yields rules.
type OpenAPI struct {
	Document     string `mapstructure:"document"`
	Operation    string `mapstructure:"operation"`
	ExternalRefs bool   `mapstructure:"external_refs"`
	Validate     bool   `mapstructure:"validate"`
}

// Validator tunes the default rule engine.
type Validator struct {
	AllRules bool               `mapstructure:"all_rules"`
	Messages validator.Messages `mapstructure:"messages"`
}

// Render configures the HTML renderer.
type Render struct {
	Templates string            `mapstructure:"templates"`
	Action    string            `mapstructure:"action"`
	Method    string            `mapstructure:"method"`
	Title     string            `mapstructure:"title"`
	Theme     string            `mapstructure:"theme"`
	Variant   string            `mapstructure:"variant"`
	Tokens    map[string]string `mapstructure:"tokens"`
}

// Log configures the CLI logger.
type Log struct {
	Level string `mapstructure:"level"`
}

// Watch configures the model file watcher.
type Watch struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Layout: layout.FormProps{
			LabelPosition: layout.LabelRight,
			Size:          layout.SizeDefault,
		},
		Render: Render{Method: "POST"},
		Output: OutputText,
		Log:    Log{Level: "info"},
		Watch:  Watch{Debounce: 100 * time.Millisecond},
	}
}

// SetDefaults registers Defaults on v so env overrides resolve for keys that
// never appear in a file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("rules", []string{})
	v.SetDefault("model", "")
	v.SetDefault("openapi.document", "")
	v.SetDefault("openapi.operation", "")
	v.SetDefault("openapi.external_refs", false)
	v.SetDefault("openapi.validate", false)
	v.SetDefault("layout.label_position", string(d.Layout.LabelPosition))
	v.SetDefault("layout.label_width", "")
	v.SetDefault("layout.size", string(d.Layout.Size))
	v.SetDefault("layout.inline", false)
	v.SetDefault("validator.all_rules", false)
	v.SetDefault("render.method", d.Render.Method)
	v.SetDefault("render.templates", "")
	v.SetDefault("render.theme", "")
	v.SetDefault("render.variant", "")
	v.SetDefault("output", d.Output)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// Load reads path (or formstate.yaml from the working directory when path is
// empty) into v and decodes the result. A missing default file is not an
// error; a missing explicit file is.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s: %w", describe(path), err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be acted on.
func (c Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("config: unknown output %q", c.Output)
	}
	if c.Layout.Size != "" && !c.Layout.Size.Valid() {
		return fmt.Errorf("config: unknown layout size %q", c.Layout.Size)
	}
	switch c.Layout.LabelPosition {
	case "", layout.LabelLeft, layout.LabelRight, layout.LabelTop:
	default:
		return fmt.Errorf("config: unknown label position %q", c.Layout.LabelPosition)
	}
	if c.OpenAPI.Operation != "" && c.OpenAPI.Document == "" {
		return errors.New("config: openapi.operation requires openapi.document")
	}
	return nil
}

// HasRules reports whether any rule source is configured.
func (c Config) HasRules() bool {
	return len(c.Rules) > 0 || c.OpenAPI.Document != ""
}

func describe(path string) string {
	if path == "" {
		return FileName + ".yaml"
	}
	return path
}
