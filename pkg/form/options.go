package form

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-formstate/pkg/layout"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/validator"
)

// Option configures a Form.
type Option func(*Form)

// WithRuleSet sets the form-level rules keyed by field path.
func WithRuleSet(set rules.Set) Option {
	return func(f *Form) {
		f.rules = set.Clone()
	}
}

// WithValidator replaces the default rule engine.
func WithValidator(v validator.Validator) Option {
	return func(f *Form) {
		if v != nil {
			f.validator = v
		}
	}
}

// WithScroller sets the collaborator that brings fields into view.
func WithScroller(s Scroller) Option {
	return func(f *Form) {
		f.scroller = s
	}
}

// WithScrollToError scrolls to the first failing field after a failed
// Validate.
func WithScrollToError(enabled bool) Option {
	return func(f *Form) {
		f.scrollToError = enabled
	}
}

// WithScrollOptions sets the options passed to the Scroller.
func WithScrollOptions(opts ScrollOptions) Option {
	return func(f *Form) {
		f.scrollOptions = opts
	}
}

// WithValidateOnRuleChange toggles re-validation after SetRules. Enabled by
// default.
func WithValidateOnRuleChange(enabled bool) Option {
	return func(f *Form) {
		f.validateOnRuleChange = enabled
	}
}

// WithLayout sets the form-level layout properties.
func WithLayout(props layout.FormProps) Option {
	return func(f *Form) {
		f.props = props
	}
}

// WithLogger sets the structured logger. Nil keeps the discarding default.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithTracer sets the OpenTelemetry tracer used for validation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(f *Form) {
		if tracer != nil {
			f.tracer = tracer
		}
	}
}

// WithValidateHook registers a callback invoked after every field
// validation that ran at least one rule.
func WithValidateHook(hook ValidateHook) Option {
	return func(f *Form) {
		f.onValidate = hook
	}
}
