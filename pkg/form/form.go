package form

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/goliatone/go-formstate/pkg/layout"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/store"
	"github.com/goliatone/go-formstate/pkg/validator"
)

// Model is the read/reset view of the form data the coordinator needs.
// *store.Store satisfies it.
type Model interface {
	Get(path string) (any, bool)
	Reset(path string, value any) error
}

// Unsetter models can remove a key. ResetFields uses it for keys that were
// absent when the field attached; other models leave such keys untouched.
type Unsetter interface {
	Unset(path string) error
}

// Observable models publish their changes; Watch requires one.
type Observable interface {
	Subscribe(ctx context.Context) store.Subscriber
}

// ScrollOptions mirror the usual scroll-into-view parameters.
type ScrollOptions struct {
	Behavior string `json:"behavior,omitempty"`
	Block    string `json:"block,omitempty"`
	Inline   string `json:"inline,omitempty"`
}

// Scroller brings the element backing a field into view. Renderers
// implement it.
type Scroller interface {
	ScrollIntoView(field *Field, opts ScrollOptions) error
}

// ScrollerFunc adapts a function into a Scroller.
type ScrollerFunc func(field *Field, opts ScrollOptions) error

// ScrollIntoView calls the underlying function.
func (fn ScrollerFunc) ScrollIntoView(field *Field, opts ScrollOptions) error {
	return fn(field, opts)
}

// ValidateHook observes individual field outcomes.
type ValidateHook func(key string, valid bool, message string)

// Form is the validation coordinator for a set of attached fields.
type Form struct {
	registry  *Registry
	model     Model
	validator validator.Validator
	scroller  Scroller
	logger    *slog.Logger
	tracer    trace.Tracer

	onValidate           ValidateHook
	props                layout.FormProps
	scrollToError        bool
	scrollOptions        ScrollOptions
	validateOnRuleChange bool

	mu    sync.RWMutex
	rules rules.Set
}

// New constructs a Form over model. A nil model gets an empty store.
func New(model Model, options ...Option) *Form {
	if model == nil {
		model = store.New(nil)
	}
	f := &Form{
		registry:             NewRegistry(),
		model:                model,
		validator:            validator.New(),
		logger:               slog.New(slog.DiscardHandler),
		tracer:               noop.NewTracerProvider().Tracer("go-formstate"),
		validateOnRuleChange: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Attach registers field with the form and, the first time, snapshots its
// model value for ResetFields.
func (f *Form) Attach(field *Field) error {
	if err := f.registry.Register(field); err != nil {
		return err
	}
	field.bind(f)
	f.logger.Debug("form field attached", slog.String("key", field.Key()), slog.String("id", field.ID()))
	return nil
}

// Detach unregisters field. Unknown fields are ignored.
func (f *Form) Detach(field *Field) {
	if !f.registry.Unregister(field) {
		return
	}
	field.unbind()
	f.logger.Debug("form field detached", slog.String("key", field.Key()), slog.String("id", field.ID()))
}

// Fields returns the attached fields in registration order.
func (f *Form) Fields() []*Field {
	return f.registry.FieldsMatching()
}

// Field returns the attached field for key.
func (f *Form) Field(key string) (*Field, bool) {
	return f.registry.Lookup(key)
}

// Registry exposes the field registry.
func (f *Form) Registry() *Registry {
	return f.registry
}

// Model returns the bound model.
func (f *Form) Model() Model {
	return f.model
}

// Layout returns the form-level layout properties.
func (f *Form) Layout() layout.FormProps {
	return f.props
}

// Rules returns a copy of the form-level rule set.
func (f *Form) Rules() rules.Set {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rules.Clone()
}

// SetRules replaces the form-level rules. With validate-on-rule-change
// enabled the attached fields are re-validated; failures only update the
// field messages.
func (f *Form) SetRules(ctx context.Context, set rules.Set) {
	f.mu.Lock()
	f.rules = set.Clone()
	f.mu.Unlock()

	if !f.validateOnRuleChange || f.registry.Len() == 0 {
		return
	}
	if err := f.Validate(ctx); err != nil {
		f.logger.Debug("form rules changed, validation failed", slog.String("error", err.Error()))
	}
}
