package form

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formstate/pkg/layout"
	"github.com/goliatone/go-formstate/pkg/rules"
)

// State is the validation status of a field.
type State string

const (
	StateNone       State = ""
	StateValidating State = "validating"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// FieldOption configures a Field.
type FieldOption func(*Field)

// WithLabel sets the display label.
func WithLabel(label string) FieldOption {
	return func(f *Field) {
		f.label = label
	}
}

// WithRules attaches item-level rules. They run before the form-level rules
// registered for the same key.
func WithRules(list ...rules.Rule) FieldOption {
	return func(f *Field) {
		f.rules = append(f.rules, list...)
	}
}

// WithRequired overrides the required flag of the resolved rules.
func WithRequired(required bool) FieldOption {
	return func(f *Field) {
		f.required = &required
	}
}

// WithShowMessage controls whether renderers display the stored message. The
// message is recorded either way.
func WithShowMessage(show bool) FieldOption {
	return func(f *Field) {
		f.showMessage = &show
	}
}

// WithLabelWidth overrides the form label width for this field ("120px",
// "120", "auto").
func WithLabelWidth(width string) FieldOption {
	return func(f *Field) {
		f.labelWidth = width
	}
}

// WithSize overrides the form size for this field.
func WithSize(size layout.Size) FieldOption {
	return func(f *Field) {
		f.size = size
	}
}

// Field is a single validatable input bound to one model key. Layout-only
// fields use an empty key; they register but never validate.
type Field struct {
	id          string
	key         string
	label       string
	rules       []rules.Rule
	required    *bool
	showMessage *bool
	labelWidth  string
	size        layout.Size

	mu       sync.RWMutex
	message  string
	state    State
	form     *Form
	initial  any
	present  bool
	captured bool
}

// NewField constructs a field for key.
func NewField(key string, options ...FieldOption) *Field {
	f := &Field{
		id:  uuid.NewString(),
		key: key,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

func (f *Field) ID() string         { return f.id }
func (f *Field) Key() string        { return f.key }
func (f *Field) Label() string      { return f.label }
func (f *Field) LabelWidth() string { return f.labelWidth }
func (f *Field) Size() layout.Size  { return f.size }

// ShowMessage reports whether renderers should display the message.
func (f *Field) ShowMessage() bool {
	return f.showMessage == nil || *f.showMessage
}

// Message returns the stored validation message.
func (f *Field) Message() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.message
}

// State returns the current validation status.
func (f *Field) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// IsValidating reports whether a validation is in flight.
func (f *Field) IsValidating() bool {
	return f.State() == StateValidating
}

// Rules returns the resolved rule list: item rules, then form rules for the
// key, with the required override applied.
func (f *Field) Rules() []rules.Rule {
	var formRules []rules.Rule
	if form := f.owner(); form != nil && f.key != "" {
		formRules = form.Rules().For(f.key)
	}
	return rules.Compose(f.rules, formRules, f.required)
}

// IsRequired reports whether any resolved rule is required.
func (f *Field) IsRequired() bool {
	return rules.IsRequired(f.Rules())
}

// Validate runs the field rules filtered by trigger. It returns the failure
// message, "" when valid.
func (f *Field) Validate(ctx context.Context, trigger rules.Trigger) (string, error) {
	form := f.owner()
	if form == nil {
		return "", ErrNotAttached
	}
	messages, err := form.validateField(ctx, f, trigger)
	if err != nil || len(messages) == 0 {
		return "", err
	}
	return messages[0], nil
}

// ResetField restores the initial model value and clears the message.
func (f *Field) ResetField() error {
	form := f.owner()
	if form == nil {
		return ErrNotAttached
	}
	return form.resetField(f)
}

// ClearValidate drops the message and status without running rules.
func (f *Field) ClearValidate() {
	f.setState(StateNone, "")
}

// SetError marks the field as failed with an externally supplied message,
// for example a server-side error. An empty message clears the field.
func (f *Field) SetError(message string) {
	if message == "" {
		f.ClearValidate()
		return
	}
	f.setState(StateError, message)
}

// Layout describes the field for layout computation.
func (f *Field) Layout() layout.ItemProps {
	f.mu.RLock()
	state, message := f.state, f.message
	f.mu.RUnlock()

	show := f.ShowMessage()
	return layout.ItemProps{
		Label:       f.label,
		LabelWidth:  f.labelWidth,
		Size:        f.size,
		Required:    f.IsRequired(),
		Status:      layout.Status(state),
		Message:     message,
		ShowMessage: &show,
	}
}

func (f *Field) setState(state State, message string) {
	f.mu.Lock()
	f.state = state
	f.message = message
	f.mu.Unlock()
}

func (f *Field) owner() *Form {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.form
}

func (f *Field) bind(form *Form) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.form = form
	if f.captured || form == nil || f.key == "" || form.model == nil {
		return
	}
	if value, ok := form.model.Get(f.key); ok {
		f.initial = deepcopy.Copy(value)
		f.present = true
	}
	f.captured = true
}

func (f *Field) unbind() {
	f.mu.Lock()
	f.form = nil
	f.mu.Unlock()
}

// initialValue returns the snapshot and whether the key existed at attach.
func (f *Field) initialValue() (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return deepcopy.Copy(f.initial), f.present
}
