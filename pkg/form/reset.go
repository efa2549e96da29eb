package form

import (
	"errors"
	"fmt"
	"log/slog"
)

// ResetFields restores the targeted fields (all when keys is empty) to the
// model values captured when they were first attached, and clears their
// status. No validation runs.
func (f *Form) ResetFields(keys ...string) error {
	var errs []error
	for _, field := range f.registry.FieldsMatching(keys...) {
		if err := f.resetField(field); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Form) resetField(field *Field) error {
	defer field.ClearValidate()
	if field.Key() == "" {
		return nil
	}
	initial, present := field.initialValue()
	var err error
	switch unsetter, ok := f.model.(Unsetter); {
	case present:
		err = f.model.Reset(field.Key(), initial)
	case ok:
		err = unsetter.Unset(field.Key())
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("form: reset %q: %w", field.Key(), err)
	}
	f.logger.Debug("form field reset", slog.String("key", field.Key()))
	return nil
}

// ClearValidate removes the status and message of the targeted fields (all
// when keys is empty) without running rules.
func (f *Form) ClearValidate(keys ...string) {
	for _, field := range f.registry.FieldsMatching(keys...) {
		field.ClearValidate()
	}
}

// ScrollToField asks the Scroller to bring the first field matching key into
// view. It does nothing when no field matches or no Scroller is configured.
func (f *Form) ScrollToField(key string) {
	if key == "" || f.scroller == nil {
		return
	}
	field, ok := f.registry.Lookup(key)
	if !ok {
		return
	}
	if err := f.scroller.ScrollIntoView(field, f.scrollOptions); err != nil {
		f.logger.Debug("form scroll failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
