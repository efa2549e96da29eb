package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/store"
)

type fieldOutcome struct {
	key      string
	messages []string
	err      error
}

// Validate runs every targeted field (all fields when keys is empty)
// concurrently. It returns nil when all pass, a *ValidationError listing the
// failing fields in registration order, or the infrastructure error of a
// validator that could not complete.
func (f *Form) Validate(ctx context.Context, keys ...string) error {
	verr, err := f.run(ctx, keys)
	if err != nil {
		return err
	}
	if verr != nil {
		if f.scrollToError {
			f.ScrollToField(verr.Fields[0].Field)
		}
		return verr
	}
	return nil
}

// ValidateAsync starts a validation run and returns its Future.
func (f *Form) ValidateAsync(ctx context.Context, keys ...string) *Future {
	future := newFuture()
	go func() {
		err := f.Validate(ctx, keys...)
		if verr, ok := AsValidationError(err); ok {
			future.resolve(Result{Fields: verr}, nil)
			return
		}
		if err != nil {
			future.resolve(Result{}, err)
			return
		}
		future.resolve(Result{Valid: true}, nil)
	}()
	return future
}

// ValidateWithCallback validates synchronously and reports the outcome to
// cb. Fields is nil when valid. A run that cannot complete (for example a
// cancelled context) is reported as invalid with nil fields.
func (f *Form) ValidateWithCallback(ctx context.Context, cb func(valid bool, fields *ValidationError), keys ...string) {
	err := f.Validate(ctx, keys...)
	if cb == nil {
		return
	}
	if err == nil {
		cb(true, nil)
		return
	}
	verr, _ := AsValidationError(err)
	cb(false, verr)
}

// ValidateField validates the field registered for key with the rules that
// apply to trigger. An empty trigger applies every rule.
func (f *Form) ValidateField(ctx context.Context, key string, trigger rules.Trigger) (string, error) {
	field, ok := f.registry.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrFieldNotFound, key)
	}
	return field.Validate(ctx, trigger)
}

// HandleEvent is the entry point for input events (blur, change) raised by
// renderers. Keys without a field are ignored.
func (f *Form) HandleEvent(ctx context.Context, key string, trigger rules.Trigger) error {
	field, ok := f.registry.Lookup(key)
	if !ok {
		return nil
	}
	_, err := field.Validate(ctx, trigger)
	return err
}

// Watch validates fields with the change trigger as their model values
// change, until ctx is done. Reset writes are skipped. The model must
// implement Observable.
func (f *Form) Watch(ctx context.Context) error {
	done, err := f.StartWatch(ctx)
	if err != nil {
		return err
	}
	return <-done
}

// StartWatch subscribes to the model before returning and runs the Watch
// loop in the background. Changes made after it returns are observed. The
// returned channel yields the loop's result once ctx is done or the
// subscription closes.
func (f *Form) StartWatch(ctx context.Context) (<-chan error, error) {
	observable, ok := f.model.(Observable)
	if !ok {
		return nil, ErrNotObservable
	}
	sub := observable.Subscribe(ctx)
	done := make(chan error, 1)
	go func() {
		defer sub.Close()
		f.watchLoop(ctx, sub)
		done <- nil
	}()
	return done, nil
}

func (f *Form) watchLoop(ctx context.Context, sub store.Subscriber) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, open := <-sub.Receive():
			if !open {
				return
			}
			if change.Kind == store.ChangeReset {
				continue
			}
			for _, field := range f.fieldsForPath(change.Path) {
				if _, err := field.Validate(ctx, rules.TriggerChange); err != nil && ctx.Err() == nil {
					f.logger.Warn("form watch validation failed",
						slog.String("key", field.Key()),
						slog.String("error", err.Error()),
					)
				}
			}
		}
	}
}

func (f *Form) fieldsForPath(path string) []*Field {
	var out []*Field
	for _, field := range f.registry.FieldsMatching() {
		key := field.Key()
		if key == "" {
			continue
		}
		if key == path || strings.HasPrefix(path, key+".") || strings.HasPrefix(key, path+".") {
			out = append(out, field)
		}
	}
	return out
}

func (f *Form) run(ctx context.Context, keys []string) (*ValidationError, error) {
	targets := f.registry.FieldsMatching(keys...)

	ctx, span := f.tracer.Start(ctx, "form.validate", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.Int("form.fields", len(targets)),
		attribute.StringSlice("form.keys", keys),
	)

	if len(targets) == 0 {
		span.SetStatus(codes.Ok, "")
		return nil, nil
	}

	outcomes := make([]fieldOutcome, len(targets))
	var wg sync.WaitGroup
	for idx, field := range targets {
		wg.Add(1)
		go func(idx int, field *Field) {
			defer wg.Done()
			messages, err := f.validateField(ctx, field, "")
			outcomes[idx] = fieldOutcome{key: field.Key(), messages: messages, err: err}
		}(idx, field)
	}
	wg.Wait()

	var (
		failed []FieldError
		errs   []error
	)
	for _, outcome := range outcomes {
		if outcome.err != nil {
			errs = append(errs, outcome.err)
			continue
		}
		if len(outcome.messages) > 0 {
			failed = append(failed, FieldError{Field: outcome.key, Messages: outcome.messages})
		}
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("form: validate: %w", err)
	}
	if len(failed) > 0 {
		verr := &ValidationError{Fields: failed}
		span.SetAttributes(attribute.Int("form.failed", len(failed)))
		span.SetStatus(codes.Error, "validation failed")
		f.logger.Debug("form validation failed", slog.Any("fields", verr.Keys()))
		return verr, nil
	}
	span.SetStatus(codes.Ok, "")
	f.logger.Debug("form validation passed", slog.Int("fields", len(targets)))
	return nil, nil
}

// validateField runs the resolved rules of field that apply to trigger and
// records the outcome on the field. Layout-only fields and fields without
// applicable rules pass without touching their status.
func (f *Form) validateField(ctx context.Context, field *Field, trigger rules.Trigger) ([]string, error) {
	if field.Key() == "" {
		return nil, nil
	}
	list := rules.Filter(field.Rules(), trigger)
	if len(list) == 0 {
		return nil, nil
	}

	ctx, span := f.tracer.Start(ctx, "form.validate_field", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.String("form.field", field.Key()),
		attribute.String("form.trigger", string(trigger)),
		attribute.Int("form.rules", len(list)),
	)

	previousState, previousMessage := field.State(), field.Message()
	field.setState(StateValidating, "")

	value, _ := f.model.Get(field.Key())
	issues, err := f.validator.Validate(ctx, field.Key(), value, list)
	if err != nil {
		field.setState(previousState, previousMessage)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("form: field %q: %w", field.Key(), err)
	}

	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}

	if len(messages) == 0 {
		field.setState(StateSuccess, "")
		span.SetStatus(codes.Ok, "")
	} else {
		field.setState(StateError, messages[0])
		span.SetStatus(codes.Error, messages[0])
	}

	if f.onValidate != nil {
		message := ""
		if len(messages) > 0 {
			message = messages[0]
		}
		f.onValidate(field.Key(), len(messages) == 0, message)
	}
	return messages, nil
}
