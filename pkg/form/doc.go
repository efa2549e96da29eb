// Package form coordinates validation for a set of live fields bound to a
// model.
//
// A Form owns a Registry of attached fields. Callers (usually whatever owns a
// field's visual lifetime) call Attach when a field appears and Detach when it
// goes away. Validate fans out one validation per targeted field, waits for
// all of them and aggregates the failures in registration order, so the
// result is deterministic regardless of validator latency.
//
// Two result conventions exist side by side:
//
//	// error convention: nil when valid, *ValidationError otherwise
//	if err := f.Validate(ctx); err != nil { ... }
//
//	// callback convention: always reports, never fails on invalid input
//	f.ValidateWithCallback(ctx, func(valid bool, fields *form.ValidationError) { ... })
//
// ValidateAsync returns a Future for callers that want to continue while the
// validators run.
package form
