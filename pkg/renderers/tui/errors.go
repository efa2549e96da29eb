package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrModelNotWritable is returned when the form model cannot store
	// answers.
	ErrModelNotWritable = errors.New("tui: form model does not support Set")
	// ErrTooManyAttempts is returned when a field keeps failing validation.
	ErrTooManyAttempts = errors.New("tui: too many invalid answers")
)
