// Package validator evaluates rule lists against field values. Validator is
// the seam the form coordinator depends on; Engine is the default
// implementation modelled on the usual declarative rule semantics.
package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/goliatone/go-formstate/pkg/rules"
)

// Issue is a single failed rule for a field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator checks value against an ordered rule list. Failed rules are
// reported as issues; the error return is reserved for context cancellation
// and similar infrastructure faults.
type Validator interface {
	Validate(ctx context.Context, field string, value any, list []rules.Rule) ([]Issue, error)
}

// Func adapts a function into a Validator.
type Func func(ctx context.Context, field string, value any, list []rules.Rule) ([]Issue, error)

// Validate calls the underlying function.
func (fn Func) Validate(ctx context.Context, field string, value any, list []rules.Rule) ([]Issue, error) {
	return fn(ctx, field, value, list)
}

// Option configures an Engine.
type Option func(*Engine)

// WithMessages overrides the default message templates. Empty entries keep
// the defaults.
func WithMessages(messages Messages) Option {
	return func(e *Engine) {
		e.messages = DefaultMessages().merge(messages)
	}
}

// WithAllRules makes the engine report every failing rule instead of
// stopping at the first failure for the field.
func WithAllRules() Option {
	return func(e *Engine) {
		e.allRules = true
	}
}

// WithPatternCache tunes how long compiled patterns stay cached.
func WithPatternCache(expiration, cleanup time.Duration) Option {
	return func(e *Engine) {
		e.patterns = cache.New(expiration, cleanup)
	}
}

// Engine is the built-in rule evaluator. It is safe for concurrent use.
type Engine struct {
	messages Messages
	allRules bool
	patterns *cache.Cache
}

var _ Validator = (*Engine)(nil)

// New constructs an Engine.
func New(options ...Option) *Engine {
	e := &Engine{
		messages: DefaultMessages(),
		patterns: cache.New(30*time.Minute, 10*time.Minute),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Validate runs the rules in order. A rule carrying a custom Validator is
// evaluated by that function only; the built-in checks are skipped for it.
func (e *Engine) Validate(ctx context.Context, field string, value any, list []rules.Rule) ([]Issue, error) {
	var issues []Issue
	for _, rule := range list {
		if err := ctx.Err(); err != nil {
			return issues, err
		}

		var (
			message string
			ok      bool
		)
		if rule.Validator != nil {
			message, ok = e.runCustom(ctx, field, value, rule)
		} else {
			message, ok = e.check(field, value, rule)
		}
		if ok {
			continue
		}

		issues = append(issues, Issue{Field: field, Message: message})
		if !e.allRules {
			break
		}
	}
	return issues, nil
}

func (e *Engine) runCustom(ctx context.Context, field string, value any, rule rules.Rule) (message string, ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			message = e.recoveredMessage(field, rule, recovered)
			ok = false
		}
	}()

	err := rule.Validator(ctx, rule, value)
	if err == nil {
		return "", true
	}
	if text := strings.TrimSpace(err.Error()); text != "" {
		return text, false
	}
	return e.fallback(field, rule), false
}

func (e *Engine) recoveredMessage(field string, rule rules.Rule, recovered any) string {
	var text string
	switch v := recovered.(type) {
	case error:
		text = v.Error()
	case string:
		text = v
	case fmt.Stringer:
		text = v.String()
	}
	if text = strings.TrimSpace(text); text != "" {
		return text
	}
	return e.fallback(field, rule)
}

func (e *Engine) fallback(field string, rule rules.Rule) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fmt.Sprintf(e.messages.Default, field)
}

func (e *Engine) fail(rule rules.Rule, format string, args ...any) (string, bool) {
	if rule.Message != "" {
		return rule.Message, false
	}
	return fmt.Sprintf(format, args...), false
}
