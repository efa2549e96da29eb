package cli

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"

	"github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/pkg/form"
	pkgopenapi "github.com/goliatone/go-formstate/pkg/openapi"
	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/store"
	"github.com/goliatone/go-formstate/pkg/validator"
)

const tracerName = "github.com/goliatone/go-formstate/cli"

// session is a form built from the resolved configuration.
type session struct {
	form  *form.Form
	store *store.Store
}

// ruleSet merges rule files with rules derived from the OpenAPI document and
// returns the schema defaults.
func (a *app) ruleSet(ctx context.Context) (rules.Set, map[string]any, error) {
	if !a.cfg.HasRules() {
		return nil, nil, fmt.Errorf("cli: no rules configured (use --rules or --openapi)")
	}
	set, err := formstate.LoadRules(a.cfg.Rules...)
	if err != nil {
		return nil, nil, err
	}
	if a.cfg.OpenAPI.Document == "" {
		return set, nil, nil
	}

	raw, err := os.ReadFile(a.cfg.OpenAPI.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("cli: read openapi %s: %w", a.cfg.OpenAPI.Document, err)
	}
	opts := []pkgopenapi.Option{
		pkgopenapi.WithExternalRefs(a.cfg.OpenAPI.ExternalRefs),
		pkgopenapi.WithValidation(a.cfg.OpenAPI.Validate),
	}
	operation := a.cfg.OpenAPI.Operation
	if operation == "" {
		ops, err := pkgopenapi.Operations(ctx, raw, opts...)
		if err != nil {
			return nil, nil, err
		}
		if len(ops) != 1 {
			return nil, nil, fmt.Errorf("cli: %s has %d operations, pick one with --operation", a.cfg.OpenAPI.Document, len(ops))
		}
		operation = ops[0]
	}
	derived, defaults, err := pkgopenapi.RulesFromDocument(ctx, raw, operation, opts...)
	if err != nil {
		return nil, nil, err
	}
	for key, list := range derived {
		// Rule files refine the schema: their entries run after the derived ones.
		set[key] = append(list, set[key]...)
	}
	return set, defaults, nil
}

func (a *app) modelValues() (map[string]any, error) {
	if a.cfg.Model == "" {
		return nil, nil
	}
	return formstate.LoadModel(a.cfg.Model)
}

func (a *app) validatorEngine() *validator.Engine {
	opts := []validator.Option{validator.WithMessages(a.cfg.Validator.Messages)}
	if a.cfg.Validator.AllRules {
		opts = append(opts, validator.WithAllRules())
	}
	return validator.New(opts...)
}

// newSession builds the form from rules, schema defaults and the model file.
func (a *app) newSession(ctx context.Context, extra ...form.Option) (*session, error) {
	set, defaults, err := a.ruleSet(ctx)
	if err != nil {
		return nil, err
	}
	values, err := a.modelValues()
	if err != nil {
		return nil, err
	}

	opts := []form.Option{
		form.WithValidator(a.validatorEngine()),
		form.WithLayout(a.cfg.Layout),
		form.WithLogger(a.logger),
		form.WithTracer(otel.Tracer(tracerName)),
	}
	opts = append(opts, extra...)

	f, st, err := formstate.NewForm(formstate.MergeValues(defaults, values), set, opts...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("form ready", "fields", len(f.Fields()))
	return &session{form: f, store: st}, nil
}
