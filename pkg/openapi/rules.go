// Package openapi derives form rules and an initial model from the JSON
// request body schema of an OpenAPI 3 operation.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/rules"
)

// ExtensionKey carries per-property rule overrides:
//
//	x-formstate:
//	  message: Please input name
//	  trigger: [blur, change]
const ExtensionKey = "x-formstate"

var (
	// ErrOperationNotFound is returned when no operation has the requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned when the operation has no usable request
	// body schema.
	ErrNoRequestBody = errors.New("openapi: operation has no request body schema")
)

// Option configures document loading.
type Option func(*config)

type config struct {
	externalRefs bool
	validate     bool
}

// WithExternalRefs allows the loader to resolve external references.
func WithExternalRefs(enabled bool) Option {
	return func(cfg *config) {
		cfg.externalRefs = enabled
	}
}

// WithValidation validates the document before extracting rules.
func WithValidation(enabled bool) Option {
	return func(cfg *config) {
		cfg.validate = enabled
	}
}

// Operations lists the operation ids of the document, sorted. Operations
// without an id are reported as "method:path".
func Operations(ctx context.Context, raw []byte, options ...Option) ([]string, error) {
	doc, err := load(ctx, raw, options)
	if err != nil {
		return nil, err
	}
	var ids []string
	eachOperation(doc, func(id string, _ *openapi3.Operation) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids, nil
}

// RulesFromDocument loads raw and maps the request body schema of
// operationID to a rule set keyed by dotted property path. The second return
// value is the initial model built from schema defaults.
func RulesFromDocument(ctx context.Context, raw []byte, operationID string, options ...Option) (rules.Set, map[string]any, error) {
	doc, err := load(ctx, raw, options)
	if err != nil {
		return nil, nil, err
	}

	var operation *openapi3.Operation
	eachOperation(doc, func(id string, op *openapi3.Operation) bool {
		if id == operationID {
			operation = op
			return false
		}
		return true
	})
	if operation == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	schema := requestSchema(operation)
	if schema == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	set := make(rules.Set)
	model := make(map[string]any)
	walkObject(schema, "", set, model)
	return set, model, nil
}

func load(ctx context.Context, raw []byte, options []Option) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.externalRefs,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	return doc, nil
}

func eachOperation(doc *openapi3.T, fn func(id string, op *openapi3.Operation) bool) {
	if doc.Paths == nil {
		return
	}
	paths := doc.Paths.Map()
	names := make([]string, 0, len(paths))
	for path := range paths {
		names = append(names, path)
	}
	sort.Strings(names)

	for _, path := range names {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for method := range ops {
			methods = append(methods, method)
		}
		sort.Strings(methods)
		for _, method := range methods {
			op := ops[method]
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if !fn(id, op) {
				return
			}
		}
	}
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}
