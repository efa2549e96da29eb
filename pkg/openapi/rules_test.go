package openapi

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formstate/pkg/rules"
)

func readFixture(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/petstore.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return raw
}

func TestRulesFromDocument(t *testing.T) {
	set, model, err := RulesFromDocument(context.Background(), readFixture(t), "createActivity")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}

	want := rules.Set{
		"name": {
			{Required: true, Message: "Please input Activity name", Trigger: rules.Triggers{rules.TriggerBlur}},
			{Type: rules.TypeString, Min: rules.Ptr(3.0), Max: rules.Ptr(5.0), Message: "Please input Activity name", Trigger: rules.Triggers{rules.TriggerBlur}},
		},
		"region": {
			{Required: true},
			{Type: rules.TypeString, Enum: []any{"shanghai", "beijing"}},
		},
		"type": {
			{Required: true},
			{Type: rules.TypeArray, Min: rules.Ptr(1.0), Enum: []any{"online", "offline", "promotion"}},
		},
		"contact":     {{Type: rules.TypeEmail}},
		"site":        {{Type: rules.TypeURL}},
		"count":       {{Type: rules.TypeInteger, Min: rules.Ptr(1.0), Max: rules.Ptr(10.0)}},
		"delivery":    {{Type: rules.TypeBoolean}},
		"owner.email": {{Required: true}, {Type: rules.TypeEmail}},
		"owner.phone": {{Type: rules.TypeString, Pattern: `^\d+$`}},
	}
	if diff := cmp.Diff(want, set, cmpopts.IgnoreFields(rules.Rule{}, "Validator")); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}

	wantModel := map[string]any{
		"count":    2.0,
		"delivery": false,
		"owner":    map[string]any{"phone": "000"},
	}
	if diff := cmp.Diff(wantModel, model); diff != "" {
		t.Fatalf("model mismatch (-want +got):\n%s", diff)
	}
}

func TestRulesFromDocumentErrors(t *testing.T) {
	ctx := context.Background()
	raw := readFixture(t)

	if _, _, err := RulesFromDocument(ctx, raw, "missing"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, _, err := RulesFromDocument(ctx, raw, "get:/activities/{id}"); !errors.Is(err, ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, _, err := RulesFromDocument(ctx, nil, "createActivity"); err == nil {
		t.Fatalf("expected empty payload error")
	}
}

func TestRulesFromDocumentValidation(t *testing.T) {
	ctx := context.Background()
	// info.version is required by the OpenAPI schema.
	raw := []byte(`openapi: 3.0.3
info:
  title: Signup
paths:
  /signup:
    post:
      operationId: signup
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email]
              properties:
                email:
                  type: string
                  format: email
      responses:
        "201":
          description: created
`)

	set, _, err := RulesFromDocument(ctx, raw, "signup")
	if err != nil {
		t.Fatalf("unvalidated load: %v", err)
	}
	if _, ok := set["email"]; !ok {
		t.Fatalf("expected email rules, got %v", set)
	}

	if _, _, err := RulesFromDocument(ctx, raw, "signup", WithValidation(true)); err == nil || !strings.Contains(err.Error(), "openapi: validate") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, _, err := RulesFromDocument(ctx, readFixture(t), "createActivity", WithValidation(true)); err != nil {
		t.Fatalf("valid fixture rejected: %v", err)
	}
}

func TestOperations(t *testing.T) {
	ids, err := Operations(context.Background(), readFixture(t))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	if diff := cmp.Diff([]string{"createActivity", "get:/activities/{id}"}, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}
