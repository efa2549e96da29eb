package form

import (
	"context"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/goliatone/go-formstate/pkg/rules"
	"github.com/goliatone/go-formstate/pkg/store"
)

func TestValidateAggregatesFieldOutcomes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(0, 8).Draw(rt, "count")
		values := make(map[string]any, count)
		var wantFailed []string
		for idx := 0; idx < count; idx++ {
			key := fmt.Sprintf("field%d", idx)
			filled := rapid.Bool().Draw(rt, key)
			if filled {
				values[key] = "value"
			} else {
				values[key] = ""
				wantFailed = append(wantFailed, key)
			}
		}

		f := New(store.New(values))
		for idx := 0; idx < count; idx++ {
			key := fmt.Sprintf("field%d", idx)
			if err := f.Attach(NewField(key, WithRules(rules.Rule{Required: true, Message: key}))); err != nil {
				rt.Fatalf("attach: %v", err)
			}
		}

		err := f.Validate(context.Background())
		if len(wantFailed) == 0 {
			if err != nil {
				rt.Fatalf("expected valid, got %v", err)
			}
			return
		}
		verr, ok := AsValidationError(err)
		if !ok {
			rt.Fatalf("expected validation error, got %v", err)
		}
		keys := verr.Keys()
		if len(keys) != len(wantFailed) {
			rt.Fatalf("expected %v, got %v", wantFailed, keys)
		}
		for idx := range keys {
			if keys[idx] != wantFailed[idx] {
				rt.Fatalf("expected %v, got %v", wantFailed, keys)
			}
			if msgs := verr.Messages(keys[idx]); len(msgs) != 1 || msgs[0] != keys[idx] {
				rt.Fatalf("expected one message for %s, got %v", keys[idx], msgs)
			}
		}
	})
}

func TestClearValidateTargetsOnlyListedKeys(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 6).Draw(rt, "count")
		values := make(map[string]any, count)
		keys := make([]string, count)
		for idx := range keys {
			keys[idx] = fmt.Sprintf("k%d", idx)
			values[keys[idx]] = ""
		}
		f := New(store.New(values))
		for idx := range keys {
			_ = f.Attach(NewField(keys[idx], WithRules(rules.Rule{Required: true, Message: "required"})))
		}
		_ = f.Validate(context.Background())

		target := rapid.SampledFrom(keys).Draw(rt, "target")
		f.ClearValidate(target)
		for _, field := range f.Fields() {
			cleared := field.Message() == ""
			if cleared != (field.Key() == target) {
				rt.Fatalf("field %s cleared=%v after clearing %s", field.Key(), cleared, target)
			}
		}
	})
}
