package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/renderers/tui"
)

const nameRules = `rules:
  name:
    - required: true
      message: Please input name
`

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// workspace creates a temp dir holding the given files and makes it the
// working directory so no stray formstate.yaml is picked up.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), args, WithOutput(&out, &errOut))
	return out.String(), errOut.String(), err
}

func TestValidateReportsFailuresAsJSON(t *testing.T) {
	workspace(t, map[string]string{
		"rules.yaml": nameRules,
		"model.json": `{"name": ""}`,
	})

	out, _, err := run(t, "validate", "--rules", "rules.yaml", "--model", "model.json", "-o", "json")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if ExitCode(err) != ExitInvalid {
		t.Fatalf("exit code = %d", ExitCode(err))
	}

	var got report
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := report{Fields: map[string][]string{"name": {"Please input name"}}}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(report{})); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatePassesWithText(t *testing.T) {
	workspace(t, map[string]string{
		"rules.yaml": nameRules,
		"model.yaml": "name: formstate\n",
	})

	out, _, err := run(t, "validate", "--rules", "rules.yaml", "--model", "model.yaml")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "✓ valid") {
		t.Fatalf("expected valid report, got %q", out)
	}
}

func TestValidateReadsConfigFile(t *testing.T) {
	workspace(t, map[string]string{
		"formstate.yaml": "rules: [rules.yaml]\nmodel: model.json\n",
		"rules.yaml":     nameRules,
		"model.json":     `{}`,
	})

	out, _, err := run(t, "validate")
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(out, "name") || !strings.Contains(out, "Please input name") {
		t.Fatalf("expected field line, got %q", out)
	}
}

func TestValidateWithOpenAPI(t *testing.T) {
	fixture, err := filepath.Abs(filepath.Join("..", "..", "pkg", "openapi", "testdata", "petstore.yaml"))
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	workspace(t, map[string]string{
		"model.json": `{"name": "hike", "region": "beijing", "type": ["online"], "owner": {"email": "a@b.co"}}`,
	})

	out, _, err := run(t, "validate", "--openapi", fixture, "--operation", "createActivity", "--model", "model.json", "-o", "json")
	if err != nil {
		t.Fatalf("validate: %v\n%s", err, out)
	}
	if !strings.Contains(out, `"valid": true`) {
		t.Fatalf("expected valid report, got %s", out)
	}
}

func TestValidateWithoutRules(t *testing.T) {
	workspace(t, nil)
	_, _, err := run(t, "validate")
	if err == nil || errors.Is(err, ErrInvalid) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if ExitCode(err) != ExitError {
		t.Fatalf("exit code = %d", ExitCode(err))
	}
}

func TestRenderHTML(t *testing.T) {
	workspace(t, map[string]string{
		"rules.yaml":  nameRules,
		"model.json":  `{"name": ""}`,
		"errors.json": `{"data": {"name": "taken"}}`,
	})

	out, _, err := run(t, "render", "--rules", "rules.yaml", "--model", "model.json", "--validate")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{`class="el-form`, "is-error", "Please input name", `data-scroll-into-view`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, _, err = run(t, "render", "--rules", "rules.yaml", "--model", "model.json", "--errors", "errors.json")
	if err != nil {
		t.Fatalf("render with errors: %v", err)
	}
	if !strings.Contains(out, "taken") {
		t.Fatalf("expected server error overlay:\n%s", out)
	}
}

func TestRenderUnknownRenderer(t *testing.T) {
	workspace(t, map[string]string{"rules.yaml": nameRules})
	if _, _, err := run(t, "render", "--rules", "rules.yaml", "--renderer", "pdf"); err == nil {
		t.Fatal("expected unknown renderer error")
	}
}

func TestLoadErrorsFlattensNested(t *testing.T) {
	dir := workspace(t, map[string]string{
		"errors.yaml": "owner:\n  email: [invalid, taken]\nname: short\n",
	})
	got, err := loadErrors(filepath.Join(dir, "errors.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string][]string{"owner.email": {"invalid", "taken"}, "name": {"short"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

type scriptedDriver struct {
	inputs []string
	infos  []string
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}

func (d *scriptedDriver) Password(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return false, errors.New("no confirm scripted")
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	return -1, errors.New("no select scripted")
}

func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	return nil, errors.New("no multiselect scripted")
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func TestFillPromptsAndSaves(t *testing.T) {
	dir := workspace(t, map[string]string{
		"rules.yaml": nameRules,
		"model.json": `{"name": ""}`,
	})
	driver := &scriptedDriver{inputs: []string{"", "Ada"}}

	var out, errOut bytes.Buffer
	err := Execute(context.Background(),
		[]string{"fill", "--rules", "rules.yaml", "--model", "model.json", "--save"},
		WithOutput(&out, &errOut), WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if out.String() != "Name: Ada\n" {
		t.Fatalf("output = %q", out.String())
	}
	if diff := cmp.Diff([]string{"✗ Please input name"}, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}

	saved, err := os.ReadFile(filepath.Join(dir, "model.json"))
	if err != nil {
		t.Fatalf("read saved model: %v", err)
	}
	if !strings.Contains(string(saved), `"name": "Ada"`) {
		t.Fatalf("model not saved: %s", saved)
	}
}

func TestWatchRevalidatesOnChange(t *testing.T) {
	dir := workspace(t, map[string]string{
		"rules.yaml": nameRules,
		"model.json": `{"name": ""}`,
	})
	t.Setenv("FORMSTATE_WATCH_DEBOUNCE", "20ms")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out, errOut := &syncBuffer{}, &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- Execute(ctx, []string{"watch", "--rules", "rules.yaml", "--model", "model.json"}, WithOutput(out, errOut))
	}()

	waitFor(t, func() bool { return strings.Contains(errOut.String(), "watching model") })
	if !strings.Contains(out.String(), "Please input name") {
		t.Fatalf("expected initial failure report, got %q", out.String())
	}

	if err := os.WriteFile(filepath.Join(dir, "model.json"), []byte(`{"name": "Ada"}`), 0o644); err != nil {
		t.Fatalf("rewrite model: %v", err)
	}
	waitFor(t, func() bool { return strings.Contains(out.String(), "✓ name") })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatchRequiresModel(t *testing.T) {
	workspace(t, map[string]string{"rules.yaml": nameRules})
	if _, _, err := run(t, "watch", "--rules", "rules.yaml"); err == nil {
		t.Fatal("expected error without model file")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestExitCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"nil":     {nil, ExitOK},
		"invalid": {ErrInvalid, ExitInvalid},
		"other":   {errors.New("boom"), ExitError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := ExitCode(tc.err); got != tc.want {
				t.Fatalf("ExitCode = %d, want %d", got, tc.want)
			}
		})
	}
}
