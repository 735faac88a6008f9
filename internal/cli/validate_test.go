package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validConfigYAML = `version: 1
agent:
  url: http://localhost:8288
warehouse:
  path: ":memory:"
ui:
  mode: plain
tools:
  - name: select_events
    phrase: "Looking at events..."
`

// writeSpec writes a config under dir/.insights and returns its path.
func writeSpec(t *testing.T, dir, body string) string {
	t.Helper()
	specPath := filepath.Join(dir, ".insights", "config.yml")
	if err := os.MkdirAll(filepath.Dir(specPath), 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	if err := os.WriteFile(specPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return specPath
}

// TestValidateCommandSuccess verifies validate command success path.
func TestValidateCommandSuccess(t *testing.T) {
	specPath := writeSpec(t, t.TempDir(), validConfigYAML)

	var out, err bytes.Buffer
	code := Run([]string{"validate", "--spec", specPath}, &out, &err)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (%s)", ExitOK, code, err.String())
	}
	if err.Len() != 0 {
		t.Fatalf("expected no stderr output, got %q", err.String())
	}
	for _, want := range []string{"Config OK: " + specPath, "agent:     http://localhost:8288", "warehouse: :memory:", "ui:        plain"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in %q", want, out.String())
		}
	}
}

// TestValidateCommandFailure verifies validate command error handling.
func TestValidateCommandFailure(t *testing.T) {
	specPath := writeSpec(t, t.TempDir(), `version: 1
ui:
  mode: fancy
`)

	var out, err bytes.Buffer
	code := Run([]string{"validate", "--spec", specPath}, &out, &err)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no stdout output, got %q", out.String())
	}
	if !strings.Contains(err.String(), "Validation failed") || !strings.Contains(err.String(), "ui.mode") {
		t.Fatalf("expected validation failure naming ui.mode, got %q", err.String())
	}
}

// TestValidateFindsConfigInParent verifies config discovery from parent dirs.
func TestValidateFindsConfigInParent(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, validConfigYAML)
	nested := filepath.Join(dir, "nested", "dir")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("create nested dir: %v", err)
	}
	chdir(t, nested)

	var out, stderr bytes.Buffer
	code := Run([]string{"validate"}, &out, &stderr)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d (%s)", ExitOK, code, stderr.String())
	}
	if !strings.Contains(out.String(), "Config OK") {
		t.Fatalf("expected success message, got %q", out.String())
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
