package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoadResolvesWarehousePath verifies relative warehouse paths are
// anchored at the workspace root.
func TestLoadResolvesWarehousePath(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "version: 1\nwarehouse:\n  path: data/events.duckdb\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Warehouse.Path != filepath.Join(root, "data/events.duckdb") {
		t.Fatalf("unexpected warehouse path %q", cfg.Warehouse.Path)
	}
	if cfg.Agent.URL != DefaultAgentURL {
		t.Fatalf("expected default agent url, got %q", cfg.Agent.URL)
	}
}

// TestLoadKeepsInMemoryWarehouse verifies :memory: is not rewritten.
func TestLoadKeepsInMemoryWarehouse(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "version: 1\nwarehouse:\n  path: \":memory:\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Warehouse.Path != ":memory:" {
		t.Fatalf("unexpected warehouse path %q", cfg.Warehouse.Path)
	}
}

// TestLoadReportsValidationErrors verifies invalid files fail to load.
func TestLoadReportsValidationErrors(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "version: 1\nui:\n  mode: fancy\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "ui.mode") {
		t.Fatalf("expected ui.mode error, got %v", err)
	}
	if _, err := Load(filepath.Join(root, "missing.yml")); err == nil {
		t.Fatalf("expected read error")
	}
}

// TestFindConfigPathWalksUp verifies discovery from a nested directory.
func TestFindConfigPathWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "version: 1\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := FindConfigPath(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found != path {
		t.Fatalf("expected %s, got %s", path, found)
	}
	if RepoRootFromConfigPath(found) != root {
		t.Fatalf("unexpected root %s", RepoRootFromConfigPath(found))
	}
}

// TestFindConfigPathMissingFile verifies an empty .insights dir is reported.
func TestFindConfigPathMissingFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(ConfigDir(root), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := FindConfigPath(root); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected missing config error, got %v", err)
	}
}

// TestScaffoldWritesLoadableConfig verifies the starter config validates and
// is never overwritten.
func TestScaffoldWritesLoadableConfig(t *testing.T) {
	root := t.TempDir()
	path := ConfigPath(root)
	if err := Scaffold(path); err != nil {
		t.Fatalf("scaffold: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load scaffold: %v", err)
	}
	if !cfg.AutoRun() || cfg.Phrases()["generate_sql"] != "Writing SQL..." {
		t.Fatalf("unexpected scaffold config %+v", cfg)
	}
	if err := Scaffold(path); err == nil {
		t.Fatalf("expected scaffold to refuse overwrite")
	}
}
