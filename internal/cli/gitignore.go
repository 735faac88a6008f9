package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// warehouseIgnoreEntries lists the files DuckDB keeps for a warehouse.
func warehouseIgnoreEntries(warehousePath string) []string {
	return []string{warehousePath, warehousePath + ".wal"}
}

// addGitignoreEntries appends the repo-relative paths missing from
// .gitignore and returns the entries it added.
func addGitignoreEntries(repoRoot string, paths ...string) ([]string, error) {
	gitignorePath := filepath.Join(repoRoot, ".gitignore")
	var existing []byte
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existing = data
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read .gitignore: %w", err)
	}

	present := map[string]bool{}
	for _, line := range strings.Split(string(existing), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var added []string
	for _, path := range paths {
		entry, err := gitignoreEntry(repoRoot, path)
		if err != nil {
			return nil, err
		}
		if present[entry] {
			continue
		}
		present[entry] = true
		added = append(added, entry)
	}
	if len(added) == 0 {
		return nil, nil
	}

	updated := string(existing)
	if len(updated) > 0 && !strings.HasSuffix(updated, "\n") {
		updated += "\n"
	}
	updated += strings.Join(added, "\n") + "\n"
	if err := os.WriteFile(gitignorePath, []byte(updated), 0o644); err != nil {
		return nil, fmt.Errorf("write .gitignore: %w", err)
	}
	return added, nil
}

// gitignoreEntry turns a path into a slash-separated entry relative to the
// repo root.
func gitignoreEntry(repoRoot, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is required")
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) {
		rel, err := filepath.Rel(repoRoot, clean)
		if err != nil {
			return "", fmt.Errorf("resolve path: %w", err)
		}
		clean = rel
	}
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the repo root", path)
	}
	return filepath.ToSlash(clean), nil
}
