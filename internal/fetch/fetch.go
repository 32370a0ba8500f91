// Package fetch clones and updates the per-jurisdiction data repositories
// that feed the rest of the pipeline.
package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/windy-civi/govbot/internal/locale"
)

// RepoResult records the outcome of fetching one repository.
type RepoResult struct {
	ID     string
	Action string // "cloned", "updated", "skipped"
	Err    error
}

// Manager materializes data repositories under a local store directory.
type Manager struct {
	git      GitRunner
	storeDir string
	pattern  string
	out      io.Writer
}

// NewManager creates a Manager that clones into storeDir, resolving each
// repository's remote through remotePattern. Progress lines go to out.
func NewManager(git GitRunner, storeDir, remotePattern string, out io.Writer) *Manager {
	return &Manager{git: git, storeDir: storeDir, pattern: remotePattern, out: out}
}

// Expand resolves the "all" sentinel into every known jurisdiction and drops
// duplicates while preserving order.
func (m *Manager) Expand(ids []string) []string {
	var expanded []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			expanded = append(expanded, id)
		}
	}
	for _, id := range ids {
		if id == "all" {
			for _, code := range locale.All() {
				add(code)
			}
			continue
		}
		add(id)
	}
	return expanded
}

// Clone fetches each named repository from scratch, one shallow clone per
// jurisdiction. Repositories already on disk are left alone. A failed clone
// is recorded in its result and does not stop the rest.
func (m *Manager) Clone(ids []string) []RepoResult {
	var results []RepoResult
	for _, id := range m.Expand(ids) {
		results = append(results, m.cloneOne(id))
	}
	return results
}

func (m *Manager) cloneOne(id string) RepoResult {
	dest := filepath.Join(m.storeDir, id)
	if _, err := os.Stat(dest); err == nil {
		fmt.Fprintf(m.out, "✓ %s already cloned\n", id)
		return RepoResult{ID: id, Action: "skipped"}
	}

	remote := fmt.Sprintf(m.pattern, id)
	if _, err := m.git.Run("", "clone", "--depth", "1", remote, dest); err != nil {
		fmt.Fprintf(m.out, "⚠️  Failed to clone %s: %v\n", id, err)
		return RepoResult{ID: id, Action: "cloned", Err: err}
	}
	fmt.Fprintf(m.out, "✓ Cloned %s\n", id)
	return RepoResult{ID: id, Action: "cloned"}
}

// Update pulls every repository already present in the store. A failed pull
// is recorded in its result and does not stop the rest.
func (m *Manager) Update() ([]RepoResult, error) {
	entries, err := os.ReadDir(m.storeDir)
	if err != nil {
		return nil, fmt.Errorf("read repo store: %w", err)
	}

	var results []RepoResult
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		if _, err := m.git.Run(filepath.Join(m.storeDir, id), "pull", "--ff-only"); err != nil {
			fmt.Fprintf(m.out, "⚠️  Failed to update %s: %v\n", id, err)
			results = append(results, RepoResult{ID: id, Action: "updated", Err: err})
			continue
		}
		fmt.Fprintf(m.out, "✓ Updated %s\n", id)
		results = append(results, RepoResult{ID: id, Action: "updated"})
	}
	return results, nil
}
