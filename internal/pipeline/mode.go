package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/windy-civi/govbot/internal/config"
)

// RepoStoreDir is where fetched data repositories live, relative to the
// directory that holds the config file.
const RepoStoreDir = ".govbot/repos"

// ModeKind distinguishes a first run from an incremental one.
type ModeKind int

const (
	// ModeClone fetches repositories from scratch.
	ModeClone ModeKind = iota
	// ModeUpdate refreshes repositories already on disk.
	ModeUpdate
)

// String returns the mode name used in logs and run records.
func (k ModeKind) String() string {
	if k == ModeUpdate {
		return "update"
	}
	return "clone"
}

// Mode is the fetch parametrization for one run, decided exactly once before
// any stage starts.
//
// Repos is populated only in clone mode, copied verbatim and in order from
// the config, including the "all" sentinel. Interpreting the sentinel is the
// fetch subcommand's job, not the detector's.
type Mode struct {
	Kind  ModeKind
	Repos []string
}

// DetectMode probes the repository store under workDir and decides between
// clone and update. A store with at least one entry means update; otherwise
// the config at configPath names the repositories to clone. Failing to load
// the config aborts the run before any stage spawns.
func DetectMode(workDir, configPath string) (Mode, error) {
	entries, err := os.ReadDir(filepath.Join(workDir, RepoStoreDir))
	if err == nil && len(entries) > 0 {
		return Mode{Kind: ModeUpdate}, nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return Mode{}, fmt.Errorf("loading config: %w", err)
	}
	return Mode{Kind: ModeClone, Repos: cfg.Repos}, nil
}
