// Package state persists a snapshot of the most recent pipeline run under
// the .govbot data directory, where the status command and the dashboard can
// read it while a run is still going.
package state

import (
	"os"
	"path/filepath"
	"time"
)

// Snapshot is the persisted run record, stored at .govbot/state.json.
type Snapshot struct {
	LastRun   *RunRecord `json:"last_run,omitempty"`
	UpdatedAt string     `json:"updated_at"`
}

// RunRecord describes one pipeline run.
type RunRecord struct {
	ID         string        `json:"id"`
	Mode       string        `json:"mode"`
	Repos      []string      `json:"repos,omitempty"`
	Status     string        `json:"status"` // "running", per-stage states, "done", "aborted"
	AbortedAt  string        `json:"aborted_at,omitempty"`
	ExitCode   int           `json:"exit_code"`
	Stages     []StageRecord `json:"stages"`
	StartedAt  string        `json:"started_at"`
	FinishedAt string        `json:"finished_at,omitempty"`
}

// StageRecord describes one stage of a run.
type StageRecord struct {
	Name       string `json:"name"`
	Started    bool   `json:"started"`
	ExitCode   *int   `json:"exit_code,omitempty"`
	Succeeded  bool   `json:"succeeded"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// Store reads and writes the snapshot.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the .govbot directory under workDir.
func NewStore(workDir string) *Store {
	return &Store{dir: filepath.Join(workDir, ".govbot")}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, "state.json")
}

// Load reads the snapshot, returning an empty one when none exists yet.
func (s *Store) Load() (*Snapshot, error) {
	var snap Snapshot
	if err := ReadJSON(s.Path(), &snap); err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, err
	}
	return &snap, nil
}

// Update performs a read-modify-write of the snapshot.
func (s *Store) Update(fn func(*Snapshot)) error {
	snap, err := s.Load()
	if err != nil {
		return err
	}
	fn(snap)
	snap.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return WriteJSON(s.Path(), snap)
}
