package state

import (
	"time"

	"github.com/windy-civi/govbot/internal/pipeline"
)

// Sink mirrors pipeline progress into the snapshot as it happens.
type Sink struct {
	store *Store
}

// NewSink creates a Sink writing through store.
func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

// RunStarted resets the snapshot to a fresh running record.
func (s *Sink) RunStarted(runID string, mode pipeline.Mode) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.store.Update(func(snap *Snapshot) {
		snap.LastRun = &RunRecord{
			ID:        runID,
			Mode:      mode.Kind.String(),
			Repos:     mode.Repos,
			Status:    "running",
			Stages:    []StageRecord{},
			StartedAt: now,
		}
	})
}

// StageStarted appends a stage record and advances the run's status.
func (s *Sink) StageStarted(runID string, stage pipeline.StageName) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.store.Update(func(snap *Snapshot) {
		run := snap.LastRun
		if run == nil || run.ID != runID {
			return
		}
		run.Status = pipeline.StageState(stage).String()
		run.Stages = append(run.Stages, StageRecord{Name: string(stage), StartedAt: now})
	})
}

// StageFinished fills in the outcome on the stage's latest record.
func (s *Sink) StageFinished(runID string, stage pipeline.StageName, outcome pipeline.StageOutcome) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.store.Update(func(snap *Snapshot) {
		run := snap.LastRun
		if run == nil || run.ID != runID {
			return
		}
		for i := len(run.Stages) - 1; i >= 0; i-- {
			if run.Stages[i].Name != string(stage) {
				continue
			}
			run.Stages[i].Started = outcome.Started
			run.Stages[i].ExitCode = outcome.ExitCode
			run.Stages[i].Succeeded = outcome.Succeeded
			run.Stages[i].FinishedAt = now
			break
		}
	})
}

// RunFinished seals the run record.
func (s *Sink) RunFinished(runID string, result pipeline.Result) error {
	now := time.Now().UTC().Format(time.RFC3339)
	return s.store.Update(func(snap *Snapshot) {
		run := snap.LastRun
		if run == nil || run.ID != runID {
			return
		}
		run.Status = result.Final.String()
		run.ExitCode = result.ExitCode
		if result.Final == pipeline.Aborted {
			run.AbortedAt = string(result.AbortedAt)
		}
		run.FinishedAt = now
	})
}
