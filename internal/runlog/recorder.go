package runlog

import (
	"github.com/windy-civi/govbot/internal/pipeline"
)

// Recorder persists pipeline events to the run log database. It implements
// pipeline.EventSink.
type Recorder struct {
	db *DB
}

// NewRecorder returns a Recorder writing to db.
func NewRecorder(db *DB) *Recorder {
	return &Recorder{db: db}
}

func (r *Recorder) RunStarted(runID string, mode pipeline.Mode) error {
	return r.db.InsertRun(runID, mode.Kind.String(), mode.Repos)
}

func (r *Recorder) StageStarted(runID string, stage pipeline.StageName) error {
	return r.db.LogStageEvent(runID, string(stage), "started", nil, nil, nil, "")
}

func (r *Recorder) StageFinished(runID string, stage pipeline.StageName, out pipeline.StageOutcome) error {
	detail := ""
	if out.Err != nil {
		detail = out.Err.Error()
	}
	return r.db.LogStageEvent(runID, string(stage), "finished", &out.Started, &out.Succeeded, out.ExitCode, detail)
}

func (r *Recorder) RunFinished(runID string, result pipeline.Result) error {
	abortedAt := ""
	if result.Final == pipeline.Aborted {
		abortedAt = string(result.AbortedAt)
	}
	exitCode := result.ExitCode
	return r.db.FinishRun(runID, result.Final.String(), abortedAt, &exitCode)
}
