package pipeline

// EventSink observes the progress of a pipeline run. Sinks are called
// sequentially from the run goroutine; errors they return never stop the
// run.
type EventSink interface {
	RunStarted(runID string, mode Mode) error
	StageStarted(runID string, stage StageName) error
	StageFinished(runID string, stage StageName, outcome StageOutcome) error
	RunFinished(runID string, result Result) error
}
