package pipeline

// StageName identifies one of the three pipeline stages.
type StageName string

const (
	StageFetch    StageName = "fetch"
	StageClassify StageName = "classify"
	StagePublish  StageName = "publish"
)

// FailureMode declares how a stage's failure affects the rest of the run.
type FailureMode int

const (
	// Tolerate lets the run continue past a failed stage with a warning.
	Tolerate FailureMode = iota
	// Fatal ends the run as soon as the stage fails.
	Fatal
)

// StageSpec describes one subcommand invocation of the govbot binary.
// Name groups processes into stages: the two halves of the classify pipe
// share a stage name but run as separate processes.
type StageSpec struct {
	Name        StageName
	Subcommand  string
	Args        []string
	FailureMode FailureMode
}

// StageOutcome records what happened to one spawned process.
//
// Succeeded is true iff the process started and exited with code zero.
// ExitCode is nil when no code could be determined: the process failed to
// spawn (Started false) or was killed by a signal (Started true). Err keeps
// the underlying spawn or wait error for diagnostics.
type StageOutcome struct {
	Started   bool
	ExitCode  *int
	Succeeded bool
	Err       error
}

// ShouldAbort reports whether an outcome ends the run. Only stages marked
// Fatal abort; failures everywhere else are warned about and tolerated.
func ShouldAbort(spec StageSpec, outcome StageOutcome) bool {
	return spec.FailureMode == Fatal && !outcome.Succeeded
}

// CombineOutcomes merges the two halves of a piped stage into one
// stage-level outcome: started only if both processes started, succeeded
// only if both succeeded. Exit codes stay per-process and are not merged.
func CombineOutcomes(producer, consumer StageOutcome) StageOutcome {
	return StageOutcome{
		Started:   producer.Started && consumer.Started,
		Succeeded: producer.Succeeded && consumer.Succeeded,
	}
}
