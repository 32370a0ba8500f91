package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// State identifies where a run is in its lifecycle.
type State int

const (
	NotStarted State = iota
	Fetching
	Classifying
	Publishing
	Done
	Aborted
)

// String returns the state name used in logs and run records.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Fetching:
		return "fetching"
	case Classifying:
		return "classifying"
	case Publishing:
		return "publishing"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// StageState returns the lifecycle state a run is in while the given stage
// executes.
func StageState(stage StageName) State {
	switch stage {
	case StageFetch:
		return Fetching
	case StageClassify:
		return Classifying
	case StagePublish:
		return Publishing
	}
	return NotStarted
}

// Result records how a run ended.
type Result struct {
	Final     State     // Done or Aborted
	AbortedAt StageName // stage that ended the run, set when Final is Aborted
	ExitCode  int       // 0 for Done; the fatal stage's exit code or -1 for Aborted
}

// AbortError reports the fatal stage failure that ended a run.
type AbortError struct {
	Stage    StageName
	ExitCode int // observed exit code, or -1 when none could be determined
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s step failed with exit code: %d", e.Stage, e.ExitCode)
}

// Runner drives the fetch, classify, and publish stages of a pipeline run.
type Runner struct {
	proc  ProcessRunner
	out   io.Writer
	sinks []EventSink
}

// NewRunner creates a Runner that spawns stages through proc and writes
// progress banners to out, normally stderr so stage output stays clean.
func NewRunner(proc ProcessRunner, out io.Writer, sinks ...EventSink) *Runner {
	return &Runner{proc: proc, out: out, sinks: sinks}
}

// RunPipeline executes one full run against the config at configPath. Every
// stage runs in the directory containing the config file.
//
// Fetch and classify failures are tolerated: the publisher can still ship
// whatever data is already on disk, and stale beats absent. Only a publish
// failure aborts the run, and only that failure makes RunPipeline return an
// error.
func (r *Runner) RunPipeline(configPath string) error {
	workDir := filepath.Dir(configPath)

	mode, err := DetectMode(workDir, configPath)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	r.emitRunStarted(runID, mode)

	// Step 1: bring the data repositories up to date.
	fetch := StageSpec{Name: StageFetch, Subcommand: "fetch", FailureMode: Tolerate}
	verb := "Cloning"
	if mode.Kind == ModeUpdate {
		verb = "Updating"
	} else {
		fetch.Args = mode.Repos
	}
	r.banner(1, verb+" repositories")
	r.emitStageStarted(runID, StageFetch)
	fetchOut := r.proc.Run(fetch, workDir)
	r.emitStageFinished(runID, StageFetch, fetchOut)
	if !fetchOut.Succeeded {
		r.warn("Clone/update", describe("fetch", fetchOut))
	}
	if ShouldAbort(fetch, fetchOut) {
		return r.abort(runID, fetch.Name, fetchOut)
	}

	// Step 2: stream the activity log into the classifier.
	producer := StageSpec{Name: StageClassify, Subcommand: "extract-activity-log", FailureMode: Tolerate}
	consumer := StageSpec{Name: StageClassify, Subcommand: "classify", FailureMode: Tolerate}
	r.banner(2, "Tagging bills")
	r.emitStageStarted(runID, StageClassify)
	prodOut, consOut := r.proc.RunPiped(producer, consumer, workDir)
	classifyOut := CombineOutcomes(prodOut, consOut)
	r.emitStageFinished(runID, StageClassify, classifyOut)
	if !classifyOut.Succeeded {
		var causes []string
		if !prodOut.Succeeded {
			causes = append(causes, describe("extract-activity-log", prodOut))
		}
		if !consOut.Succeeded {
			causes = append(causes, describe("classify", consOut))
		}
		r.warn("Tagging", strings.Join(causes, "; "))
	}
	if ShouldAbort(producer, prodOut) || ShouldAbort(consumer, consOut) {
		return r.abort(runID, StageClassify, classifyOut)
	}

	// Step 3: publish the feeds. Only this stage is allowed to end the run.
	publish := StageSpec{Name: StagePublish, Subcommand: "build", FailureMode: Fatal}
	r.banner(3, "Building RSS feeds")
	r.emitStageStarted(runID, StagePublish)
	publishOut := r.proc.Run(publish, workDir)
	r.emitStageFinished(runID, StagePublish, publishOut)
	if ShouldAbort(publish, publishOut) {
		return r.abort(runID, publish.Name, publishOut)
	}

	fmt.Fprintf(r.out, "\nPipeline complete!\n")
	r.emitRunFinished(runID, Result{Final: Done})
	return nil
}

// abort records a fatal stage failure and returns the run-ending error.
func (r *Runner) abort(runID string, stage StageName, out StageOutcome) error {
	code := -1
	if out.ExitCode != nil {
		code = *out.ExitCode
	}
	r.emitRunFinished(runID, Result{Final: Aborted, AbortedAt: stage, ExitCode: code})
	return &AbortError{Stage: stage, ExitCode: code}
}

// banner prints the step header that frames each stage's own output.
func (r *Runner) banner(step int, title string) {
	fmt.Fprintf(r.out, "\n=== Step %d/3: %s ===\n\n", step, title)
}

// warn reports a tolerated stage failure without stopping the run.
func (r *Runner) warn(label, cause string) {
	fmt.Fprintf(r.out, "⚠️  %s had errors: %s (continuing anyway)\n", label, cause)
}

// describe renders a failed outcome as a short cause for warnings.
func describe(subcommand string, out StageOutcome) string {
	switch {
	case !out.Started && out.Err != nil:
		return fmt.Sprintf("%s: %v", subcommand, out.Err)
	case !out.Started:
		return fmt.Sprintf("%s: failed to start", subcommand)
	case out.ExitCode != nil:
		return fmt.Sprintf("%s: exit code %d", subcommand, *out.ExitCode)
	case out.Err != nil:
		return fmt.Sprintf("%s: %v", subcommand, out.Err)
	default:
		return fmt.Sprintf("%s: failed", subcommand)
	}
}

func (r *Runner) emitRunStarted(runID string, mode Mode) {
	for _, s := range r.sinks {
		_ = s.RunStarted(runID, mode)
	}
}

func (r *Runner) emitStageStarted(runID string, stage StageName) {
	for _, s := range r.sinks {
		_ = s.StageStarted(runID, stage)
	}
}

func (r *Runner) emitStageFinished(runID string, stage StageName, out StageOutcome) {
	for _, s := range r.sinks {
		_ = s.StageFinished(runID, stage, out)
	}
}

func (r *Runner) emitRunFinished(runID string, result Result) {
	for _, s := range r.sinks {
		_ = s.RunFinished(runID, result)
	}
}
