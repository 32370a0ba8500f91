package pipeline

import (
	"os"
	"os/exec"
)

// ProcessRunner abstracts stage process execution for testability.
type ProcessRunner interface {
	// Run spawns a single stage subcommand with inherited stdio and blocks
	// until it exits.
	Run(spec StageSpec, dir string) StageOutcome
	// RunPiped spawns producer and consumer together, the producer's stdout
	// feeding the consumer's stdin, and reaps the consumer before the
	// producer. Outcomes are returned in spawn order.
	RunPiped(producer, consumer StageSpec, dir string) (StageOutcome, StageOutcome)
}

// ExecRunner implements ProcessRunner by re-invoking a govbot binary.
type ExecRunner struct {
	// Binary is the executable spawned for every stage, normally the path
	// reported by os.Executable.
	Binary string
}

// NewExecRunner creates an ExecRunner for the given binary.
func NewExecRunner(binary string) *ExecRunner {
	return &ExecRunner{Binary: binary}
}

// Run spawns one subcommand in dir and waits for it.
func (r *ExecRunner) Run(spec StageSpec, dir string) StageOutcome {
	cmd := r.command(spec, dir)
	cmd.Stdout = os.Stdout
	return runOutcome(cmd.Run())
}

// command builds the exec.Cmd for a stage spec. Stdout is left unset so
// callers choose between inheriting and capturing it.
func (r *ExecRunner) command(spec StageSpec, dir string) *exec.Cmd {
	cmd := exec.Command(r.Binary, append([]string{spec.Subcommand}, spec.Args...)...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	return cmd
}

// runOutcome translates the error from exec.Cmd.Run or Wait into a StageOutcome.
func runOutcome(err error) StageOutcome {
	if err == nil {
		code := 0
		return StageOutcome{Started: true, ExitCode: &code, Succeeded: true}
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if code := exitErr.ExitCode(); code >= 0 {
			return StageOutcome{Started: true, ExitCode: &code}
		}
		// Killed by a signal: the process ran but left no exit code.
		return StageOutcome{Started: true, Err: err}
	}
	// Spawn failed, or the wait itself errored.
	return StageOutcome{Err: err}
}
