package pipeline

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// shSpec builds a spec that runs a shell script, so exec and pipe behaviour
// can be tested against real processes without a govbot binary.
func shSpec(name StageName, script string) StageSpec {
	return StageSpec{Name: name, Subcommand: "-c", Args: []string{script}}
}

func shRunner(t *testing.T) *ExecRunner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	return NewExecRunner("sh")
}

func TestExecRunnerRun(t *testing.T) {
	r := shRunner(t)

	out := r.Run(shSpec(StageFetch, "exit 0"), t.TempDir())
	if !out.Started || !out.Succeeded {
		t.Fatalf("expected success, got %+v", out)
	}
	if out.ExitCode == nil || *out.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", out.ExitCode)
	}
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	r := shRunner(t)

	out := r.Run(shSpec(StageFetch, "exit 3"), t.TempDir())
	if out.Succeeded {
		t.Fatal("expected failure")
	}
	if !out.Started {
		t.Fatal("expected the process to have started")
	}
	if out.ExitCode == nil || *out.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %v", out.ExitCode)
	}
}

func TestExecRunnerSpawnFailure(t *testing.T) {
	r := NewExecRunner(filepath.Join(t.TempDir(), "missing-binary"))

	out := r.Run(StageSpec{Name: StageFetch, Subcommand: "fetch"}, t.TempDir())
	if out.Started || out.Succeeded {
		t.Fatalf("expected a spawn failure, got %+v", out)
	}
	if out.ExitCode != nil {
		t.Fatalf("expected no exit code, got %d", *out.ExitCode)
	}
	if out.Err == nil {
		t.Fatal("expected the spawn error to be kept")
	}
}

func TestExecRunnerRunsInDir(t *testing.T) {
	r := shRunner(t)
	dir := t.TempDir()

	out := r.Run(shSpec(StageFetch, "echo ran > marker.txt"), dir)
	if !out.Succeeded {
		t.Fatalf("expected success, got %+v", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "marker.txt")); err != nil {
		t.Fatalf("expected a marker in the working dir: %v", err)
	}
}
