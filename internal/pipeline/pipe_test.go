package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunPipedLossless(t *testing.T) {
	r := shRunner(t)
	dir := t.TempDir()

	// seq 1 200000 is about 1.3 MiB, well past both the kernel pipe buffer
	// and a megabyte, so truncation or reordering would be caught.
	prod, cons := r.RunPiped(
		shSpec(StageClassify, "seq 1 200000"),
		shSpec(StageClassify, "cat > out.dat"),
		dir,
	)
	if !prod.Succeeded {
		t.Fatalf("expected the producer to succeed, got %+v", prod)
	}
	if !cons.Succeeded {
		t.Fatalf("expected the consumer to succeed, got %+v", cons)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out.dat"))
	if err != nil {
		t.Fatalf("read piped output: %v", err)
	}
	if len(data) < 1<<20 {
		t.Fatalf("expected more than 1 MiB of piped data, got %d bytes", len(data))
	}
	if !strings.HasPrefix(string(data), "1\n2\n3\n") {
		t.Errorf("unexpected start of piped data: %q", data[:16])
	}
	if !strings.HasSuffix(string(data), "199999\n200000\n") {
		t.Errorf("unexpected end of piped data: %q", data[len(data)-16:])
	}
}

func TestRunPipedSlowConsumer(t *testing.T) {
	r := shRunner(t)
	dir := t.TempDir()

	// The producer fills the pipe long before the consumer starts reading.
	prod, cons := r.RunPiped(
		shSpec(StageClassify, "seq 1 200000"),
		shSpec(StageClassify, "sleep 1; wc -l > count.txt"),
		dir,
	)
	if !prod.Succeeded || !cons.Succeeded {
		t.Fatalf("expected both to succeed, got producer %+v consumer %+v", prod, cons)
	}

	data, err := os.ReadFile(filepath.Join(dir, "count.txt"))
	if err != nil {
		t.Fatalf("read count: %v", err)
	}
	if strings.TrimSpace(string(data)) != "200000" {
		t.Errorf("expected 200000 lines through the pipe, got %q", strings.TrimSpace(string(data)))
	}
}

func TestRunPipedConsumerDiesEarly(t *testing.T) {
	r := shRunner(t)

	// An endless producer against a consumer that quits immediately: the
	// bridge must surface the broken producer rather than hang on it.
	prod, cons := r.RunPiped(
		shSpec(StageClassify, "while :; do echo y; done"),
		shSpec(StageClassify, "exit 3"),
		t.TempDir(),
	)
	if cons.ExitCode == nil || *cons.ExitCode != 3 {
		t.Fatalf("expected consumer exit code 3, got %+v", cons)
	}
	if !prod.Started {
		t.Fatalf("expected the producer to have started, got %+v", prod)
	}
	if prod.Succeeded {
		t.Fatalf("expected the producer to fail on the broken pipe, got %+v", prod)
	}
}

func TestRunPipedProducerFails(t *testing.T) {
	r := shRunner(t)
	dir := t.TempDir()

	prod, cons := r.RunPiped(
		shSpec(StageClassify, "echo partial; exit 2"),
		shSpec(StageClassify, "cat > got.txt"),
		dir,
	)
	if prod.ExitCode == nil || *prod.ExitCode != 2 {
		t.Fatalf("expected producer exit code 2, got %+v", prod)
	}
	if !cons.Succeeded {
		t.Fatalf("expected the consumer to drain and succeed, got %+v", cons)
	}
	if combined := CombineOutcomes(prod, cons); combined.Succeeded {
		t.Fatal("one failed half must fail the combined outcome")
	}

	data, err := os.ReadFile(filepath.Join(dir, "got.txt"))
	if err != nil {
		t.Fatalf("read consumer output: %v", err)
	}
	if strings.TrimSpace(string(data)) != "partial" {
		t.Errorf("expected the consumer to keep partial output, got %q", data)
	}
}

func TestRunPipedSpawnFailure(t *testing.T) {
	r := NewExecRunner(filepath.Join(t.TempDir(), "missing-binary"))

	prod, cons := r.RunPiped(
		StageSpec{Name: StageClassify, Subcommand: "extract-activity-log"},
		StageSpec{Name: StageClassify, Subcommand: "classify"},
		t.TempDir(),
	)
	if prod.Started || cons.Started {
		t.Fatalf("expected neither process to start, got producer %+v consumer %+v", prod, cons)
	}
	if prod.Err == nil {
		t.Fatal("expected the producer spawn error to be kept")
	}
}
