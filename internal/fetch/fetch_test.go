package fetch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/windy-civi/govbot/internal/config"
	"github.com/windy-civi/govbot/internal/locale"
)

type mockGit struct {
	calls   []gitCall
	results []mockResult
	idx     int
}

type gitCall struct {
	Dir  string
	Args []string
}

type mockResult struct {
	Output string
	Err    error
}

func (m *mockGit) Run(dir string, args ...string) (string, error) {
	m.calls = append(m.calls, gitCall{Dir: dir, Args: args})
	if m.idx >= len(m.results) {
		return "", nil
	}
	r := m.results[m.idx]
	m.idx++
	return r.Output, r.Err
}

func newTestManager(t *testing.T, git GitRunner) (*Manager, string, *bytes.Buffer) {
	t.Helper()
	storeDir := filepath.Join(t.TempDir(), "repos")
	var out bytes.Buffer
	return NewManager(git, storeDir, config.DefaultRemotePattern, &out), storeDir, &out
}

func TestClone_HappyPath(t *testing.T) {
	git := &mockGit{}
	mgr, storeDir, out := newTestManager(t, git)

	results := mgr.Clone([]string{"il", "ca"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("unexpected error for %s: %v", r.ID, r.Err)
		}
		if r.Action != "cloned" {
			t.Errorf("expected action cloned for %s, got %q", r.ID, r.Action)
		}
	}

	if len(git.calls) != 2 {
		t.Fatalf("expected 2 git calls, got %d", len(git.calls))
	}
	assertArgs(t, git.calls[0].Args,
		"clone", "--depth", "1",
		"https://github.com/windy-civi/il.git",
		filepath.Join(storeDir, "il"))
	if git.calls[0].Dir != "" {
		t.Errorf("expected clone to run without a working dir, got %q", git.calls[0].Dir)
	}
	if !strings.Contains(out.String(), "✓ Cloned il") {
		t.Errorf("expected progress line, got:\n%s", out.String())
	}
}

func TestClone_AllSentinel(t *testing.T) {
	git := &mockGit{}
	mgr, _, _ := newTestManager(t, git)

	results := mgr.Clone([]string{"all"})
	if len(results) != len(locale.All()) {
		t.Fatalf("expected %d results, got %d", len(locale.All()), len(results))
	}
	if results[0].ID != locale.All()[0] {
		t.Errorf("expected first repo %q, got %q", locale.All()[0], results[0].ID)
	}
	if len(git.calls) != len(locale.All()) {
		t.Errorf("expected one clone per jurisdiction, got %d calls", len(git.calls))
	}
}

func TestClone_SkipsExisting(t *testing.T) {
	git := &mockGit{}
	mgr, storeDir, out := newTestManager(t, git)
	if err := os.MkdirAll(filepath.Join(storeDir, "il"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	results := mgr.Clone([]string{"il", "ca"})
	if results[0].Action != "skipped" {
		t.Errorf("expected il to be skipped, got %q", results[0].Action)
	}
	if results[1].Action != "cloned" {
		t.Errorf("expected ca to be cloned, got %q", results[1].Action)
	}
	if len(git.calls) != 1 {
		t.Fatalf("expected 1 git call, got %d", len(git.calls))
	}
	if !strings.Contains(out.String(), "✓ il already cloned") {
		t.Errorf("expected skip line, got:\n%s", out.String())
	}
}

func TestClone_ContinuesOnError(t *testing.T) {
	git := &mockGit{
		results: []mockResult{
			{Err: fmt.Errorf("remote not found")},
			{Output: ""},
		},
	}
	mgr, _, out := newTestManager(t, git)

	results := mgr.Clone([]string{"il", "ca"})
	if len(results) != 2 {
		t.Fatalf("expected both repos attempted, got %d results", len(results))
	}
	if results[0].Err == nil {
		t.Error("expected the il clone to fail")
	}
	if results[1].Err != nil {
		t.Errorf("expected the ca clone to succeed, got %v", results[1].Err)
	}
	if !strings.Contains(out.String(), "⚠️  Failed to clone il") {
		t.Errorf("expected failure line, got:\n%s", out.String())
	}
}

func TestClone_Dedupes(t *testing.T) {
	git := &mockGit{}
	mgr, _, _ := newTestManager(t, git)

	results := mgr.Clone([]string{"il", "il", "ca"})
	if len(results) != 2 {
		t.Fatalf("expected duplicates to collapse, got %d results", len(results))
	}
}

func TestExpand_PreservesOrder(t *testing.T) {
	mgr, _, _ := newTestManager(t, &mockGit{})

	got := mgr.Expand([]string{"ny", "il", "ca"})
	want := []string{"ny", "il", "ca"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected id %d to be %q, got %q", i, want[i], got[i])
		}
	}
}

func TestUpdate_HappyPath(t *testing.T) {
	git := &mockGit{}
	mgr, storeDir, out := newTestManager(t, git)
	for _, id := range []string{"ca", "il"} {
		if err := os.MkdirAll(filepath.Join(storeDir, id), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	results, err := mgr.Update()
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	assertArgs(t, git.calls[0].Args, "pull", "--ff-only")
	if git.calls[0].Dir != filepath.Join(storeDir, "ca") {
		t.Errorf("expected pull to run inside the repo, got %q", git.calls[0].Dir)
	}
	if !strings.Contains(out.String(), "✓ Updated ca") {
		t.Errorf("expected progress line, got:\n%s", out.String())
	}
}

func TestUpdate_ContinuesOnError(t *testing.T) {
	git := &mockGit{
		results: []mockResult{
			{Err: fmt.Errorf("merge conflict")},
			{Output: ""},
		},
	}
	mgr, storeDir, _ := newTestManager(t, git)
	for _, id := range []string{"ca", "il"} {
		if err := os.MkdirAll(filepath.Join(storeDir, id), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	results, err := mgr.Update()
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if results[0].Err == nil {
		t.Error("expected the first pull to fail")
	}
	if results[1].Err != nil {
		t.Errorf("expected the second pull to succeed, got %v", results[1].Err)
	}
}

func TestUpdate_SkipsPlainFiles(t *testing.T) {
	git := &mockGit{}
	mgr, storeDir, _ := newTestManager(t, git)
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(storeDir, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	results, err := mgr.Update()
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected plain files to be ignored, got %v", results)
	}
}

func TestUpdate_MissingStore(t *testing.T) {
	mgr, _, _ := newTestManager(t, &mockGit{})

	if _, err := mgr.Update(); err == nil {
		t.Fatal("expected an error for a missing store")
	}
}

// assertArgs verifies exact argument match (no substring false positives).
func assertArgs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("args length mismatch: got %v, want %v", got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("arg[%d] mismatch: got %q, want %q", i, got[i], want[i])
		}
	}
}
