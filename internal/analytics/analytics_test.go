package analytics

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/windy-civi/govbot/internal/runlog"
)

func testDB(t *testing.T) *runlog.DB {
	t.Helper()
	d, err := runlog.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := d.Migrate(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func exec(t *testing.T, conn *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := conn.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func seedRun(t *testing.T, conn *sql.DB, id, mode, status, startedAt string) {
	t.Helper()
	exec(t, conn, `INSERT INTO runs (id, mode, status, started_at) VALUES (?, ?, ?, ?)`,
		id, mode, status, startedAt)
}

// --- QueryOverview ---

func TestQueryOverview(t *testing.T) {
	d := testDB(t)
	c := d.Conn()

	seedRun(t, c, "run-1", "clone", "done", "2025-08-01 10:00:00")
	seedRun(t, c, "run-2", "update", "aborted", "2025-08-02 10:00:00")
	seedRun(t, c, "run-3", "update", "running", "2025-08-03 10:00:00")

	o, err := QueryOverview(d, "")
	if err != nil {
		t.Fatalf("QueryOverview: %v", err)
	}
	if o.Total != 3 || o.Done != 1 || o.Aborted != 1 || o.Running != 1 {
		t.Errorf("unexpected overview %+v", o)
	}
	if o.LastStarted != "2025-08-03 10:00:00" {
		t.Errorf("last_started = %q, want the newest run", o.LastStarted)
	}
	if o.LastStatus != "running" {
		t.Errorf("last_status = %q, want running", o.LastStatus)
	}
}

func TestQueryOverview_Since(t *testing.T) {
	d := testDB(t)
	c := d.Conn()

	seedRun(t, c, "run-1", "clone", "done", "2025-01-01 10:00:00")
	seedRun(t, c, "run-2", "update", "done", "2025-08-02 10:00:00")

	o, err := QueryOverview(d, "2025-08-01")
	if err != nil {
		t.Fatalf("QueryOverview: %v", err)
	}
	if o.Total != 1 {
		t.Errorf("total = %d, want 1 with since filter", o.Total)
	}
}

func TestQueryOverview_Empty(t *testing.T) {
	d := testDB(t)

	o, err := QueryOverview(d, "")
	if err != nil {
		t.Fatalf("QueryOverview: %v", err)
	}
	if o.Total != 0 || o.LastStatus != "" {
		t.Errorf("unexpected overview for empty db %+v", o)
	}
}

// --- QueryStageDurations ---

func TestQueryStageDurations(t *testing.T) {
	d := testDB(t)
	c := d.Conn()

	seedRun(t, c, "run-1", "update", "done", "2025-08-01 10:00:00")
	seedRun(t, c, "run-2", "update", "done", "2025-08-02 10:00:00")

	// Run 1: fetch takes 60s
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, timestamp) VALUES ('run-1', 'fetch', 'started', '2025-08-01 10:00:00')`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, timestamp) VALUES ('run-1', 'fetch', 'finished', '2025-08-01 10:01:00')`)

	// Run 2: fetch takes 120s
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, timestamp) VALUES ('run-2', 'fetch', 'started', '2025-08-02 10:00:00')`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, timestamp) VALUES ('run-2', 'fetch', 'finished', '2025-08-02 10:02:00')`)

	results, err := QueryStageDurations(d, "")
	if err != nil {
		t.Fatalf("QueryStageDurations: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 stage duration result, got %d", len(results))
	}
	fetch := results[0]
	if fetch.Stage != "fetch" {
		t.Errorf("stage = %q, want fetch", fetch.Stage)
	}
	if fetch.Count != 2 {
		t.Errorf("fetch count = %d, want 2", fetch.Count)
	}
	if fetch.Avg != 90.0 {
		t.Errorf("fetch avg = %f, want 90.0", fetch.Avg)
	}
}

func TestQueryStageDurations_PairsWithinRun(t *testing.T) {
	d := testDB(t)
	c := d.Conn()

	seedRun(t, c, "run-1", "update", "done", "2025-08-01 10:00:00")
	seedRun(t, c, "run-2", "update", "done", "2025-08-01 10:00:00")

	// Two overlapping runs. Cross-run pairing would yield a 30s phantom.
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, timestamp) VALUES ('run-1', 'fetch', 'started', '2025-08-01 10:00:00')`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, timestamp) VALUES ('run-2', 'fetch', 'started', '2025-08-01 10:00:30')`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, timestamp) VALUES ('run-1', 'fetch', 'finished', '2025-08-01 10:01:00')`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, timestamp) VALUES ('run-2', 'fetch', 'finished', '2025-08-01 10:02:30')`)

	results, err := QueryStageDurations(d, "")
	if err != nil {
		t.Fatalf("QueryStageDurations: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	// 60s and 120s, not 30s and 90s
	if results[0].Avg != 90.0 {
		t.Errorf("avg = %f, want 90.0 from per-run pairing", results[0].Avg)
	}
}

func TestQueryStageDurations_Empty(t *testing.T) {
	d := testDB(t)

	results, err := QueryStageDurations(d, "")
	if err != nil {
		t.Fatalf("QueryStageDurations: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

// --- QueryStageReliability ---

func TestQueryStageReliability(t *testing.T) {
	d := testDB(t)
	c := d.Conn()

	seedRun(t, c, "run-1", "update", "done", "2025-08-01 10:00:00")
	seedRun(t, c, "run-2", "update", "done", "2025-08-02 10:00:00")

	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, started, succeeded, exit_code) VALUES ('run-1', 'fetch', 'finished', 1, 1, 0)`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, started, succeeded, exit_code) VALUES ('run-2', 'fetch', 'finished', 1, 0, 1)`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, started, succeeded) VALUES ('run-2', 'publish', 'finished', 0, 0)`)

	results, err := QueryStageReliability(d, "")
	if err != nil {
		t.Fatalf("QueryStageReliability: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(results))
	}

	fetch := results[0]
	if fetch.Stage != "fetch" || fetch.Total != 2 {
		t.Errorf("unexpected first stage %+v", fetch)
	}
	if fetch.SuccessPct != 50.0 {
		t.Errorf("fetch success = %f, want 50.0", fetch.SuccessPct)
	}
	if fetch.SpawnFailures != 0 {
		t.Errorf("fetch spawn failures = %d, want 0", fetch.SpawnFailures)
	}

	publish := results[1]
	if publish.Stage != "publish" || publish.SpawnFailures != 1 {
		t.Errorf("unexpected publish stats %+v", publish)
	}
	if publish.SuccessPct != 0.0 {
		t.Errorf("publish success = %f, want 0.0", publish.SuccessPct)
	}
}

// --- QueryThroughput ---

func TestQueryThroughput(t *testing.T) {
	d := testDB(t)
	c := d.Conn()

	// Two runs in one week, one in the next
	exec(t, c, `INSERT INTO runs (id, mode, status, started_at, finished_at) VALUES ('run-1', 'update', 'done', '2025-08-04 10:00:00', '2025-08-04 10:06:00')`)
	exec(t, c, `INSERT INTO runs (id, mode, status, started_at, finished_at) VALUES ('run-2', 'update', 'aborted', '2025-08-05 10:00:00', '2025-08-05 10:02:00')`)
	exec(t, c, `INSERT INTO runs (id, mode, status, started_at, finished_at) VALUES ('run-3', 'update', 'done', '2025-08-11 10:00:00', '2025-08-11 10:10:00')`)

	results, err := QueryThroughput(d, "")
	if err != nil {
		t.Fatalf("QueryThroughput: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(results))
	}

	// Most recent period first
	latest := results[0]
	if latest.Runs != 1 || latest.Done != 1 || latest.Aborted != 0 {
		t.Errorf("unexpected latest period %+v", latest)
	}
	if latest.AvgMinutes != 10.0 {
		t.Errorf("latest avg = %f, want 10.0", latest.AvgMinutes)
	}

	earlier := results[1]
	if earlier.Runs != 2 || earlier.Done != 1 || earlier.Aborted != 1 {
		t.Errorf("unexpected earlier period %+v", earlier)
	}
	if earlier.AvgMinutes != 4.0 {
		t.Errorf("earlier avg = %f, want 4.0", earlier.AvgMinutes)
	}
}

// --- QueryRunTimeline ---

func TestQueryRunTimeline(t *testing.T) {
	d := testDB(t)
	c := d.Conn()

	seedRun(t, c, "run-1", "update", "aborted", "2025-08-01 10:00:00")

	exec(t, c, `INSERT INTO stage_events (run_id, stage, event) VALUES ('run-1', 'fetch', 'started')`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, started, succeeded, exit_code) VALUES ('run-1', 'fetch', 'finished', 1, 1, 0)`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event) VALUES ('run-1', 'publish', 'started')`)
	exec(t, c, `INSERT INTO stage_events (run_id, stage, event, started, succeeded, detail) VALUES ('run-1', 'publish', 'finished', 0, 0, 'executable not found')`)

	events, err := QueryRunTimeline(d, "run-1")
	if err != nil {
		t.Fatalf("QueryRunTimeline: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(events))
	}

	if events[0].Event != "started" || events[0].Detail != "" {
		t.Errorf("unexpected first event %+v", events[0])
	}
	if events[1].Detail != "PASS (exit 0)" {
		t.Errorf("fetch detail = %q, want PASS (exit 0)", events[1].Detail)
	}
	if !strings.HasPrefix(events[3].Detail, "FAIL (did not start)") {
		t.Errorf("publish detail = %q, want a spawn failure label", events[3].Detail)
	}
	if !strings.Contains(events[3].Detail, "executable not found") {
		t.Errorf("publish detail = %q, want the spawn error appended", events[3].Detail)
	}
}

func TestQueryRunTimeline_Empty(t *testing.T) {
	d := testDB(t)

	events, err := QueryRunTimeline(d, "nonexistent")
	if err != nil {
		t.Fatalf("QueryRunTimeline: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected 0 events, got %d", len(events))
	}
}
