package runlog

import (
	"database/sql"
	"fmt"
	"strings"
)

// Run represents a row in the runs table.
type Run struct {
	ID         string   `json:"id"`
	Mode       string   `json:"mode"`
	Repos      []string `json:"repos,omitempty"`
	Status     string   `json:"status"`
	AbortedAt  string   `json:"aborted_at,omitempty"`
	ExitCode   *int     `json:"exit_code,omitempty"`
	StartedAt  string   `json:"started_at"`
	FinishedAt string   `json:"finished_at,omitempty"`
}

// StageEvent represents a row in the stage_events table.
type StageEvent struct {
	ID        int    `json:"id"`
	RunID     string `json:"run_id"`
	Stage     string `json:"stage"`
	Event     string `json:"event"`
	Started   *bool  `json:"started,omitempty"`
	ExitCode  *int   `json:"exit_code,omitempty"`
	Succeeded *bool  `json:"succeeded,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// InsertRun records the start of a pipeline run.
func (d *DB) InsertRun(id, mode string, repos []string) error {
	_, err := d.conn.Exec(
		`INSERT INTO runs (id, mode, repos) VALUES (?, ?, ?)`,
		id, mode, strings.Join(repos, " "),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun records how a run ended. abortedAt is empty for completed runs.
func (d *DB) FinishRun(id, status, abortedAt string, exitCode *int) error {
	res, err := d.conn.Exec(
		`UPDATE runs SET status = ?, aborted_at = ?, exit_code = ?, finished_at = datetime('now') WHERE id = ?`,
		status, nullable(abortedAt), exitCode, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %q not found", id)
	}
	return nil
}

// LogStageEvent inserts a stage lifecycle event. The outcome columns are
// null for 'started' events.
func (d *DB) LogStageEvent(runID, stage, event string, started, succeeded *bool, exitCode *int, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO stage_events (run_id, stage, event, started, succeeded, exit_code, detail) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, stage, event, started, succeeded, exitCode, nullable(detail),
	)
	if err != nil {
		return fmt.Errorf("log stage event: %w", err)
	}
	return nil
}

// GetRun returns one run by id, or nil if it was never recorded.
func (d *DB) GetRun(id string) (*Run, error) {
	row := d.conn.QueryRow(
		`SELECT id, mode, repos, status, aborted_at, exit_code, started_at, finished_at
		 FROM runs WHERE id = ?`,
		id,
	)
	var r Run
	var repos, abortedAt, finishedAt sql.NullString
	var exitCode sql.NullInt64
	err := row.Scan(&r.ID, &r.Mode, &repos, &r.Status, &abortedAt, &exitCode, &r.StartedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if repos.Valid {
		r.Repos = strings.Fields(repos.String)
	}
	if abortedAt.Valid {
		r.AbortedAt = abortedAt.String
	}
	if exitCode.Valid {
		v := int(exitCode.Int64)
		r.ExitCode = &v
	}
	if finishedAt.Valid {
		r.FinishedAt = finishedAt.String
	}
	return &r, nil
}

// RecentRuns returns the latest runs, most recent first.
func (d *DB) RecentRuns(limit int) ([]Run, error) {
	rows, err := d.conn.Query(
		`SELECT id, mode, repos, status, aborted_at, exit_code, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var repos, abortedAt, finishedAt sql.NullString
		var exitCode sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Mode, &repos, &r.Status, &abortedAt, &exitCode, &r.StartedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if repos.Valid {
			r.Repos = strings.Fields(repos.String)
		}
		if abortedAt.Valid {
			r.AbortedAt = abortedAt.String
		}
		if exitCode.Valid {
			v := int(exitCode.Int64)
			r.ExitCode = &v
		}
		if finishedAt.Valid {
			r.FinishedAt = finishedAt.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunEvents returns every stage event for a run in insertion order.
func (d *DB) RunEvents(runID string) ([]StageEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, stage, event, started, succeeded, exit_code, detail, timestamp
		 FROM stage_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run events: %w", err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var e StageEvent
		var started, succeeded sql.NullBool
		var exitCode sql.NullInt64
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.Stage, &e.Event, &started, &succeeded, &exitCode, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stage event: %w", err)
		}
		if started.Valid {
			v := started.Bool
			e.Started = &v
		}
		if succeeded.Valid {
			v := succeeded.Bool
			e.Succeeded = &v
		}
		if exitCode.Valid {
			v := int(exitCode.Int64)
			e.ExitCode = &v
		}
		if detail.Valid {
			e.Detail = detail.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// nullable maps an empty string to NULL so optional text columns stay null
// instead of holding empty strings.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
