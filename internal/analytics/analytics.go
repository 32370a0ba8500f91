// Package analytics computes aggregate statistics over recorded pipeline
// runs for the status command and the dashboard.
package analytics

import (
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"
)

// DB is the interface for database queries used by analytics.
type DB interface {
	Conn() *sql.DB
}

// Overview summarizes the recorded runs.
type Overview struct {
	Total       int    `json:"total"`
	Done        int    `json:"done"`
	Aborted     int    `json:"aborted"`
	Running     int    `json:"running"`
	LastStarted string `json:"last_started,omitempty"`
	LastStatus  string `json:"last_status,omitempty"`
}

// QueryOverview returns run counts by status plus the most recent run.
func QueryOverview(database DB, since string) (*Overview, error) {
	query := `
		SELECT COUNT(*),
			SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'aborted' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END)
		FROM runs`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE started_at >= ?`
		args = append(args, since)
	}

	var o Overview
	var done, aborted, running sql.NullInt64
	err := database.Conn().QueryRow(query, args...).Scan(&o.Total, &done, &aborted, &running)
	if err != nil {
		return nil, fmt.Errorf("query run overview: %w", err)
	}
	o.Done = int(done.Int64)
	o.Aborted = int(aborted.Int64)
	o.Running = int(running.Int64)

	lastQuery := `SELECT started_at, status FROM runs`
	if since != "" {
		lastQuery += ` WHERE started_at >= ?`
	}
	lastQuery += ` ORDER BY started_at DESC, rowid DESC LIMIT 1`

	var started, status string
	err = database.Conn().QueryRow(lastQuery, args...).Scan(&started, &status)
	if err == nil {
		o.LastStarted = started
		o.LastStatus = status
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	return &o, nil
}

// StageDuration holds duration stats for a stage.
type StageDuration struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Avg   float64 `json:"avg_seconds"`
	P50   float64 `json:"p50_seconds"`
	P95   float64 `json:"p95_seconds"`
}

// timestamp formats to try when parsing timestamps from the database
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000",
}

func parseTimestamp(s string) (time.Time, error) {
	for _, f := range timestampFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}

// QueryStageDurations returns average and percentile durations per stage.
// Each finished event is paired with the most recent prior started event
// for the same run and stage.
func QueryStageDurations(database DB, since string) ([]StageDuration, error) {
	query := `
		SELECT se1.stage, se1.timestamp as end_ts,
			(SELECT MAX(se2.timestamp) FROM stage_events se2
			 WHERE se2.run_id = se1.run_id
			 AND se2.stage = se1.stage
			 AND se2.event = 'started'
			 AND se2.id < se1.id) as start_ts
		FROM stage_events se1
		WHERE se1.event = 'finished'`

	args := []interface{}{}
	if since != "" {
		query += ` AND se1.timestamp >= ?`
		args = append(args, since)
	}

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stage durations: %w", err)
	}
	defer rows.Close()

	stageDurations := make(map[string][]float64)
	for rows.Next() {
		var stage string
		var endTS string
		var startTS sql.NullString
		if err := rows.Scan(&stage, &endTS, &startTS); err != nil {
			return nil, fmt.Errorf("scan stage duration: %w", err)
		}
		if !startTS.Valid {
			continue
		}
		start, err := parseTimestamp(startTS.String)
		if err != nil {
			continue
		}
		end, err := parseTimestamp(endTS)
		if err != nil {
			continue
		}
		seconds := end.Sub(start).Seconds()
		if seconds >= 0 {
			stageDurations[stage] = append(stageDurations[stage], seconds)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var results []StageDuration
	for stage, durations := range stageDurations {
		sort.Float64s(durations)
		results = append(results, StageDuration{
			Stage: stage,
			Count: len(durations),
			Avg:   avg(durations),
			P50:   percentile(durations, 50),
			P95:   percentile(durations, 95),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Stage < results[j].Stage
	})
	return results, nil
}

// StageReliability holds success stats per stage.
type StageReliability struct {
	Stage         string  `json:"stage"`
	Total         int     `json:"total"`
	SuccessPct    float64 `json:"success_pct"`
	SpawnFailures int     `json:"spawn_failures"`
}

// QueryStageReliability returns how often each stage succeeds and how often
// it never even started.
func QueryStageReliability(database DB, since string) ([]StageReliability, error) {
	query := `
		SELECT stage,
			COUNT(*) as total,
			SUM(CASE WHEN succeeded = 1 THEN 1 ELSE 0 END) as succeeded,
			SUM(CASE WHEN started = 0 THEN 1 ELSE 0 END) as spawn_failures
		FROM stage_events
		WHERE event = 'finished'`

	args := []interface{}{}
	if since != "" {
		query += ` AND timestamp >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY stage ORDER BY stage`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query stage reliability: %w", err)
	}
	defer rows.Close()

	var results []StageReliability
	for rows.Next() {
		var r StageReliability
		var succeeded, spawnFailures sql.NullInt64
		if err := rows.Scan(&r.Stage, &r.Total, &succeeded, &spawnFailures); err != nil {
			return nil, fmt.Errorf("scan stage reliability: %w", err)
		}
		r.SuccessPct = pct(int(succeeded.Int64), r.Total)
		r.SpawnFailures = int(spawnFailures.Int64)
		results = append(results, r)
	}
	return results, rows.Err()
}

// RunThroughput holds run counts for a time period.
type RunThroughput struct {
	Period     string  `json:"period"`
	Runs       int     `json:"runs"`
	Done       int     `json:"done"`
	Aborted    int     `json:"aborted"`
	AvgMinutes float64 `json:"avg_duration_minutes"`
}

// QueryThroughput returns run metrics grouped by week.
func QueryThroughput(database DB, since string) ([]RunThroughput, error) {
	query := `
		SELECT
			strftime('%Y-W%W', started_at) as period,
			COUNT(*) as runs,
			SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END) as done,
			SUM(CASE WHEN status = 'aborted' THEN 1 ELSE 0 END) as aborted
		FROM runs`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE started_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY period ORDER BY period DESC LIMIT 10`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query throughput: %w", err)
	}
	defer rows.Close()

	var results []RunThroughput
	for rows.Next() {
		var rt RunThroughput
		if err := rows.Scan(&rt.Period, &rt.Runs, &rt.Done, &rt.Aborted); err != nil {
			return nil, fmt.Errorf("scan throughput: %w", err)
		}
		results = append(results, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		durQuery := `
			SELECT AVG((julianday(finished_at) - julianday(started_at)) * 1440) as avg_minutes
			FROM runs
			WHERE finished_at IS NOT NULL
			AND strftime('%Y-W%W', started_at) = ?`

		var avgMinutes sql.NullFloat64
		if err := database.Conn().QueryRow(durQuery, results[i].Period).Scan(&avgMinutes); err == nil && avgMinutes.Valid {
			results[i].AvgMinutes = math.Round(avgMinutes.Float64*10) / 10
		}
	}

	return results, nil
}

// TimelineEvent is one formatted entry in a run's history.
type TimelineEvent struct {
	Timestamp string `json:"timestamp"`
	Stage     string `json:"stage"`
	Event     string `json:"event"`
	Detail    string `json:"detail,omitempty"`
}

// QueryRunTimeline returns the full stage history for one run with outcomes
// rendered as short PASS/FAIL labels.
func QueryRunTimeline(database DB, runID string) ([]TimelineEvent, error) {
	rows, err := database.Conn().Query(
		`SELECT timestamp, stage, event, started, succeeded, exit_code, detail
		 FROM stage_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run timeline: %w", err)
	}
	defer rows.Close()

	var results []TimelineEvent
	for rows.Next() {
		var e TimelineEvent
		var started, succeeded sql.NullBool
		var exitCode sql.NullInt64
		var detail sql.NullString
		if err := rows.Scan(&e.Timestamp, &e.Stage, &e.Event, &started, &succeeded, &exitCode, &detail); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}

		if e.Event == "finished" {
			status := "PASS"
			if !succeeded.Bool {
				status = "FAIL"
			}
			switch {
			case exitCode.Valid:
				e.Detail = fmt.Sprintf("%s (exit %d)", status, exitCode.Int64)
			case started.Valid && !started.Bool:
				e.Detail = fmt.Sprintf("%s (did not start)", status)
			default:
				e.Detail = status
			}
			if detail.Valid && detail.String != "" {
				e.Detail += ": " + detail.String
			}
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// --- helpers ---

func avg(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return math.Round(sum/float64(len(values))*10) / 10
}

func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := float64(p) / 100.0 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper || upper >= len(sorted) {
		return math.Round(sorted[lower]*10) / 10
	}
	weight := rank - float64(lower)
	return math.Round((sorted[lower]*(1-weight)+sorted[upper]*weight)*10) / 10
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
