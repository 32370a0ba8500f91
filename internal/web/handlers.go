package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/windy-civi/govbot/internal/analytics"
	"github.com/windy-civi/govbot/internal/runlog"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleRuns returns recent runs, newest first. ?limit= caps the count
// (default 20).
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.db.RecentRuns(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []runlog.Run{}
	}
	writeJSON(w, runs)
}

// handleRun returns one run with its full stage event history.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, id string) {
	run, err := s.db.GetRun(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}
	events, err := s.db.RunEvents(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, struct {
		Run    *runlog.Run         `json:"run"`
		Events []runlog.StageEvent `json:"events"`
	}{run, events})
}

// handleRunEvents returns a run's stage timeline with rendered outcomes.
func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request, id string) {
	run, err := s.db.GetRun(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}
	timeline, err := analytics.QueryRunTimeline(s.db, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if timeline == nil {
		timeline = []analytics.TimelineEvent{}
	}
	writeJSON(w, timeline)
}

// handleStats aggregates run history: totals, per-stage reliability and
// durations, and weekly throughput. ?since= filters by start timestamp.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	since := r.URL.Query().Get("since")

	overview, err := analytics.QueryOverview(s.db, since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	reliability, err := analytics.QueryStageReliability(s.db, since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	durations, err := analytics.QueryStageDurations(s.db, since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	throughput, err := analytics.QueryThroughput(s.db, since)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		Overview    *analytics.Overview          `json:"overview"`
		Reliability []analytics.StageReliability `json:"reliability"`
		Durations   []analytics.StageDuration    `json:"durations"`
		Throughput  []analytics.RunThroughput    `json:"throughput"`
	}{overview, reliability, durations, throughput})
}

// handleState returns the last-run snapshot, which reflects a run still in
// flight before the run log row is finalized.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Load()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snap)
}
