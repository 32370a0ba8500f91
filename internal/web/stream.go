package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// streamInterval is how often the run log is polled for new stage events.
var streamInterval = 2 * time.Second

// handleRunStream serves a Server-Sent Events stream of a run's stage
// events. Events already recorded are sent immediately; new ones follow as
// the run progresses. When the run reaches a terminal status the stream ends
// with a "done" event carrying that status.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request, id string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	run, err := s.db.GetRun(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering if present

	sendDone := func(reason string) {
		fmt.Fprintf(w, "event: done\ndata: %s\n\n", reason)
		flusher.Flush()
	}

	tick := time.NewTicker(streamInterval)
	defer tick.Stop()

	sent := 0
	for {
		events, err := s.db.RunEvents(id)
		if err != nil {
			sendDone("run log unavailable")
			return
		}
		for _, event := range events[sent:] {
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		sent = len(events)
		flusher.Flush()

		run, err := s.db.GetRun(id)
		if err != nil || run == nil {
			sendDone("run not found")
			return
		}
		if run.Status != "running" {
			sendDone(run.Status)
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
		}
	}
}
