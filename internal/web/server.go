// Package web serves the built feed site plus a read-only JSON API over the
// run log, for watching pipeline runs from a browser.
package web

import (
	"log"
	"net/http"
	"strings"

	"github.com/windy-civi/govbot/internal/runlog"
	"github.com/windy-civi/govbot/internal/state"
)

// Server is the local govbot UI server.
type Server struct {
	db      *runlog.DB
	store   *state.Store
	siteDir string
	addr    string
}

// NewServer creates a Server over the run log database and state snapshot,
// serving static files from siteDir.
func NewServer(db *runlog.DB, store *state.Store, siteDir, addr string) *Server {
	return &Server{db: db, store: store, siteDir: siteDir, addr: addr}
}

// Handler builds the route table. Exposed separately from Start so tests can
// drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.routeRun)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/state", s.handleState)
	mux.Handle("/", http.FileServer(http.Dir(s.siteDir)))
	return mux
}

// Start registers routes and listens until the process is killed.
func (s *Server) Start() error {
	log.Printf("govbot UI: http://localhost%s", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *Server) routeRun(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleRun(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "events":
		s.handleRunEvents(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "stream":
		s.handleRunStream(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}
