package activity

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Extractor scans cloned repositories for scraped payloads and writes the
// activity log. Vote events are detected but have no parser yet, so they are
// skipped.
type Extractor struct {
	storeDir string
	globs    []string
	warn     io.Writer
	parsers  map[string]Parser
}

// NewExtractor creates an Extractor over the repository store at storeDir.
// Scan globs come from the config and match relative to each repository root.
// Files that can't be read or parsed are reported to warn and skipped.
func NewExtractor(storeDir string, globs []string, warn io.Writer) *Extractor {
	e := &Extractor{
		storeDir: storeDir,
		globs:    globs,
		warn:     warn,
		parsers:  make(map[string]Parser),
	}
	e.parsers["bill"] = &BillParser{}
	e.parsers["event"] = &EventParser{}
	return e
}

// Run walks every repository in the store and streams one JSON record per
// line to w. It returns the number of records written.
func (e *Extractor) Run(w io.Writer) (int, error) {
	repos, err := os.ReadDir(e.storeDir)
	if err != nil {
		return 0, fmt.Errorf("read repo store: %w", err)
	}

	enc := json.NewEncoder(w)
	count := 0
	for _, repo := range repos {
		if !repo.IsDir() {
			continue
		}
		n, err := e.extractRepo(enc, repo.Name())
		if err != nil {
			return count, err
		}
		count += n
	}
	return count, nil
}

func (e *Extractor) warnf(id, rel, reason string) {
	fmt.Fprintf(e.warn, "⚠️  Skipping %s/%s: %s\n", id, rel, reason)
}

func (e *Extractor) extractRepo(enc *json.Encoder, id string) (int, error) {
	root := filepath.Join(e.storeDir, id)
	count := 0
	seen := make(map[string]bool)

	for _, glob := range e.globs {
		matches, err := doublestar.FilepathGlob(filepath.Join(root, glob))
		if err != nil {
			return count, fmt.Errorf("glob %q: %w", glob, err)
		}
		for _, match := range matches {
			rel, err := filepath.Rel(root, match)
			if err != nil || seen[rel] {
				continue
			}
			seen[rel] = true

			// Bad files never fail the run; the log is best-effort over
			// whatever the scrapers produced.
			data, err := os.ReadFile(match)
			if err != nil {
				e.warnf(id, rel, err.Error())
				continue
			}
			kind := DetectKind(data)
			if kind == "" {
				e.warnf(id, rel, "unrecognized payload")
				continue
			}
			parser, ok := e.parsers[kind]
			if !ok {
				// Recognized but unsupported kinds (vote events) are
				// expected in every repo, so they skip quietly.
				continue
			}
			rec, ok := parser.Parse(id, rel, data)
			if !ok {
				e.warnf(id, rel, "malformed "+kind)
				continue
			}
			if err := enc.Encode(rec); err != nil {
				return count, fmt.Errorf("encode record: %w", err)
			}
			count++
		}
	}
	return count, nil
}
