// Package classify groups activity log records under configured topic tags
// using keyword matching, and persists the groups for feed generation.
package classify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/windy-civi/govbot/internal/activity"
	"github.com/windy-civi/govbot/internal/config"
	"github.com/windy-civi/govbot/internal/state"
)

// TaggedDir is where tagged record files live, relative to the working
// directory.
const TaggedDir = ".govbot/tagged"

// TaggedFile is the on-disk grouping of records that matched one tag.
type TaggedFile struct {
	Tag         string            `json:"tag"`
	GeneratedAt string            `json:"generated_at"`
	Records     []activity.Record `json:"records"`
}

// Stats summarizes one classification run.
type Stats struct {
	Records int
	Matched int
	PerTag  map[string]int
}

// Classifier matches activity records against every configured tag.
type Classifier struct {
	tags     []string
	matchers map[string]*Matcher
}

// New builds a classifier from the configured tags. Each tag matches on its
// own name plus its include keywords.
func New(tags map[string]config.Tag) *Classifier {
	names := make([]string, 0, len(tags))
	matchers := make(map[string]*Matcher, len(tags))
	for name, tag := range tags {
		names = append(names, name)
		include := append([]string{name}, tag.IncludeKeywords...)
		matchers[name] = NewMatcher(include, tag.ExcludeKeywords)
	}
	sort.Strings(names)

	return &Classifier{tags: names, matchers: matchers}
}

// Run reads newline-delimited records from r, matches each against every
// tag, and writes one tagged file per tag under outDir. Tags with no
// matches still get a file so downstream builds see every configured topic.
func (c *Classifier) Run(r io.Reader, outDir string) (*Stats, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating tag directory: %w", err)
	}

	groups := make(map[string][]activity.Record, len(c.tags))
	for _, name := range c.tags {
		groups[name] = []activity.Record{}
	}

	stats := &Stats{PerTag: make(map[string]int, len(c.tags))}
	dec := activity.NewDecoder(r)
	for {
		rec, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading activity log: %w", err)
		}
		stats.Records++

		texts := Texts(rec)
		matched := false
		for _, name := range c.tags {
			if c.matchers[name].Match(texts) {
				groups[name] = append(groups[name], *rec)
				matched = true
			}
		}
		if matched {
			stats.Matched++
		}
	}

	generatedAt := time.Now().UTC().Format(time.RFC3339)
	for _, name := range c.tags {
		stats.PerTag[name] = len(groups[name])
		out := TaggedFile{Tag: name, GeneratedAt: generatedAt, Records: groups[name]}
		path := filepath.Join(outDir, name+".json")
		if err := state.WriteJSON(path, out); err != nil {
			return nil, fmt.Errorf("writing tagged file: %w", err)
		}
	}
	return stats, nil
}

// LoadDir reads every tagged file under dir, sorted by tag name. A missing
// directory is not an error and yields no files, matching a build run that
// happens before any records were classified.
func LoadDir(dir string) ([]TaggedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading tag directory: %w", err)
	}

	var files []TaggedFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		var tf TaggedFile
		if err := state.ReadJSON(filepath.Join(dir, entry.Name()), &tf); err != nil {
			return nil, fmt.Errorf("reading tagged file %s: %w", entry.Name(), err)
		}
		files = append(files, tf)
	}
	return files, nil
}
