// Package feed renders tagged legislative activity as RSS feeds and a
// static index page suitable for publishing from a docs directory.
package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/windy-civi/govbot/internal/activity"
	"github.com/windy-civi/govbot/internal/classify"
	"github.com/windy-civi/govbot/internal/config"
	"github.com/windy-civi/govbot/internal/state"
)

// Summary reports what one build produced.
type Summary struct {
	Feeds int // feed files written, combined feed included
	Items int // entries across the per-tag feeds after limiting
}

// Builder renders tagged record files into RSS feeds.
type Builder struct {
	build config.Build
}

// NewBuilder returns a builder for the given build settings.
func NewBuilder(build config.Build) *Builder {
	return &Builder{build: build}
}

// Build writes one feed per tagged file, a combined feed across all tags,
// and an index page into outDir. Records are ordered newest first and each
// feed is capped at the configured limit (zero or below means no cap).
// The combined feed deduplicates records that matched several tags.
func (b *Builder) Build(tagged []classify.TaggedFile, outDir string) (*Summary, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	summary := &Summary{}
	var combined []activity.Record
	var entries []indexEntry
	for _, tf := range tagged {
		combined = append(combined, tf.Records...)

		records := b.prepare(tf.Records)
		summary.Items += len(records)

		name := tf.Tag + ".xml"
		title := fmt.Sprintf("Tagged legislation: %s", tf.Tag)
		desc := fmt.Sprintf("Bills and hearings matching the %s topic", tf.Tag)
		if err := b.writeFeed(filepath.Join(outDir, name), name, title, desc, records); err != nil {
			return nil, err
		}
		summary.Feeds++
		entries = append(entries, indexEntry{Name: tf.Tag, File: name, Count: len(records)})
	}

	name := b.build.OutputFile
	records := b.prepare(dedupe(combined))
	err := b.writeFeed(filepath.Join(outDir, name), name, "Tagged legislation",
		"Bills and hearings matching any configured topic", records)
	if err != nil {
		return nil, err
	}
	summary.Feeds++

	all := indexEntry{Name: "All topics", File: name, Count: len(records)}
	if err := b.writeIndex(outDir, all, entries); err != nil {
		return nil, err
	}
	return summary, nil
}

// prepare sorts records newest first and applies the feed limit.
func (b *Builder) prepare(records []activity.Record) []activity.Record {
	sorted := make([]activity.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return when(sorted[i]).After(when(sorted[j]))
	})

	// Loading a config always fills in the limit; a nil here means the
	// caller built the settings by hand, so leave the feed uncapped.
	limit := 0
	if b.build.Limit != nil {
		limit = *b.build.Limit
	}
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func (b *Builder) writeFeed(path, name, title, desc string, records []activity.Record) error {
	f := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: b.fileURL(name)},
		Description: desc,
		Created:     time.Now(),
	}
	for _, rec := range records {
		f.Items = append(f.Items, b.item(rec))
	}

	rss, err := f.ToRss()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	if err := state.WriteAtomic(path, []byte(rss)); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// item renders one record as a feed entry. Records without a source URL
// link to the site itself so every entry stays clickable.
func (b *Builder) item(rec activity.Record) *feeds.Item {
	var title, desc, link string
	switch {
	case rec.Bill != nil:
		bill := rec.Bill
		title = fmt.Sprintf("[%s] %s: %s", strings.ToUpper(rec.Jurisdiction), bill.Identifier, bill.Title)
		desc = bill.Title
		if last := latestAction(bill); last != nil {
			desc = fmt.Sprintf("Latest action: %s (%s)", last.Description, last.Date)
		}
		link = bill.SourceURL
	case rec.Event != nil:
		event := rec.Event
		title = fmt.Sprintf("[%s] Event: %s", strings.ToUpper(rec.Jurisdiction), event.Name)
		desc = event.Description
		if desc == "" && len(event.Agenda) > 0 {
			desc = strings.Join(event.Agenda, "; ")
		}
		link = event.SourceURL
	}
	if link == "" {
		link = b.build.BaseURL
	}

	return &feeds.Item{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Id:          rec.Jurisdiction + "/" + rec.File,
		Description: desc,
		Created:     when(rec),
	}
}

// fileURL joins a file name onto the configured base URL.
func (b *Builder) fileURL(name string) string {
	return strings.TrimSuffix(b.build.BaseURL, "/") + "/" + name
}

// latestAction returns the action with the greatest date, nil when the bill
// has none.
func latestAction(bill *activity.Bill) *activity.Action {
	var last *activity.Action
	for i := range bill.Actions {
		if last == nil || bill.Actions[i].Date > last.Date {
			last = &bill.Actions[i]
		}
	}
	return last
}

// when returns the timestamp used for ordering: the latest bill action or
// the event start. Missing or unparseable dates sort last.
func when(rec activity.Record) time.Time {
	var raw string
	switch {
	case rec.Bill != nil:
		raw = rec.Bill.LatestActionAt
	case rec.Event != nil:
		raw = rec.Event.StartDate
	}
	return parseDate(raw)
}

// dateFormats covers the timestamp shapes that appear in scraped data,
// from full RFC 3339 down to bare dates.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func dedupe(records []activity.Record) []activity.Record {
	seen := make(map[string]bool, len(records))
	var out []activity.Record
	for _, rec := range records {
		key := rec.Jurisdiction + "/" + rec.File
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out
}
