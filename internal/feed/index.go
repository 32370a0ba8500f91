package feed

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/windy-civi/govbot/internal/state"
)

const indexTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Legislative feeds</title>
  <style>
    body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 2rem auto; padding: 0 1rem; }
    li { margin: 0.25rem 0; }
    .count { color: #666; }
  </style>
</head>
<body>
  <h1>Legislative feeds</h1>
  <p>Subscribe to an RSS feed to follow tagged bills and hearings.</p>
  <ul>
    <li><a href="{{.Combined.File}}">All topics</a> <span class="count">({{.Combined.Count}} entries)</span></li>
{{- range .Tags}}
    <li><a href="{{.File}}">{{.Name}}</a> <span class="count">({{.Count}} entries)</span></li>
{{- end}}
  </ul>
  <p class="count">Generated {{.GeneratedAt}}.</p>
</body>
</html>
`

var indexTmpl = template.Must(template.New("index").Parse(indexTemplate))

type indexEntry struct {
	Name  string
	File  string
	Count int
}

type indexData struct {
	Combined    indexEntry
	Tags        []indexEntry
	GeneratedAt string
}

// writeIndex renders index.html linking every feed the build produced.
func (b *Builder) writeIndex(outDir string, combined indexEntry, tags []indexEntry) error {
	data := indexData{
		Combined:    combined,
		Tags:        tags,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering index: %w", err)
	}
	if err := state.WriteAtomic(filepath.Join(outDir, "index.html"), buf.Bytes()); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}
