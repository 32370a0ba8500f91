// Package activity extracts legislative activity from the cloned data
// repositories and streams it as one JSON record per line.
package activity

import (
	"encoding/json"
	"io"
)

// Record is one line of the activity log.
type Record struct {
	Kind         string `json:"kind"` // "bill" or "event"
	Jurisdiction string `json:"jurisdiction"`
	File         string `json:"file,omitempty"`
	Bill         *Bill  `json:"bill,omitempty"`
	Event        *Event `json:"event,omitempty"`
}

// Bill is the subset of the OpenStates bill shape the pipeline cares about.
type Bill struct {
	Identifier     string   `json:"identifier"`
	Title          string   `json:"title"`
	Session        string   `json:"session,omitempty"`
	Chamber        string   `json:"chamber,omitempty"`
	Subjects       []string `json:"subjects,omitempty"`
	Sponsors       []string `json:"sponsors,omitempty"`
	Actions        []Action `json:"actions,omitempty"`
	LatestActionAt string   `json:"latest_action_at,omitempty"`
	SourceURL      string   `json:"source_url,omitempty"`
}

// Action is one recorded step in a bill's progress.
type Action struct {
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Event is a scheduled hearing or meeting from a jurisdiction's data.
type Event struct {
	Name         string   `json:"name"`
	StartDate    string   `json:"start_date,omitempty"`
	Description  string   `json:"description,omitempty"`
	Agenda       []string `json:"agenda,omitempty"`
	RelatedBills []string `json:"related_bills,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
}

// Decoder reads activity records from an NDJSON stream.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder creates a Decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{dec: json.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream.
func (d *Decoder) Next() (*Record, error) {
	var rec Record
	if err := d.dec.Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
