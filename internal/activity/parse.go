package activity

import "encoding/json"

// Parser turns one raw scraped payload into an activity record.
type Parser interface {
	Parse(jurisdiction, file string, data []byte) (*Record, bool)
}

// DetectKind classifies a raw OpenStates payload by its signature fields.
// Payloads that are not JSON objects, or that carry none of the known
// signatures, return "".
func DetectKind(data []byte) string {
	var peek struct {
		Identifier string `json:"identifier"`
		Title      string `json:"title"`
		MotionText string `json:"motion_text"`
		Name       string `json:"name"`
		StartDate  string `json:"start_date"`
	}
	if err := json.Unmarshal(data, &peek); err != nil {
		return ""
	}
	switch {
	case peek.Identifier != "" && peek.Title != "":
		return "bill"
	case peek.MotionText != "":
		return "vote_event"
	case peek.Name != "" && peek.StartDate != "":
		return "event"
	}
	return ""
}

type rawBill struct {
	Identifier         string `json:"identifier"`
	Title              string `json:"title"`
	LegislativeSession string `json:"legislative_session"`
	FromOrganization   struct {
		Classification string `json:"classification"`
	} `json:"from_organization"`
	Subject      []string `json:"subject"`
	Sponsorships []struct {
		Name string `json:"name"`
	} `json:"sponsorships"`
	Actions []struct {
		Description string `json:"description"`
		Date        string `json:"date"`
	} `json:"actions"`
	Sources []struct {
		URL string `json:"url"`
	} `json:"sources"`
}

// BillParser extracts the bill fields the classifier and feed builder need.
type BillParser struct{}

func (p *BillParser) Parse(jurisdiction, file string, data []byte) (*Record, bool) {
	var raw rawBill
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	if raw.Identifier == "" || raw.Title == "" {
		return nil, false
	}

	bill := Bill{
		Identifier: raw.Identifier,
		Title:      raw.Title,
		Session:    raw.LegislativeSession,
		Chamber:    raw.FromOrganization.Classification,
		Subjects:   raw.Subject,
	}
	for _, s := range raw.Sponsorships {
		if s.Name != "" {
			bill.Sponsors = append(bill.Sponsors, s.Name)
		}
	}
	for _, a := range raw.Actions {
		bill.Actions = append(bill.Actions, Action{Description: a.Description, Date: a.Date})
		// OpenStates dates are ISO formatted, so string order is date order.
		if a.Date > bill.LatestActionAt {
			bill.LatestActionAt = a.Date
		}
	}
	if len(raw.Sources) > 0 {
		bill.SourceURL = raw.Sources[0].URL
	}
	return &Record{Kind: "bill", Jurisdiction: jurisdiction, File: file, Bill: &bill}, true
}

type rawEvent struct {
	Name        string `json:"name"`
	StartDate   string `json:"start_date"`
	Description string `json:"description"`
	Agenda      []struct {
		Description     string `json:"description"`
		RelatedEntities []struct {
			EntityType string `json:"entity_type"`
			Name       string `json:"name"`
		} `json:"related_entities"`
	} `json:"agenda"`
	Sources []struct {
		URL string `json:"url"`
	} `json:"sources"`
}

// EventParser extracts hearings and meetings along with their agendas.
type EventParser struct{}

func (p *EventParser) Parse(jurisdiction, file string, data []byte) (*Record, bool) {
	var raw rawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false
	}
	if raw.Name == "" {
		return nil, false
	}

	event := Event{
		Name:        raw.Name,
		StartDate:   raw.StartDate,
		Description: raw.Description,
	}
	for _, item := range raw.Agenda {
		if item.Description != "" {
			event.Agenda = append(event.Agenda, item.Description)
		}
		for _, ent := range item.RelatedEntities {
			if ent.EntityType == "bill" && ent.Name != "" {
				event.RelatedBills = append(event.RelatedBills, ent.Name)
			}
		}
	}
	if len(raw.Sources) > 0 {
		event.SourceURL = raw.Sources[0].URL
	}
	return &Record{Kind: "event", Jurisdiction: jurisdiction, File: file, Event: &event}, true
}
