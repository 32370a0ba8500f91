package classify

import (
	"strings"

	"github.com/windy-civi/govbot/internal/activity"
)

// Matcher tests record text against one tag's keyword lists. Matching is
// case-insensitive and partial in both directions, so the keyword "school"
// matches the subject "SCHOOLS AND EDUCATION" and the keyword
// "early childhood education" matches the subject "EDUCATION".
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher builds a matcher from raw keyword lists. Keywords are
// lowercased and trimmed; empty ones are dropped.
func NewMatcher(include, exclude []string) *Matcher {
	return &Matcher{
		include: normalize(include),
		exclude: normalize(exclude),
	}
}

// Match reports whether any of the texts hits an include keyword. Exclude
// keywords veto the whole record: if any text hits one, the record does not
// match regardless of the includes.
func (m *Matcher) Match(texts []string) bool {
	lowered := make([]string, 0, len(texts))
	for _, text := range texts {
		if text = strings.ToLower(strings.TrimSpace(text)); text != "" {
			lowered = append(lowered, text)
		}
	}

	for _, text := range lowered {
		if overlaps(text, m.exclude) {
			return false
		}
	}
	for _, text := range lowered {
		if overlaps(text, m.include) {
			return true
		}
	}
	return false
}

// overlaps reports whether the text and any of the keywords contain each other.
func overlaps(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) || strings.Contains(kw, text) {
			return true
		}
	}
	return false
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Texts collects the searchable fields of a record: identifier, title, and
// subjects for bills; name, description, agenda, and related bill numbers
// for events.
func Texts(rec *activity.Record) []string {
	var texts []string
	if b := rec.Bill; b != nil {
		texts = append(texts, b.Identifier, b.Title)
		texts = append(texts, b.Subjects...)
	}
	if e := rec.Event; e != nil {
		texts = append(texts, e.Name, e.Description)
		texts = append(texts, e.Agenda...)
		texts = append(texts, e.RelatedBills...)
	}
	return texts
}
