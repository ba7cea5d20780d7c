// Package models defines the domain types for Raido.
package models

import (
	"fmt"
	"time"
)

// Document is a vault note as seen by the review engine: its path plus the
// frontmatter fields the scorer and filters read. Fields is keyed by raw
// frontmatter field name; callers go through the typed accessors instead of
// poking the map directly.
type Document struct {
	Path       string
	Title      string
	CreatedAt  time.Time
	ModifiedAt time.Time
	Tags       []string
	Fields     map[string]any
}

// FieldString returns the named frontmatter field rendered as a string.
// Missing fields and explicit nulls both come back as "". Non-string
// scalars render via fmt.Sprint so a mistyped value (a bare number, a
// bool) stays visible to validation instead of vanishing into "".
func (d *Document) FieldString(name string) string {
	v, ok := d.Fields[name]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		return s.Format(DateLayout)
	default:
		return fmt.Sprint(s)
	}
}

// FieldDate parses the named field as a yyyy-mm-dd date.
// The second return is false when the field is absent, empty, or unparseable.
func (d *Document) FieldDate(name string) (time.Time, bool) {
	raw := d.FieldString(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FieldFrequency parses the named field as a ReviewFrequency.
func (d *Document) FieldFrequency(name string) (ReviewFrequency, error) {
	return ParseReviewFrequency(d.FieldString(name))
}

// DateLayout is the wire format for review dates in frontmatter.
const DateLayout = "2006-01-02"
