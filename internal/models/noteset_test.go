package models

import (
	"testing"
)

func TestNoteQueue_RemoveAbsentIsNoop(t *testing.T) {
	q := &NoteQueue{Filenames: []string{"a.md", "b.md"}}
	q.Remove("missing.md")
	if q.Len() != 2 {
		t.Errorf("len = %d, want 2", q.Len())
	}
	q.Remove("a.md")
	q.Remove("a.md")
	if q.Len() != 1 {
		t.Errorf("len = %d, want 1", q.Len())
	}
	if head, ok := q.Head(); !ok || head != "b.md" {
		t.Errorf("head = %q, %v", head, ok)
	}
}

func TestNoteQueue_NilSafe(t *testing.T) {
	var q *NoteQueue
	if q.Len() != 0 {
		t.Error("nil queue should have length 0")
	}
	if _, ok := q.Head(); ok {
		t.Error("nil queue should have no head")
	}
	q.Remove("a.md") // must not panic
}

func TestJoinLogic_Operator(t *testing.T) {
	if JoinAll.Operator() != "and" {
		t.Errorf("JoinAll = %q", JoinAll.Operator())
	}
	if JoinAny.Operator() != "or" {
		t.Errorf("JoinAny = %q", JoinAny.Operator())
	}
	if JoinLogic("").Operator() != "or" {
		t.Error("unset join should default to or")
	}
}

func TestParseReviewFrequency(t *testing.T) {
	for _, raw := range []string{"high", "normal", "low", "ignore", ""} {
		if _, err := ParseReviewFrequency(raw); err != nil {
			t.Errorf("ParseReviewFrequency(%q): %v", raw, err)
		}
	}
	if _, err := ParseReviewFrequency("weekly"); err == nil {
		t.Error("unknown frequency should be rejected")
	}
}

func TestDocument_FieldAccessors(t *testing.T) {
	d := &Document{Fields: map[string]any{
		"reviewed":         "2025-03-01",
		"review-frequency": "high",
		"rating":           5,
		"empty":            nil,
	}}

	if got := d.FieldString("reviewed"); got != "2025-03-01" {
		t.Errorf("FieldString = %q", got)
	}
	if got := d.FieldString("empty"); got != "" {
		t.Errorf("nil field = %q", got)
	}
	if got := d.FieldString("rating"); got != "5" {
		t.Errorf("non-string field = %q", got)
	}

	if date, ok := d.FieldDate("reviewed"); !ok || date.Format(DateLayout) != "2025-03-01" {
		t.Errorf("FieldDate = %v, %v", date, ok)
	}
	if _, ok := d.FieldDate("review-frequency"); ok {
		t.Error("unparseable date should report false")
	}
	if _, ok := d.FieldDate("missing"); ok {
		t.Error("absent date should report false")
	}

	if f, err := d.FieldFrequency("review-frequency"); err != nil || f != FrequencyHigh {
		t.Errorf("FieldFrequency = %v, %v", f, err)
	}
	d.Fields["review-frequency"] = 5
	if _, err := d.FieldFrequency("review-frequency"); err == nil {
		t.Error("numeric frequency should be rejected")
	}
}
