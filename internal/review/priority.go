// Package review implements the review engine: priority scoring, queue
// construction, and the stateful review session over a note set's queue.
package review

import (
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// Multiplier applied to unreviewed notes in place of elapsed days. When
// unreviewed notes go first, the large constant puts them ahead of anything
// with a review date; otherwise the small constant sinks them below notes
// with an old-but-present date, on the theory that a missing date may mean
// "already fine, just unlabeled".
const (
	unreviewedFirstMultiplier = 365
	unreviewedLastMultiplier  = 1
)

// ScoreSettings are the knobs the scorer reads.
type ScoreSettings struct {
	ReviewedField        string
	FrequencyField       string
	UnreviewedNotesFirst bool
}

// Score computes the review priority of one document: frequency rank squared
// times days elapsed since the last review. Squaring the rank lets frequency
// dominate among recently-reviewed notes while elapsed days eventually
// overtakes it for very stale low-priority ones.
//
// Notes with frequency "ignore" score 0 unconditionally, for any review
// date. A frequency value outside the enumeration is an error: defaulting it
// silently would misorder the whole queue.
func Score(doc *models.Document, s ScoreSettings, now time.Time) (int, error) {
	raw := doc.FieldString(s.FrequencyField)
	freq, err := models.ParseReviewFrequency(raw)
	if err != nil {
		return 0, &apperr.InvalidFrequencyError{Path: doc.Path, Value: raw}
	}

	var rank int
	switch freq {
	case models.FrequencyHigh:
		rank = 5
	case "":
		rank = 4
	case models.FrequencyNormal:
		rank = 3
	case models.FrequencyLow:
		rank = 2
	case models.FrequencyIgnore:
		return 0, nil
	}

	multiplier := unreviewedLastMultiplier
	if s.UnreviewedNotesFirst {
		multiplier = unreviewedFirstMultiplier
	}
	if reviewed, ok := doc.FieldDate(s.ReviewedField); ok {
		multiplier = daysBetween(reviewed, now)
	}

	return rank * rank * multiplier, nil
}

// daysBetween returns whole days from then to now, never negative. Zero for
// "reviewed today" is a valid multiplier — the product is simply zero.
func daysBetween(then, now time.Time) int {
	d := int(now.Sub(then).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// LessByReviewedDate is the fallback ordering used when frequency weighting
// is disabled: ascending by the raw reviewed-date string, with absent dates
// sorting first, ties broken by path.
func LessByReviewedDate(a, b *models.Document, reviewedField string) bool {
	av := a.FieldString(reviewedField)
	bv := b.FieldString(reviewedField)
	if av != bv {
		return av < bv
	}
	return a.Path < b.Path
}
