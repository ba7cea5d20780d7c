package review

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

var scoreNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func scoreDoc(reviewedDaysAgo int, freq string) *models.Document {
	fields := map[string]any{}
	if reviewedDaysAgo >= 0 {
		fields["reviewed"] = scoreNow.AddDate(0, 0, -reviewedDaysAgo).Format(models.DateLayout)
	}
	if freq != "" {
		fields["review-frequency"] = freq
	}
	return &models.Document{Path: "n.md", Fields: fields}
}

func defaultScoreSettings() ScoreSettings {
	return ScoreSettings{
		ReviewedField:        "reviewed",
		FrequencyField:       "review-frequency",
		UnreviewedNotesFirst: true,
	}
}

func TestScore_RankTimesDays(t *testing.T) {
	cases := []struct {
		freq string
		days int
		want int
	}{
		{"high", 4, 100},    // 5² × 4
		{"normal", 10, 90},  // 3² × 10
		{"low", 3, 12},      // 2² × 3
		{"", 2, 32},         // unset rank 4: 4² × 2
		{"normal", 0, 0},    // reviewed today
		{"high", 1, 25},     // 5² × 1
	}
	for _, c := range cases {
		got, err := Score(scoreDoc(c.days, c.freq), defaultScoreSettings(), scoreNow)
		if err != nil {
			t.Fatalf("Score(%q, %d days): %v", c.freq, c.days, err)
		}
		if got != c.want {
			t.Errorf("Score(%q, %d days) = %d, want %d", c.freq, c.days, got, c.want)
		}
	}
}

func TestScore_StaleNormalBeatsFreshHigh(t *testing.T) {
	// A normal note untouched for 10 days must outrank a high note reviewed
	// yesterday: elapsed time eventually wins over frequency.
	stale, err := Score(scoreDoc(10, "normal"), defaultScoreSettings(), scoreNow)
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := Score(scoreDoc(1, "high"), defaultScoreSettings(), scoreNow)
	if err != nil {
		t.Fatal(err)
	}
	if stale <= fresh {
		t.Errorf("stale normal = %d should beat fresh high = %d", stale, fresh)
	}
}

func TestScore_IgnoreIsAlwaysZero(t *testing.T) {
	for _, days := range []int{-1, 0, 1, 1000} {
		got, err := Score(scoreDoc(days, "ignore"), defaultScoreSettings(), scoreNow)
		if err != nil {
			t.Fatal(err)
		}
		if got != 0 {
			t.Errorf("ignore with %d days = %d, want 0", days, got)
		}
	}
}

func TestScore_UnreviewedMultiplier(t *testing.T) {
	s := defaultScoreSettings()

	first, err := Score(scoreDoc(-1, "normal"), s, scoreNow)
	if err != nil {
		t.Fatal(err)
	}
	if first != 9*365 {
		t.Errorf("unreviewed-first score = %d, want %d", first, 9*365)
	}

	s.UnreviewedNotesFirst = false
	last, err := Score(scoreDoc(-1, "normal"), s, scoreNow)
	if err != nil {
		t.Fatal(err)
	}
	if last != 9 {
		t.Errorf("unreviewed-last score = %d, want 9", last)
	}
}

func TestScore_InvalidFrequency(t *testing.T) {
	_, err := Score(scoreDoc(5, "weekly"), defaultScoreSettings(), scoreNow)
	var invalid *apperr.InvalidFrequencyError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidFrequencyError", err)
	}
	if invalid.Path != "n.md" || invalid.Value != "weekly" {
		t.Errorf("error detail = %+v", invalid)
	}
}

func TestScore_NonStringFrequency(t *testing.T) {
	// yaml decodes a bare `review-frequency: 5` as a number and the index's
	// JSON round-trip hands it back as float64; none of these may silently
	// score as "unset".
	cases := []struct {
		value any
		want  string
	}{
		{5, "5"},
		{float64(5), "5"},
		{true, "true"},
	}
	for _, c := range cases {
		doc := scoreDoc(10, "")
		doc.Fields["review-frequency"] = c.value

		_, err := Score(doc, defaultScoreSettings(), scoreNow)
		var invalid *apperr.InvalidFrequencyError
		if !errors.As(err, &invalid) {
			t.Fatalf("Score with frequency %v (%T): err = %v, want InvalidFrequencyError", c.value, c.value, err)
		}
		if invalid.Value != c.want {
			t.Errorf("error value = %q, want %q", invalid.Value, c.want)
		}
	}
}

func TestScore_FutureReviewDateClamped(t *testing.T) {
	got, err := Score(scoreDoc(0, "normal"), defaultScoreSettings(), scoreNow.AddDate(0, 0, -5))
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("future review date score = %d, want 0", got)
	}
}

func TestLessByReviewedDate(t *testing.T) {
	older := scoreDoc(10, "")
	newer := scoreDoc(1, "")
	never := &models.Document{Path: "a.md"}

	if !LessByReviewedDate(older, newer, "reviewed") {
		t.Error("older review date should sort first")
	}
	if LessByReviewedDate(newer, older, "reviewed") {
		t.Error("newer review date should sort last")
	}
	if !LessByReviewedDate(never, older, "reviewed") {
		t.Error("never-reviewed should sort before any date")
	}

	a := &models.Document{Path: "a.md"}
	b := &models.Document{Path: "b.md"}
	if !LessByReviewedDate(a, b, "reviewed") || LessByReviewedDate(b, a, "reviewed") {
		t.Error("ties must break by path")
	}
}
