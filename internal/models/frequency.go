package models

import "fmt"

// ReviewFrequency is the per-document weight biasing review priority.
// It is stored as a plain string in the document's frontmatter.
type ReviewFrequency string

const (
	FrequencyHigh   ReviewFrequency = "high"
	FrequencyNormal ReviewFrequency = "normal"
	FrequencyLow    ReviewFrequency = "low"
	// FrequencyIgnore excludes a document from every queue.
	FrequencyIgnore ReviewFrequency = "ignore"
)

// ParseReviewFrequency maps a raw frontmatter value to a ReviewFrequency.
// The empty string is valid and means "unset". Anything else outside the
// enumeration is rejected so a typo in a note cannot silently misorder a queue.
func ParseReviewFrequency(raw string) (ReviewFrequency, error) {
	switch ReviewFrequency(raw) {
	case FrequencyHigh, FrequencyNormal, FrequencyLow, FrequencyIgnore, "":
		return ReviewFrequency(raw), nil
	default:
		return "", fmt.Errorf("unknown review frequency %q", raw)
	}
}
