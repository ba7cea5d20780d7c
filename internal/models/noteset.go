package models

// JoinLogic selects how several predicates combine in a compiled query.
type JoinLogic string

const (
	JoinAll JoinLogic = "all" // conjunction
	JoinAny JoinLogic = "any" // disjunction
)

// Operator returns the query-expression keyword for the join, defaulting to
// disjunction when the join is unset (legacy note sets carry no value).
func (j JoinLogic) Operator() string {
	if j == JoinAll {
		return "and"
	}
	return "or"
}

// ValidationError enumerates the problems a note set can have. A note set
// holds a set of these, not a single value.
type ValidationError string

const (
	ValidationQueueEmpty        ValidationError = "queue_empty"
	ValidationCustomQueryBad    ValidationError = "custom_query_invalid"
	ValidationBuiltQueryBad     ValidationError = "constructed_query_invalid"
	ValidationRulesMatchNothing ValidationError = "rules_match_nothing"
)

// Message renders a validation error for the user.
func (v ValidationError) Message() string {
	switch v {
	case ValidationQueueEmpty:
		return "note set review queue is empty; try resetting the queue or checking the note set rules"
	case ValidationCustomQueryBad:
		return "custom query is invalid; check the note set settings"
	case ValidationBuiltQueryBad:
		return "note set rules compile to an invalid query; check the note set settings"
	case ValidationRulesMatchNothing:
		return "note set rules do not match any notes"
	default:
		return string(v)
	}
}

// NoteSetStats is derived display data, recomputed on demand and never
// authoritative.
type NoteSetStats struct {
	TotalCount             int `json:"total_count"`
	NotReviewedCount       int `json:"not_reviewed_count"`
	ReviewedLast7DaysCount int `json:"reviewed_last_7_days_count"`
	ReviewedLast30Days     int `json:"reviewed_last_30_days_count"`
}

// NoteQueue is the materialized, ordered list of note paths pending review
// for one note set. It is created whole by the queue builder and shrinks one
// element at a time as notes are reviewed or skipped.
type NoteQueue struct {
	Filenames []string `json:"filenames"`
}

// Len reports the number of pending notes; safe on a nil queue.
func (q *NoteQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.Filenames)
}

// Head returns the next note up for review.
func (q *NoteQueue) Head() (string, bool) {
	if q.Len() == 0 {
		return "", false
	}
	return q.Filenames[0], true
}

// Remove drops path from the queue. Removing a path that is not present is a
// no-op: the queue and the index may disagree after external edits, and a
// stale removal must not be an error.
func (q *NoteQueue) Remove(path string) {
	if q == nil {
		return
	}
	for i, f := range q.Filenames {
		if f == path {
			q.Filenames = append(q.Filenames[:i], q.Filenames[i+1:]...)
			return
		}
	}
}

// NoteSet is a named, persisted filter plus ordering policy over the vault.
type NoteSet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sort_order,omitempty"`

	Tags                  []string  `json:"tags"`
	TagsJoinType          JoinLogic `json:"tags_join_type"`
	Folders               []string  `json:"folders"`
	FoldersToTagsJoinType JoinLogic `json:"folders_to_tags_join_type"`

	CreatedInLastNDays  int `json:"created_in_last_n_days,omitempty"`
	ModifiedInLastNDays int `json:"modified_in_last_n_days,omitempty"`

	// CustomQuery, when non-empty, replaces the tag/folder/recency rules
	// entirely for resolution. The rules are kept but ignored.
	CustomQuery string `json:"custom_query,omitempty"`

	Stats            NoteSetStats      `json:"stats"`
	Queue            *NoteQueue        `json:"queue,omitempty"`
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
}

// HasCustomQuery reports whether the override query is authoritative.
func (n *NoteSet) HasCustomQuery() bool {
	return n.CustomQuery != ""
}

// HasValidationError reports whether kind is among the recorded problems.
func (n *NoteSet) HasValidationError(kind ValidationError) bool {
	for _, v := range n.ValidationErrors {
		if v == kind {
			return true
		}
	}
	return false
}
