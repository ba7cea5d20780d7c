package api

import (
	"github.com/starford/raido/internal/models"
)

// NoteSetRequest is the request body for creating or updating a note set.
type NoteSetRequest struct {
	Name                  string           `json:"name"`
	Tags                  []string         `json:"tags"`
	TagsJoinType          models.JoinLogic `json:"tags_join_type"`
	Folders               []string         `json:"folders"`
	FoldersToTagsJoinType models.JoinLogic `json:"folders_to_tags_join_type"`
	CreatedInLastNDays    int              `json:"created_in_last_n_days"`
	ModifiedInLastNDays   int              `json:"modified_in_last_n_days"`
	CustomQuery           string           `json:"custom_query"`
}

// NoteSetListResponse wraps a note-set listing.
type NoteSetListResponse struct {
	NoteSets []*models.NoteSet `json:"note_sets"`
	Current  string            `json:"current_note_set_id,omitempty"`
}

// ReviewRequest targets a review operation. NoteSetID defaults to the
// current note set; Path defaults to the active note.
type ReviewRequest struct {
	NoteSetID string `json:"note_set_id,omitempty"`
	Path      string `json:"path,omitempty"`
}

// FrequencyRequest sets the review frequency of one note.
type FrequencyRequest struct {
	Path      string `json:"path"`
	Frequency string `json:"frequency"`
}

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// StatusResponse is a minimal acknowledgement payload.
type StatusResponse struct {
	Status string `json:"status"`
}
