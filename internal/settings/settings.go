// Package settings owns the persisted review state: field names, note sets
// with their queues, and the review toggles. The whole structure is loaded
// once at startup merged over defaults and written back after every mutating
// operation, so a crash can lose at most the last mutation — and queues are
// idempotently rebuildable anyway.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// ReviewAlgorithm selects how the next note is picked from a queue.
type ReviewAlgorithm string

const (
	AlgorithmSequential ReviewAlgorithm = "sequential"
	AlgorithmRandom     ReviewAlgorithm = "random"
)

// Settings is the persisted review configuration blob.
type Settings struct {
	ReviewedFieldName        string             `json:"reviewed_field_name"`
	ReviewFrequencyFieldName string             `json:"review_frequency_field_name"`
	NoteSets                 []*models.NoteSet  `json:"note_sets"`
	CurrentNoteSetID         string             `json:"current_note_set_id"`
	OpenNextNoteAfterReview  bool               `json:"open_next_note_after_reviewing"`
	UseReviewFrequency       bool               `json:"use_review_frequency"`
	UnreviewedNotesFirst     bool               `json:"unreviewed_notes_first"`
	ReviewAlgorithm          ReviewAlgorithm    `json:"review_algorithm"`
}

// Defaults returns the settings used before anything is persisted.
func Defaults() *Settings {
	return &Settings{
		ReviewedFieldName:        "reviewed",
		ReviewFrequencyFieldName: "review-frequency",
		NoteSets:                 []*models.NoteSet{},
		OpenNextNoteAfterReview:  true,
		UseReviewFrequency:       true,
		UnreviewedNotesFirst:     true,
		ReviewAlgorithm:          AlgorithmSequential,
	}
}

// Store loads and persists Settings. Mutations go through Update so that the
// mutate-then-persist pair is atomic with respect to concurrent callers: the
// original host ran everything on a single event thread, but an HTTP host
// does not, so the store serializes instead.
type Store struct {
	path string

	mu       sync.Mutex
	settings *Settings
}

// Open reads the settings file at path, merging it over Defaults. A missing
// file is not an error: it means first run.
func Open(path string) (*Store, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// first run
	case err != nil:
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("settings: parse %s: %w", path, err)
		}
	}
	if s.NoteSets == nil {
		s.NoteSets = []*models.NoteSet{}
	}
	return &Store{path: path, settings: s}, nil
}

// Update runs fn against the settings and persists the result. If fn returns
// an error nothing is written.
func (st *Store) Update(fn func(*Settings) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := fn(st.settings); err != nil {
		return err
	}
	return st.save()
}

// View runs fn with read access to the settings.
func (st *Store) View(fn func(*Settings)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(st.settings)
}

// NoteSet returns the note set with the given id.
func (st *Store) NoteSet(id string) (*models.NoteSet, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, ns := range st.settings.NoteSets {
		if ns.ID == id {
			return ns, nil
		}
	}
	return nil, fmt.Errorf("settings: note set %q: %w", id, apperr.ErrNotFound)
}

// UpdateNoteSet locates the note set with the given id, runs fn against it
// under the store lock, and persists. This is the write path for queue
// mutations: locate, mutate, save as one serialized step.
func (st *Store) UpdateNoteSet(id string, fn func(*models.NoteSet) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, ns := range st.settings.NoteSets {
		if ns.ID == id {
			if err := fn(ns); err != nil {
				return err
			}
			return st.save()
		}
	}
	return fmt.Errorf("settings: note set %q: %w", id, apperr.ErrNotFound)
}

// CurrentNoteSet returns the active note set, if one is selected.
func (st *Store) CurrentNoteSet() (*models.NoteSet, error) {
	st.mu.Lock()
	id := st.settings.CurrentNoteSetID
	st.mu.Unlock()
	if id == "" {
		return nil, fmt.Errorf("settings: no note set selected: %w", apperr.ErrNotFound)
	}
	return st.NoteSet(id)
}

// save writes the settings atomically: tmp file, then rename.
// Callers must hold mu.
func (st *Store) save() error {
	data, err := json.MarshalIndent(st.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return fmt.Errorf("settings: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("settings: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("settings: close temp: %w", err)
	}
	if err := os.Rename(tmpName, st.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("settings: rename: %w", err)
	}
	return nil
}
