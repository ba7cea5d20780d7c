// Package notes writes review metadata into vault notes and keeps the index
// in step with those writes.
package notes

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/metadata"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/settings"
	"github.com/starford/raido/internal/storage"
)

// Indexer re-indexes one note after its content changed.
type Indexer interface {
	IndexFile(path string, data []byte) error
	index.QueryService
}

// Service performs metadata mutations on vault notes.
type Service struct {
	store    storage.Provider
	indexer  Indexer
	settings *settings.Store
	logger   *slog.Logger
}

// NewService creates a notes Service.
func NewService(store storage.Provider, indexer Indexer, st *settings.Store, logger *slog.Logger) *Service {
	return &Service{store: store, indexer: indexer, settings: st, logger: logger}
}

// SetReviewedToToday writes today's date into the reviewed field. When
// frequency weighting is on and the note carries no frequency yet, it is
// seeded to normal so the note keeps a stable rank from now on.
func (s *Service) SetReviewedToToday(path string) error {
	var (
		reviewedField  string
		frequencyField string
		useFrequency   bool
	)
	s.settings.View(func(st *settings.Settings) {
		reviewedField = st.ReviewedFieldName
		frequencyField = st.ReviewFrequencyFieldName
		useFrequency = st.UseReviewFrequency
	})

	fields := []metadata.Field{
		{Name: reviewedField, Value: time.Now().Format(models.DateLayout)},
	}

	if useFrequency {
		current, err := s.indexer.FieldValue(path, frequencyField)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("notes: read frequency of %s: %w", path, err)
		}
		if _, parseErr := models.ParseReviewFrequency(current); parseErr != nil {
			current = ""
		}
		if current == "" {
			fields = append(fields, metadata.Field{
				Name:  frequencyField,
				Value: string(models.FrequencyNormal),
			})
		}
	}

	return s.setFields(path, fields)
}

// SetReviewFrequency writes the frequency field of one note.
func (s *Service) SetReviewFrequency(path string, freq models.ReviewFrequency) error {
	var frequencyField string
	s.settings.View(func(st *settings.Settings) {
		frequencyField = st.ReviewFrequencyFieldName
	})
	return s.setFields(path, []metadata.Field{
		{Name: frequencyField, Value: string(freq)},
	})
}

// setFields rewrites the note's frontmatter and reindexes it immediately.
func (s *Service) setFields(path string, fields []metadata.Field) error {
	content, err := s.store.Read(path)
	if err != nil {
		return fmt.Errorf("notes: read %s: %w", path, err)
	}
	updated := metadata.SetFields(content, fields)
	if err := s.store.Write(path, updated); err != nil {
		return fmt.Errorf("notes: write %s: %w", path, err)
	}
	if err := s.indexer.IndexFile(path, updated); err != nil {
		return fmt.Errorf("notes: reindex %s: %w", path, err)
	}
	s.logger.Debug("notes: metadata updated", slog.String("path", path))
	return nil
}
