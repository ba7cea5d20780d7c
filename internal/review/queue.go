package review

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/noteset"
	"github.com/starford/raido/internal/settings"
)

// QueueBuilder resolves a note set to its concrete ordered review queue.
type QueueBuilder struct {
	query  index.QueryService
	store  *settings.Store
	logger *slog.Logger
}

// NewQueueBuilder creates a QueueBuilder.
func NewQueueBuilder(query index.QueryService, store *settings.Store, logger *slog.Logger) *QueueBuilder {
	return &QueueBuilder{query: query, store: store, logger: logger}
}

// Build resolves the note set's rules and returns the full ordered list of
// note paths. An empty result is an empty list, not an error: emptiness is a
// validation concern, and an exception here would abort batch validation
// over many note sets.
func (b *QueueBuilder) Build(ns *models.NoteSet) ([]string, error) {
	var (
		reviewedField   string
		frequencyField  string
		useFrequency    bool
		unreviewedFirst bool
	)
	b.store.View(func(s *settings.Settings) {
		reviewedField = s.ReviewedFieldName
		frequencyField = s.ReviewFrequencyFieldName
		useFrequency = s.UseReviewFrequency
		unreviewedFirst = s.UnreviewedNotesFirst
	})

	docs, err := index.ResolveWithRetry(b.query, noteset.CompileQuery(ns))
	if err != nil {
		return nil, fmt.Errorf("review: resolve note set %q: %w", ns.ID, err)
	}

	now := time.Now()
	scoreSettings := ScoreSettings{
		ReviewedField:        reviewedField,
		FrequencyField:       frequencyField,
		UnreviewedNotesFirst: unreviewedFirst,
	}

	type scored struct {
		doc   *models.Document
		score int
	}
	var kept []scored
	for i := range docs {
		doc := &docs[i]
		if !noteset.MatchesRecency(ns, doc, now) {
			continue
		}
		freq, err := doc.FieldFrequency(frequencyField)
		if err != nil {
			// Not an ignore value; scoring decides whether to reject it.
			freq = ""
		}
		if freq == models.FrequencyIgnore {
			continue
		}
		s := 0
		if useFrequency {
			s, err = Score(doc, scoreSettings, now)
			if err != nil {
				return nil, err
			}
		}
		kept = append(kept, scored{doc: doc, score: s})
	}

	if useFrequency {
		// Highest priority first; path breaks ties for a total order.
		sort.SliceStable(kept, func(i, j int) bool {
			if kept[i].score != kept[j].score {
				return kept[i].score > kept[j].score
			}
			return kept[i].doc.Path < kept[j].doc.Path
		})
	} else {
		sort.SliceStable(kept, func(i, j int) bool {
			return LessByReviewedDate(kept[i].doc, kept[j].doc, reviewedField)
		})
	}

	paths := make([]string, len(kept))
	for i, k := range kept {
		paths[i] = k.doc.Path
	}
	return paths, nil
}

// Rebuild unconditionally regenerates the note set's queue and persists it.
// This is the explicit user-triggered reset path.
func (b *QueueBuilder) Rebuild(ns *models.NoteSet) error {
	paths, err := b.Build(ns)
	if err != nil {
		return err
	}
	b.logger.Debug("review: queue rebuilt",
		slog.String("note_set", ns.ID), slog.Int("size", len(paths)))
	// ns is usually the stored pointer other callers read; the queue is
	// assigned only under the store lock.
	return b.store.UpdateNoteSet(ns.ID, func(stored *models.NoteSet) error {
		stored.Queue = &models.NoteQueue{Filenames: paths}
		return nil
	})
}

// BuildIfEmpty regenerates the queue only when it is missing or exhausted.
// This is the lazy-start path.
func (b *QueueBuilder) BuildIfEmpty(ns *models.NoteSet) error {
	if ns.Queue.Len() > 0 {
		return nil
	}
	return b.Rebuild(ns)
}
