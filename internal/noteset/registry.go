package noteset

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/settings"
)

// Rebuilder regenerates a note set's queue. Satisfied by the review queue
// builder; declared here so the registry's self-heal path does not depend on
// the review package.
type Rebuilder interface {
	Rebuild(ns *models.NoteSet) error
}

// Registry owns CRUD and validation over the persisted note-set definitions.
type Registry struct {
	store     *settings.Store
	query     index.QueryService
	rebuilder Rebuilder
	logger    *slog.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(store *settings.Store, query index.QueryService, rebuilder Rebuilder, logger *slog.Logger) *Registry {
	return &Registry{store: store, query: query, rebuilder: rebuilder, logger: logger}
}

// Create adds an empty note set shell and persists it.
func (r *Registry) Create() (*models.NoteSet, error) {
	ns := &models.NoteSet{
		ID:                    uuid.NewString(),
		Name:                  "",
		TagsJoinType:          models.JoinAny,
		FoldersToTagsJoinType: models.JoinAny,
	}
	RefreshDerived(ns)
	err := r.store.Update(func(s *settings.Settings) error {
		s.NoteSets = append(s.NoteSets, ns)
		s.NoteSets = SortNoteSets(s.NoteSets)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// Update replaces the stored definition with the same id, refreshes derived
// fields, and re-validates.
func (r *Registry) Update(ns *models.NoteSet) error {
	err := r.store.UpdateNoteSet(ns.ID, func(stored *models.NoteSet) error {
		*stored = *ns
		RefreshDerived(stored)
		return nil
	})
	if err != nil {
		return err
	}
	return r.ValidateRulesAndSave(ns.ID)
}

// Delete removes the note set with the given id.
func (r *Registry) Delete(id string) error {
	return r.store.Update(func(s *settings.Settings) error {
		kept := s.NoteSets[:0]
		for _, ns := range s.NoteSets {
			if ns.ID != id {
				kept = append(kept, ns)
			}
		}
		s.NoteSets = kept
		if s.CurrentNoteSetID == id {
			s.CurrentNoteSetID = ""
		}
		return nil
	})
}

// Get returns the note set with the given id.
func (r *Registry) Get(id string) (*models.NoteSet, error) {
	return r.store.NoteSet(id)
}

// List returns the note sets in display order.
func (r *Registry) List() []*models.NoteSet {
	var out []*models.NoteSet
	r.store.View(func(s *settings.Settings) {
		out = append(out, s.NoteSets...)
	})
	return SortNoteSets(out)
}

// SortNoteSets assigns a sort order to any note set lacking one — the next
// integer above the current maximum, in original relative order — then
// stable-sorts by sort order. Running it twice yields the same result, so a
// note set acquires a permanent position the first time the list persists.
func SortNoteSets(sets []*models.NoteSet) []*models.NoteSet {
	maxOrder := 0
	for _, ns := range sets {
		if ns.SortOrder != nil && *ns.SortOrder > maxOrder {
			maxOrder = *ns.SortOrder
		}
	}
	next := maxOrder + 1
	for _, ns := range sets {
		if ns.SortOrder == nil {
			order := next
			ns.SortOrder = &order
			next++
		}
	}
	sort.SliceStable(sets, func(i, j int) bool {
		return *sets[i].SortOrder < *sets[j].SortOrder
	})
	return sets
}

// RefreshDerived recomputes the stored display strings after a mutation,
// so reads never recompute them.
func RefreshDerived(ns *models.NoteSet) {
	ns.DisplayName = DisplayName(ns)
	ns.Description = Describe(ns)
}

// ValidateRulesAndSave recomputes the note set's validation errors and
// persists them. When the only problem is an empty queue while the rules
// still match documents, the queue is rebuilt instead of reporting an error:
// the common first-use case self-heals.
func (r *Registry) ValidateRulesAndSave(id string) error {
	ns, err := r.store.NoteSet(id)
	if err != nil {
		return err
	}

	errs, matched := r.ruleErrors(ns)

	if len(errs) == 1 && errs[0] == models.ValidationQueueEmpty && matched > 0 {
		r.logger.Debug("noteset: empty queue with matching rules, rebuilding",
			slog.String("id", ns.ID))
		if err := r.rebuilder.Rebuild(ns); err != nil {
			return err
		}
		if ns.Queue.Len() > 0 {
			errs = nil
		}
	}

	return r.store.UpdateNoteSet(id, func(stored *models.NoteSet) error {
		stored.Queue = ns.Queue
		stored.ValidationErrors = errs
		return nil
	})
}

// ValidateAll revalidates every note set; failures are logged, not fatal, so
// one bad note set cannot abort a batch pass over the rest.
func (r *Registry) ValidateAll() {
	for _, ns := range r.List() {
		if err := r.ValidateRulesAndSave(ns.ID); err != nil {
			r.logger.Warn("noteset: validation failed",
				slog.String("id", ns.ID), slog.String("error", err.Error()))
		}
	}
}

// ruleErrors computes the full validation error set for a note set and the
// number of documents its rules currently match.
func (r *Registry) ruleErrors(ns *models.NoteSet) ([]models.ValidationError, int) {
	var errs []models.ValidationError

	if ns.Queue.Len() == 0 {
		errs = append(errs, models.ValidationQueueEmpty)
	}

	if ns.HasCustomQuery() {
		if err := r.query.ValidateQuery(ns.CustomQuery); err != nil {
			errs = append(errs, models.ValidationCustomQueryBad)
			return errs, 0
		}
	} else if q := CompileQuery(ns); !q.MatchAll {
		if err := r.query.ValidateQuery(q.Expr); err != nil {
			errs = append(errs, models.ValidationBuiltQueryBad)
			return errs, 0
		}
	}

	docs, err := index.ResolveWithRetry(r.query, CompileQuery(ns))
	if err != nil {
		r.logger.Warn("noteset: resolve failed during validation",
			slog.String("id", ns.ID), slog.String("error", err.Error()))
		return errs, 0
	}
	now := time.Now()
	matched := 0
	for i := range docs {
		if MatchesRecency(ns, &docs[i], now) {
			matched++
		}
	}
	if matched == 0 {
		errs = append(errs, models.ValidationRulesMatchNothing)
	}
	return errs, matched
}

// RefreshStats recomputes the derived, non-authoritative counters shown next
// to a note set, and persists them.
func (r *Registry) RefreshStats(id string, reviewedField string) error {
	ns, err := r.store.NoteSet(id)
	if err != nil {
		return err
	}
	docs, err := index.ResolveWithRetry(r.query, CompileQuery(ns))
	if err != nil {
		return fmt.Errorf("noteset: refresh stats: %w", err)
	}

	now := time.Now()
	stats := models.NoteSetStats{}
	for i := range docs {
		doc := &docs[i]
		if !MatchesRecency(ns, doc, now) {
			continue
		}
		stats.TotalCount++
		reviewed, ok := doc.FieldDate(reviewedField)
		if !ok {
			stats.NotReviewedCount++
			continue
		}
		if reviewed.After(now.AddDate(0, 0, -7)) {
			stats.ReviewedLast7DaysCount++
		}
		if reviewed.After(now.AddDate(0, 0, -30)) {
			stats.ReviewedLast30Days++
		}
	}

	return r.store.UpdateNoteSet(id, func(stored *models.NoteSet) error {
		stored.Stats = stats
		return nil
	})
}
