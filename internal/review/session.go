package review

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/notes"
	"github.com/starford/raido/internal/settings"
	"github.com/starford/raido/internal/storage"
	"github.com/starford/raido/internal/workspace"
)

// Validator re-runs note-set validation after a queue reset. Satisfied by
// the note-set registry.
type Validator interface {
	ValidateRulesAndSave(id string) error
}

// Session is the stateful controller over note-set queues. It is the
// operation boundary: errors from the pure components are converted into
// user-visible notices here, and no operation lets a failure escape into the
// host's command dispatch.
type Session struct {
	store     *settings.Store
	builder   *QueueBuilder
	notes     *notes.Service
	vault     storage.Provider
	host      workspace.Host
	validator Validator
	logger    *slog.Logger
}

// NewSession creates a Session.
func NewSession(store *settings.Store, builder *QueueBuilder, notesSvc *notes.Service, vault storage.Provider, host workspace.Host, validator Validator, logger *slog.Logger) *Session {
	return &Session{
		store:     store,
		builder:   builder,
		notes:     notesSvc,
		vault:     vault,
		host:      host,
		validator: validator,
		logger:    logger,
	}
}

// StartReview builds the queue if needed and opens the next note up. An
// empty queue after building is a notice, not an error.
func (s *Session) StartReview(noteSetID string) error {
	ns, err := s.store.NoteSet(noteSetID)
	if err != nil {
		return err
	}
	if err := s.builder.BuildIfEmpty(ns); err != nil {
		return s.notify(err)
	}
	if ns.Queue.Len() == 0 {
		s.host.Notice(fmt.Sprintf("Note set %q has no notes to review.", ns.DisplayName))
		return nil
	}

	var algorithm settings.ReviewAlgorithm
	s.store.View(func(st *settings.Settings) { algorithm = st.ReviewAlgorithm })
	if algorithm == settings.AlgorithmRandom {
		return s.openRandom(ns)
	}
	return s.openHead(ns)
}

// ReviewNote marks the note as reviewed today, removes it from the queue,
// and advances when auto-advance is on. The note must be a real leaf
// document; folders and dangling paths are silently skipped.
func (s *Session) ReviewNote(path, noteSetID string) error {
	if !s.vault.IsNote(path) {
		return nil
	}
	if err := s.notes.SetReviewedToToday(path); err != nil {
		return s.notify(err)
	}
	s.host.Notice(fmt.Sprintf("Marked note %q as reviewed today.", path))

	ns, err := s.removeFromQueue(path, noteSetID)
	if err != nil {
		return err
	}

	var autoAdvance bool
	s.store.View(func(st *settings.Settings) { autoAdvance = st.OpenNextNoteAfterReview })
	if autoAdvance && ns.Queue.Len() > 0 {
		return s.openHead(ns)
	}
	return nil
}

// SkipNote removes the note from the queue without touching its metadata —
// it comes back on the next full cycle — and advances.
func (s *Session) SkipNote(path, noteSetID string) error {
	ns, err := s.removeFromQueue(path, noteSetID)
	if err != nil {
		return err
	}
	if ns.Queue.Len() == 0 {
		s.host.Notice("No more notes in this review queue.")
		return nil
	}
	return s.openHead(ns)
}

// OpenRandomNoteInQueue opens a uniformly random pending note without
// removing it from the queue.
func (s *Session) OpenRandomNoteInQueue(noteSetID string) error {
	ns, err := s.store.NoteSet(noteSetID)
	if err != nil {
		return err
	}
	if err := s.builder.BuildIfEmpty(ns); err != nil {
		return s.notify(err)
	}
	if ns.Queue.Len() == 0 {
		s.host.Notice(fmt.Sprintf("Note set %q has no notes to review.", ns.DisplayName))
		return nil
	}
	return s.openRandom(ns)
}

// ResetNotesetQueue force-rebuilds the queue and re-runs validation,
// surfacing any remaining problems as one aggregated notice.
func (s *Session) ResetNotesetQueue(noteSetID string) error {
	ns, err := s.store.NoteSet(noteSetID)
	if err != nil {
		return err
	}
	if err := s.builder.Rebuild(ns); err != nil {
		return s.notify(err)
	}
	s.logger.Info("review: queue reset", slog.String("note_set", ns.ID))

	if err := s.validator.ValidateRulesAndSave(ns.ID); err != nil {
		return s.notify(err)
	}

	refreshed, err := s.store.NoteSet(noteSetID)
	if err != nil {
		return err
	}
	if len(refreshed.ValidationErrors) > 0 {
		msg := fmt.Sprintf("Note set %q has problems:", refreshed.DisplayName)
		for _, v := range refreshed.ValidationErrors {
			msg += "\n- " + v.Message()
		}
		s.host.Notice(msg)
	}
	return nil
}

// removeFromQueue drops path from the note set's queue and persists.
// Removing an absent path is a no-op.
func (s *Session) removeFromQueue(path, noteSetID string) (*models.NoteSet, error) {
	var ns *models.NoteSet
	err := s.store.UpdateNoteSet(noteSetID, func(stored *models.NoteSet) error {
		stored.Queue.Remove(path)
		ns = stored
		return nil
	})
	return ns, err
}

// openHead opens the document at queue index 0.
func (s *Session) openHead(ns *models.NoteSet) error {
	head, ok := ns.Queue.Head()
	if !ok {
		s.host.Notice("Review queue is empty.")
		return nil
	}
	return s.open(head)
}

func (s *Session) openRandom(ns *models.NoteSet) error {
	pick := ns.Queue.Filenames[rand.Intn(ns.Queue.Len())]
	return s.open(pick)
}

// open degrades to a notice when the path no longer resolves: the dangling
// entry stays in the queue so the user can see and fix it via reset.
func (s *Session) open(path string) error {
	if err := s.host.Open(path); err != nil {
		if errors.Is(err, apperr.ErrResolutionDrift) {
			s.host.Notice(fmt.Sprintf(
				"Note %q no longer exists. Try resetting this note set's queue.", path))
			return nil
		}
		return s.notify(err)
	}
	return nil
}

// notify converts an internal error into a user-visible notice and logs it.
// Operations return nil afterwards: command callbacks have no caller to
// catch anything.
func (s *Session) notify(err error) error {
	s.logger.Warn("review: operation degraded", slog.String("error", err.Error()))
	s.host.Notice(err.Error())
	return nil
}
