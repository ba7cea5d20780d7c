// Package workspace is the host boundary of the review engine: opening
// notes, tracking the active note, and showing user-facing notices.
package workspace

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
)

// Host is what the review session needs from its surroundings. The review
// engine never talks to clients directly: it opens notes and posts notices
// through this interface.
type Host interface {
	// Open makes path the active note. Fails with ErrResolutionDrift when
	// the path no longer names a real note.
	Open(path string) error
	// ActivePath returns the currently open note, or "".
	ActivePath() string
	// Notice shows a transient user-facing message.
	Notice(msg string)
}

// Local is the Host implementation for the standalone server: the "active
// note" is server-side state mirrored to clients over SSE.
type Local struct {
	store  storage.Provider
	broker *sse.Broker
	logger *slog.Logger

	mu     sync.Mutex
	active string
}

// NewLocal creates a Local host.
func NewLocal(store storage.Provider, broker *sse.Broker, logger *slog.Logger) *Local {
	return &Local{store: store, broker: broker, logger: logger}
}

// Open verifies path still resolves to a real note, records it as active,
// and tells clients to display it.
func (l *Local) Open(path string) error {
	if !l.store.IsNote(path) {
		return fmt.Errorf("workspace: open %s: %w", path, apperr.ErrResolutionDrift)
	}
	l.mu.Lock()
	l.active = path
	l.mu.Unlock()

	l.logger.Debug("workspace: opened note", slog.String("path", path))
	l.broker.PublishReviewEvent("note_opened", path)
	return nil
}

// ActivePath returns the currently open note, or "".
func (l *Local) ActivePath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Notice logs the message and pushes it to clients.
func (l *Local) Notice(msg string) {
	l.logger.Info("notice", slog.String("message", msg))
	l.broker.Publish(sse.Event{Type: "notice", Data: map[string]string{"message": msg}})
}
