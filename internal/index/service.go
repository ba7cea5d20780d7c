package index

import (
	"database/sql"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/storage"
)

// QueryService is the interface the review engine depends on for resolving
// note-set queries. Consumers take this interface rather than *Service so
// tests can substitute a fake index.
type QueryService interface {
	// Resolve evaluates a compiled query against the indexed vault.
	Resolve(q models.Query) ([]models.Document, error)
	// ValidateQuery reports whether expr parses, without resolving it.
	ValidateQuery(expr string) error
	// FieldValue returns one frontmatter field of one indexed note.
	FieldValue(path, field string) (string, error)
	// Reinitialize forces a full resync of the index from the vault.
	Reinitialize() error
}

// Verify *Service satisfies QueryService at compile time.
var _ QueryService = (*Service)(nil)

// Service answers queries from the SQLite index, tracking readiness: until
// the first successful sync completes, Resolve reports ErrIndexNotReady so
// callers can decide to force a reinitialize and retry.
type Service struct {
	db     *DB
	store  storage.Provider
	logger *slog.Logger
	ready  atomic.Bool
}

// NewService creates an index service. The index is not ready until
// Reinitialize has succeeded once.
func NewService(db *DB, store storage.Provider, logger *slog.Logger) *Service {
	return &Service{db: db, store: store, logger: logger}
}

// Reinitialize runs a full vault sync and marks the index ready.
func (s *Service) Reinitialize() error {
	if err := Sync(s.db, s.store, s.logger); err != nil {
		return err
	}
	s.ready.Store(true)
	return nil
}

// Resolve evaluates q against every indexed document.
func (s *Service) Resolve(q models.Query) ([]models.Document, error) {
	if !s.ready.Load() {
		return nil, apperr.ErrIndexNotReady
	}

	docs, err := s.db.AllDocuments()
	if err != nil {
		return nil, err
	}
	if q.MatchAll {
		return docs, nil
	}

	node, err := parseQuery(q.Expr)
	if err != nil {
		return nil, err
	}

	var out []models.Document
	for i := range docs {
		if node.matches(&docs[i]) {
			out = append(out, docs[i])
		}
	}
	return out, nil
}

// ValidateQuery parses expr and reports apperr.ErrBadQuery on failure.
func (s *Service) ValidateQuery(expr string) error {
	_, err := parseQuery(expr)
	return err
}

// FieldValue returns one frontmatter field of the note at path, or
// apperr.ErrNotFound when the note is not indexed.
func (s *Service) FieldValue(path, field string) (string, error) {
	doc, err := s.db.GetDocument(path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.ErrNotFound
		}
		return "", err
	}
	return doc.FieldString(field), nil
}

// IndexFile parses data and upserts it, so a metadata write is visible to
// queries immediately instead of waiting for the watcher.
func (s *Service) IndexFile(path string, data []byte) error {
	meta := storage.FileMeta{Path: path, CreatedAt: time.Now(), ModifiedAt: time.Now()}
	return indexFile(s.db, meta, data)
}

// Search delegates full-text search to the underlying database.
func (s *Service) Search(query string, limit int) ([]SearchResult, error) {
	return s.db.Search(query, limit)
}
