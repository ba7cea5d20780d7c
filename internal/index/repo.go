package index

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/raido/internal/models"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Path        string
	Title       string
	Checksum    string
	Tags        []string
	Frontmatter map[string]any
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// SearchResult represents one full-text search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertNote inserts or replaces a note and its FTS entry within a
// transaction. created_at is written once on first insert and kept on
// updates, so it survives re-indexing.
func (db *DB) UpsertNote(n NoteRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(n.Tags)
	fmJSON, _ := json.Marshal(n.Frontmatter)

	_, err = tx.Exec(`
		INSERT INTO notes (path, title, checksum, tags, frontmatter, body, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title       = excluded.title,
			checksum    = excluded.checksum,
			tags        = excluded.tags,
			frontmatter = excluded.frontmatter,
			body        = excluded.body,
			modified_at = excluded.modified_at
	`, n.Path, n.Title, n.Checksum, string(tagsJSON), string(fmJSON), body, n.CreatedAt, n.ModifiedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	if err := ftsUpsert(tx, n.Path, n.Title, body, n.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteNote removes a note and its FTS entry.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, path)

	return tx.Commit()
}

// GetDocument returns one indexed note as a domain document.
func (db *DB) GetDocument(path string) (*models.Document, error) {
	row := db.conn.QueryRow(`
		SELECT path, title, tags, frontmatter, created_at, modified_at
		FROM notes WHERE path = ?
	`, path)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// AllDocuments returns every indexed note as a domain document.
func (db *DB) AllDocuments() ([]models.Document, error) {
	rows, err := db.conn.Query(`
		SELECT path, title, tags, frontmatter, created_at, modified_at
		FROM notes ORDER BY path
	`)
	if err != nil {
		return nil, fmt.Errorf("index: all documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (*models.Document, error) {
	var (
		doc      models.Document
		tagsJSON string
		fmJSON   string
	)
	if err := r.Scan(&doc.Path, &doc.Title, &tagsJSON, &fmJSON, &doc.CreatedAt, &doc.ModifiedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, fmt.Errorf("index: decode tags for %s: %w", doc.Path, err)
	}
	if err := json.Unmarshal([]byte(fmJSON), &doc.Fields); err != nil {
		return nil, fmt.Errorf("index: decode frontmatter for %s: %w", doc.Path, err)
	}
	return &doc, nil
}
