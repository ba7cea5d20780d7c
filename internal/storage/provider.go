// Package storage defines the vault file-system abstraction.
package storage

import "time"

// FileMeta is lightweight file metadata returned by List.
type FileMeta struct {
	Path       string
	Checksum   string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// IsNote reports whether path names an existing regular markdown file,
	// as opposed to a folder or a dangling reference.
	IsNote(path string) bool
}
