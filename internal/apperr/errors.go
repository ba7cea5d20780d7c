// Package apperr defines the error taxonomy shared across Raido components.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a note set or note path did not resolve to anything.
	ErrNotFound = errors.New("not found")
	// ErrEmptyResult means a note set's rules matched zero documents, or a
	// queue was empty when an operation needed it populated.
	ErrEmptyResult = errors.New("empty result")
	// ErrBadQuery means a query expression is genuinely malformed.
	ErrBadQuery = errors.New("invalid query")
	// ErrIndexNotReady means the query index is still warming up; callers may
	// force a reinitialize and retry once.
	ErrIndexNotReady = errors.New("index not ready")
	// ErrIndexUnavailable means the query index is missing entirely. Fatal to
	// the review feature, not to the process.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrResolutionDrift means a queued path no longer resolves to a real
	// note (deleted externally, or the index lags the vault).
	ErrResolutionDrift = errors.New("note no longer resolves")
)

// InvalidFrequencyError reports a frontmatter frequency value outside the
// known enumeration. Raised loudly during scoring: silently defaulting would
// misorder the whole queue.
type InvalidFrequencyError struct {
	Path  string
	Value string
}

func (e *InvalidFrequencyError) Error() string {
	return fmt.Sprintf("note %q has invalid review frequency %q", e.Path, e.Value)
}
