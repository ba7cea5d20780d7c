package index

import (
	"errors"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// ResolveWithRetry resolves q, and when the index reports it is not ready,
// forces a reinitialize and tries once more. Exactly once: a second failure
// propagates, so a broken index cannot turn into a retry loop.
func ResolveWithRetry(svc QueryService, q models.Query) ([]models.Document, error) {
	docs, err := svc.Resolve(q)
	if err == nil || !errors.Is(err, apperr.ErrIndexNotReady) {
		return docs, err
	}
	if err := svc.Reinitialize(); err != nil {
		return nil, err
	}
	return svc.Resolve(q)
}
