package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Note-set registry.
	r.Get("/notesets", h.ListNoteSets)
	r.Post("/notesets", h.CreateNoteSet)
	r.Get("/notesets/{id}", h.GetNoteSet)
	r.Put("/notesets/{id}", h.UpdateNoteSet)
	r.Delete("/notesets/{id}", h.DeleteNoteSet)
	r.Post("/notesets/{id}/select", h.SelectNoteSet)
	r.Post("/notesets/{id}/queue/reset", h.ResetQueue)
	r.Get("/notesets/{id}/stats", h.NoteSetStats)

	// Review session.
	r.Post("/review/start", h.StartReview)
	r.Post("/review/reviewed", h.MarkReviewed)
	r.Post("/review/skip", h.SkipNote)
	r.Post("/review/random", h.OpenRandom)

	// Per-note frequency.
	r.Post("/notes/frequency", h.SetFrequency)

	// Full-text search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
