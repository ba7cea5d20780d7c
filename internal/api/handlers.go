package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/notes"
	"github.com/starford/raido/internal/noteset"
	"github.com/starford/raido/internal/review"
	"github.com/starford/raido/internal/settings"
	"github.com/starford/raido/internal/workspace"
)

// Handler holds API route handlers.
type Handler struct {
	registry *noteset.Registry
	session  *review.Session
	notes    *notes.Service
	idx      *index.Service
	store    *settings.Store
	host     workspace.Host
}

// NewHandler creates a new Handler.
func NewHandler(registry *noteset.Registry, session *review.Session, notesSvc *notes.Service, idx *index.Service, store *settings.Store, host workspace.Host) *Handler {
	return &Handler{
		registry: registry,
		session:  session,
		notes:    notesSvc,
		idx:      idx,
		store:    store,
		host:     host,
	}
}

// ListNoteSets handles GET /notesets.
func (h *Handler) ListNoteSets(w http.ResponseWriter, _ *http.Request) {
	var current string
	h.store.View(func(s *settings.Settings) { current = s.CurrentNoteSetID })
	writeJSON(w, http.StatusOK, NoteSetListResponse{
		NoteSets: h.registry.List(),
		Current:  current,
	})
}

// CreateNoteSet handles POST /notesets.
func (h *Handler) CreateNoteSet(w http.ResponseWriter, r *http.Request) {
	ns, err := h.registry.Create()
	if err != nil {
		h.internalError(w, "create note set", err)
		return
	}
	if r.ContentLength > 0 {
		var req NoteSetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
			return
		}
		applyRequest(ns, &req)
		if err := h.registry.Update(ns); err != nil {
			h.internalError(w, "update note set", err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, ns)
}

// GetNoteSet handles GET /notesets/{id}.
func (h *Handler) GetNoteSet(w http.ResponseWriter, r *http.Request) {
	ns, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

// UpdateNoteSet handles PUT /notesets/{id}.
func (h *Handler) UpdateNoteSet(w http.ResponseWriter, r *http.Request) {
	ns, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	var req NoteSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	applyRequest(ns, &req)
	if err := h.registry.Update(ns); err != nil {
		h.internalError(w, "update note set", err)
		return
	}
	updated, err := h.registry.Get(ns.ID)
	if err != nil {
		h.internalError(w, "reload note set", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteNoteSet handles DELETE /notesets/{id}.
func (h *Handler) DeleteNoteSet(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(chi.URLParam(r, "id")); err != nil {
		h.internalError(w, "delete note set", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
}

// SelectNoteSet handles POST /notesets/{id}/select.
func (h *Handler) SelectNoteSet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.registry.Get(id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	err := h.store.Update(func(s *settings.Settings) error {
		s.CurrentNoteSetID = id
		return nil
	})
	if err != nil {
		h.internalError(w, "select note set", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "selected"})
}

// ResetQueue handles POST /notesets/{id}/queue/reset.
func (h *Handler) ResetQueue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.session.ResetNotesetQueue(id); err != nil {
		h.operationError(w, "reset queue", err)
		return
	}
	ns, err := h.registry.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

// NoteSetStats handles GET /notesets/{id}/stats: it refreshes the derived
// counters on demand and returns them.
func (h *Handler) NoteSetStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var reviewedField string
	h.store.View(func(s *settings.Settings) { reviewedField = s.ReviewedFieldName })
	if err := h.registry.RefreshStats(id, reviewedField); err != nil {
		h.operationError(w, "refresh stats", err)
		return
	}
	ns, err := h.registry.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, ns.Stats)
}

// StartReview handles POST /review/start.
func (h *Handler) StartReview(w http.ResponseWriter, r *http.Request) {
	req := h.decodeReview(r)
	id, ok := h.resolveNoteSetID(w, req)
	if !ok {
		return
	}
	if err := h.session.StartReview(id); err != nil {
		h.operationError(w, "start review", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// MarkReviewed handles POST /review/reviewed.
func (h *Handler) MarkReviewed(w http.ResponseWriter, r *http.Request) {
	req := h.decodeReview(r)
	id, ok := h.resolveNoteSetID(w, req)
	if !ok {
		return
	}
	path, ok := h.resolvePath(w, req)
	if !ok {
		return
	}
	if err := h.session.ReviewNote(path, id); err != nil {
		h.operationError(w, "mark reviewed", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// SkipNote handles POST /review/skip.
func (h *Handler) SkipNote(w http.ResponseWriter, r *http.Request) {
	req := h.decodeReview(r)
	id, ok := h.resolveNoteSetID(w, req)
	if !ok {
		return
	}
	path, ok := h.resolvePath(w, req)
	if !ok {
		return
	}
	if err := h.session.SkipNote(path, id); err != nil {
		h.operationError(w, "skip note", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// OpenRandom handles POST /review/random.
func (h *Handler) OpenRandom(w http.ResponseWriter, r *http.Request) {
	req := h.decodeReview(r)
	id, ok := h.resolveNoteSetID(w, req)
	if !ok {
		return
	}
	if err := h.session.OpenRandomNoteInQueue(id); err != nil {
		h.operationError(w, "open random note", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// SetFrequency handles POST /notes/frequency.
func (h *Handler) SetFrequency(w http.ResponseWriter, r *http.Request) {
	var req FrequencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if req.Path == "" {
		req.Path = h.host.ActivePath()
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	freq, err := models.ParseReviewFrequency(req.Frequency)
	if err != nil || freq == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("frequency must be one of: high, normal, low, ignore"))
		return
	}
	if err := h.notes.SetReviewFrequency(req.Path, freq); err != nil {
		h.operationError(w, "set frequency", err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.idx.Search(q, limit)
	if err != nil {
		h.internalError(w, "search", err)
		return
	}
	results := make([]SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = SearchResult{Path: hit.Path, Title: hit.Title, Snippet: hit.Snippet}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func (h *Handler) decodeReview(r *http.Request) *ReviewRequest {
	var req ReviewRequest
	if r.ContentLength > 0 {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	return &req
}

func (h *Handler) resolveNoteSetID(w http.ResponseWriter, req *ReviewRequest) (string, bool) {
	if req.NoteSetID != "" {
		return req.NoteSetID, true
	}
	ns, err := h.store.CurrentNoteSet()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("no note set selected"))
		return "", false
	}
	return ns.ID, true
}

func (h *Handler) resolvePath(w http.ResponseWriter, req *ReviewRequest) (string, bool) {
	if req.Path != "" {
		return req.Path, true
	}
	if active := h.host.ActivePath(); active != "" {
		return active, true
	}
	writeJSON(w, http.StatusBadRequest, errorBody("no note is open"))
	return "", false
}

func (h *Handler) operationError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	h.internalError(w, op, err)
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
}

func applyRequest(ns *models.NoteSet, req *NoteSetRequest) {
	ns.Name = req.Name
	ns.Tags = req.Tags
	ns.TagsJoinType = req.TagsJoinType
	ns.Folders = req.Folders
	ns.FoldersToTagsJoinType = req.FoldersToTagsJoinType
	ns.CreatedInLastNDays = req.CreatedInLastNDays
	ns.ModifiedInLastNDays = req.ModifiedInLastNDays
	ns.CustomQuery = req.CustomQuery
}
