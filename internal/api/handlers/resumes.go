package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/talentpool/resume-indexer/internal/candidate"
	"github.com/talentpool/resume-indexer/internal/indexer"
)

// StatusCache caches candidate index-status reads. Satisfied by
// cache.Cache.
type StatusCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const statusCacheTTL = 5 * time.Minute

func statusCacheKey(id uuid.UUID) string {
	return "candidate:index:" + id.String()
}

type ResumeHandler struct {
	store candidate.Store
	ix    *indexer.Indexer
	cache StatusCache
}

func NewResumeHandler(store candidate.Store, ix *indexer.Indexer, c StatusCache) *ResumeHandler {
	return &ResumeHandler{store: store, ix: ix, cache: c}
}

type indexRequest struct {
	CandidateID string `json:"candidate_id"`
	DocumentRef string `json:"document_ref,omitempty"`
}

// Index runs a single indexing attempt. document_ref is optional; when
// omitted the candidate's stored reference is used.
func (h *ResumeHandler) Index(w http.ResponseWriter, r *http.Request) {
	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid request body"})
		return
	}

	if req.CandidateID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "candidate_id is required"})
		return
	}
	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "candidate_id is not a valid UUID"})
		return
	}

	documentRef := req.DocumentRef
	if documentRef == "" {
		c, err := h.store.GetByID(r.Context(), candidateID)
		if errors.Is(err, candidate.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "candidate not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
			return
		}
		documentRef = c.DocumentRef
	}

	result, err := h.ix.Index(r.Context(), candidateID, documentRef)
	if err != nil {
		if indexer.KindOf(err) != indexer.KindInvalidRequest {
			h.invalidateStatus(r.Context(), candidateID)
		}
		writeIndexError(w, err)
		return
	}

	h.invalidateStatus(r.Context(), candidateID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"candidate_id": result.CandidateID,
		"text_length":  result.TextLength,
		"indexed_at":   result.IndexedAt,
	})
}

// IndexStatus exposes the candidate's indexing fields so a failed attempt's
// index_error is readable without database access. Reads are served from
// cache until the next indexing attempt invalidates them.
func (h *ResumeHandler) IndexStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid candidate ID"})
		return
	}

	key := statusCacheKey(id)
	var cached map[string]interface{}
	if err := h.cache.Get(r.Context(), key, &cached); err == nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	c, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, candidate.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "candidate not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]interface{}{
		"id":           c.ID,
		"document_ref": c.DocumentRef,
		"index_status": c.IndexStatus,
	}
	if c.IndexTimestamp != nil {
		resp["index_timestamp"] = c.IndexTimestamp
	}
	if c.IndexError != nil {
		resp["index_error"] = *c.IndexError
	}
	if c.NormalizedText != nil {
		resp["text_length"] = len(*c.NormalizedText)
	}

	// Best-effort: a cache write failure just means the next read hits
	// the store again.
	_ = h.cache.Set(r.Context(), key, resp, statusCacheTTL)

	writeJSON(w, http.StatusOK, resp)
}

func (h *ResumeHandler) invalidateStatus(ctx context.Context, id uuid.UUID) {
	_ = h.cache.Delete(ctx, statusCacheKey(id))
}

func writeIndexError(w http.ResponseWriter, err error) {
	var ie *indexer.IndexError
	status := http.StatusInternalServerError
	msg := err.Error()

	if errors.As(err, &ie) {
		msg = ie.Reason()
		switch ie.Kind {
		case indexer.KindInvalidRequest:
			status = http.StatusBadRequest
		case indexer.KindExtractionFailed:
			status = http.StatusUnprocessableEntity
		case indexer.KindPersistError:
			status = http.StatusBadGateway
		}
	}

	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}
