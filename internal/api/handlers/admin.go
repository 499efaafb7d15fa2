package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/talentpool/resume-indexer/internal/cache"
	"github.com/talentpool/resume-indexer/internal/indexer"
	"github.com/talentpool/resume-indexer/internal/models"
	"github.com/talentpool/resume-indexer/internal/queue"
	"github.com/talentpool/resume-indexer/internal/runs"
)

// ReindexLocker is the single-flight lock over bulk reindex runs.
// Satisfied by cache.Cache.
type ReindexLocker interface {
	AcquireReindexLock(ctx context.Context, ttl time.Duration) (release func(), err error)
}

// RunLog stores and lists completed reindex runs. Satisfied by
// runs.Service.
type RunLog interface {
	Record(ctx context.Context, report *indexer.Report) (*models.ReindexRun, error)
	List(ctx context.Context, q runs.Query) ([]models.ReindexRun, error)
}

type AdminHandler struct {
	orch    *indexer.Orchestrator
	runLog  RunLog
	locker  ReindexLocker
	queue   *queue.Client
	lockTTL time.Duration
}

func NewAdminHandler(orch *indexer.Orchestrator, runLog RunLog, locker ReindexLocker, qc *queue.Client, lockTTL time.Duration) *AdminHandler {
	return &AdminHandler{orch: orch, runLog: runLog, locker: locker, queue: qc, lockTTL: lockTTL}
}

// Reindex runs the bulk reindex synchronously and returns the full report.
// The caller gets nothing until every batch has completed.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	scope := reindexScope(r)

	release, err := h.locker.AcquireReindexLock(r.Context(), h.lockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrReindexRunning) {
			writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}
	defer release()

	var report *indexer.Report
	if scope == models.ReindexScopeEligible {
		report, err = h.orch.ReindexEligible(r.Context())
	} else {
		report, err = h.orch.ReindexAll(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	if _, err := h.runLog.Record(r.Context(), report); err != nil {
		slog.Error("failed to record reindex run", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "results": report})
}

// ReindexAsync enqueues the bulk reindex and returns immediately.
func (h *AdminHandler) ReindexAsync(w http.ResponseWriter, r *http.Request) {
	scope := reindexScope(r)

	if err := h.queue.EnqueueResumeReindex(queue.ResumeReindexPayload{Scope: scope}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{"success": true, "scope": scope, "status": "enqueued"})
}

func (h *AdminHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	q := runs.Query{}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	if s := r.URL.Query().Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err == nil {
			q.Since = &t
		}
	}

	list, err := h.runLog.List(r.Context(), q)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": list, "count": len(list)})
}

func reindexScope(r *http.Request) string {
	if r.URL.Query().Get("scope") == models.ReindexScopeEligible {
		return models.ReindexScopeEligible
	}
	return models.ReindexScopeAll
}
