package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/talentpool/resume-indexer/internal/cache"
	"github.com/talentpool/resume-indexer/internal/candidate"
	"github.com/talentpool/resume-indexer/internal/indexer"
	"github.com/talentpool/resume-indexer/internal/models"
	"github.com/talentpool/resume-indexer/internal/queue"
	"github.com/talentpool/resume-indexer/internal/runs"
)

// ResumeWorker executes queued indexing tasks with the same indexer the
// API uses, so queued and synchronous attempts share one set of semantics.
type ResumeWorker struct {
	store        candidate.Store
	indexer      *indexer.Indexer
	orchestrator *indexer.Orchestrator
	runs         *runs.Service
	cache        *cache.Cache
	lockTTL      time.Duration
}

func NewResumeWorker(store candidate.Store, ix *indexer.Indexer, orch *indexer.Orchestrator, runsSvc *runs.Service, c *cache.Cache, lockTTL time.Duration) *ResumeWorker {
	return &ResumeWorker{
		store:        store,
		indexer:      ix,
		orchestrator: orch,
		runs:         runsSvc,
		cache:        c,
		lockTTL:      lockTTL,
	}
}

func (w *ResumeWorker) ProcessIndexTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ResumeIndexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	candidateID, err := uuid.Parse(payload.CandidateID)
	if err != nil {
		return fmt.Errorf("parse candidate ID: %w", err)
	}

	documentRef := payload.DocumentRef
	if documentRef == "" {
		c, err := w.store.GetByID(ctx, candidateID)
		if err != nil {
			return fmt.Errorf("load candidate: %w", err)
		}
		documentRef = c.DocumentRef
	}

	slog.Info("indexing resume", "candidate_id", candidateID)

	result, err := w.indexer.Index(ctx, candidateID, documentRef)
	if err != nil {
		// Extraction failures already persisted a failed status; retrying
		// through asynq would just re-fail on the same document.
		if indexer.KindOf(err) == indexer.KindExtractionFailed {
			slog.Warn("resume extraction failed", "candidate_id", candidateID, "error", err)
			return nil
		}
		return err
	}

	slog.Info("resume indexed", "candidate_id", candidateID, "text_length", result.TextLength)
	return nil
}

func (w *ResumeWorker) ProcessReindexTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ResumeReindexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	release, err := w.cache.AcquireReindexLock(ctx, w.lockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrReindexRunning) {
			slog.Warn("skipping queued reindex, another run holds the lock")
			return nil
		}
		return err
	}
	defer release()

	var report *indexer.Report
	if payload.Scope == models.ReindexScopeEligible {
		report, err = w.orchestrator.ReindexEligible(ctx)
	} else {
		report, err = w.orchestrator.ReindexAll(ctx)
	}
	if err != nil {
		return fmt.Errorf("bulk reindex: %w", err)
	}

	if _, err := w.runs.Record(ctx, report); err != nil {
		slog.Error("failed to record reindex run", "error", err)
	}
	return nil
}
