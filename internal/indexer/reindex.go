package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/talentpool/resume-indexer/internal/candidate"
	"github.com/talentpool/resume-indexer/internal/models"
)

// ItemError is one failed item in a bulk reindex report.
type ItemError struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Kind        Kind      `json:"kind"`
	Error       string    `json:"error"`
}

// Report aggregates a bulk reindex run. Succeeded + Failed always equals
// Total, even when every item failed.
type Report struct {
	Total      int         `json:"total"`
	Succeeded  int         `json:"success"`
	Failed     int         `json:"failed"`
	Errors     []ItemError `json:"errors"`
	Scope      string      `json:"scope"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// ProgressFunc is called after each batch completes with the number of
// items processed so far. Observability side-channel only.
type ProgressFunc func(processed, total int)

// Orchestrator drives the Indexer across the whole candidate population:
// fixed-size batches, concurrent within a batch, sequential across
// batches. One item's failure never aborts its siblings or the run.
type Orchestrator struct {
	store     candidate.Store
	indexer   *Indexer
	batchSize int
	eligible  Eligibility
	progress  ProgressFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.progress = fn }
}

func WithEligibility(fn Eligibility) Option {
	return func(o *Orchestrator) { o.eligible = fn }
}

func NewOrchestrator(store candidate.Store, ix *Indexer, batchSize int, opts ...Option) *Orchestrator {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	o := &Orchestrator{
		store:     store,
		indexer:   ix,
		batchSize: batchSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DefaultBatchSize bounds how many extractions run at once.
const DefaultBatchSize = 5

// ReindexAll reindexes every candidate that has a document reference.
func (o *Orchestrator) ReindexAll(ctx context.Context) (*Report, error) {
	return o.run(ctx, models.ReindexScopeAll, nil)
}

// ReindexEligible reindexes only candidates the eligibility rule selects.
func (o *Orchestrator) ReindexEligible(ctx context.Context) (*Report, error) {
	eligible := o.eligible
	if eligible == nil {
		eligible = NeedsIndexing(0)
	}
	return o.run(ctx, models.ReindexScopeEligible, eligible)
}

func (o *Orchestrator) run(ctx context.Context, scope string, filter Eligibility) (*Report, error) {
	started := time.Now().UTC()

	candidates, err := o.store.ListWithDocument(ctx)
	if err != nil {
		// The only fatal path: if enumeration fails there is nothing to
		// isolate per item.
		return nil, fmt.Errorf("enumerate candidates: %w", err)
	}

	targets := make([]models.Candidate, 0, len(candidates))
	now := time.Now().UTC()
	for _, c := range candidates {
		if !c.HasDocument() {
			continue
		}
		if filter != nil && !filter(&c, now) {
			continue
		}
		targets = append(targets, c)
	}

	report := &Report{
		Total:     len(targets),
		Errors:    []ItemError{},
		Scope:     scope,
		StartedAt: started,
	}

	slog.Info("bulk reindex started", "scope", scope, "total", report.Total, "batch_size", o.batchSize)

	var mu sync.Mutex
	processed := 0

	for start := 0; start < len(targets); start += o.batchSize {
		end := start + o.batchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[start:end]

		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(c models.Candidate) {
				defer wg.Done()
				_, err := o.indexer.Index(ctx, c.ID, c.DocumentRef)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failed++
					report.Errors = append(report.Errors, ItemError{
						CandidateID: c.ID,
						Kind:        KindOf(err),
						Error:       reportReason(err),
					})
					return
				}
				report.Succeeded++
			}(batch[i])
		}
		wg.Wait()

		processed += len(batch)
		slog.Info("reindex batch complete", "processed", processed, "total", report.Total)
		if o.progress != nil {
			o.progress(processed, report.Total)
		}
	}

	report.FinishedAt = time.Now().UTC()
	slog.Info("bulk reindex finished",
		"scope", scope,
		"total", report.Total,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(report.StartedAt))

	return report, nil
}

func reportReason(err error) string {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Reason()
	}
	return err.Error()
}
