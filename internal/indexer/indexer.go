package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/talentpool/resume-indexer/internal/candidate"
	"github.com/talentpool/resume-indexer/internal/extraction"
)

// Indexer performs the unit indexing operation: extract text for one
// candidate's document and transition the record to success or failed.
// Idempotent: repeated calls with the same inputs converge on the same
// terminal state.
type Indexer struct {
	store     candidate.Store
	extractor extraction.Extractor
	now       func() time.Time
}

func New(store candidate.Store, extractor extraction.Extractor) *Indexer {
	return &Indexer{
		store:     store,
		extractor: extractor,
		now:       time.Now,
	}
}

// IndexResult is returned on a successful indexing attempt.
type IndexResult struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	TextLength  int       `json:"text_length"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// Index runs one indexing attempt. Exactly one write hits the candidate
// store: a success transition carrying both text fields, or a failed
// transition carrying the reason. On unexpected faults the failed status
// is persisted best-effort so the record never silently stays unset after
// an attempt.
func (ix *Indexer) Index(ctx context.Context, candidateID uuid.UUID, documentRef string) (res *IndexResult, err error) {
	if candidateID == uuid.Nil {
		return nil, &IndexError{Kind: KindInvalidRequest, Err: errors.New("candidate_id is required")}
	}
	if documentRef == "" {
		return nil, &IndexError{Kind: KindInvalidRequest, CandidateID: candidateID, Err: errors.New("document_ref is required")}
	}

	defer func() {
		if r := recover(); r != nil {
			ie := &IndexError{Kind: KindUnexpectedFault, CandidateID: candidateID, Err: fmt.Errorf("panic: %v", r)}
			slog.Error("indexing panicked", "candidate_id", candidateID, "error", ie.Err)
			ix.persistFailure(ctx, candidateID, ie.Reason())
			res, err = nil, ie
		}
	}()

	result, err := ix.extractor.Extract(ctx, documentRef)
	if err != nil {
		ie := &IndexError{Kind: KindExtractionFailed, CandidateID: candidateID, Err: reasonOf(err)}
		ix.persistFailure(ctx, candidateID, ie.Reason())
		return nil, ie
	}
	if result.PlainText == "" || result.NormalizedText == "" {
		ie := &IndexError{Kind: KindExtractionFailed, CandidateID: candidateID, Err: errors.New("extraction returned empty text")}
		ix.persistFailure(ctx, candidateID, ie.Reason())
		return nil, ie
	}

	at := ix.now().UTC()
	if err := ix.store.MarkIndexed(ctx, candidateID, result.PlainText, result.NormalizedText, at); err != nil {
		// Extraction worked but the write did not; the caller decides
		// whether to retry, so this must not look like an extraction
		// failure.
		return nil, &IndexError{Kind: KindPersistError, CandidateID: candidateID, Err: err}
	}

	return &IndexResult{
		CandidateID: candidateID,
		TextLength:  len(result.NormalizedText),
		IndexedAt:   at,
	}, nil
}

// persistFailure writes the failed transition, keeping prior text fields
// intact. Best-effort: a store error here is logged, not returned, since
// an error is already on its way to the caller.
func (ix *Indexer) persistFailure(ctx context.Context, candidateID uuid.UUID, reason string) {
	if err := ix.store.MarkIndexFailed(ctx, candidateID, reason, ix.now().UTC()); err != nil {
		slog.Error("failed to persist index failure", "candidate_id", candidateID, "reason", reason, "error", err)
	}
}

// reasonOf strips extraction errors down to their persistable reason while
// keeping other errors whole.
func reasonOf(err error) error {
	var ee *extraction.Error
	if errors.As(err, &ee) {
		return ee
	}
	return err
}
