package extraction

import (
	"context"
	"fmt"

	"github.com/talentpool/resume-indexer/internal/config"
)

// Result is the extraction contract the indexer depends on: raw text plus
// its normalized form. Both must be non-empty for the extraction to count
// as usable.
type Result struct {
	PlainText      string
	NormalizedText string
	Pages          int
}

// Error is a structured extraction failure. Reason is safe to persist on
// the candidate record and show to a human.
type Error struct {
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Cause }

// Extractor converts a document reference into extracted text. It must be
// safe for concurrent use; the reindex orchestrator calls it from up to
// batch-size goroutines at once.
type Extractor interface {
	Extract(ctx context.Context, documentRef string) (*Result, error)
}

// New builds the extractor selected by EXTRACTION_BACKEND.
func New(cfg config.ExtractionConfig) (Extractor, error) {
	local := NewLocalExtractor(cfg.FetchTimeout, cfg.MaxFetchSize)
	switch cfg.Backend {
	case "", "local":
		return local, nil
	case "ai":
		return NewAIExtractor(local, cfg.OpenAIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown extraction backend: %s", cfg.Backend)
	}
}
