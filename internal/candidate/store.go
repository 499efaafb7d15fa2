package candidate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/talentpool/resume-indexer/internal/models"
)

// ErrNotFound is returned when a candidate id has no record.
var ErrNotFound = errors.New("candidate not found")

// Store is the candidate record store the indexing pipeline depends on.
// Implementations guarantee single-record atomicity and nothing more;
// overlapping writers to the same record resolve last-writer-wins.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)

	// ListWithDocument returns every candidate whose document_ref is
	// non-empty, in a stable enumeration order.
	ListWithDocument(ctx context.Context) ([]models.Candidate, error)

	// MarkIndexed records a successful indexing attempt: both text fields,
	// a success status, the attempt timestamp, and a cleared error.
	MarkIndexed(ctx context.Context, id uuid.UUID, plainText, normalizedText string, at time.Time) error

	// MarkIndexFailed records a failed attempt. Text fields are left
	// untouched so prior good data survives a bad re-extraction.
	MarkIndexFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error
}
