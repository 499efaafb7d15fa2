package indexer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind classifies an indexing failure for callers and the aggregate report.
type Kind string

const (
	KindInvalidRequest   Kind = "invalid_request"
	KindExtractionFailed Kind = "extraction_failed"
	KindPersistError     Kind = "persist_error"
	KindUnexpectedFault  Kind = "unexpected_fault"
)

// IndexError is the failure result of a single indexing attempt.
type IndexError struct {
	Kind        Kind
	CandidateID uuid.UUID
	Err         error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index candidate %s: %s: %v", e.CandidateID, e.Kind, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// Reason is the human-readable failure string persisted on the candidate
// record and surfaced in reports.
func (e *IndexError) Reason() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// KindOf extracts the failure kind, defaulting to unexpected_fault for
// errors that did not come out of the indexer.
func KindOf(err error) Kind {
	var ie *IndexError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindUnexpectedFault
}
