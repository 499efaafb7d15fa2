package models

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is the subset of the candidate entity the indexing pipeline
// reads and mutates. The record is created by the upstream upload flow;
// this service only ever touches the index_* and *_text columns.
type Candidate struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	FullName       string     `json:"full_name" db:"full_name"`
	Email          string     `json:"email,omitempty" db:"email"`
	DocumentRef    string     `json:"document_ref,omitempty" db:"document_ref"`
	PlainText      *string    `json:"plain_text,omitempty" db:"plain_text"`
	NormalizedText *string    `json:"normalized_text,omitempty" db:"normalized_text"`
	IndexStatus    string     `json:"index_status" db:"index_status"`
	IndexTimestamp *time.Time `json:"index_timestamp,omitempty" db:"index_timestamp"`
	IndexError     *string    `json:"index_error,omitempty" db:"index_error"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

const (
	IndexStatusUnset   = "unset"
	IndexStatusSuccess = "success"
	IndexStatusFailed  = "failed"
)

// HasDocument reports whether the candidate is a valid indexing target.
func (c *Candidate) HasDocument() bool {
	return c.DocumentRef != ""
}
