package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReindexRun is the persisted record of one completed bulk reindex.
type ReindexRun struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Total      int             `json:"total" db:"total"`
	Succeeded  int             `json:"succeeded" db:"succeeded"`
	Failed     int             `json:"failed" db:"failed"`
	Errors     json.RawMessage `json:"errors" db:"errors"`
	Scope      string          `json:"scope" db:"scope"`
	StartedAt  time.Time       `json:"started_at" db:"started_at"`
	FinishedAt time.Time       `json:"finished_at" db:"finished_at"`
}

const (
	ReindexScopeAll      = "all"
	ReindexScopeEligible = "eligible"
)
