package indexer

import (
	"time"

	"github.com/talentpool/resume-indexer/internal/models"
)

// Eligibility decides whether a candidate needs (re)indexing. The rule is
// supplied by the caller; NeedsIndexing is the stock one.
type Eligibility func(c *models.Candidate, now time.Time) bool

// NeedsIndexing returns the default eligibility rule: a candidate with a
// document needs indexing when it was never indexed, the last attempt
// failed, the normalized text is missing despite a success-free history,
// or the last attempt is older than staleAfter. staleAfter <= 0 disables
// the staleness check.
func NeedsIndexing(staleAfter time.Duration) Eligibility {
	return func(c *models.Candidate, now time.Time) bool {
		if !c.HasDocument() {
			return false
		}
		// unset, failed, or anything unrecognized
		if c.IndexStatus != models.IndexStatusSuccess {
			return true
		}
		if c.NormalizedText == nil || *c.NormalizedText == "" {
			return true
		}
		if staleAfter > 0 {
			if c.IndexTimestamp == nil || now.Sub(*c.IndexTimestamp) > staleAfter {
				return true
			}
		}
		return false
	}
}
