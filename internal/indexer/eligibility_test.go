package indexer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talentpool/resume-indexer/internal/models"
)

func TestNeedsIndexing(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	staleAfter := 720 * time.Hour

	text := "normalized resume text"
	fresh := now.Add(-24 * time.Hour)
	stale := now.Add(-31 * 24 * time.Hour)

	tests := []struct {
		name string
		c    models.Candidate
		want bool
	}{
		{
			name: "no document ref never eligible",
			c:    models.Candidate{IndexStatus: models.IndexStatusUnset},
			want: false,
		},
		{
			name: "never indexed",
			c:    models.Candidate{DocumentRef: "doc://r", IndexStatus: models.IndexStatusUnset},
			want: true,
		},
		{
			name: "failed last attempt",
			c:    models.Candidate{DocumentRef: "doc://r", IndexStatus: models.IndexStatusFailed, IndexTimestamp: &fresh},
			want: true,
		},
		{
			name: "success but normalized text missing",
			c:    models.Candidate{DocumentRef: "doc://r", IndexStatus: models.IndexStatusSuccess, IndexTimestamp: &fresh},
			want: true,
		},
		{
			name: "fresh success with text",
			c:    models.Candidate{DocumentRef: "doc://r", IndexStatus: models.IndexStatusSuccess, NormalizedText: &text, IndexTimestamp: &fresh},
			want: false,
		},
		{
			name: "stale success",
			c:    models.Candidate{DocumentRef: "doc://r", IndexStatus: models.IndexStatusSuccess, NormalizedText: &text, IndexTimestamp: &stale},
			want: true,
		},
		{
			name: "success with text but no timestamp",
			c:    models.Candidate{DocumentRef: "doc://r", IndexStatus: models.IndexStatusSuccess, NormalizedText: &text},
			want: true,
		},
	}

	rule := NeedsIndexing(staleAfter)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule(&tt.c, now))
		})
	}
}

func TestNeedsIndexing_StalenessDisabled(t *testing.T) {
	now := time.Now().UTC()
	text := "normalized"
	old := now.Add(-365 * 24 * time.Hour)

	c := models.Candidate{
		DocumentRef:    "doc://r",
		IndexStatus:    models.IndexStatusSuccess,
		NormalizedText: &text,
		IndexTimestamp: &old,
	}

	assert.False(t, NeedsIndexing(0)(&c, now))
	assert.True(t, NeedsIndexing(720*time.Hour)(&c, now))
}
