package indexer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpool/resume-indexer/internal/candidate"
	"github.com/talentpool/resume-indexer/internal/extraction"
	"github.com/talentpool/resume-indexer/internal/models"
)

// fakeStore is an in-memory candidate.Store for tests.
type fakeStore struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]*models.Candidate

	markIndexedErr error
	markFailedErr  error
	listErr        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{candidates: make(map[uuid.UUID]*models.Candidate)}
}

func (s *fakeStore) add(c *models.Candidate) *models.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.IndexStatus == "" {
		c.IndexStatus = models.IndexStatusUnset
	}
	s.candidates[c.ID] = c
	return c
}

func (s *fakeStore) get(id uuid.UUID) *models.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidates[id]
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[id]
	if !ok {
		return nil, candidate.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) ListWithDocument(ctx context.Context) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Candidate
	for _, c := range s.candidates {
		if c.DocumentRef != "" {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkIndexed(ctx context.Context, id uuid.UUID, plainText, normalizedText string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markIndexedErr != nil {
		return s.markIndexedErr
	}
	c, ok := s.candidates[id]
	if !ok {
		return candidate.ErrNotFound
	}
	c.PlainText = &plainText
	c.NormalizedText = &normalizedText
	c.IndexStatus = models.IndexStatusSuccess
	c.IndexError = nil
	if c.IndexTimestamp == nil || at.After(*c.IndexTimestamp) {
		c.IndexTimestamp = &at
	}
	return nil
}

func (s *fakeStore) MarkIndexFailed(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markFailedErr != nil {
		return s.markFailedErr
	}
	c, ok := s.candidates[id]
	if !ok {
		return candidate.ErrNotFound
	}
	c.IndexStatus = models.IndexStatusFailed
	c.IndexError = &reason
	if c.IndexTimestamp == nil || at.After(*c.IndexTimestamp) {
		c.IndexTimestamp = &at
	}
	return nil
}

// fakeExtractor serves canned results per document ref and records its
// concurrency high-water mark.
type fakeExtractor struct {
	mu      sync.Mutex
	results map[string]*extraction.Result
	errs    map[string]error
	panics  map[string]bool

	calls       int
	inFlight    int
	maxInFlight int
	delay       time.Duration
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		results: make(map[string]*extraction.Result),
		errs:    make(map[string]error),
		panics:  make(map[string]bool),
	}
}

func (e *fakeExtractor) Extract(ctx context.Context, ref string) (*extraction.Result, error) {
	e.mu.Lock()
	e.calls++
	e.inFlight++
	if e.inFlight > e.maxInFlight {
		e.maxInFlight = e.inFlight
	}
	e.mu.Unlock()

	if e.delay > 0 {
		time.Sleep(e.delay)
	}

	defer func() {
		e.mu.Lock()
		e.inFlight--
		e.mu.Unlock()
	}()

	if e.panics[ref] {
		panic("extractor blew up on " + ref)
	}
	if err, ok := e.errs[ref]; ok {
		return nil, err
	}
	if res, ok := e.results[ref]; ok {
		return res, nil
	}
	return nil, &extraction.Error{Reason: "unknown document"}
}

func TestIndex_Success(t *testing.T) {
	store := newFakeStore()
	c := store.add(&models.Candidate{FullName: "Ada Example", DocumentRef: "doc://ok"})

	ext := newFakeExtractor()
	ext.results["doc://ok"] = &extraction.Result{PlainText: "hello", NormalizedText: "hello"}

	ix := New(store, ext)

	// When: indexing a candidate whose extraction succeeds
	res, err := ix.Index(context.Background(), c.ID, "doc://ok")

	// Then: result reports the text length and the record is terminal success
	require.NoError(t, err)
	assert.Equal(t, 5, res.TextLength)
	assert.Equal(t, c.ID, res.CandidateID)
	assert.False(t, res.IndexedAt.IsZero())

	got := store.get(c.ID)
	assert.Equal(t, models.IndexStatusSuccess, got.IndexStatus)
	require.NotNil(t, got.PlainText)
	require.NotNil(t, got.NormalizedText)
	assert.Equal(t, "hello", *got.PlainText)
	assert.Equal(t, "hello", *got.NormalizedText)
	assert.Nil(t, got.IndexError)
	assert.NotNil(t, got.IndexTimestamp)
}

func TestIndex_ExtractionFailure(t *testing.T) {
	store := newFakeStore()
	prior := "previous good text"
	c := store.add(&models.Candidate{
		FullName:       "Ben Example",
		DocumentRef:    "doc://bad",
		PlainText:      &prior,
		NormalizedText: &prior,
		IndexStatus:    models.IndexStatusSuccess,
	})

	ext := newFakeExtractor()
	ext.errs["doc://bad"] = &extraction.Error{Reason: "unsupported format"}

	ix := New(store, ext)

	res, err := ix.Index(context.Background(), c.ID, "doc://bad")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, KindExtractionFailed, KindOf(err))

	// Failed transition carries the reason but never clobbers prior text.
	got := store.get(c.ID)
	assert.Equal(t, models.IndexStatusFailed, got.IndexStatus)
	require.NotNil(t, got.IndexError)
	assert.Equal(t, "unsupported format", *got.IndexError)
	require.NotNil(t, got.PlainText)
	assert.Equal(t, prior, *got.PlainText)
	assert.Equal(t, prior, *got.NormalizedText)
}

func TestIndex_EmptyExtractionIsFailure(t *testing.T) {
	store := newFakeStore()
	c := store.add(&models.Candidate{FullName: "Cam Example", DocumentRef: "doc://empty"})

	ext := newFakeExtractor()
	ext.results["doc://empty"] = &extraction.Result{PlainText: "", NormalizedText: ""}

	ix := New(store, ext)

	_, err := ix.Index(context.Background(), c.ID, "doc://empty")
	require.Error(t, err)
	assert.Equal(t, KindExtractionFailed, KindOf(err))
	assert.Equal(t, models.IndexStatusFailed, store.get(c.ID).IndexStatus)
}

func TestIndex_PersistErrorIsDistinct(t *testing.T) {
	store := newFakeStore()
	c := store.add(&models.Candidate{FullName: "Dee Example", DocumentRef: "doc://ok"})
	store.markIndexedErr = errors.New("connection reset")

	ext := newFakeExtractor()
	ext.results["doc://ok"] = &extraction.Result{PlainText: "hello", NormalizedText: "hello"}

	ix := New(store, ext)

	_, err := ix.Index(context.Background(), c.ID, "doc://ok")

	// Extraction worked, the write did not: must not look like an
	// extraction failure.
	require.Error(t, err)
	assert.Equal(t, KindPersistError, KindOf(err))

	var ie *IndexError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Reason(), "connection reset")
}

func TestIndex_InvalidRequest(t *testing.T) {
	store := newFakeStore()
	ext := newFakeExtractor()
	ix := New(store, ext)

	tests := []struct {
		name        string
		candidateID uuid.UUID
		documentRef string
	}{
		{name: "missing candidate id", candidateID: uuid.Nil, documentRef: "doc://ok"},
		{name: "missing document ref", candidateID: uuid.New(), documentRef: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ix.Index(context.Background(), tt.candidateID, tt.documentRef)
			require.Error(t, err)
			assert.Equal(t, KindInvalidRequest, KindOf(err))
			// No extraction, no writes.
			assert.Equal(t, 0, ext.calls)
		})
	}
}

func TestIndex_PanicBecomesFaultAndPersists(t *testing.T) {
	store := newFakeStore()
	c := store.add(&models.Candidate{FullName: "Eve Example", DocumentRef: "doc://boom"})

	ext := newFakeExtractor()
	ext.panics["doc://boom"] = true

	ix := New(store, ext)

	res, err := ix.Index(context.Background(), c.ID, "doc://boom")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, KindUnexpectedFault, KindOf(err))

	// The record must not silently stay unset after an attempt.
	got := store.get(c.ID)
	assert.Equal(t, models.IndexStatusFailed, got.IndexStatus)
	require.NotNil(t, got.IndexError)
	assert.Contains(t, *got.IndexError, "panic")
}

func TestIndex_Idempotent(t *testing.T) {
	store := newFakeStore()
	c := store.add(&models.Candidate{FullName: "Fay Example", DocumentRef: "doc://ok"})

	ext := newFakeExtractor()
	ext.results["doc://ok"] = &extraction.Result{PlainText: "stable text", NormalizedText: "stable text"}

	ix := New(store, ext)

	first, err := ix.Index(context.Background(), c.ID, "doc://ok")
	require.NoError(t, err)
	afterFirst := *store.get(c.ID)

	second, err := ix.Index(context.Background(), c.ID, "doc://ok")
	require.NoError(t, err)
	afterSecond := *store.get(c.ID)

	assert.Equal(t, first.TextLength, second.TextLength)
	assert.Equal(t, afterFirst.IndexStatus, afterSecond.IndexStatus)
	assert.Equal(t, *afterFirst.PlainText, *afterSecond.PlainText)
	assert.Equal(t, *afterFirst.NormalizedText, *afterSecond.NormalizedText)
	assert.Nil(t, afterSecond.IndexError)
}

func TestIndex_TimestampMonotonic(t *testing.T) {
	store := newFakeStore()
	c := store.add(&models.Candidate{FullName: "Gil Example", DocumentRef: "doc://ok"})

	ext := newFakeExtractor()
	ext.results["doc://ok"] = &extraction.Result{PlainText: "hello", NormalizedText: "hello"}

	ix := New(store, ext)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	ix.now = func() time.Time { return clock }

	_, err := ix.Index(context.Background(), c.ID, "doc://ok")
	require.NoError(t, err)
	first := *store.get(c.ID).IndexTimestamp

	clock = base.Add(time.Hour)
	ext.errs["doc://ok"] = &extraction.Error{Reason: "flaky scanner"}
	delete(ext.results, "doc://ok")

	_, err = ix.Index(context.Background(), c.ID, "doc://ok")
	require.Error(t, err)
	second := *store.get(c.ID).IndexTimestamp

	assert.False(t, second.Before(first))
}
