package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talentpool/resume-indexer/pkg/resumetext"
)

// LocalExtractor fetches the document behind the reference and extracts
// text in-process.
type LocalExtractor struct {
	httpClient *http.Client
	maxBytes   int64
}

func NewLocalExtractor(fetchTimeout time.Duration, maxBytes int64) *LocalExtractor {
	return &LocalExtractor{
		httpClient: &http.Client{Timeout: fetchTimeout},
		maxBytes:   maxBytes,
	}
}

func (e *LocalExtractor) Extract(ctx context.Context, documentRef string) (*Result, error) {
	data, err := e.fetch(ctx, documentRef)
	if err != nil {
		return nil, &Error{Reason: "document fetch failed", Cause: err}
	}

	extracted, err := resumetext.Extract(bytes.NewReader(data), int64(len(data)), resumetext.TypeFromRef(documentRef))
	if err != nil {
		return nil, &Error{Reason: "text extraction failed", Cause: err}
	}

	normalized := resumetext.Normalize(extracted.Content)
	if normalized == "" {
		return nil, &Error{Reason: "document produced no text"}
	}

	return &Result{
		PlainText:      extracted.Content,
		NormalizedText: normalized,
		Pages:          extracted.Pages,
	}, nil
}

func (e *LocalExtractor) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", ref, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, fmt.Errorf("document exceeds %d bytes", e.maxBytes)
	}
	return data, nil
}
