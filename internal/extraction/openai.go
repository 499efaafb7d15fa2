package extraction

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/talentpool/resume-indexer/pkg/resumetext"
)

// AIExtractor wraps a base extractor and runs the raw text through a model
// cleanup pass. Useful for scanned or badly encoded resumes where the raw
// extraction is garbled. On any model failure it falls back to the base
// result rather than failing the indexing attempt.
type AIExtractor struct {
	base   Extractor
	client *openai.Client
	model  string
}

func NewAIExtractor(base Extractor, apiKey, model string) *AIExtractor {
	return &AIExtractor{
		base:   base,
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const cleanupPrompt = `You reconstruct resume text that was mangled by PDF extraction.
Return only the corrected plain text of the resume. Fix broken words,
reading order, and encoding artifacts. Do not add, summarize, or omit content.`

func (e *AIExtractor) Extract(ctx context.Context, documentRef string) (*Result, error) {
	result, err := e.base.Extract(ctx, documentRef)
	if err != nil {
		return nil, err
	}

	cleaned, err := e.cleanup(ctx, result.PlainText)
	if err != nil || strings.TrimSpace(cleaned) == "" {
		return result, nil
	}

	normalized := resumetext.Normalize(cleaned)
	if normalized == "" {
		return result, nil
	}

	return &Result{
		PlainText:      cleaned,
		NormalizedText: normalized,
		Pages:          result.Pages,
	}, nil
}

func (e *AIExtractor) cleanup(ctx context.Context, raw string) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: cleanupPrompt},
			{Role: openai.ChatMessageRoleUser, Content: raw},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
