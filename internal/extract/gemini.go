// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pdiddy/curation-engine/pkg/types"
)

// GeminiBackend extracts evidence of one category by prompting the Gemini
// API with the category's prompt template (R5.2). One backend instance is
// constructed per category per run; the gene-disease pair is fixed at
// construction.
type GeminiBackend struct {
	category types.EvidenceCategory
	gene     string
	disease  string
	model    *genai.GenerativeModel
	maxChars int
}

// NewGeminiBackends creates one Gemini-backed extractor per evidence
// category, all sharing a single API client. The returned close function
// releases the client.
func NewGeminiBackends(ctx context.Context, gene, disease string, cfg types.ExtractionConfig) ([]Backend, func() error, error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("extraction API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0)
	model.ResponseMIMEType = "application/json"

	backends := make([]Backend, 0, len(types.Categories))
	for _, cat := range types.Categories {
		backends = append(backends, &GeminiBackend{
			category: cat,
			gene:     gene,
			disease:  disease,
			model:    model,
			maxChars: cfg.MaxAbstractChars,
		})
	}

	return backends, client.Close, nil
}

// Category returns the backend's evidence dimension.
func (b *GeminiBackend) Category() types.EvidenceCategory { return b.category }

// Extract prompts the model with the document abstract and parses the JSON
// response into EvidenceRecords (R5.2-R5.4). A no-evidence response yields
// an empty slice and a nil error.
func (b *GeminiBackend) Extract(ctx context.Context, doc types.Document) ([]types.EvidenceRecord, error) {
	prompt, err := renderPrompt(b.category, b.gene, b.disease, doc.AbstractText, b.maxChars)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	resp, err := b.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("calling Gemini API: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	var cand candidateResponse
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &cand); err != nil {
		return nil, fmt.Errorf("parsing model response JSON: %w", err)
	}

	if !cand.HasEvidence {
		return nil, nil
	}

	records, validationErrors := convertFindings(cand.Findings, b.category, doc, "gemini:"+string(b.category))
	if len(validationErrors) > 0 {
		return nil, fmt.Errorf("malformed findings: %s", strings.Join(validationErrors, "; "))
	}
	return records, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini API returned no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", fmt.Errorf("Gemini API returned empty content")
	}

	var parts []string
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in Gemini API response")
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock strips markdown code fences the model sometimes wraps
// around JSON output.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
