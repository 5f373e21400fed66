// Package extract turns document abstracts into typed evidence records.
// Implements: prd002-extraction (R1, R2, R5).
//
// Each of the four evidence categories (variant, functional, cohort,
// segregation) has its own Backend; the orchestrator in this package fans
// extraction tasks out over every document x backend pair.
package extract

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/curation-engine/pkg/types"
)

// Backend extracts evidence of a single category from one document.
// The four specialist extractors implement this interface per the Strategy
// pattern (R1.2); their internals (prompting, model choice) are opaque to
// the rest of the engine.
//
// Extract returns an empty slice, never an error, when the abstract simply
// contains no evidence of the backend's category (R2.3).
type Backend interface {
	Category() types.EvidenceCategory
	Extract(ctx context.Context, doc types.Document) ([]types.EvidenceRecord, error)
}

// candidateResponse is the structured response a backend's model returns
// for one abstract.
type candidateResponse struct {
	HasEvidence bool               `json:"has_evidence"`
	Findings    []candidateFinding `json:"findings"`
}

// candidateFinding is a single evidence candidate as returned by the model.
type candidateFinding struct {
	EvidenceLevel string            `json:"evidence_level"`
	Description   string            `json:"description"`
	Confidence    float64           `json:"confidence"`
	KeyTerms      []string          `json:"key_terms"`
	Attributes    map[string]string `json:"attributes"`
}

// convertFindings validates model findings and converts them to
// EvidenceRecords for one document (R2.1, R2.2). Validation errors make the
// whole response malformed; an unrecognized evidence level is tolerated and
// later scores zero points.
func convertFindings(findings []candidateFinding, cat types.EvidenceCategory, doc types.Document, extractedBy string) ([]types.EvidenceRecord, []string) {
	var records []types.EvidenceRecord
	var errors []string

	for i, f := range findings {
		if strings.TrimSpace(f.Description) == "" {
			errors = append(errors, fmt.Sprintf("finding %d: empty description", i))
			continue
		}
		if f.Confidence < 0.0 || f.Confidence > 1.0 {
			errors = append(errors, fmt.Sprintf("finding %d: confidence %f out of range [0,1]", i, f.Confidence))
			continue
		}

		keyTerms := f.KeyTerms
		if len(keyTerms) > 5 {
			keyTerms = keyTerms[:5]
		}

		records = append(records, types.EvidenceRecord{
			Category:    cat,
			DocumentID:  doc.ID,
			Year:        doc.Year,
			Level:       types.EvidenceLevel(strings.ToLower(strings.TrimSpace(f.EvidenceLevel))),
			Description: f.Description,
			Confidence:  f.Confidence,
			KeyTerms:    keyTerms,
			ExtractedBy: extractedBy,
			Attributes:  f.Attributes,
		})
	}

	return records, errors
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// extractWithRetry calls the backend with exponential backoff (R5.5).
func extractWithRetry(ctx context.Context, b Backend, doc types.Document, maxRetries int) ([]types.EvidenceRecord, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		records, err := b.Extract(ctx, doc)
		if err == nil {
			return records, nil
		}
		lastErr = err

		// Cancellation is not worth retrying.
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
