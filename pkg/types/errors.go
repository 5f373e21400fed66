// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// RetrievalError indicates the literature search/fetch collaborator failed.
// Fatal: the run aborts at the Searching or Fetching stage. The gene/disease
// pair is preserved for diagnostics. Per prd005-pipeline R3.1.
type RetrievalError struct {
	Gene    string
	Disease string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving literature for %s / %s: %v", e.Gene, e.Disease, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ExtractionError indicates one backend/document extraction task failed.
// Recoverable: recorded in the failure list, never propagated past the
// orchestrator boundary. Per prd002-extraction R4.1.
type ExtractionError struct {
	DocumentID string
	Category   EvidenceCategory
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s evidence from %s: %v", e.Category, e.DocumentID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// AggregateExtractionFailure indicates every extraction task in a run
// failed. Fatal: the run aborts before Scoring. Per prd005-pipeline R3.2.
type AggregateExtractionFailure struct {
	DocumentCount int
	TaskCount     int
}

func (e *AggregateExtractionFailure) Error() string {
	return fmt.Sprintf("all %d extraction tasks failed across %d documents", e.TaskCount, e.DocumentCount)
}

// ConfigurationError indicates a malformed weight table, cap, or threshold.
// Fatal: detected before any stage runs.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %s", e.Field, e.Reason)
}
