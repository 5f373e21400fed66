// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunReport is the externally observed output of one curation run.
// Per prd006-report R1.1-R1.4.
type RunReport struct {
	// RunID uniquely identifies this run.
	RunID string `json:"run_id" yaml:"run_id"`

	// Gene and Disease echo the query.
	Gene    string `json:"gene" yaml:"gene"`
	Disease string `json:"disease" yaml:"disease"`

	// DocumentCount is the number of documents fetched.
	DocumentCount int `json:"document_count" yaml:"document_count"`

	// EvidenceCount is the number of evidence records gathered.
	EvidenceCount int `json:"evidence_count" yaml:"evidence_count"`

	// FailureCount is the number of extraction tasks that failed.
	// Partial failures are visible only as this warning count.
	FailureCount int `json:"failure_count" yaml:"failure_count"`

	// UnreliableDocuments lists documents whose extraction failure
	// fraction exceeded the configured threshold.
	UnreliableDocuments []string `json:"unreliable_documents,omitempty" yaml:"unreliable_documents,omitempty"`

	// YearMin and YearMax bound the publication years observed. Both zero
	// when no document carried a year.
	YearMin int `json:"year_min,omitempty" yaml:"year_min,omitempty"`
	YearMax int `json:"year_max,omitempty" yaml:"year_max,omitempty"`

	// Classification holds the scores, label, and confidence.
	Classification ClassificationResult `json:"classification" yaml:"classification"`

	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time `json:"started_at" yaml:"started_at"`

	// Elapsed is the wall time the run took.
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}
