// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EvidenceCategory partitions extracted evidence into the four fixed
// curation dimensions. Per prd002-extraction R1.1. Every EvidenceRecord
// belongs to exactly one category.
type EvidenceCategory string

const (
	CategoryVariant     EvidenceCategory = "variant"
	CategoryFunctional  EvidenceCategory = "functional"
	CategoryCohort      EvidenceCategory = "cohort"
	CategorySegregation EvidenceCategory = "segregation"
)

// Categories lists the four evidence categories in canonical report order.
var Categories = []EvidenceCategory{
	CategoryVariant,
	CategoryFunctional,
	CategoryCohort,
	CategorySegregation,
}

// Valid reports whether c is one of the four fixed categories.
func (c EvidenceCategory) Valid() bool {
	switch c {
	case CategoryVariant, CategoryFunctional, CategoryCohort, CategorySegregation:
		return true
	}
	return false
}

// EvidenceLevel grades the strength an extraction backend assigned to a
// single evidence item. The scoring weight table is keyed on it.
type EvidenceLevel string

const (
	LevelStrong   EvidenceLevel = "strong"
	LevelModerate EvidenceLevel = "moderate"
	LevelWeak     EvidenceLevel = "weak"
)

// EvidenceRecord is one structured evidence item extracted from a document
// abstract. Records are immutable; the orchestrator owns the merged
// collection. Per prd002-extraction R2.1-R2.5.
type EvidenceRecord struct {
	// Category is the evidence dimension this record belongs to. Never
	// reinterpreted downstream.
	Category EvidenceCategory `json:"category" yaml:"category"`

	// DocumentID references the Document the record was extracted from.
	// Always a document fetched in the same run.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Year is the publication year of the source document, copied at
	// extraction time so scoring needs no document lookup. Zero means
	// unknown; unknown years are exempt from recency decay.
	Year int `json:"year" yaml:"year"`

	// Level is the backend-assigned evidence strength. An empty or
	// unrecognized level scores zero points but still counts as an item.
	Level EvidenceLevel `json:"level" yaml:"level"`

	// Description summarizes the evidence in the backend's words.
	Description string `json:"description" yaml:"description"`

	// Confidence is the backend's certainty in [0,1]. Zero means not
	// reported and scores as a neutral factor.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// KeyTerms are supporting terms lifted from the abstract.
	KeyTerms []string `json:"key_terms,omitempty" yaml:"key_terms,omitempty"`

	// ExtractedBy names the backend that produced the record.
	ExtractedBy string `json:"extracted_by,omitempty" yaml:"extracted_by,omitempty"`

	// Attributes holds category-specific fields (variant type, assay type,
	// cohort size bracket, pedigree size). Opaque to scoring beyond Level.
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// CategoryScore is the derived point total for one evidence category.
// Recomputed each run, never persisted standalone. Per prd003-scoring R4.1.
type CategoryScore struct {
	// Category identifies the dimension.
	Category EvidenceCategory `json:"category" yaml:"category"`

	// Points is the weighted, decayed, capped point sum. Never negative.
	Points float64 `json:"points" yaml:"points"`

	// ItemCount is the number of records in the category, including
	// records whose attribute combination scored zero.
	ItemCount int `json:"item_count" yaml:"item_count"`

	// Capped reports whether the raw sum was clamped to the category cap.
	Capped bool `json:"capped" yaml:"capped"`
}

// ValidityLabel is the discrete gene-disease validity tier.
// Per prd004-classification R1.1.
type ValidityLabel string

const (
	LabelNoEvidence ValidityLabel = "no_evidence"
	LabelLimited    ValidityLabel = "limited"
	LabelModerate   ValidityLabel = "moderate"
	LabelStrong     ValidityLabel = "strong"
	LabelDefinitive ValidityLabel = "definitive"
)

// ClassificationResult is the terminal artifact of one pipeline run.
type ClassificationResult struct {
	// TotalScore is the sum of the four capped category scores. There are
	// no cross-category terms.
	TotalScore float64 `json:"total_score" yaml:"total_score"`

	// CategoryScores holds the four per-category scores in canonical order.
	CategoryScores []CategoryScore `json:"category_scores" yaml:"category_scores"`

	// Label is the validity tier derived from TotalScore.
	Label ValidityLabel `json:"label" yaml:"label"`

	// Confidence in [0,1] reflects evidential breadth (total item count
	// against a saturation constant), not label correctness.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
