package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "curation-engine/0.1"). Per prd001-retrieval R5.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetrievalConfig holds settings for the literature search/fetch stage.
// Per prd001-retrieval R1.3, R5.1-R5.4.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of documents to fetch (default 30).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// APIKey is an optional NCBI E-utilities key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries bounds retry attempts for rate-limited requests.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExtractionConfig holds settings for the extraction stage and its
// fan-out orchestration. Per prd002-extraction R5.1-R5.6.
type ExtractionConfig struct {
	// Model is the AI model identifier (e.g. "gemini-1.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts per extraction task
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxInFlight bounds concurrent extraction tasks across all
	// document x backend pairs (default 8). Respects the rate limits of
	// the extraction service.
	MaxInFlight int `json:"max_in_flight" yaml:"max_in_flight"`

	// DocFailureThreshold is the fraction of a document's tasks that must
	// fail before the document is marked unreliable (default 0.5).
	DocFailureThreshold float64 `json:"doc_failure_threshold" yaml:"doc_failure_threshold"`

	// MaxAbstractChars truncates abstracts sent to the backend (default 1500).
	MaxAbstractChars int `json:"max_abstract_chars" yaml:"max_abstract_chars"`
}

// LevelWeights maps the three evidence levels to point values for one
// category. Per prd003-scoring R2.1.
type LevelWeights struct {
	Strong   float64 `json:"strong" yaml:"strong"`
	Moderate float64 `json:"moderate" yaml:"moderate"`
	Weak     float64 `json:"weak" yaml:"weak"`
}

// ScoringConfig holds the curator-tunable scoring constants: the per-category
// weight tables, category caps, and recency decay parameters. All values are
// externally supplied so curators can tune without code changes.
// Per prd003-scoring R1-R3.
type ScoringConfig struct {
	// Weights is the per-category weight table.
	Weights map[EvidenceCategory]LevelWeights `json:"weights" yaml:"weights"`

	// Caps is the per-category maximum point ceiling.
	Caps map[EvidenceCategory]float64 `json:"caps" yaml:"caps"`

	// RecencyThresholdYears is the age beyond which decay applies (default 10).
	RecencyThresholdYears int `json:"recency_threshold_years" yaml:"recency_threshold_years"`

	// RecencyDecayFactor is the multiplicative per-year decay applied to
	// each year beyond the threshold (default 0.8).
	RecencyDecayFactor float64 `json:"recency_decay_factor" yaml:"recency_decay_factor"`

	// ReferenceYear anchors age computation. Zero means "the newest
	// publication year among the scored records", which keeps scoring a
	// pure function of its input rather than of the wall clock.
	ReferenceYear int `json:"reference_year,omitempty" yaml:"reference_year,omitempty"`
}

// ClassifierConfig holds the fixed ascending score thresholds and the
// confidence saturation constant. Per prd004-classification R2.1-R2.3.
type ClassifierConfig struct {
	// Limited, Moderate, Strong, Definitive are the ascending total-score
	// thresholds. A total below Limited classifies as no_evidence.
	Limited    float64 `json:"limited" yaml:"limited"`
	Moderate   float64 `json:"moderate" yaml:"moderate"`
	Strong     float64 `json:"strong" yaml:"strong"`
	Definitive float64 `json:"definitive" yaml:"definitive"`

	// SaturationItems is the evidence-item count at which confidence
	// reaches 1.0 (default 25).
	SaturationItems int `json:"saturation_items" yaml:"saturation_items"`
}

// StoreConfig holds settings for the run archive.
type StoreConfig struct {
	// Dir is the base directory for the archive database (default "curation").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for one curation run.
type PipelineConfig struct {
	Retrieval  RetrievalConfig  `json:"retrieval" yaml:"retrieval"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
}

// DefaultScoringConfig returns the default weight tables, caps, and decay
// parameters. The level points carry the category multipliers folded in
// (functional x0.8, segregation x1.2, cohort x1.5 relative to variant) so
// that the total score is a plain sum of category scores.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: map[EvidenceCategory]LevelWeights{
			CategoryVariant:     {Strong: 3.0, Moderate: 1.5, Weak: 0.5},
			CategoryFunctional:  {Strong: 2.4, Moderate: 1.2, Weak: 0.4},
			CategorySegregation: {Strong: 3.6, Moderate: 1.8, Weak: 0.6},
			CategoryCohort:      {Strong: 4.5, Moderate: 2.25, Weak: 0.75},
		},
		Caps: map[EvidenceCategory]float64{
			CategoryVariant:     12,
			CategoryFunctional:  10,
			CategorySegregation: 8,
			CategoryCohort:      12,
		},
		RecencyThresholdYears: 10,
		RecencyDecayFactor:    0.8,
	}
}

// DefaultClassifierConfig returns the default classification thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Limited:         2.0,
		Moderate:        5.0,
		Strong:          15.0,
		Definitive:      30.0,
		SaturationItems: 25,
	}
}

// Validate checks the scoring constants. Per prd003-scoring R1.4: a
// malformed weight table is a configuration error detected before any
// stage runs.
func (c ScoringConfig) Validate() error {
	for _, cat := range Categories {
		w, ok := c.Weights[cat]
		if !ok {
			return &ConfigurationError{Field: "scoring.weights", Reason: "missing category " + string(cat)}
		}
		if w.Strong < 0 || w.Moderate < 0 || w.Weak < 0 {
			return &ConfigurationError{Field: "scoring.weights." + string(cat), Reason: "negative weight"}
		}
		cap, ok := c.Caps[cat]
		if !ok {
			return &ConfigurationError{Field: "scoring.caps", Reason: "missing category " + string(cat)}
		}
		if cap <= 0 {
			return &ConfigurationError{Field: "scoring.caps." + string(cat), Reason: "cap must be positive"}
		}
	}
	if c.RecencyDecayFactor < 0 || c.RecencyDecayFactor > 1 {
		return &ConfigurationError{Field: "scoring.recency_decay_factor", Reason: "must be in [0,1]"}
	}
	if c.RecencyThresholdYears < 0 {
		return &ConfigurationError{Field: "scoring.recency_threshold_years", Reason: "must be non-negative"}
	}
	return nil
}

// Validate checks that the thresholds are ascending and the saturation
// constant is usable.
func (c ClassifierConfig) Validate() error {
	if !(c.Limited < c.Moderate && c.Moderate < c.Strong && c.Strong < c.Definitive) {
		return &ConfigurationError{Field: "classifier", Reason: "thresholds must be strictly ascending"}
	}
	if c.SaturationItems <= 0 {
		return &ConfigurationError{Field: "classifier.saturation_items", Reason: "must be positive"}
	}
	return nil
}
