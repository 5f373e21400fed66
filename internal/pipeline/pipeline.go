// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences a curation run through its stages: search,
// fetch, extract, score, classify. Implements: prd005-pipeline (R1-R4) and
// prd006-report (R1).
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/curation-engine/internal/classify"
	"github.com/pdiddy/curation-engine/internal/extract"
	"github.com/pdiddy/curation-engine/internal/scoring"
	"github.com/pdiddy/curation-engine/pkg/types"
)

// Stage names the pipeline's current phase. Transitions are strictly
// forward; a failed stage moves to StageFailed and the run ends.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageSearching   Stage = "searching"
	StageFetching    Stage = "fetching"
	StageExtracting  Stage = "extracting"
	StageScoring     Stage = "scoring"
	StageClassifying Stage = "classifying"
	StageDone        Stage = "done"
	StageFailed      Stage = "failed"
)

// LiteratureClient is the retrieval collaborator. pubmed.Client satisfies
// it; tests substitute fakes.
type LiteratureClient interface {
	Search(ctx context.Context, gene, disease string) ([]string, error)
	Fetch(ctx context.Context, pmids []string) ([]types.Document, error)
}

// BackendFactory builds the per-category extraction backends for one run.
// The returned close function releases any shared client resources.
type BackendFactory func(ctx context.Context, gene, disease string, cfg types.ExtractionConfig) ([]extract.Backend, func() error, error)

// Controller drives one curation run. A controller is single-use: construct
// a fresh one per invocation (R1.3).
type Controller struct {
	cfg      types.PipelineConfig
	lit      LiteratureClient
	backends BackendFactory
	w        io.Writer
	stage    Stage
}

// New validates the stage configurations and returns a controller ready to
// run. Configuration errors surface here, before any stage executes (R1.4).
func New(cfg types.PipelineConfig, lit LiteratureClient, backends BackendFactory, w io.Writer) (*Controller, error) {
	if lit == nil {
		return nil, &types.ConfigurationError{Field: "pipeline", Reason: "literature client is required"}
	}
	if backends == nil {
		return nil, &types.ConfigurationError{Field: "pipeline", Reason: "backend factory is required"}
	}
	if err := cfg.Scoring.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Classifier.Validate(); err != nil {
		return nil, err
	}
	if w == nil {
		w = io.Discard
	}
	return &Controller{cfg: cfg, lit: lit, backends: backends, w: w, stage: StageIdle}, nil
}

// Stage reports the controller's current phase.
func (c *Controller) Stage() Stage { return c.stage }

// Result bundles the run report with the raw artifacts a caller may want
// to archive.
type Result struct {
	Report    *types.RunReport
	Documents []types.Document
	Records   []types.EvidenceRecord
}

// Run executes the full pipeline for one gene-disease pair and returns the
// run report with its artifacts. Retrieval failures and total extraction
// failure abort the run (R3.1, R3.2); partial extraction failures surface
// only as the report's warning count (R3.3). A query with zero hits
// completes normally with a no-evidence classification.
func (c *Controller) Run(ctx context.Context, gene, disease string) (*Result, error) {
	if c.stage != StageIdle {
		return nil, fmt.Errorf("controller already ran (stage %s); construct a new one", c.stage)
	}

	started := time.Now()
	report := &types.RunReport{
		RunID:     uuid.NewString(),
		Gene:      gene,
		Disease:   disease,
		StartedAt: started,
	}

	c.stage = StageSearching
	fmt.Fprintf(c.w, "search  %s / %s\n", gene, disease)
	pmids, err := c.lit.Search(ctx, gene, disease)
	if err != nil {
		return nil, c.fail(&types.RetrievalError{Gene: gene, Disease: disease, Err: err})
	}

	c.stage = StageFetching
	fmt.Fprintf(c.w, "fetch   %d articles\n", len(pmids))
	docs, err := c.lit.Fetch(ctx, pmids)
	if err != nil {
		return nil, c.fail(&types.RetrievalError{Gene: gene, Disease: disease, Err: err})
	}
	report.DocumentCount = len(docs)
	report.YearMin, report.YearMax = yearRange(docs)

	c.stage = StageExtracting
	var out extract.Output
	if len(docs) > 0 {
		backends, closeBackends, err := c.backends(ctx, gene, disease, c.cfg.Extraction)
		if err != nil {
			return nil, c.fail(fmt.Errorf("constructing extraction backends: %w", err))
		}
		defer closeBackends()

		fmt.Fprintf(c.w, "extract %d documents x %d categories\n", len(docs), len(backends))
		out, err = extract.ExtractAll(ctx, docs, backends, c.cfg.Extraction, c.w)
		if err != nil {
			return nil, c.fail(err)
		}
		if out.SucceededDocuments == 0 {
			return nil, c.fail(&types.AggregateExtractionFailure{
				DocumentCount: len(docs),
				TaskCount:     len(docs) * len(backends),
			})
		}
	}
	report.EvidenceCount = len(out.Records)
	report.FailureCount = len(out.Failures)
	report.UnreliableDocuments = out.UnreliableDocuments

	c.stage = StageScoring
	scores := scoring.Score(out.Records, c.cfg.Scoring)

	c.stage = StageClassifying
	report.Classification = classify.Classify(scores, c.cfg.Classifier)

	c.stage = StageDone
	report.Elapsed = time.Since(started)
	fmt.Fprintf(c.w, "done    %s (%.2f points, %d records)\n",
		report.Classification.Label, report.Classification.TotalScore, report.EvidenceCount)
	return &Result{Report: report, Documents: docs, Records: out.Records}, nil
}

func (c *Controller) fail(err error) error {
	c.stage = StageFailed
	return err
}

// yearRange returns the min and max known publication years, ignoring
// documents whose year is unknown. Both zero when no year is known.
func yearRange(docs []types.Document) (int, int) {
	min, max := 0, 0
	for _, d := range docs {
		if d.Year == 0 {
			continue
		}
		if min == 0 || d.Year < min {
			min = d.Year
		}
		if d.Year > max {
			max = d.Year
		}
	}
	return min, max
}
