// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/curation-engine/pkg/types"
)

// TaskFailure records one failed document x backend extraction task.
// Per prd002-extraction R4.1: task failures are recorded, never propagated.
type TaskFailure struct {
	DocumentID string                 `json:"document_id"`
	Category   types.EvidenceCategory `json:"category"`
	Err        string                 `json:"error"`
}

// Output holds the gathered results of one fan-out run.
type Output struct {
	// Records is the merged evidence collection, sorted by document ID,
	// category, and description so a fixed input set yields a fixed
	// sequence. Consumers must not rely on any richer ordering.
	Records []types.EvidenceRecord

	// Failures lists every failed task.
	Failures []TaskFailure

	// UnreliableDocuments lists documents whose failure fraction exceeded
	// the configured threshold. Records that succeeded for these
	// documents are still included in Records.
	UnreliableDocuments []string

	// SucceededDocuments counts documents with at least one completed
	// task. The pipeline uses it to detect total extraction failure.
	SucceededDocuments int
}

// ExtractAll dispatches one extraction task per document x backend pair,
// bounded by cfg.MaxInFlight concurrent tasks, and gathers all results
// before returning (full barrier). A single task failure never aborts
// sibling tasks (R4.1, R4.2).
//
// Progress lines are written to w, one per completed task; this output is
// advisory only. On cancellation, undispatched tasks are abandoned and
// ExtractAll returns the records gathered so far along with ctx.Err(), so
// a caller may run a best-effort scoring pass over the partial collection.
func ExtractAll(ctx context.Context, docs []types.Document, backends []Backend, cfg types.ExtractionConfig, w io.Writer) (Output, error) {
	maxInFlight := cfg.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 8
	}
	threshold := cfg.DocFailureThreshold
	if threshold <= 0 {
		threshold = 0.5
	}

	type taskResult struct {
		docID    string
		category types.EvidenceCategory
		records  []types.EvidenceRecord
		err      error
	}

	total := len(docs) * len(backends)
	ch := make(chan taskResult)

	// Tasks never return an error to the group: failure isolation is the
	// whole point. The group provides only the in-flight bound and the
	// join; gctx propagates caller cancellation to in-flight tasks.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	go func() {
	dispatch:
		for _, doc := range docs {
			for _, b := range backends {
				if gctx.Err() != nil {
					break dispatch
				}
				doc, b := doc, b
				g.Go(func() error {
					records, err := extractWithRetry(gctx, b, doc, cfg.MaxRetries)
					ch <- taskResult{docID: doc.ID, category: b.Category(), records: records, err: err}
					return nil
				})
			}
		}
		g.Wait()
		close(ch)
	}()

	var out Output
	failedTasks := make(map[string]int)
	succeededTasks := make(map[string]int)
	done := 0

	// Single-writer collector: each task posts exactly one result, so no
	// locking is needed around the accumulation slices.
	for tr := range ch {
		done++
		if tr.err != nil {
			extErr := &types.ExtractionError{DocumentID: tr.docID, Category: tr.category, Err: tr.err}
			out.Failures = append(out.Failures, TaskFailure{
				DocumentID: tr.docID,
				Category:   tr.category,
				Err:        extErr.Error(),
			})
			failedTasks[tr.docID]++
			fmt.Fprintf(w, "failed  [%d/%d] %s %s: %v\n", done, total, tr.docID, tr.category, tr.err)
			continue
		}

		succeededTasks[tr.docID]++
		for _, rec := range tr.records {
			// Stamp provenance so every record references a document
			// fetched in this run and keeps its dispatch category.
			rec.DocumentID = tr.docID
			rec.Category = tr.category
			out.Records = append(out.Records, rec)
		}
		fmt.Fprintf(w, "done    [%d/%d] %s %s (%d records)\n", done, total, tr.docID, tr.category, len(tr.records))
	}

	out.SucceededDocuments = len(succeededTasks)

	if len(backends) > 0 {
		for _, doc := range docs {
			if float64(failedTasks[doc.ID])/float64(len(backends)) > threshold {
				out.UnreliableDocuments = append(out.UnreliableDocuments, doc.ID)
			}
		}
	}
	sort.Strings(out.UnreliableDocuments)

	sort.Slice(out.Records, func(i, j int) bool {
		a, b := out.Records[i], out.Records[j]
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Description < b.Description
	})
	sort.Slice(out.Failures, func(i, j int) bool {
		a, b := out.Failures[i], out.Failures[j]
		if a.DocumentID != b.DocumentID {
			return a.DocumentID < b.DocumentID
		}
		return a.Category < b.Category
	})

	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}
