// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store archives completed curation runs in SQLite and indexes
// fetched abstracts for full-text search. Implements: prd006-report (R2).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/curation-engine/pkg/types"
)

const dbFile = "curation.db"

// Store manages the run archive SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// NewStore opens or creates the archive database at cfg.Dir/curation.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "curation"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			gene TEXT NOT NULL,
			disease TEXT NOT NULL,
			document_count INTEGER,
			evidence_count INTEGER,
			failure_count INTEGER,
			unreliable_documents TEXT,
			year_min INTEGER,
			year_max INTEGER,
			total_score REAL,
			label TEXT,
			confidence REAL,
			category_scores TEXT,
			started_at TEXT,
			elapsed_ms INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			pmid TEXT NOT NULL,
			title TEXT,
			abstract TEXT,
			year INTEGER,
			first_author TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id)`,
		`CREATE TABLE IF NOT EXISTS evidence (
			run_id TEXT NOT NULL REFERENCES runs(id),
			category TEXT NOT NULL,
			document_id TEXT NOT NULL,
			year INTEGER,
			level TEXT,
			description TEXT,
			confidence REAL,
			key_terms TEXT,
			extracted_by TEXT,
			attributes TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evidence_run_id ON evidence(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE documents_fts USING fts5(title, abstract, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO documents_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun archives one completed run with its documents and evidence in a
// single transaction.
func (s *Store) SaveRun(ctx context.Context, report *types.RunReport, docs []types.Document, records []types.EvidenceRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	unreliableJSON, _ := json.Marshal(report.UnreliableDocuments)
	scoresJSON, _ := json.Marshal(report.Classification.CategoryScores)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, gene, disease, document_count, evidence_count, failure_count,
			unreliable_documents, year_min, year_max, total_score, label, confidence,
			category_scores, started_at, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Gene, report.Disease,
		report.DocumentCount, report.EvidenceCount, report.FailureCount,
		string(unreliableJSON), report.YearMin, report.YearMax,
		report.Classification.TotalScore, string(report.Classification.Label),
		report.Classification.Confidence, string(scoresJSON),
		report.StartedAt.UTC().Format(time.RFC3339Nano), report.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	docStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO documents (run_id, pmid, title, abstract, year, first_author)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing document insert: %w", err)
	}
	defer docStmt.Close()

	for _, d := range docs {
		if _, err := docStmt.ExecContext(ctx, report.RunID, d.ID, d.Title, d.AbstractText, d.Year, d.FirstAuthor); err != nil {
			return fmt.Errorf("inserting document %s: %w", d.ID, err)
		}
	}

	evStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO evidence (run_id, category, document_id, year, level, description,
			confidence, key_terms, extracted_by, attributes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing evidence insert: %w", err)
	}
	defer evStmt.Close()

	for _, r := range records {
		termsJSON, _ := json.Marshal(r.KeyTerms)
		attrsJSON, _ := json.Marshal(r.Attributes)
		_, err := evStmt.ExecContext(ctx,
			report.RunID, string(r.Category), r.DocumentID, r.Year, string(r.Level),
			r.Description, r.Confidence, string(termsJSON), r.ExtractedBy, string(attrsJSON),
		)
		if err != nil {
			return fmt.Errorf("inserting evidence for %s: %w", r.DocumentID, err)
		}
	}

	return tx.Commit()
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	RunID         string              `json:"run_id" yaml:"run_id"`
	Gene          string              `json:"gene" yaml:"gene"`
	Disease       string              `json:"disease" yaml:"disease"`
	Label         types.ValidityLabel `json:"label" yaml:"label"`
	TotalScore    float64             `json:"total_score" yaml:"total_score"`
	DocumentCount int                 `json:"document_count" yaml:"document_count"`
	EvidenceCount int                 `json:"evidence_count" yaml:"evidence_count"`
	StartedAt     time.Time           `json:"started_at" yaml:"started_at"`
}

// ListRuns returns archived runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, gene, disease, label, total_score, document_count, evidence_count, started_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			sum       RunSummary
			label     string
			startedAt string
		)
		if err := rows.Scan(&sum.RunID, &sum.Gene, &sum.Disease, &label,
			&sum.TotalScore, &sum.DocumentCount, &sum.EvidenceCount, &startedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		sum.Label = types.ValidityLabel(label)
		sum.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// GetRun loads one archived run with its evidence records.
func (s *Store) GetRun(ctx context.Context, runID string) (*types.RunReport, []types.EvidenceRecord, error) {
	var (
		report         types.RunReport
		label          string
		unreliableJSON sql.NullString
		scoresJSON     sql.NullString
		startedAt      string
		elapsedMS      int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, gene, disease, document_count, evidence_count, failure_count,
			unreliable_documents, year_min, year_max, total_score, label, confidence,
			category_scores, started_at, elapsed_ms
		 FROM runs WHERE id = ?`, runID,
	).Scan(&report.RunID, &report.Gene, &report.Disease,
		&report.DocumentCount, &report.EvidenceCount, &report.FailureCount,
		&unreliableJSON, &report.YearMin, &report.YearMax,
		&report.Classification.TotalScore, &label, &report.Classification.Confidence,
		&scoresJSON, &startedAt, &elapsedMS,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, nil, fmt.Errorf("looking up run: %w", err)
	}

	report.Classification.Label = types.ValidityLabel(label)
	if unreliableJSON.Valid {
		json.Unmarshal([]byte(unreliableJSON.String), &report.UnreliableDocuments)
	}
	if scoresJSON.Valid {
		json.Unmarshal([]byte(scoresJSON.String), &report.Classification.CategoryScores)
	}
	report.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	report.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, document_id, year, level, description, confidence,
			key_terms, extracted_by, attributes
		 FROM evidence WHERE run_id = ? ORDER BY document_id, category, description`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying evidence: %w", err)
	}
	defer rows.Close()

	var records []types.EvidenceRecord
	for rows.Next() {
		var (
			rec       types.EvidenceRecord
			category  string
			level     string
			termsJSON sql.NullString
			attrsJSON sql.NullString
		)
		if err := rows.Scan(&category, &rec.DocumentID, &rec.Year, &level,
			&rec.Description, &rec.Confidence, &termsJSON, &rec.ExtractedBy, &attrsJSON); err != nil {
			return nil, nil, fmt.Errorf("scanning row: %w", err)
		}
		rec.Category = types.EvidenceCategory(category)
		rec.Level = types.EvidenceLevel(level)
		if termsJSON.Valid {
			json.Unmarshal([]byte(termsJSON.String), &rec.KeyTerms)
		}
		if attrsJSON.Valid {
			json.Unmarshal([]byte(attrsJSON.String), &rec.Attributes)
		}
		records = append(records, rec)
	}
	return &report, records, rows.Err()
}

// AbstractHit is one full-text search match over archived abstracts.
type AbstractHit struct {
	RunID      string `json:"run_id" yaml:"run_id"`
	DocumentID string `json:"document_id" yaml:"document_id"`
	Title      string `json:"title" yaml:"title"`
	Year       int    `json:"year" yaml:"year"`
	Snippet    string `json:"snippet" yaml:"snippet"`
}

// SearchAbstracts runs an FTS5 query over archived document titles and
// abstracts, ranked by relevance.
func (s *Store) SearchAbstracts(ctx context.Context, query string, maxResults int) ([]AbstractHit, error) {
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.run_id, d.pmid, d.title, d.year,
			snippet(documents_fts, 1, '[', ']', '...', 12)
		 FROM documents_fts
		 JOIN documents d ON d.rowid = documents_fts.rowid
		 WHERE documents_fts MATCH ?
		 ORDER BY documents_fts.rank
		 LIMIT ?`, query, maxResults)
	if err != nil {
		return nil, fmt.Errorf("querying abstracts: %w", err)
	}
	defer rows.Close()

	var hits []AbstractHit
	for rows.Next() {
		var h AbstractHit
		if err := rows.Scan(&h.RunID, &h.DocumentID, &h.Title, &h.Year, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
