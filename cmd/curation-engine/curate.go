// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/curation-engine/internal/extract"
	"github.com/pdiddy/curation-engine/internal/pipeline"
	"github.com/pdiddy/curation-engine/internal/pubmed"
	"github.com/pdiddy/curation-engine/internal/store"
	"github.com/pdiddy/curation-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "curation-engine/0.1"
	defaultModel     = "gemini-1.5-flash"
)

var curateCmd = &cobra.Command{
	Use:   "curate GENE DISEASE",
	Short: "Run the full curation pipeline for a gene-disease pair",
	Long: `Curate searches PubMed for literature on the gene-disease pair, extracts
evidence from the abstracts along the four curation dimensions, scores
each dimension, and classifies the association.

The Gemini API key is read from --gemini-api-key, the GEMINI_API_KEY
secret in .secrets/, or the CURATION_ENGINE_GEMINI_API_KEY environment
variable. An NCBI key is optional and raises the E-utilities rate limit.

Scoring weights, caps, and decay parameters can be replaced wholesale
with --scoring-config pointing at a YAML file.`,
	Args: cobra.ExactArgs(2),
	RunE: runCurate,
}

// geminiFactory builds the per-category Gemini backends for one run.
var geminiFactory pipeline.BackendFactory = extract.NewGeminiBackends

func init() {
	curateCmd.Flags().Int("max-results", 30, "maximum number of PubMed articles to fetch")
	curateCmd.Flags().String("model", defaultModel, "extraction model identifier")
	curateCmd.Flags().Int("max-in-flight", 8, "maximum concurrent extraction tasks")
	curateCmd.Flags().Int("max-retries", 3, "retry attempts per extraction task")
	curateCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	curateCmd.Flags().String("scoring-config", "", "YAML file with scoring weights, caps, and decay parameters")
	curateCmd.Flags().Int("reference-year", 0, "anchor year for recency decay (0 = newest fetched article)")
	curateCmd.Flags().String("gemini-api-key", "", "Gemini API key (overrides .secrets/)")
	curateCmd.Flags().String("ncbi-api-key", "", "NCBI E-utilities API key (optional)")
	curateCmd.Flags().String("store-dir", "curation", "base directory for the run archive")
	curateCmd.Flags().Bool("no-store", false, "skip archiving the run")
	curateCmd.Flags().Bool("json", false, "output the run report as JSON")

	rootCmd.AddCommand(curateCmd)
}

func runCurate(cmd *cobra.Command, args []string) error {
	gene, disease := args[0], args[1]

	cfg, err := pipelineConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	lit := pubmed.NewClient(cfg.Retrieval)
	ctrl, err := pipeline.New(cfg, lit, geminiFactory, os.Stdout)
	if err != nil {
		return err
	}

	res, err := ctrl.Run(cmd.Context(), gene, disease)
	if err != nil {
		return fmt.Errorf("curation failed at stage %s: %w", ctrl.Stage(), err)
	}

	noStore, _ := cmd.Flags().GetBool("no-store")
	if !noStore {
		if err := archiveRun(cmd, res); err != nil {
			fmt.Fprintf(os.Stderr, "warning: archiving run failed: %v\n", err)
		}
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Report)
	}

	printReport(res.Report)
	return nil
}

func pipelineConfigFromFlags(cmd *cobra.Command) (types.PipelineConfig, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	model, _ := cmd.Flags().GetString("model")
	maxInFlight, _ := cmd.Flags().GetInt("max-in-flight")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	referenceYear, _ := cmd.Flags().GetInt("reference-year")

	geminiKey, _ := cmd.Flags().GetString("gemini-api-key")
	geminiKey = secretDefault("gemini-api-key", geminiKey)
	if geminiKey == "" {
		geminiKey = os.Getenv("CURATION_ENGINE_GEMINI_API_KEY")
	}
	ncbiKey, _ := cmd.Flags().GetString("ncbi-api-key")
	ncbiKey = secretDefault("ncbi-api-key", ncbiKey)

	scoring := types.DefaultScoringConfig()
	if path, _ := cmd.Flags().GetString("scoring-config"); path != "" {
		loaded, err := loadScoringConfig(path)
		if err != nil {
			return types.PipelineConfig{}, err
		}
		scoring = loaded
	}
	if referenceYear != 0 {
		scoring.ReferenceYear = referenceYear
	}

	return types.PipelineConfig{
		Retrieval: types.RetrievalConfig{
			HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
			MaxResults: maxResults,
			APIKey:     ncbiKey,
		},
		Extraction: types.ExtractionConfig{
			Model:       model,
			APIKey:      geminiKey,
			MaxRetries:  maxRetries,
			MaxInFlight: maxInFlight,
		},
		Scoring:    scoring,
		Classifier: types.DefaultClassifierConfig(),
	}, nil
}

// loadScoringConfig reads a complete scoring configuration from YAML and
// validates it. The file replaces the defaults entirely.
func loadScoringConfig(path string) (types.ScoringConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ScoringConfig{}, fmt.Errorf("reading scoring config: %w", err)
	}
	var cfg types.ScoringConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return types.ScoringConfig{}, fmt.Errorf("parsing scoring config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return types.ScoringConfig{}, err
	}
	return cfg, nil
}

func archiveRun(cmd *cobra.Command, res *pipeline.Result) error {
	storeDir, _ := cmd.Flags().GetString("store-dir")
	s, err := store.NewStore(types.StoreConfig{Dir: storeDir})
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveRun(cmd.Context(), res.Report, res.Documents, res.Records)
}

func printReport(r *types.RunReport) {
	fmt.Println()
	fmt.Printf("Run        %s\n", r.RunID)
	fmt.Printf("Query      %s / %s\n", r.Gene, r.Disease)
	fmt.Printf("Documents  %d", r.DocumentCount)
	if r.YearMin != 0 {
		fmt.Printf(" (%d-%d)", r.YearMin, r.YearMax)
	}
	fmt.Println()
	fmt.Printf("Evidence   %d records\n", r.EvidenceCount)
	if r.FailureCount > 0 {
		fmt.Printf("Warnings   %d extraction task(s) failed\n", r.FailureCount)
	}
	if len(r.UnreliableDocuments) > 0 {
		fmt.Printf("Unreliable %s\n", strings.Join(r.UnreliableDocuments, ", "))
	}

	fmt.Println()
	fmt.Printf("%-14s  %8s  %6s  %s\n", "Category", "Points", "Items", "")
	fmt.Println(strings.Repeat("-", 40))
	for _, s := range r.Classification.CategoryScores {
		note := ""
		if s.Capped {
			note = "capped"
		}
		fmt.Printf("%-14s  %8.2f  %6d  %s\n", s.Category, s.Points, s.ItemCount, note)
	}
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("%-14s  %8.2f\n", "total", r.Classification.TotalScore)

	fmt.Println()
	fmt.Printf("Classification: %s (confidence %.2f)\n", r.Classification.Label, r.Classification.Confidence)
	fmt.Printf("Elapsed: %s\n", r.Elapsed.Round(time.Millisecond))
}
