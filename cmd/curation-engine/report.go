// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curation-engine/internal/store"
	"github.com/pdiddy/curation-engine/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect archived curation runs (list, show, search)",
	Long: `Report reads the local run archive. Use subcommands to list past runs,
show one run's full report and evidence, or full-text search the
archived abstracts.`,
}

// --- list subcommand ---

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE:  runReportList,
}

func runReportList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summaries, err := s.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	fmt.Printf("%-36s  %-10s  %-24s  %-10s  %7s  %5s  %s\n",
		"Run", "Gene", "Disease", "Label", "Score", "Docs", "Started")
	fmt.Println(strings.Repeat("-", 110))
	for _, sum := range summaries {
		disease := sum.Disease
		if len(disease) > 24 {
			disease = disease[:21] + "..."
		}
		fmt.Printf("%-36s  %-10s  %-24s  %-10s  %7.2f  %5d  %s\n",
			sum.RunID, sum.Gene, disease, sum.Label, sum.TotalScore,
			sum.DocumentCount, sum.StartedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("\n%d runs\n", len(summaries))
	return nil
}

// --- show subcommand ---

var reportShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show one archived run's report and evidence",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

func runReportShow(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	report, records, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Report   *types.RunReport       `json:"report"`
			Evidence []types.EvidenceRecord `json:"evidence"`
		}{report, records})
	}

	printReport(report)

	if len(records) > 0 {
		fmt.Println()
		fmt.Printf("%-10s  %-12s  %-8s  %s\n", "Document", "Category", "Level", "Description")
		fmt.Println(strings.Repeat("-", 90))
		for _, r := range records {
			desc := r.Description
			if len(desc) > 54 {
				desc = desc[:51] + "..."
			}
			fmt.Printf("%-10s  %-12s  %-8s  %s\n", r.DocumentID, r.Category, r.Level, desc)
		}
	}
	return nil
}

// --- search subcommand ---

var reportSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Full-text search archived abstracts",
	Long: `Search runs an FTS5 query over the titles and abstracts of every
archived document and prints the matches ranked by relevance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReportSearch,
}

func runReportSearch(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := s.SearchAbstracts(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, h := range hits {
		fmt.Printf("%d. [%s] %s (%d)\n   run %s\n   %s\n",
			i+1, h.DocumentID, h.Title, h.Year, h.RunID, h.Snippet)
	}
	fmt.Printf("\n%d results\n", len(hits))
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	storeDir, _ := cmd.Flags().GetString("store-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return store.NewStore(types.StoreConfig{Dir: storeDir, MaxResults: maxResults})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	reportCmd.PersistentFlags().String("store-dir", "curation", "base directory for the run archive")
	reportCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")
	reportCmd.PersistentFlags().Bool("json", false, "output as JSON")

	reportSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")

	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportSearchCmd)

	rootCmd.AddCommand(reportCmd)
}
