// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdf-bench/internal/results"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the pipeline leaderboard and export results",
	Long: `Report aggregates the comparisons and judgments recorded in the results
database into one row per pipeline, ranked by mean judge score and then by
mean comparison score. --export writes the full results as YAML, JSON or an
XLSX workbook into the export directory.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("db", "", "results database (default from results.db, else results/pdf-bench.db)")
	reportCmd.Flags().StringSlice("export", nil, "export formats: yaml, json, xlsx")
	reportCmd.Flags().Bool("json", false, "print the leaderboard as JSON")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	exports, _ := cmd.Flags().GetStringSlice("export")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := results.Open(resultsConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	board, err := store.Leaderboard(ctx)
	if err != nil {
		return err
	}
	if err := formatLeaderboard(board, jsonOutput); err != nil {
		return err
	}

	for _, format := range exports {
		var path string
		switch strings.ToLower(format) {
		case "yaml":
			path, err = store.ExportYAML(ctx)
		case "json":
			path, err = store.ExportJSON(ctx)
		case "xlsx":
			path, err = store.ExportXLSX(ctx)
		default:
			return fmt.Errorf("unsupported format %q: use yaml, json, or xlsx", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Exported to %s\n", path)
	}
	return nil
}

func formatLeaderboard(board []types.PipelineSummary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(board)
	}

	if len(board) == 0 {
		fmt.Println("No results recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-16s  %8s  %7s  %7s  %6s  %7s  %5s  %6s  %4s\n",
		"Rank", "Pipeline", "Compared", "Missing", "Overall", "Judged", "Score", "Text", "Struct", "Fmt")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for i, p := range board {
		name := p.Pipeline
		if len(name) > 16 {
			name = name[:13] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-16s  %8d  %7d  %7.4f  %6d  %7.2f  %5.2f  %6.2f  %4.2f\n",
			i+1, name, p.Compared, p.Missing, p.MeanOverall,
			p.Judged, p.MeanScore, p.MeanText, p.MeanStructure, p.MeanFormatting)
	}

	fmt.Fprintf(os.Stdout, "\n%d pipelines\n", len(board))
	return nil
}
