// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-bench/internal/compare"
	"github.com/pdiddy/pdf-bench/internal/results"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Score a pipeline's outputs against ground-truth HTML heuristically",
	Long: `Compare reads <fixtures>/<name>/source.html and <generated>/<name>.html
(or .md with --mode markdown) for every fixture and scores text similarity
and structural similarity. Fixtures missing either document are reported as
missing. Results can be written as JSON with --out and recorded in the
results database with --pipeline.`,
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().String("fixtures", "fixtures", "fixtures directory (one subdirectory per fixture)")
	compareCmd.Flags().String("generated", "", "directory with the pipeline outputs")
	compareCmd.Flags().String("mode", "html", "generated format: html or markdown")
	compareCmd.Flags().Int("workers", 0, "concurrent comparisons (default from compare.workers, else 8)")
	compareCmd.Flags().String("out", "", "write results as JSON to this file")
	compareCmd.Flags().String("pipeline", "", "record results under this pipeline name in the results database")
	compareCmd.Flags().String("db", "", "results database (default from results.db, else results/pdf-bench.db)")
	_ = compareCmd.MarkFlagRequired("generated")

	rootCmd.AddCommand(compareCmd)
}

// resultsConfig reads the results settings from viper, letting --db win.
func resultsConfig(cmd *cobra.Command) types.ResultsConfig {
	cfg := types.ResultsConfig{
		DBPath:    viper.GetString("results.db"),
		ExportDir: viper.GetString("results.export_dir"),
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	}
	return cfg
}

func runCompare(cmd *cobra.Command, args []string) error {
	fixtures, _ := cmd.Flags().GetString("fixtures")
	generated, _ := cmd.Flags().GetString("generated")
	mode, _ := cmd.Flags().GetString("mode")
	workers, _ := cmd.Flags().GetInt("workers")
	outPath, _ := cmd.Flags().GetString("out")
	pipeline, _ := cmd.Flags().GetString("pipeline")

	if workers == 0 {
		workers = viper.GetInt("compare.workers")
	}
	cfg := types.CompareConfig{
		FixturesDir:  fixtures,
		GeneratedDir: generated,
		Mode:         types.CompareMode(mode),
		Workers:      workers,
	}
	if cfg.Mode != types.CompareHTML && cfg.Mode != types.CompareMarkdown {
		return fmt.Errorf("unsupported mode %q: use html or markdown", mode)
	}

	ctx := context.Background()
	res, _, err := compare.New(cfg, newLogger()).Run(ctx, os.Stdout)
	if err != nil {
		return err
	}

	if outPath != "" {
		if err := compare.WriteJSON(outPath, res); err != nil {
			return err
		}
		fmt.Printf("Results written to %s\n", outPath)
	}

	if pipeline != "" {
		store, err := results.Open(resultsConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveComparisons(ctx, pipeline, res); err != nil {
			return err
		}
		fmt.Printf("Recorded %d comparison(s) for %s\n", len(res), pipeline)
	}
	return nil
}
