// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-bench/internal/judge"
	"github.com/pdiddy/pdf-bench/internal/results"
	"github.com/pdiddy/pdf-bench/internal/secrets"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

var judgeCmd = &cobra.Command{
	Use:   "judge [fixture]",
	Short: "Score a pipeline's HTML outputs with an LLM rubric",
	Long: `Judge sends each fixture's ground-truth HTML and the pipeline's converted
HTML to Claude and records a rubric score: text fidelity (0-3), structure
(0-3) and formatting (0-2), combined into a score out of 10.

With no argument every fixture directory whose name starts with a digit is
evaluated; with an argument only that fixture. Fixtures already in the
evaluations file are skipped, so an interrupted run can be resumed.

The API key is read from .secrets/anthropic-api-key or ANTHROPIC_API_KEY.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJudge,
}

func init() {
	judgeCmd.Flags().String("fixtures", "fixtures", "fixtures directory (one subdirectory per fixture)")
	judgeCmd.Flags().String("output", "output", "directory with the converted <fixture>.html files")
	judgeCmd.Flags().String("pipeline", "", "pipeline name shown to the judge and used in the results database (default parsr)")
	judgeCmd.Flags().String("model", "", "Claude model (default from judge.model, else "+judge.DefaultModel+")")
	judgeCmd.Flags().String("evaluations", filepath.Join("evaluations", judge.EvaluationsFile), "evaluations file")
	judgeCmd.Flags().Int("max-chars", 0, "truncate each HTML input to this many characters (default 12000)")
	judgeCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	judgeCmd.Flags().Bool("store", false, "also record judgments in the results database")
	judgeCmd.Flags().String("db", "", "results database (default from results.db, else results/pdf-bench.db)")

	rootCmd.AddCommand(judgeCmd)
}

func runJudge(cmd *cobra.Command, args []string) error {
	fixtures, _ := cmd.Flags().GetString("fixtures")
	outputDir, _ := cmd.Flags().GetString("output")
	pipeline, _ := cmd.Flags().GetString("pipeline")
	model, _ := cmd.Flags().GetString("model")
	evalPath, _ := cmd.Flags().GetString("evaluations")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	useStore, _ := cmd.Flags().GetBool("store")

	if model == "" {
		model = viper.GetString("judge.model")
	}
	if pipeline == "" {
		pipeline = judge.DefaultPipeline
	}

	cfg := types.JudgeConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout},
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     loadedSecrets.Get(secrets.AnthropicAPIKey),
			MaxRetries: viper.GetInt("judge.max_retries"),
		},
		FixturesDir:  fixtures,
		OutputDir:    outputDir,
		Pipeline:     pipeline,
		MaxHTMLChars: maxChars,
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: %s", judge.ErrNoAPIKey, secrets.Hint(secrets.AnthropicAPIKey))
	}

	fileSink, err := judge.OpenFileSink(evalPath)
	if err != nil {
		return err
	}
	var sink judge.Sink = fileSink

	ctx := context.Background()
	if useStore {
		store, err := results.Open(resultsConfig(cmd))
		if err != nil {
			return err
		}
		defer store.Close()
		sink = judge.Tee(fileSink, store.Sink(ctx, pipeline))
	}

	logger := newLogger()
	var fixture string
	if len(args) == 1 {
		fixture = args[0]
	}
	result, err := judge.NewRunner(judge.NewClaudeJudge(cfg, logger), sink, cfg, logger).Run(ctx, fixture, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(strings.Repeat("═", 50))
	fmt.Printf("Evaluations saved to: %s\n", evalPath)
	judge.WriteSummary(os.Stdout, judge.Summarize(fileSink.Judgments()))

	if result.HasFailures() {
		return fmt.Errorf("%d fixture(s) failed evaluation", result.Failed)
	}
	return nil
}
