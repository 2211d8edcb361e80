// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-bench/internal/convert"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

var mdhtmlCmd = &cobra.Command{
	Use:   "mdhtml <file.md | dir>",
	Short: "Render Markdown pipeline outputs as HTML documents",
	Long: `Mdhtml converts Markdown produced by a PDF pipeline into a standalone HTML
document so it can be compared with HTML ground truth. Engines are tried in
order: goldmark, pandoc (container image pandoc/core, when a container
runtime is available), then a built-in basic converter. The engine used is
printed for each file.

With --batch every .md file in the directory is converted into --out
(default: next to the input).`,
	Args: cobra.ExactArgs(1),
	RunE: runMDHTML,
}

func init() {
	mdhtmlCmd.Flags().String("out", "", "output directory (single file: default stdout)")
	mdhtmlCmd.Flags().Bool("batch", false, "convert every .md file in the directory argument")
	mdhtmlCmd.Flags().Bool("force", false, "overwrite existing outputs")
	mdhtmlCmd.Flags().Bool("sanitize", false, "strip scripts, event handlers and unsafe markup from the output")
	mdhtmlCmd.Flags().String("title", "", "document title (default: input file name)")
	mdhtmlCmd.Flags().String("runtime", "", "container runtime for pandoc: docker or podman (default: container.runtime, then auto-detect)")

	rootCmd.AddCommand(mdhtmlCmd)
}

func runMDHTML(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	batch, _ := cmd.Flags().GetBool("batch")
	force, _ := cmd.Flags().GetBool("force")
	sanitize, _ := cmd.Flags().GetBool("sanitize")
	title, _ := cmd.Flags().GetString("title")
	runtime, _ := cmd.Flags().GetString("runtime")
	if runtime == "" {
		runtime = viper.GetString("container.runtime")
	}

	chain := convert.DefaultChain(newLogger(), runtime)
	if sanitize {
		chain.Sanitize(bluemonday.UGCPolicy())
	}
	conv := convert.NewMarkdownFileConverter(chain)
	conv.Title = title

	cfg := types.ConversionConfig{Format: types.FormatHTML, OutputDir: outDir, Force: force}

	if batch {
		paths, err := convert.MarkdownFiles(args[0])
		if err != nil {
			return err
		}
		logged := &engineReporter{conv: conv}
		result := convert.ConvertBatch(logged, paths, cfg, os.Stdout)
		if result.HasFailures() {
			return fmt.Errorf("%d file(s) failed conversion", result.Failed)
		}
		return nil
	}

	if outDir == "" {
		out, err := conv.Convert(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "engine: %s\n", conv.LastEngine)
		_, err = fmt.Fprint(os.Stdout, out)
		return err
	}

	status := convert.ConvertFile(conv, args[0], cfg, os.Stdout)
	if status == convert.StatusFailed {
		return fmt.Errorf("conversion failed: %s", args[0])
	}
	if status == convert.StatusConverted {
		fmt.Printf("engine: %s\n", conv.LastEngine)
	}
	return nil
}

// engineReporter prints the engine chosen for each converted file.
type engineReporter struct {
	conv *convert.MarkdownFileConverter
}

func (e *engineReporter) Convert(srcPath string) (string, error) {
	out, err := e.conv.Convert(srcPath)
	if err == nil {
		fmt.Printf("engine: %s (%s)\n", e.conv.LastEngine, srcPath)
	}
	return out, err
}
