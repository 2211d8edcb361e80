// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf-bench/internal/convert"
	"github.com/pdiddy/pdf-bench/internal/render"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct <layout.json | dir>",
	Short: "Rebuild HTML or Markdown from Parsr layout JSON",
	Long: `Reconstruct groups the positioned words of a Parsr JSON document into
lines and blocks, classifies headings and list items from font size and
text, and renders the result as HTML or Markdown.

With a single file and no --out the document is written to stdout. With
--batch every .json file in the directory is converted into --out (default:
next to the input); existing outputs are skipped unless --force is given.

Geometry settings come from the layout section of the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runReconstruct,
}

func init() {
	reconstructCmd.Flags().String("format", "html", "output format: html or markdown")
	reconstructCmd.Flags().String("out", "", "output directory")
	reconstructCmd.Flags().Bool("batch", false, "convert every .json file in the directory argument")
	reconstructCmd.Flags().Bool("force", false, "overwrite existing outputs")
	reconstructCmd.Flags().String("title", "", "document title (default: input file name)")

	rootCmd.AddCommand(reconstructCmd)
}

// layoutConfig reads the geometry settings from viper.
func layoutConfig() types.LayoutConfig {
	return types.LayoutConfig{
		LineTolerance:     viper.GetFloat64("layout.line_tolerance"),
		ParagraphGapRatio: viper.GetFloat64("layout.paragraph_gap_ratio"),
		DefaultLineGap:    viper.GetFloat64("layout.default_line_gap"),
		DefaultFontSize:   viper.GetFloat64("layout.default_font_size"),
	}.WithDefaults()
}

func runReconstruct(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")
	batch, _ := cmd.Flags().GetBool("batch")
	force, _ := cmd.Flags().GetBool("force")
	title, _ := cmd.Flags().GetString("title")

	cfg := types.ConversionConfig{
		Layout:    layoutConfig(),
		Format:    types.OutputFormat(format),
		OutputDir: outDir,
		Force:     force,
	}
	r, err := render.New(cfg.Format, cfg.Layout)
	if err != nil {
		return err
	}
	conv := convert.NewLayoutConverter(r)
	conv.Title = title
	cfg.Format = conv.Format()

	if batch {
		result, err := convert.ConvertDir(conv, args[0], cfg, os.Stdout)
		if err != nil {
			return err
		}
		if result.HasFailures() {
			return fmt.Errorf("%d file(s) failed reconstruction", result.Failed)
		}
		return nil
	}

	if outDir == "" {
		out, err := conv.Convert(args[0])
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(os.Stdout, out)
		return err
	}

	if convert.ConvertFile(conv, args[0], cfg, os.Stdout) == convert.StatusFailed {
		return fmt.Errorf("reconstruction failed: %s", args[0])
	}
	return nil
}
