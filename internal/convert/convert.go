// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns layout JSON files into HTML or Markdown documents on
// disk, one output per input, and converts Markdown to HTML through a chain
// of engines.
package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/pdf-bench/internal/render"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

// Converter transforms a source file into an output document.
type Converter interface {
	// Convert reads the file at srcPath and returns the converted content.
	Convert(srcPath string) (string, error)
}

// Status is the outcome of converting a single file.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// LayoutConverter reconstructs a document from a layout JSON file.
type LayoutConverter struct {
	renderer render.Renderer

	// Title overrides the document title. When empty the input file stem
	// is used.
	Title string
}

// NewLayoutConverter creates a converter that renders with r.
func NewLayoutConverter(r render.Renderer) *LayoutConverter {
	return &LayoutConverter{renderer: r}
}

// Format returns the output format of the underlying renderer.
func (c *LayoutConverter) Format() types.OutputFormat {
	return c.renderer.Format()
}

// Convert decodes the layout document at srcPath and renders it.
func (c *LayoutConverter) Convert(srcPath string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening layout %s: %w", srcPath, err)
	}
	defer f.Close()

	doc, err := types.DecodeLayoutDocument(f)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", srcPath, err)
	}

	title := c.Title
	if title == "" {
		title = stem(srcPath)
	}
	return c.renderer.Render(doc, title), nil
}

// ConvertFile converts one file and writes <OutputDir>/<stem><ext>. An
// existing output is left alone unless cfg.Force is set.
func ConvertFile(c Converter, srcPath string, cfg types.ConversionConfig, w io.Writer) Status {
	base := stem(srcPath)
	outPath := OutputPath(srcPath, cfg)

	if !cfg.Force {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
			return StatusSkipped
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	content, err := c.Convert(srcPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return StatusConverted
}

// ConvertBatch processes a list of files through the converter, printing
// per-file status to w and returning a summary.
func ConvertBatch(c Converter, paths []string, cfg types.ConversionConfig, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range paths {
		switch ConvertFile(c, p, cfg, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertDir converts every .json file directly under dir, in name order.
func ConvertDir(c Converter, dir string, cfg types.ConversionConfig, w io.Writer) (BatchResult, error) {
	paths, err := LayoutFiles(dir)
	if err != nil {
		return BatchResult{}, err
	}
	return ConvertBatch(c, paths, cfg, w), nil
}

// LayoutFiles lists the .json files directly under dir, sorted by name.
func LayoutFiles(dir string) ([]string, error) {
	return filesWithExt(dir, ".json")
}

// MarkdownFiles lists the .md files directly under dir, sorted by name.
func MarkdownFiles(dir string) ([]string, error) {
	return filesWithExt(dir, ".md")
}

func filesWithExt(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// OutputPath is where ConvertFile writes the output for srcPath.
func OutputPath(srcPath string, cfg types.ConversionConfig) string {
	dir := cfg.OutputDir
	if dir == "" {
		dir = filepath.Dir(srcPath)
	}
	return filepath.Join(dir, stem(srcPath)+cfg.Format.Ext())
}

// parsrSuffix is the infix Parsr adds to its output names.
const parsrSuffix = ".parsr"

// stem strips the directory, the extension and a trailing ".parsr", so
// "<fixture>.parsr.json" and "<fixture>.json" both become "<fixture>", the
// name compare and judge look for.
func stem(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.TrimSuffix(base, parsrSuffix)
}
