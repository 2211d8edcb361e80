// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compare scores generated documents against ground-truth HTML with
// cheap heuristics: character-level text similarity and a histogram of
// structural elements. Fixtures are compared in parallel by a bounded pool.
package compare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/pdf-bench/pkg/types"
)

const (
	defaultWorkers = 8

	// SourceFile is the ground-truth document inside each fixture directory.
	SourceFile = "source.html"

	missingNote = "Missing source or generated HTML"
)

// Summary aggregates a comparison run.
type Summary struct {
	Total       int
	Compared    int
	MeanOverall float64
}

// Summarize computes the summary of results. Missing fixtures count toward
// Total only.
func Summarize(results []types.Comparison) Summary {
	s := Summary{Total: len(results)}
	var sum float64
	for _, r := range results {
		if r.Status != types.StatusCompared {
			continue
		}
		s.Compared++
		sum += r.OverallScore
	}
	if s.Compared > 0 {
		s.MeanOverall = sum / float64(s.Compared)
	}
	return s
}

// Comparator compares the generated outputs of one pipeline against the
// fixtures.
type Comparator struct {
	cfg    types.CompareConfig
	logger *slog.Logger
	mdConv *converter.Converter
}

// New creates a Comparator. A nil logger uses slog.Default().
func New(cfg types.CompareConfig, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Mode == "" {
		cfg.Mode = types.CompareHTML
	}
	c := &Comparator{cfg: cfg, logger: logger}
	if cfg.Mode == types.CompareMarkdown {
		c.mdConv = newMarkdownConverter()
	}
	return c
}

// generatedPath is where the pipeline output for fixture is expected.
func (c *Comparator) generatedPath(fixture string) string {
	ext := ".html"
	if c.cfg.Mode == types.CompareMarkdown {
		ext = ".md"
	}
	return filepath.Join(c.cfg.GeneratedDir, fixture+ext)
}

// CompareFixture scores one fixture directory. A fixture whose source or
// generated document is missing gets status "missing" and zero scores.
func (c *Comparator) CompareFixture(fixtureDir string) types.Comparison {
	fixture := filepath.Base(fixtureDir)
	src, srcErr := readLossy(filepath.Join(fixtureDir, SourceFile))
	gen, genErr := readLossy(c.generatedPath(fixture))
	if srcErr != nil || genErr != nil {
		return types.Comparison{Fixture: fixture, Status: types.StatusMissing, Notes: missingNote}
	}

	var text, tag float64
	if c.cfg.Mode == types.CompareMarkdown {
		srcMD, err := HTMLToMarkdown(c.mdConv, src)
		if err != nil {
			c.logger.Warn("compare.fixture.convert", "fixture", fixture, "error", err)
			return types.Comparison{Fixture: fixture, Status: types.StatusMissing, Notes: err.Error()}
		}
		text = TextSimilarity(MarkdownText(srcMD), MarkdownText(gen))
		tag = HistogramSimilarity(MarkdownHistogram(srcMD), MarkdownHistogram(gen))
	} else {
		text = TextSimilarity(StripHTML(src), StripHTML(gen))
		tag = HistogramSimilarity(TagHistogram(src), TagHistogram(gen))
	}

	return types.Comparison{
		Fixture:        fixture,
		Status:         types.StatusCompared,
		TextSimilarity: Round4(text),
		TagSimilarity:  Round4(tag),
		OverallScore:   Round4(Overall(text, tag)),
		Notes:          Notes(text, tag),
	}
}

// FixtureDirs lists the fixture directories under root, sorted by name.
func FixtureDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Run compares every fixture under FixturesDir with at most Workers
// comparisons in flight. Results are sorted by fixture name regardless of
// completion order; one status line per fixture and a summary go to w.
func (c *Comparator) Run(ctx context.Context, w io.Writer) ([]types.Comparison, Summary, error) {
	dirs, err := FixtureDirs(c.cfg.FixturesDir)
	if err != nil {
		return nil, Summary{}, err
	}

	results := make([]types.Comparison, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.CompareFixture(dir)
			c.logger.Debug("compare.fixture",
				"fixture", results[i].Fixture,
				"status", results[i].Status,
				"overall", results[i].OverallScore)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, fmt.Errorf("comparing fixtures: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Fixture < results[j].Fixture })
	for _, r := range results {
		if r.Status == types.StatusCompared {
			fmt.Fprintf(w, "compared: %s score=%.4f (%s)\n", r.Fixture, r.OverallScore, r.Notes)
		} else {
			fmt.Fprintf(w, "missing: %s\n", r.Fixture)
		}
	}

	s := Summarize(results)
	fmt.Fprintf(w, "\nCompared: %d/%d\nAverage overall score: %.4f\n", s.Compared, s.Total, s.MeanOverall)
	return results, s, nil
}

// WriteJSON writes results as an indented JSON array, creating parent
// directories as needed.
func WriteJSON(path string, results []types.Comparison) error {
	if results == nil {
		results = []types.Comparison{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling comparisons: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readLossy reads a text file, replacing invalid UTF-8 with U+FFFD.
func readLossy(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
