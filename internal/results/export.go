// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf-bench/pkg/types"
)

// Report is the exported view of the store.
type Report struct {
	GeneratedAt time.Time               `json:"generated_at" yaml:"generated_at"`
	Leaderboard []types.PipelineSummary `json:"leaderboard" yaml:"leaderboard"`
	Pipelines   []PipelineResults       `json:"pipelines" yaml:"pipelines"`
}

// PipelineResults holds the per-fixture results of one pipeline.
type PipelineResults struct {
	Pipeline    string             `json:"pipeline" yaml:"pipeline"`
	Comparisons []types.Comparison `json:"comparisons,omitempty" yaml:"comparisons,omitempty"`
	Judgments   []types.Judgment   `json:"judgments,omitempty" yaml:"judgments,omitempty"`
}

// Report collects the leaderboard and every stored result.
func (s *Store) Report(ctx context.Context) (Report, error) {
	board, err := s.Leaderboard(ctx)
	if err != nil {
		return Report{}, err
	}
	names, err := s.Pipelines(ctx)
	if err != nil {
		return Report{}, err
	}

	r := Report{GeneratedAt: now().UTC(), Leaderboard: board}
	for _, p := range names {
		cs, err := s.Comparisons(ctx, p)
		if err != nil {
			return Report{}, err
		}
		js, err := s.Judgments(ctx, p)
		if err != nil {
			return Report{}, err
		}
		r.Pipelines = append(r.Pipelines, PipelineResults{Pipeline: p, Comparisons: cs, Judgments: js})
	}
	return r, nil
}

// ExportYAML writes the report to <export dir>/report.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	r, err := s.Report(ctx)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return s.writeExport("report.yaml", data)
}

// ExportJSON writes the report to <export dir>/report.json and returns the path.
func (s *Store) ExportJSON(ctx context.Context) (string, error) {
	r, err := s.Report(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return s.writeExport("report.json", data)
}

var (
	leaderboardHeaders = []string{
		"Pipeline", "Compared", "Missing", "Mean Overall",
		"Judged", "Mean Score", "Text Fidelity", "Structure", "Formatting", "Updated",
	}
	comparisonHeaders = []string{"Pipeline", "Fixture", "Status", "Text Similarity", "Tag Similarity", "Overall", "Notes"}
	judgmentHeaders   = []string{"Pipeline", "Fixture", "Text Fidelity", "Structure", "Formatting", "Score", "Notes"}
)

// Sheet names of the XLSX export.
const (
	SheetLeaderboard = "Leaderboard"
	SheetComparisons = "Comparisons"
	SheetJudgments   = "Judgments"
)

// ExportXLSX writes the report as a workbook with one sheet each for the
// leaderboard, comparisons and judgments, and returns the path.
func (s *Store) ExportXLSX(ctx context.Context) (string, error) {
	r, err := s.Report(ctx)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetLeaderboard); err != nil {
		return "", fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{SheetComparisons, SheetJudgments} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	var board [][]any
	for _, p := range r.Leaderboard {
		board = append(board, []any{
			p.Pipeline, p.Compared, p.Missing, p.MeanOverall,
			p.Judged, p.MeanScore, p.MeanText, p.MeanStructure, p.MeanFormatting,
			p.UpdatedAt.Format(time.RFC3339),
		})
	}
	var comparisons, judgments [][]any
	for _, pr := range r.Pipelines {
		for _, c := range pr.Comparisons {
			comparisons = append(comparisons, []any{
				pr.Pipeline, c.Fixture, string(c.Status), c.TextSimilarity, c.TagSimilarity, c.OverallScore, c.Notes,
			})
		}
		for _, j := range pr.Judgments {
			judgments = append(judgments, []any{
				pr.Pipeline, j.Fixture, j.TextFidelity, j.Structure, j.Formatting, j.Score, j.Notes,
			})
		}
	}

	writeSheet(f, SheetLeaderboard, leaderboardHeaders, board)
	writeSheet(f, SheetComparisons, comparisonHeaders, comparisons)
	writeSheet(f, SheetJudgments, judgmentHeaders, judgments)
	_ = f.SetColWidth(SheetLeaderboard, "A", "A", 18)
	_ = f.SetColWidth(SheetLeaderboard, "J", "J", 22)
	_ = f.SetColWidth(SheetComparisons, "B", "B", 28)
	_ = f.SetColWidth(SheetComparisons, "G", "G", 36)
	_ = f.SetColWidth(SheetJudgments, "B", "B", 28)
	_ = f.SetColWidth(SheetJudgments, "G", "G", 60)
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("xlsx write: %w", err)
	}
	return s.writeExport("report.xlsx", buf.Bytes())
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
}

func (s *Store) writeExport(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(s.exportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
