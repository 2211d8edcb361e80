// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdf-bench/internal/judge"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

var _ judge.Sink = (*JudgmentSink)(nil)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testStore(t *testing.T) *Store {
	t.Helper()
	orig := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = orig })

	dir := t.TempDir()
	s, err := Open(types.ResultsConfig{
		DBPath:    filepath.Join(dir, "db", "results.db"),
		ExportDir: filepath.Join(dir, "export"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SaveComparisons(ctx, "parsr", []types.Comparison{
		{Fixture: "01-basic", Status: types.StatusCompared, TextSimilarity: 0.9, TagSimilarity: 0.8, OverallScore: 0.87, Notes: "ok"},
		{Fixture: "02-list", Status: types.StatusCompared, TextSimilarity: 0.5, TagSimilarity: 0.2, OverallScore: 0.41, Notes: "low-structure-sim;"},
		{Fixture: "03-orphan", Status: types.StatusMissing, Notes: "Missing source or generated HTML"},
	}))
	require.NoError(t, s.SaveComparisons(ctx, "docling", []types.Comparison{
		{Fixture: "01-basic", Status: types.StatusCompared, TextSimilarity: 1, TagSimilarity: 1, OverallScore: 1, Notes: "ok"},
	}))
	require.NoError(t, s.SaveJudgment(ctx, "parsr", types.Judgment{Fixture: "01-basic", TextFidelity: 3, Structure: 2, Formatting: 1, Score: 7.5, Notes: "good"}))
	require.NoError(t, s.SaveJudgment(ctx, "parsr", types.Judgment{Fixture: "02-list", TextFidelity: 2, Structure: 1, Formatting: 0, Score: 3.8, Notes: "flat"}))
	require.NoError(t, s.SaveJudgment(ctx, "docling", types.Judgment{Fixture: "01-basic", TextFidelity: 3, Structure: 3, Formatting: 2, Score: 10, Notes: "perfect"}))
}

func TestStore_SaveAndQuery(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	cs, err := s.Comparisons(ctx, "parsr")
	require.NoError(t, err)
	require.Len(t, cs, 3)
	assert.Equal(t, "01-basic", cs[0].Fixture)
	assert.Equal(t, types.StatusMissing, cs[2].Status)

	js, err := s.Judgments(ctx, "parsr")
	require.NoError(t, err)
	assert.Equal(t, []types.Judgment{
		{Fixture: "01-basic", TextFidelity: 3, Structure: 2, Formatting: 1, Score: 7.5, Notes: "good"},
		{Fixture: "02-list", TextFidelity: 2, Structure: 1, Formatting: 0, Score: 3.8, Notes: "flat"},
	}, js)

	names, err := s.Pipelines(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"docling", "parsr"}, names)
}

func TestStore_Upsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveJudgment(ctx, "parsr", types.Judgment{Fixture: "01", Score: 2}))
	require.NoError(t, s.SaveJudgment(ctx, "parsr", types.Judgment{Fixture: "01", TextFidelity: 3, Structure: 3, Formatting: 2, Score: 10}))
	js, err := s.Judgments(ctx, "parsr")
	require.NoError(t, err)
	require.Len(t, js, 1)
	assert.Equal(t, 10.0, js[0].Score)

	require.NoError(t, s.SaveComparisons(ctx, "parsr", []types.Comparison{{Fixture: "01", Status: types.StatusMissing}}))
	require.NoError(t, s.SaveComparisons(ctx, "parsr", []types.Comparison{{Fixture: "01", Status: types.StatusCompared, OverallScore: 0.5, Notes: "ok"}}))
	cs, err := s.Comparisons(ctx, "parsr")
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, types.StatusCompared, cs[0].Status)
}

func TestStore_Leaderboard(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	board, err := s.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 2)

	docling := board[0]
	assert.True(t, fixedNow.Equal(docling.UpdatedAt))
	docling.UpdatedAt = time.Time{}
	assert.Equal(t, types.PipelineSummary{
		Pipeline: "docling", Compared: 1, MeanOverall: 1,
		Judged: 1, MeanScore: 10, MeanText: 3, MeanStructure: 3, MeanFormatting: 2,
	}, docling)

	parsr := board[1]
	assert.Equal(t, "parsr", parsr.Pipeline)
	assert.Equal(t, 2, parsr.Compared)
	assert.Equal(t, 1, parsr.Missing)
	assert.InDelta(t, 0.64, parsr.MeanOverall, 1e-9)
	assert.Equal(t, 2, parsr.Judged)
	assert.InDelta(t, 5.65, parsr.MeanScore, 1e-9)
	assert.InDelta(t, 2.5, parsr.MeanText, 1e-9)
	assert.InDelta(t, 1.5, parsr.MeanStructure, 1e-9)
	assert.InDelta(t, 0.5, parsr.MeanFormatting, 1e-9)
}

func TestStore_LeaderboardComparisonsOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveComparisons(ctx, "a", []types.Comparison{{Fixture: "01", Status: types.StatusMissing}}))
	require.NoError(t, s.SaveComparisons(ctx, "b", []types.Comparison{{Fixture: "01", Status: types.StatusCompared, OverallScore: 0.3}}))

	board, err := s.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "b", board[0].Pipeline)
	assert.Equal(t, "a", board[1].Pipeline)
	assert.Equal(t, 0.0, board[1].MeanOverall)
	assert.Equal(t, 1, board[1].Missing)
}

func TestJudgmentSink(t *testing.T) {
	s := testStore(t)
	sink := s.Sink(context.Background(), "parsr")

	require.NoError(t, sink.Save(types.Judgment{Fixture: "01", Score: 5}))
	done, err := sink.Judged()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"01": true}, done)

	other, err := s.Sink(context.Background(), "docling").Judged()
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_ExportYAMLAndJSON(t *testing.T) {
	s := testStore(t)
	seed(t, s)
	ctx := context.Background()

	path, err := s.ExportYAML(ctx)
	require.NoError(t, err)
	assert.Equal(t, "report.yaml", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var fromYAML Report
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.True(t, fixedNow.Equal(fromYAML.GeneratedAt))
	require.Len(t, fromYAML.Leaderboard, 2)
	require.Len(t, fromYAML.Pipelines, 2)
	assert.Equal(t, "docling", fromYAML.Pipelines[0].Pipeline)
	assert.Len(t, fromYAML.Pipelines[1].Comparisons, 3)

	path, err = s.ExportJSON(ctx)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	var fromJSON Report
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, fromYAML.Leaderboard[0].Pipeline, fromJSON.Leaderboard[0].Pipeline)
	assert.Len(t, fromJSON.Pipelines[1].Judgments, 2)
}

func TestStore_ExportXLSX(t *testing.T) {
	s := testStore(t)
	seed(t, s)

	path, err := s.ExportXLSX(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetLeaderboard, SheetComparisons, SheetJudgments}, f.GetSheetList())

	rows, err := f.GetRows(SheetLeaderboard)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, leaderboardHeaders, rows[0])
	assert.Equal(t, "docling", rows[1][0])
	assert.Equal(t, "parsr", rows[2][0])

	rows, err = f.GetRows(SheetComparisons)
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	rows, err = f.GetRows(SheetJudgments)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"parsr", "02-list", "2", "1", "0", "3.8", "flat"}, rows[3])
}
