// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package results persists comparison and judge results per pipeline in a
// SQLite database and builds the cross-pipeline leaderboard.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdf-bench/pkg/types"
)

// Defaults for ResultsConfig.
const (
	DefaultDBPath    = "results/pdf-bench.db"
	DefaultExportDir = "results"
)

// now is the clock used for updated_at. Tests replace it.
var now = time.Now

// Store manages the results SQLite database.
type Store struct {
	db        *sql.DB
	exportDir string
}

// Open opens or creates the results database at cfg.DBPath and creates the
// schema if it does not exist.
func Open(cfg types.ResultsConfig) (*Store, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = DefaultExportDir
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, exportDir: cfg.ExportDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS comparisons (
			pipeline TEXT NOT NULL,
			fixture TEXT NOT NULL,
			status TEXT NOT NULL,
			text_similarity REAL,
			tag_similarity REAL,
			overall_score REAL,
			notes TEXT,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (pipeline, fixture)
		)`,
		`CREATE TABLE IF NOT EXISTS judgments (
			pipeline TEXT NOT NULL,
			fixture TEXT NOT NULL,
			text_fidelity INTEGER NOT NULL,
			structure INTEGER NOT NULL,
			formatting INTEGER NOT NULL,
			score REAL NOT NULL,
			notes TEXT,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (pipeline, fixture)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveComparisons upserts the comparison results of one pipeline in a
// single transaction.
func (s *Store) SaveComparisons(ctx context.Context, pipeline string, results []types.Comparison) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO comparisons (pipeline, fixture, status, text_similarity, tag_similarity, overall_score, notes, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pipeline, fixture) DO UPDATE SET
			status=excluded.status, text_similarity=excluded.text_similarity,
			tag_similarity=excluded.tag_similarity, overall_score=excluded.overall_score,
			notes=excluded.notes, updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ts := now().UnixNano()
	for _, r := range results {
		_, err := stmt.ExecContext(ctx,
			pipeline, r.Fixture, string(r.Status),
			r.TextSimilarity, r.TagSimilarity, r.OverallScore, r.Notes, ts)
		if err != nil {
			return fmt.Errorf("inserting comparison %s: %w", r.Fixture, err)
		}
	}
	return tx.Commit()
}

// SaveJudgment upserts one judgment.
func (s *Store) SaveJudgment(ctx context.Context, pipeline string, j types.Judgment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO judgments (pipeline, fixture, text_fidelity, structure, formatting, score, notes, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pipeline, fixture) DO UPDATE SET
			text_fidelity=excluded.text_fidelity, structure=excluded.structure,
			formatting=excluded.formatting, score=excluded.score,
			notes=excluded.notes, updated_at=excluded.updated_at`,
		pipeline, j.Fixture, j.TextFidelity, j.Structure, j.Formatting, j.Score, j.Notes, now().UnixNano())
	if err != nil {
		return fmt.Errorf("upserting judgment %s: %w", j.Fixture, err)
	}
	return nil
}

// Comparisons returns the stored comparisons of pipeline, sorted by fixture.
func (s *Store) Comparisons(ctx context.Context, pipeline string) ([]types.Comparison, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fixture, status, text_similarity, tag_similarity, overall_score, notes
		 FROM comparisons WHERE pipeline = ? ORDER BY fixture`, pipeline)
	if err != nil {
		return nil, fmt.Errorf("querying comparisons: %w", err)
	}
	defer rows.Close()

	var out []types.Comparison
	for rows.Next() {
		var c types.Comparison
		var status string
		if err := rows.Scan(&c.Fixture, &status, &c.TextSimilarity, &c.TagSimilarity, &c.OverallScore, &c.Notes); err != nil {
			return nil, fmt.Errorf("scanning comparison: %w", err)
		}
		c.Status = types.ComparisonStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

// Judgments returns the stored judgments of pipeline, sorted by fixture.
func (s *Store) Judgments(ctx context.Context, pipeline string) ([]types.Judgment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fixture, text_fidelity, structure, formatting, score, notes
		 FROM judgments WHERE pipeline = ? ORDER BY fixture`, pipeline)
	if err != nil {
		return nil, fmt.Errorf("querying judgments: %w", err)
	}
	defer rows.Close()

	var out []types.Judgment
	for rows.Next() {
		var j types.Judgment
		if err := rows.Scan(&j.Fixture, &j.TextFidelity, &j.Structure, &j.Formatting, &j.Score, &j.Notes); err != nil {
			return nil, fmt.Errorf("scanning judgment: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Pipelines returns every pipeline with stored results, sorted by name.
func (s *Store) Pipelines(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pipeline FROM comparisons UNION SELECT pipeline FROM judgments ORDER BY pipeline`)
	if err != nil {
		return nil, fmt.Errorf("querying pipelines: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning pipeline: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Leaderboard aggregates every pipeline. Pipelines are ranked by mean judge
// score, then mean comparison score, then name.
func (s *Store) Leaderboard(ctx context.Context) ([]types.PipelineSummary, error) {
	byName := map[string]*types.PipelineSummary{}
	get := func(p string) *types.PipelineSummary {
		if byName[p] == nil {
			byName[p] = &types.PipelineSummary{Pipeline: p}
		}
		return byName[p]
	}
	touch := func(ps *types.PipelineSummary, ns int64) {
		if t := time.Unix(0, ns).UTC(); t.After(ps.UpdatedAt) {
			ps.UpdatedAt = t
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pipeline,
			SUM(CASE WHEN status = 'compared' THEN 1 ELSE 0 END),
			SUM(CASE WHEN status = 'compared' THEN 0 ELSE 1 END),
			COALESCE(AVG(CASE WHEN status = 'compared' THEN overall_score END), 0),
			MAX(updated_at)
		 FROM comparisons GROUP BY pipeline`)
	if err != nil {
		return nil, fmt.Errorf("aggregating comparisons: %w", err)
	}
	for rows.Next() {
		var p string
		var compared, missing int
		var mean float64
		var updated int64
		if err := rows.Scan(&p, &compared, &missing, &mean, &updated); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning comparison summary: %w", err)
		}
		ps := get(p)
		ps.Compared, ps.Missing, ps.MeanOverall = compared, missing, mean
		touch(ps, updated)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT pipeline, COUNT(*), AVG(score), AVG(text_fidelity), AVG(structure), AVG(formatting), MAX(updated_at)
		 FROM judgments GROUP BY pipeline`)
	if err != nil {
		return nil, fmt.Errorf("aggregating judgments: %w", err)
	}
	for rows.Next() {
		var p string
		var judged int
		var score, text, structure, formatting float64
		var updated int64
		if err := rows.Scan(&p, &judged, &score, &text, &structure, &formatting, &updated); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning judgment summary: %w", err)
		}
		ps := get(p)
		ps.Judged, ps.MeanScore = judged, score
		ps.MeanText, ps.MeanStructure, ps.MeanFormatting = text, structure, formatting
		touch(ps, updated)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]types.PipelineSummary, 0, len(byName))
	for _, ps := range byName {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MeanScore != out[j].MeanScore {
			return out[i].MeanScore > out[j].MeanScore
		}
		if out[i].MeanOverall != out[j].MeanOverall {
			return out[i].MeanOverall > out[j].MeanOverall
		}
		return out[i].Pipeline < out[j].Pipeline
	})
	return out, nil
}

// JudgmentSink records judgments of one pipeline in the store. It
// satisfies judge.Sink.
type JudgmentSink struct {
	store    *Store
	pipeline string
	ctx      context.Context
}

// Sink returns a JudgmentSink for pipeline.
func (s *Store) Sink(ctx context.Context, pipeline string) *JudgmentSink {
	return &JudgmentSink{store: s, pipeline: pipeline, ctx: ctx}
}

// Judged returns the fixtures of the pipeline already in the store.
func (k *JudgmentSink) Judged() (map[string]bool, error) {
	js, err := k.store.Judgments(k.ctx, k.pipeline)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(js))
	for _, j := range js {
		done[j.Fixture] = true
	}
	return done, nil
}

// Save upserts j.
func (k *JudgmentSink) Save(j types.Judgment) error {
	return k.store.SaveJudgment(k.ctx, k.pipeline, j)
}
