// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package judge scores converted documents against ground-truth HTML with
// an LLM rubric: text fidelity (0-3), structure (0-3) and formatting (0-2),
// combined into a score out of 10. Runs are resumable; fixtures already
// recorded in the sink are skipped.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/pdf-bench/pkg/types"
)

const (
	sourceFile = "source.html"

	// EvaluationsFile is the default file name of a FileSink.
	EvaluationsFile = "all-evaluations.json"
)

// DefaultPause is the delay after each judged fixture. Tests override
// this to avoid real sleeps.
var DefaultPause = 500 * time.Millisecond

// BatchResult holds counts from a judge run.
type BatchResult struct {
	Judged  int
	Skipped int
	Failed  int
}

// Total returns the number of fixtures processed.
func (r BatchResult) Total() int {
	return r.Judged + r.Skipped + r.Failed
}

// HasFailures reports whether any fixture failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Sink records judgments. Judged returns the fixtures already recorded so
// a run can resume.
type Sink interface {
	Judged() (map[string]bool, error)
	Save(j types.Judgment) error
}

// Fixtures returns the fixture names to evaluate: just name when given,
// otherwise every directory under root whose name starts with a digit,
// sorted.
func Fixtures(root, name string) ([]string, error) {
	if name != "" {
		return []string{name}, nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures %s: %w", root, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		r, _ := utf8.DecodeRuneInString(e.Name())
		if unicode.IsDigit(r) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Runner evaluates fixtures one at a time and saves each judgment as soon
// as it arrives.
type Runner struct {
	judge  Judge
	sink   Sink
	cfg    types.JudgeConfig
	logger *slog.Logger
}

// NewRunner creates a Runner. A nil logger uses slog.Default().
func NewRunner(j Judge, sink Sink, cfg types.JudgeConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pause <= 0 {
		cfg.Pause = DefaultPause
	}
	return &Runner{judge: j, sink: sink, cfg: cfg, logger: logger}
}

// Run judges the selected fixtures (see Fixtures). A fixture is skipped
// when it is already in the sink or either document is missing. A failed
// fixture does not stop the run; cancellation of ctx does.
func (r *Runner) Run(ctx context.Context, fixture string, w io.Writer) (BatchResult, error) {
	names, err := Fixtures(r.cfg.FixturesDir, fixture)
	if err != nil {
		return BatchResult{}, err
	}
	done, err := r.sink.Judged()
	if err != nil {
		return BatchResult{}, fmt.Errorf("loading judged fixtures: %w", err)
	}

	var result BatchResult
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if done[name] {
			fmt.Fprintf(w, "skipped: %s (already evaluated)\n", name)
			result.Skipped++
			continue
		}

		in, reason := r.load(name)
		if reason != "" {
			fmt.Fprintf(w, "skipped: %s (%s)\n", name, reason)
			result.Skipped++
			continue
		}

		j, err := r.judge.Judge(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			r.logger.Error("judge.fixture.failed", "fixture", name, "error", err)
			fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
			result.Failed++
			continue
		}
		if want := RubricScore(j.TextFidelity, j.Structure, j.Formatting); math.Abs(want-j.Score) > 0.05 {
			r.logger.Warn("judge.score.mismatch", "fixture", name, "score", j.Score, "rubric", want)
		}
		if err := r.sink.Save(j); err != nil {
			return result, fmt.Errorf("saving judgment for %s: %w", name, err)
		}
		fmt.Fprintf(w, "judged: %s score=%.1f (text=%d, struct=%d, fmt=%d)\n",
			name, j.Score, j.TextFidelity, j.Structure, j.Formatting)
		result.Judged++

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(r.cfg.Pause):
		}
	}
	return result, nil
}

// load reads both documents of a fixture, or returns why it cannot be
// judged.
func (r *Runner) load(name string) (Input, string) {
	src, err := os.ReadFile(filepath.Join(r.cfg.FixturesDir, name, sourceFile))
	if err != nil {
		return Input{}, "no source.html"
	}
	conv, err := os.ReadFile(filepath.Join(r.cfg.OutputDir, name+".html"))
	if err != nil {
		return Input{}, "no converted HTML"
	}
	return Input{
		Fixture:   name,
		Source:    strings.ToValidUTF8(string(src), "�"),
		Converted: strings.ToValidUTF8(string(conv), "�"),
	}, ""
}

// Summary holds the means over a set of judgments.
type Summary struct {
	Count          int
	MeanScore      float64
	MeanText       float64
	MeanStructure  float64
	MeanFormatting float64
}

// Summarize computes the means of judgments.
func Summarize(judgments []types.Judgment) Summary {
	s := Summary{Count: len(judgments)}
	if s.Count == 0 {
		return s
	}
	for _, j := range judgments {
		s.MeanScore += j.Score
		s.MeanText += float64(j.TextFidelity)
		s.MeanStructure += float64(j.Structure)
		s.MeanFormatting += float64(j.Formatting)
	}
	n := float64(s.Count)
	s.MeanScore /= n
	s.MeanText /= n
	s.MeanStructure /= n
	s.MeanFormatting /= n
	return s
}

// WriteSummary prints s in the run report format.
func WriteSummary(w io.Writer, s Summary) {
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "  Fixtures evaluated: %d\n", s.Count)
	fmt.Fprintf(w, "  Overall mean score: %.2f/10\n", s.MeanScore)
	fmt.Fprintf(w, "  Text fidelity:      %.2f/3\n", s.MeanText)
	fmt.Fprintf(w, "  Structure:          %.2f/3\n", s.MeanStructure)
	fmt.Fprintf(w, "  Formatting:         %.2f/2\n", s.MeanFormatting)
}

// FileSink keeps judgments in a JSON array file, rewritten after every
// Save so an interrupted run loses nothing.
type FileSink struct {
	Path      string
	judgments []types.Judgment
}

// OpenFileSink loads path if it exists.
func OpenFileSink(path string) (*FileSink, error) {
	s := &FileSink{Path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.judgments); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// Judged returns the fixtures in the file.
func (s *FileSink) Judged() (map[string]bool, error) {
	done := make(map[string]bool, len(s.judgments))
	for _, j := range s.judgments {
		done[j.Fixture] = true
	}
	return done, nil
}

// Save appends j and rewrites the file.
func (s *FileSink) Save(j types.Judgment) error {
	s.judgments = append(s.judgments, j)
	data, err := json.MarshalIndent(s.judgments, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling judgments: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(s.Path), err)
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.Path, err)
	}
	return nil
}

// Judgments returns every judgment in the file, oldest first.
func (s *FileSink) Judgments() []types.Judgment {
	return append([]types.Judgment(nil), s.judgments...)
}

type teeSink struct {
	primary Sink
	others  []Sink
}

// Tee saves to every sink and resumes from primary.
func Tee(primary Sink, others ...Sink) Sink {
	return &teeSink{primary: primary, others: others}
}

func (t *teeSink) Judged() (map[string]bool, error) {
	return t.primary.Judged()
}

func (t *teeSink) Save(j types.Judgment) error {
	if err := t.primary.Save(j); err != nil {
		return err
	}
	for _, s := range t.others {
		if err := s.Save(j); err != nil {
			return err
		}
	}
	return nil
}
