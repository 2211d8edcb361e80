// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ComparisonStatus indicates whether a fixture could be compared.
type ComparisonStatus string

const (
	StatusCompared ComparisonStatus = "compared"
	StatusMissing  ComparisonStatus = "missing"
)

// Comparison is the heuristic similarity of one generated document against
// its ground-truth HTML. Scores are in [0, 1] and rounded to 4 decimals.
type Comparison struct {
	Fixture        string           `json:"fixture" yaml:"fixture"`
	Status         ComparisonStatus `json:"status" yaml:"status"`
	TextSimilarity float64          `json:"text_similarity" yaml:"text_similarity"`
	TagSimilarity  float64          `json:"tag_similarity" yaml:"tag_similarity"`
	OverallScore   float64          `json:"overall_score" yaml:"overall_score"`
	Notes          string           `json:"notes" yaml:"notes"`
}

// Judgment is the rubric score an LLM judge assigned to one fixture.
//
//	text_fidelity 0-3, structure 0-3, formatting 0-2,
//	score = (text_fidelity + structure + formatting) / 8 * 10, one decimal.
type Judgment struct {
	Fixture      string  `json:"fixture" yaml:"fixture"`
	TextFidelity int     `json:"text_fidelity" yaml:"text_fidelity"`
	Structure    int     `json:"structure" yaml:"structure"`
	Formatting   int     `json:"formatting" yaml:"formatting"`
	Score        float64 `json:"score" yaml:"score"`
	Notes        string  `json:"notes" yaml:"notes"`
}

// PipelineSummary aggregates the stored results of one conversion pipeline.
type PipelineSummary struct {
	Pipeline       string    `json:"pipeline" yaml:"pipeline"`
	Compared       int       `json:"compared" yaml:"compared"`
	Missing        int       `json:"missing" yaml:"missing"`
	MeanOverall    float64   `json:"mean_overall" yaml:"mean_overall"`
	Judged         int       `json:"judged" yaml:"judged"`
	MeanScore      float64   `json:"mean_score" yaml:"mean_score"`
	MeanText       float64   `json:"mean_text_fidelity" yaml:"mean_text_fidelity"`
	MeanStructure  float64   `json:"mean_structure" yaml:"mean_structure"`
	MeanFormatting float64   `json:"mean_formatting" yaml:"mean_formatting"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at"`
}
