package types

import "time"

// Reconstruction defaults.
const (
	DefaultLineTolerance     = 4.0
	DefaultParagraphGapRatio = 1.5
	DefaultLineGap           = 18.0
	DefaultFontSize          = 12.0
)

// LayoutConfig holds the geometric constants of layout reconstruction.
// Zero values fall back to the defaults above.
type LayoutConfig struct {
	// LineTolerance is the maximum vertical distance (layout units) between a
	// word's top and its line anchor (default 4).
	LineTolerance float64 `json:"line_tolerance" yaml:"line_tolerance"`

	// ParagraphGapRatio starts a new block when the gap between line tops
	// exceeds the baseline gap times this ratio (default 1.5).
	ParagraphGapRatio float64 `json:"paragraph_gap_ratio" yaml:"paragraph_gap_ratio"`

	// DefaultLineGap is the baseline gap used for single-line pages (default 18).
	DefaultLineGap float64 `json:"default_line_gap" yaml:"default_line_gap"`

	// DefaultFontSize is assumed for words without a font size (default 12).
	DefaultFontSize float64 `json:"default_font_size" yaml:"default_font_size"`
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c LayoutConfig) WithDefaults() LayoutConfig {
	if c.LineTolerance <= 0 {
		c.LineTolerance = DefaultLineTolerance
	}
	if c.ParagraphGapRatio <= 0 {
		c.ParagraphGapRatio = DefaultParagraphGapRatio
	}
	if c.DefaultLineGap <= 0 {
		c.DefaultLineGap = DefaultLineGap
	}
	if c.DefaultFontSize <= 0 {
		c.DefaultFontSize = DefaultFontSize
	}
	return c
}

// OutputFormat selects the reconstruction output.
type OutputFormat string

const (
	FormatHTML     OutputFormat = "html"
	FormatMarkdown OutputFormat = "markdown"
)

// Ext returns the file extension written for the format.
func (f OutputFormat) Ext() string {
	if f == FormatMarkdown {
		return ".md"
	}
	return ".html"
}

// ConversionConfig holds settings for batch reconstruction.
type ConversionConfig struct {
	Layout LayoutConfig `json:"layout" yaml:"layout"`

	// Format is html or markdown.
	Format OutputFormat `json:"format" yaml:"format"`

	// OutputDir receives one output file per input.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Force overwrites existing outputs instead of skipping them.
	Force bool `json:"force" yaml:"force"`
}

// CompareMode selects what the comparator reads from the generated directory.
type CompareMode string

const (
	CompareHTML     CompareMode = "html"
	CompareMarkdown CompareMode = "markdown"
)

// CompareConfig holds settings for the heuristic comparator.
type CompareConfig struct {
	// FixturesDir contains one directory per fixture with a source.html.
	FixturesDir string `json:"fixtures_dir" yaml:"fixtures_dir"`

	// GeneratedDir contains <fixture>.html (or .md in markdown mode).
	GeneratedDir string `json:"generated_dir" yaml:"generated_dir"`

	// Mode is html or markdown (default html).
	Mode CompareMode `json:"mode" yaml:"mode"`

	// Workers bounds the number of concurrent fixture comparisons (default 8).
	Workers int `json:"workers" yaml:"workers"`
}

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-haiku-4-5-20251001").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of attempts for overloaded API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// JudgeConfig holds settings for the LLM rubric judge.
type JudgeConfig struct {
	HTTPConfig `yaml:",inline"`
	AIConfig   `yaml:",inline"`

	// FixturesDir contains one directory per fixture with a source.html.
	FixturesDir string `json:"fixtures_dir" yaml:"fixtures_dir"`

	// OutputDir contains the converted <fixture>.html files to score.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Pipeline names the conversion pipeline being scored (e.g. "parsr").
	Pipeline string `json:"pipeline" yaml:"pipeline"`

	// MaxHTMLChars truncates each HTML input (default 12000).
	MaxHTMLChars int `json:"max_html_chars" yaml:"max_html_chars"`

	// Pause is the delay between fixtures (default 500ms).
	Pause time.Duration `json:"pause" yaml:"pause"`
}

// ResultsConfig holds settings for the results store.
type ResultsConfig struct {
	// DBPath is the SQLite database file (default results/pdf-bench.db).
	DBPath string `json:"db_path" yaml:"db_path"`

	// ExportDir receives leaderboard exports (default results/).
	ExportDir string `json:"export_dir" yaml:"export_dir"`
}
