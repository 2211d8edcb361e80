// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"math"
	"sort"

	"github.com/pdiddy/pdf-bench/pkg/types"
)

// Analyzer groups words into lines and blocks using the geometric
// constants of a LayoutConfig.
type Analyzer struct {
	cfg types.LayoutConfig
}

// NewAnalyzer creates an Analyzer. Zero config fields take their defaults.
func NewAnalyzer(cfg types.LayoutConfig) *Analyzer {
	return &Analyzer{cfg: cfg.WithDefaults()}
}

// Config returns the effective configuration.
func (a *Analyzer) Config() types.LayoutConfig {
	return a.cfg
}

// Analyze reconstructs one page. It reports false when the page has no
// qualifying words; such a page contributes no blocks and no baseline.
func (a *Analyzer) Analyze(page types.LayoutPage) (PageLayout, bool) {
	words := LoadWords(page)
	if len(words) == 0 {
		return PageLayout{}, false
	}

	lines := a.GroupLines(words)
	gap := a.BaselineGap(lines)
	blocks := a.GroupBlocks(lines, gap)

	return PageLayout{
		Blocks:           blocks,
		BaselineGap:      gap,
		BaselineFontSize: a.BaselineFontSize(blocks),
	}, true
}

// AnalyzeDocument reconstructs every page that has words, in page order.
func (a *Analyzer) AnalyzeDocument(doc *types.LayoutDocument) []PageLayout {
	var pages []PageLayout
	for _, p := range doc.Pages {
		if pl, ok := a.Analyze(p); ok {
			pages = append(pages, pl)
		}
	}
	return pages
}

// GroupLines clusters ordered words into lines. A word joins the current
// line when its top is within LineTolerance of the line's anchor top;
// otherwise it opens a new line anchored at its own top.
func (a *Analyzer) GroupLines(words []Word) []Line {
	if len(words) == 0 {
		return nil
	}

	var lines []Line
	current := Line{Top: words[0].Top, Words: []Word{words[0]}}
	for _, w := range words[1:] {
		if math.Abs(w.Top-current.Top) <= a.cfg.LineTolerance {
			current.Words = append(current.Words, w)
			continue
		}
		lines = append(lines, current)
		current = Line{Top: w.Top, Words: []Word{w}}
	}
	return append(lines, current)
}

// BaselineGap is the median distance between consecutive line anchors.
// Pages with a single line use DefaultLineGap.
func (a *Analyzer) BaselineGap(lines []Line) float64 {
	if len(lines) <= 1 {
		return a.cfg.DefaultLineGap
	}
	gaps := make([]float64, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i].Top-lines[i-1].Top)
	}
	return median(gaps)
}

// GroupBlocks starts a new block wherever the gap between consecutive
// line anchors exceeds baselineGap * ParagraphGapRatio.
func (a *Analyzer) GroupBlocks(lines []Line, baselineGap float64) []Block {
	if len(lines) == 0 {
		return nil
	}

	limit := baselineGap * a.cfg.ParagraphGapRatio
	var blocks []Block
	current := Block{Lines: []Line{lines[0]}}
	for i := 1; i < len(lines); i++ {
		if lines[i].Top-lines[i-1].Top > limit {
			blocks = append(blocks, current)
			current = Block{Lines: []Line{lines[i]}}
			continue
		}
		current.Lines = append(current.Lines, lines[i])
	}
	return append(blocks, current)
}

// BaselineFontSize is the median font size over every word of the page.
// Words without a size count as DefaultFontSize; a page without words
// yields DefaultFontSize.
func (a *Analyzer) BaselineFontSize(blocks []Block) float64 {
	var sizes []float64
	for _, b := range blocks {
		for _, w := range b.Words() {
			sizes = append(sizes, w.SizeOr(a.cfg.DefaultFontSize))
		}
	}
	if len(sizes) == 0 {
		return a.cfg.DefaultFontSize
	}
	return median(sizes)
}

// median returns sorted[n/2]. For even counts this picks the upper of the
// two middle values; no averaging is done.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
