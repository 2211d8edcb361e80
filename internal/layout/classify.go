// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"regexp"
	"strings"
)

// Kind is the structural role of a block.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindList
)

// String returns a string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	default:
		return "paragraph"
	}
}

// Classification is the outcome of structure classification for a block.
// Level is 1-5 for headings and 0 otherwise.
type Classification struct {
	Kind  Kind
	Level int
}

// HTMLTag returns the element name used by the HTML renderer.
func (c Classification) HTMLTag() string {
	if c.Kind == KindHeading && c.Level >= 1 && c.Level <= 6 {
		return "h" + string(rune('0'+c.Level))
	}
	return "p"
}

// HeadingBand maps a minimum font-size ratio to a heading level.
type HeadingBand struct {
	MinRatio float64
	Level    int
}

// HeadingGate is the minimum ratio of block size to page baseline size for
// a block to be an HTML heading at all.
const HeadingGate = 1.3

// HTMLHeadingBands are the ratio thresholds used for HTML output, highest
// first. A gated block below every band is level 5.
var HTMLHeadingBands = []HeadingBand{
	{MinRatio: 2.2, Level: 1},
	{MinRatio: 1.8, Level: 2},
	{MinRatio: 1.5, Level: 3},
	{MinRatio: 1.3, Level: 4},
}

// MarkdownHeadingBands are the ratio thresholds used for Markdown output.
// They are coarser than the HTML bands and only reach level 3.
var MarkdownHeadingBands = []HeadingBand{
	{MinRatio: 2.0, Level: 1},
	{MinRatio: 1.6, Level: 2},
	{MinRatio: 1.35, Level: 3},
}

// listItemPattern matches a leading bullet glyph or a "1." / "1)" marker
// followed by whitespace. Digits and whitespace are Unicode classes, so
// "١." and a no-break space after the marker count too.
var listItemPattern = regexp.MustCompile(`^(?:[-*•◦‣]|\p{Nd}+[.)])(?:\s|\p{Z}|[\x{1c}-\x{1f}\x{85}])+`)

// IsListItem reports whether normalized line text starts like a list item.
func IsListItem(text string) bool {
	return listItemPattern.MatchString(text)
}

// ClassifyHTML decides the HTML role of a block. A block is a heading only
// when its average size reaches baselineSize * 1.3; the level then follows
// HTMLHeadingBands. A zero baseline never yields a heading.
func ClassifyHTML(b Block, baselineSize float64) Classification {
	if baselineSize == 0 {
		return Classification{Kind: KindParagraph}
	}
	avg := b.AverageFontSize(baselineSize)
	if avg < baselineSize*HeadingGate {
		return Classification{Kind: KindParagraph}
	}
	ratio := avg / baselineSize
	for _, band := range HTMLHeadingBands {
		if ratio >= band.MinRatio {
			return Classification{Kind: KindHeading, Level: band.Level}
		}
	}
	// The gate and the ratio can disagree by rounding.
	return Classification{Kind: KindHeading, Level: 5}
}

// ClassifyMarkdown decides the Markdown role of a block. A block whose first
// line looks like a list item is a list regardless of its size; otherwise
// the level follows MarkdownHeadingBands. A zero baseline counts as ratio 1.
func ClassifyMarkdown(b Block, baselineSize float64) Classification {
	if len(b.Lines) > 0 && IsListItem(b.Lines[0].Text()) {
		return Classification{Kind: KindList}
	}

	ratio := 1.0
	if baselineSize != 0 {
		ratio = b.AverageFontSize(baselineSize) / baselineSize
	}
	for _, band := range MarkdownHeadingBands {
		if ratio >= band.MinRatio {
			return Classification{Kind: KindHeading, Level: band.Level}
		}
	}
	return Classification{Kind: KindParagraph}
}

// MarkdownPrefix returns the ATX marker for a heading classification, or ""
func MarkdownPrefix(c Classification) string {
	if c.Kind != KindHeading || c.Level <= 0 {
		return ""
	}
	return strings.Repeat("#", c.Level) + " "
}
