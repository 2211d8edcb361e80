// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// blockOf builds a single-line block whose words all have the given size.
func blockOf(size float64, words ...string) Block {
	line := Line{}
	for i, w := range words {
		line.Words = append(line.Words, Word{Text: w, Left: float64(i * 10), size: size, hasSize: size > 0})
	}
	return Block{Lines: []Line{line}}
}

func TestClassifyHTML_Bands(t *testing.T) {
	tests := []struct {
		name string
		size float64
		want Classification
	}{
		{name: "ratio 3.0", size: 30, want: Classification{Kind: KindHeading, Level: 1}},
		{name: "ratio 2.2", size: 22, want: Classification{Kind: KindHeading, Level: 1}},
		{name: "ratio 2.0", size: 20, want: Classification{Kind: KindHeading, Level: 2}},
		{name: "ratio 1.8", size: 18, want: Classification{Kind: KindHeading, Level: 2}},
		{name: "ratio 1.6", size: 16, want: Classification{Kind: KindHeading, Level: 3}},
		{name: "ratio 1.4", size: 14, want: Classification{Kind: KindHeading, Level: 4}},
		{name: "ratio 1.2", size: 12, want: Classification{Kind: KindParagraph}},
		{name: "ratio 1.0", size: 10, want: Classification{Kind: KindParagraph}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyHTML(blockOf(tt.size, "x"), 10))
		})
	}
}

func TestClassifyHTML_MonotonicLevels(t *testing.T) {
	// Walking the ratio down never yields a more prominent heading.
	prev := 1
	for size := 40.0; size >= 5; size -= 0.25 {
		c := ClassifyHTML(blockOf(size, "x"), 10)
		level := 7 // paragraphs rank below every heading
		if c.Kind == KindHeading {
			level = c.Level
		}
		assert.GreaterOrEqual(t, level, prev, "size %.2f", size)
		prev = level
	}
}

func TestClassifyHTML_ZeroBaseline(t *testing.T) {
	assert.Equal(t, Classification{Kind: KindParagraph}, ClassifyHTML(blockOf(30, "x"), 0))
}

func TestClassifyHTML_MissingSizeUsesBaseline(t *testing.T) {
	b := blockOf(0, "a", "b")
	assert.Equal(t, KindParagraph, ClassifyHTML(b, 12).Kind)
}

func TestClassifyMarkdown_Bands(t *testing.T) {
	tests := []struct {
		name string
		size float64
		want Classification
	}{
		{name: "ratio 2.0", size: 24, want: Classification{Kind: KindHeading, Level: 1}},
		{name: "ratio 1.75", size: 21, want: Classification{Kind: KindHeading, Level: 2}},
		{name: "ratio 1.5", size: 18, want: Classification{Kind: KindHeading, Level: 3}},
		{name: "ratio 1.33", size: 16, want: Classification{Kind: KindParagraph}},
		{name: "ratio 1.0", size: 12, want: Classification{Kind: KindParagraph}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyMarkdown(blockOf(tt.size, "Title"), 12))
		})
	}
}

func TestClassifyMarkdown_ListOverridesHeading(t *testing.T) {
	b := blockOf(36, "-", "big", "item")
	assert.Equal(t, Classification{Kind: KindList}, ClassifyMarkdown(b, 12))

	// The same block in HTML mode is an h1.
	assert.Equal(t, Classification{Kind: KindHeading, Level: 1}, ClassifyHTML(b, 12))
}

func TestClassifyMarkdown_ZeroBaseline(t *testing.T) {
	assert.Equal(t, Classification{Kind: KindParagraph}, ClassifyMarkdown(blockOf(30, "x"), 0))
}

func TestIsListItem(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"- item", true},
		{"* item", true},
		{"• item", true},
		{"◦ item", true},
		{"‣ item", true},
		{"1. First item", true},
		{"12) twelfth", true},
		{"١. arabic-indic digit", true},
		{"３) fullwidth digit", true},
		{"1.\u00a0no-break space", true},
		{"•\u2003em space", true},
		{"-item", false},
		{"1.5 million", false},
		{"1.", false},
		{"Intro", false},
		{"+ plus", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsListItem(tt.text))
		})
	}
}

func TestClassification_HTMLTag(t *testing.T) {
	assert.Equal(t, "h2", Classification{Kind: KindHeading, Level: 2}.HTMLTag())
	assert.Equal(t, "h5", Classification{Kind: KindHeading, Level: 5}.HTMLTag())
	assert.Equal(t, "p", Classification{Kind: KindParagraph}.HTMLTag())
	assert.Equal(t, "p", Classification{Kind: KindList}.HTMLTag())
}

func TestMarkdownPrefix(t *testing.T) {
	assert.Equal(t, "# ", MarkdownPrefix(Classification{Kind: KindHeading, Level: 1}))
	assert.Equal(t, "### ", MarkdownPrefix(Classification{Kind: KindHeading, Level: 3}))
	assert.Equal(t, "", MarkdownPrefix(Classification{Kind: KindParagraph}))
}
