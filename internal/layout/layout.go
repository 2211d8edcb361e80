// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout reconstructs document structure from word-level layout
// data: words are grouped into lines, lines into blocks, and blocks are
// classified as headings, list items, or paragraphs from font-size ratios
// and leading characters.
//
// Everything in this package is a pure function of its input. Page
// statistics are recomputed per page and nothing is cached between calls,
// so an Analyzer may be shared across goroutines.
package layout

import (
	"strings"

	"github.com/pdiddy/pdf-bench/pkg/types"
)

// Word is a single extracted text token with position and font metadata.
type Word struct {
	Text   string
	Top    float64
	Left   float64
	Width  float64
	Height float64

	// FontID references the document font table; empty when the word
	// carries no font reference.
	FontID string

	size    float64
	hasSize bool
}

// FontSize returns the word's font size and whether the source provided one.
func (w Word) FontSize() (float64, bool) {
	return w.size, w.hasSize
}

// SizeOr returns the word's font size, or fallback when it has none.
func (w Word) SizeOr(fallback float64) float64 {
	if w.hasSize {
		return w.size
	}
	return fallback
}

// Line is a set of words sharing a vertical band. Top is the top of the
// first word assigned to the line and is not updated as words join.
type Line struct {
	Top   float64
	Words []Word
}

// SortedWords returns the line's words ordered left to right. The line
// itself keeps arrival order.
func (l Line) SortedWords() []Word {
	words := make([]Word, len(l.Words))
	copy(words, l.Words)
	sortByLeft(words)
	return words
}

// Text returns the line's words left to right, joined by single spaces,
// with runs of whitespace collapsed.
func (l Line) Text() string {
	words := l.SortedWords()
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// Block is a run of consecutive lines forming a paragraph-equivalent unit.
type Block struct {
	Lines []Line
}

// Words returns every word of the block in line order.
func (b Block) Words() []Word {
	var words []Word
	for _, l := range b.Lines {
		words = append(words, l.Words...)
	}
	return words
}

// AverageFontSize is the mean size of the block's words. Words without a
// size count as fallback.
func (b Block) AverageFontSize(fallback float64) float64 {
	words := b.Words()
	if len(words) == 0 {
		return fallback
	}
	var sum float64
	for _, w := range words {
		sum += w.SizeOr(fallback)
	}
	return sum / float64(len(words))
}

// PageLayout is the reconstructed structure of one page together with the
// page statistics used to classify its blocks.
type PageLayout struct {
	Blocks           []Block
	BaselineGap      float64
	BaselineFontSize float64
}

// Font is the styling of a font table entry.
type Font struct {
	ID        string
	Weight    types.FontWeight
	Italic    bool
	Underline bool
}

// FontTable maps font identifiers to fonts.
type FontTable map[string]Font

// NewFontTable indexes a document's font specs by identifier.
func NewFontTable(specs []types.FontSpec) FontTable {
	t := make(FontTable, len(specs))
	for _, s := range specs {
		id := string(s.ID)
		t[id] = Font{
			ID:        id,
			Weight:    s.Weight,
			Italic:    s.IsItalic,
			Underline: s.IsUnderline,
		}
	}
	return t
}

// Lookup returns the font a word references, if the table has it.
func (t FontTable) Lookup(w Word) (Font, bool) {
	if w.FontID == "" {
		return Font{}, false
	}
	f, ok := t[w.FontID]
	return f, ok
}

// boldWeights are the textual weights treated as bold.
var boldWeights = map[string]bool{
	"bold": true,
	"Bold": true,
	"700":  true,
}

// IsBold normalizes the weight representations found in font tables.
// "bold", "Bold", "700" and the number 700 are bold; anything else is not.
func IsBold(w types.FontWeight) bool {
	if w.Numeric {
		v, ok := w.Value()
		return ok && v == 700
	}
	return boldWeights[w.Text]
}
