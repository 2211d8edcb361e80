// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render serializes reconstructed page layouts as HTML or Markdown.
// Both renderers consume the same layout.PageLayout values and differ in
// how blocks are classified and written.
package render

import (
	"fmt"

	"github.com/pdiddy/pdf-bench/internal/layout"
	"github.com/pdiddy/pdf-bench/pkg/types"
)

// Renderer turns a layout document into an output document string.
type Renderer interface {
	// Format returns the output format the renderer produces.
	Format() types.OutputFormat

	// Render reconstructs and serializes every page of doc. Title is used
	// by formats that carry one.
	Render(doc *types.LayoutDocument, title string) string
}

// New returns the renderer for format, configured with cfg.
func New(format types.OutputFormat, cfg types.LayoutConfig) (Renderer, error) {
	a := layout.NewAnalyzer(cfg)
	switch format {
	case types.FormatHTML, "":
		return &HTMLRenderer{analyzer: a}, nil
	case types.FormatMarkdown:
		return &MarkdownRenderer{analyzer: a}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q: use html or markdown", format)
	}
}

// HTMLRenderer writes a minimal HTML document with heading and paragraph
// elements and inline emphasis from the font table.
type HTMLRenderer struct {
	analyzer *layout.Analyzer
}

// NewHTMLRenderer creates an HTMLRenderer with the given layout settings.
func NewHTMLRenderer(cfg types.LayoutConfig) *HTMLRenderer {
	return &HTMLRenderer{analyzer: layout.NewAnalyzer(cfg)}
}

// Format implements Renderer.
func (r *HTMLRenderer) Format() types.OutputFormat { return types.FormatHTML }

// Render implements Renderer.
func (r *HTMLRenderer) Render(doc *types.LayoutDocument, title string) string {
	pages := r.analyzer.AnalyzeDocument(doc)
	return HTML(pages, layout.NewFontTable(doc.Fonts), title)
}

// MarkdownRenderer writes ATX headings, literal list blocks and bare
// paragraphs separated by blank lines.
type MarkdownRenderer struct {
	analyzer *layout.Analyzer
}

// NewMarkdownRenderer creates a MarkdownRenderer with the given layout settings.
func NewMarkdownRenderer(cfg types.LayoutConfig) *MarkdownRenderer {
	return &MarkdownRenderer{analyzer: layout.NewAnalyzer(cfg)}
}

// Format implements Renderer.
func (r *MarkdownRenderer) Format() types.OutputFormat { return types.FormatMarkdown }

// Render implements Renderer. Markdown carries no title.
func (r *MarkdownRenderer) Render(doc *types.LayoutDocument, _ string) string {
	return Markdown(r.analyzer.AnalyzeDocument(doc))
}

// Document runs the full reconstruction pipeline over doc and serializes it
// in format.
func Document(doc *types.LayoutDocument, format types.OutputFormat, cfg types.LayoutConfig, title string) (string, error) {
	r, err := New(format, cfg)
	if err != nil {
		return "", err
	}
	return r.Render(doc, title), nil
}
