// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"

	"github.com/pdiddy/pdf-bench/internal/layout"
)

// Markdown renders pages as Markdown. Blocks are separated by a blank line,
// every page ends with an extra separator, and the result is trimmed and
// terminated by exactly one newline.
func Markdown(pages []layout.PageLayout) string {
	var out []string
	for _, p := range pages {
		for _, b := range p.Blocks {
			if md := MarkdownBlock(b, p.BaselineFontSize); md != "" {
				out = append(out, md)
			}
		}
		out = append(out, "")
	}
	return strings.TrimSpace(strings.Join(out, "\n\n")) + "\n"
}

// MarkdownBlock renders one block. List blocks keep one line of text per
// source line; other blocks collapse to a single line, prefixed with an ATX
// marker when classified as a heading. Blocks without text render as "".
func MarkdownBlock(b layout.Block, baselineSize float64) string {
	lines := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = l.Text()
	}

	text := strings.TrimSpace(strings.Join(lines, " "))
	if text == "" {
		return ""
	}

	c := layout.ClassifyMarkdown(b, baselineSize)
	switch c.Kind {
	case layout.KindList:
		return strings.Join(lines, "\n")
	case layout.KindHeading:
		return layout.MarkdownPrefix(c) + text
	default:
		return text
	}
}
