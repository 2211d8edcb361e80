// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// newMarkdownConverter builds the HTML to Markdown converter used to bring
// ground-truth HTML into the generated side's format.
func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// HTMLToMarkdown converts an HTML document to Markdown.
func HTMLToMarkdown(conv *converter.Converter, doc string) (string, error) {
	md, err := conv.ConvertString(doc)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return md, nil
}

var (
	atxHeading  = regexp.MustCompile(`^(#{1,6})(?:\s+|$)`)
	listMarker  = regexp.MustCompile(`^\s*(?:[-*+•]|[0-9]+[.)])\s+`)
	quoteMarker = regexp.MustCompile(`^\s*>\s?`)
	fence       = regexp.MustCompile("^\\s*(```|~~~)")
	tableRow    = regexp.MustCompile(`^\s*\|`)
	tableRule   = regexp.MustCompile(`^\s*\|?\s*:?-{3,}`)
	inlineMarks = regexp.MustCompile("[*_`~]+")
	linkTarget  = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
)

// MarkdownHistogram counts block elements of a Markdown document under the
// HTML names they render to: h1-h6, li, p, pre, blockquote and table.
// A paragraph or table spanning several lines counts once.
func MarkdownHistogram(md string) Histogram {
	h := Histogram{}
	inFence := false
	prev := "" // kind of the previous line: "", "p", "table", "blockquote"

	for _, line := range strings.Split(md, "\n") {
		if fence.MatchString(line) {
			if !inFence {
				h["pre"]++
			}
			inFence = !inFence
			prev = ""
			continue
		}
		if inFence {
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			prev = ""
		case atxHeading.MatchString(trimmed):
			level := len(atxHeading.FindStringSubmatch(trimmed)[1])
			h[fmt.Sprintf("h%d", level)]++
			prev = ""
		case listMarker.MatchString(line):
			h["li"]++
			prev = ""
		case quoteMarker.MatchString(line):
			if prev != "blockquote" {
				h["blockquote"]++
			}
			prev = "blockquote"
		case tableRow.MatchString(line):
			if prev != "table" {
				h["table"]++
			}
			prev = "table"
		default:
			if prev != "p" {
				h["p"]++
			}
			prev = "p"
		}
	}
	return h
}

// MarkdownText reduces Markdown to its words: block markers, emphasis
// characters, table rules and link targets are dropped and whitespace is
// collapsed.
func MarkdownText(md string) string {
	var parts []string
	for _, line := range strings.Split(md, "\n") {
		if fence.MatchString(line) || tableRule.MatchString(line) {
			continue
		}
		line = atxHeading.ReplaceAllString(strings.TrimSpace(line), "")
		line = listMarker.ReplaceAllString(line, "")
		line = quoteMarker.ReplaceAllString(line, "")
		line = linkTarget.ReplaceAllString(line, "$1")
		line = inlineMarks.ReplaceAllString(line, "")
		line = strings.ReplaceAll(line, "|", " ")
		parts = append(parts, line)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
