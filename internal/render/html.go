// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pdf-bench/internal/layout"
)

// htmlEscaper escapes quotes as well as markup characters; the apostrophe
// uses the hexadecimal entity so existing outputs stay byte-identical.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeHTML escapes text for element content and attribute values.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

const htmlShell = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>%s</title>
</head>
<body>
%s
</body>
</html>
`

// HTML renders pages as a standalone HTML document. Each block becomes an
// h1-h5 or p element on its own line; pages are not marked.
func HTML(pages []layout.PageLayout, fonts layout.FontTable, title string) string {
	var parts []string
	for _, p := range pages {
		for _, b := range p.Blocks {
			el := HTMLBlock(b, fonts, p.BaselineFontSize)
			if strings.TrimSpace(el) != "" {
				parts = append(parts, el)
			}
		}
	}
	return fmt.Sprintf(htmlShell, EscapeHTML(title), strings.Join(parts, "\n"))
}

// HTMLBlock renders one block as a heading or paragraph element followed by
// a newline.
func HTMLBlock(b layout.Block, fonts layout.FontTable, baselineSize float64) string {
	tag := layout.ClassifyHTML(b, baselineSize).HTMLTag()
	return "<" + tag + ">" + InlineHTML(b, fonts) + "</" + tag + ">\n"
}

// InlineHTML renders a block's words left to right within each line. Lines
// are joined with a single space, not a line break.
func InlineHTML(b layout.Block, fonts layout.FontTable) string {
	lines := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		words := l.SortedWords()
		parts := make([]string, len(words))
		for j, w := range words {
			parts[j] = inlineWord(w, fonts)
		}
		lines[i] = strings.Join(parts, " ")
	}
	return strings.Join(lines, " ")
}

// inlineWord escapes a word and wraps it in strong, then em, then u.
func inlineWord(w layout.Word, fonts layout.FontTable) string {
	txt := EscapeHTML(w.Text)
	font, ok := fonts.Lookup(w)
	if !ok {
		return txt
	}
	if layout.IsBold(font.Weight) {
		txt = "<strong>" + txt + "</strong>"
	}
	if font.Italic {
		txt = "<em>" + txt + "</em>"
	}
	if font.Underline {
		txt = "<u>" + txt + "</u>"
	}
	return txt
}
