// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package judge

import (
	"fmt"
	"strings"
)

// systemPrompt defines the rubric. The same prompt is used for every
// pipeline so scores are comparable across them.
const systemPrompt = `You are an expert HTML document evaluator. You compare a PDF-to-HTML
conversion output against the original source HTML to assess quality.

Score on three dimensions:

text_fidelity (0-3):
  3 = all important text present and accurate
  2 = most text present, minor omissions or errors
  1 = significant text missing or corrupted
  0 = little or no text extracted

structure (0-3):
  3 = headings, lists, tables, semantic elements correctly recovered
  2 = most structure correct, minor issues
  1 = some structure recovered but significant loss
  0 = structure entirely lost (everything is flat paragraphs or empty)

formatting (0-2):
  2 = inline formatting (bold, italic, code, sub/sup, etc.) correctly applied
  1 = some inline formatting present
  0 = no inline formatting preserved

Respond with ONLY valid JSON in this exact format:
{
  "text_fidelity": <0|1|2|3>,
  "structure": <0|1|2|3>,
  "formatting": <0|1|2>,
  "score": <float 0.0-10.0>,
  "notes": "<one sentence summary>"
}

score = (text_fidelity + structure + formatting) / 8 * 10, rounded to 1 decimal.
`

// Truncate cuts s to maxChars characters and marks the cut. Strings within
// the limit are returned unchanged.
func Truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i] + fmt.Sprintf("\n... [TRUNCATED at %d chars]", maxChars)
		}
		n++
	}
	return s
}

// userContent builds the message carrying both documents.
func userContent(in Input, pipeline string, maxChars int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fixture: %s\n\n", in.Fixture)
	fmt.Fprintf(&b, "=== GROUND-TRUTH HTML (source) ===\n%s\n\n", Truncate(in.Source, maxChars))
	fmt.Fprintf(&b, "=== %s CONVERTED HTML ===\n%s", strings.ToUpper(pipeline), Truncate(in.Converted, maxChars))
	return b.String()
}
