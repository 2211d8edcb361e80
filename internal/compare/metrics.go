// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compare

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

// Weights of the overall score.
const (
	TextWeight = 0.7
	TagWeight  = 0.3
)

// Note thresholds.
const (
	LowTextThreshold      = 0.5
	LowStructureThreshold = 0.3
)

var (
	scriptBlock = regexp.MustCompile(`(?i)<script[\s\S]*?</script>`)
	styleBlock  = regexp.MustCompile(`(?i)<style[\s\S]*?</style>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	startTag    = regexp.MustCompile(`<\s*([a-zA-Z0-9]+)(?:\s|>)`)
)

// StripHTML removes script and style blocks and every tag, then collapses
// whitespace. Entities are left as written so both sides of a comparison
// are treated alike.
func StripHTML(doc string) string {
	text := scriptBlock.ReplaceAllString(doc, " ")
	text = styleBlock.ReplaceAllString(text, " ")
	text = anyTag.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// Histogram counts element names.
type Histogram map[string]int

// TagHistogram counts start tags by lowercase name. Self-closing forms
// written as <br/> are not counted.
func TagHistogram(doc string) Histogram {
	h := Histogram{}
	for _, m := range startTag.FindAllStringSubmatch(doc, -1) {
		h[strings.ToLower(m[1])]++
	}
	return h
}

// HistogramSimilarity is 1 - delta/maxSum over the union of names, clamped
// at 0. Two empty histograms are identical.
func HistogramSimilarity(a, b Histogram) float64 {
	var maxSum, delta int
	for k := range union(a, b) {
		x, y := a[k], b[k]
		maxSum += max(x, y)
		if x > y {
			delta += x - y
		} else {
			delta += y - x
		}
	}
	if maxSum == 0 {
		return 1.0
	}
	return max(0.0, 1-float64(delta)/float64(maxSum))
}

func union(a, b Histogram) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}

// TextSimilarity is the SequenceMatcher ratio of the two texts compared
// character by character, after NFC normalization.
func TextSimilarity(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	s = norm.NFC.String(s)
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Overall combines text and tag similarity.
func Overall(text, tag float64) float64 {
	return TextWeight*text + TagWeight*tag
}

// Notes flags weak scores, or returns "ok".
func Notes(text, tag float64) string {
	var notes string
	if text < LowTextThreshold {
		notes += "low-text-sim;"
	}
	if tag < LowStructureThreshold {
		notes += "low-structure-sim;"
	}
	if notes == "" {
		return "ok"
	}
	return notes
}

// Round4 rounds half to even at four decimals on the exact binary value.
func Round4(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	return r
}
