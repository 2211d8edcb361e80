// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pdf-bench/pkg/types"
)

// LoadWords filters a page down to word elements with non-blank text and
// returns them in reading order: ascending by top rounded to one decimal,
// then by left. Elements keep their relative order on ties.
//
// Words are expected to carry box.t and box.l; types.DecodeLayoutDocument
// rejects documents where they do not.
func LoadWords(page types.LayoutPage) []Word {
	var words []Word
	for _, el := range page.Elements {
		if !el.IsWord() {
			continue
		}
		words = append(words, newWord(el))
	}

	sort.SliceStable(words, func(i, j int) bool {
		ti, tj := roundTenth(words[i].Top), roundTenth(words[j].Top)
		if ti != tj {
			return ti < tj
		}
		return words[i].Left < words[j].Left
	})
	return words
}

func newWord(el types.Element) Word {
	w := Word{Text: el.Content}
	if el.Box != nil {
		w.Top = deref(el.Box.T)
		w.Left = deref(el.Box.L)
		w.Width = deref(el.Box.W)
		w.Height = deref(el.Box.H)
	}
	if el.FontSize != nil {
		w.size = *el.FontSize
		w.hasSize = true
	}
	if el.Font != nil {
		w.FontID = strings.TrimSpace(string(*el.Font))
	}
	return w
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// roundTenth rounds the stored value to one decimal place, ties to even.
// Scaling by ten first would move values like 100.35 across the tie.
func roundTenth(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}

func sortByLeft(words []Word) {
	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Left < words[j].Left
	})
}
