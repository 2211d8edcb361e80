// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ElementWord is the element type tag for extracted words.
const ElementWord = "word"

// LayoutDocument is the word-level layout output of a PDF parsing tool
// (Parsr-style JSON): an ordered list of pages and an optional font table.
type LayoutDocument struct {
	Pages []LayoutPage `json:"pages"`
	Fonts []FontSpec   `json:"fonts,omitempty"`
}

// LayoutPage holds the flat element list of one page.
type LayoutPage struct {
	Elements []Element `json:"elements"`
}

// Element is a generic layout element. Only elements with Type "word"
// take part in reconstruction.
type Element struct {
	Type     string   `json:"type"`
	Content  string   `json:"content"`
	Box      *Box     `json:"box,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`
	Font     *FontRef `json:"font,omitempty"`
}

// IsWord reports whether the element is a word with non-blank text.
func (e Element) IsWord() bool {
	return e.Type == ElementWord && strings.TrimSpace(e.Content) != ""
}

// Box is an element bounding box in page coordinates. Top and left are
// required for words; width and height are optional.
type Box struct {
	T *float64 `json:"t"`
	L *float64 `json:"l"`
	W *float64 `json:"w,omitempty"`
	H *float64 `json:"h,omitempty"`
}

// FontRef identifies an entry of the font table. Parsers emit it either as
// a JSON number or a string; both forms compare by their canonical text,
// so a word's numeric 1 matches a table entry "1".
type FontRef string

// UnmarshalJSON accepts numeric and string identifiers.
func (f *FontRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("font id: %w", err)
		}
		*f = FontRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("font id: %w", err)
	}
	*f = FontRef(n.String())
	return nil
}

// FontWeight is a raw font weight as found in the font table. Both textual
// ("bold", "medium", "700") and numeric (700) forms occur.
type FontWeight struct {
	Text    string
	Numeric bool
}

// UnmarshalJSON records whether the weight arrived as a number or a string.
func (w *FontWeight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*w = FontWeight{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("font weight: %w", err)
		}
		*w = FontWeight{Text: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("font weight: %w", err)
	}
	*w = FontWeight{Text: n.String(), Numeric: true}
	return nil
}

// MarshalJSON writes the weight back in the form it was read.
func (w FontWeight) MarshalJSON() ([]byte, error) {
	if w.Numeric {
		return []byte(w.Text), nil
	}
	return json.Marshal(w.Text)
}

// Value returns the numeric value of a numeric weight.
func (w FontWeight) Value() (float64, bool) {
	if !w.Numeric {
		return 0, false
	}
	v, err := strconv.ParseFloat(w.Text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FontSpec is one entry of the document font table.
type FontSpec struct {
	ID          FontRef    `json:"id"`
	Name        string     `json:"name,omitempty"`
	Size        float64    `json:"size,omitempty"`
	Weight      FontWeight `json:"weight"`
	IsItalic    bool       `json:"isItalic"`
	IsUnderline bool       `json:"isUnderline"`
}

// DecodeLayoutDocument reads a layout document and checks the fields the
// reconstruction relies on. A missing pages list, or a word without a top
// or left coordinate, is a data-shape error.
func DecodeLayoutDocument(r io.Reader) (*LayoutDocument, error) {
	var raw struct {
		Pages *[]LayoutPage `json:"pages"`
		Fonts []FontSpec    `json:"fonts"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding layout document: %w", err)
	}
	if raw.Pages == nil {
		return nil, fmt.Errorf("layout document has no pages")
	}

	doc := &LayoutDocument{Pages: *raw.Pages, Fonts: raw.Fonts}
	for p, page := range doc.Pages {
		for i, el := range page.Elements {
			if !el.IsWord() {
				continue
			}
			if el.Box == nil {
				return nil, fmt.Errorf("page %d element %d: word %q has no box", p+1, i, el.Content)
			}
			if el.Box.T == nil || el.Box.L == nil {
				return nil, fmt.Errorf("page %d element %d: word %q box lacks t or l", p+1, i, el.Content)
			}
		}
	}
	return doc, nil
}
