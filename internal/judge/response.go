// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package judge

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pdiddy/pdf-bench/pkg/types"
)

const judgmentSchemaJSON = `{
  "type": "object",
  "required": ["text_fidelity", "structure", "formatting", "score", "notes"],
  "properties": {
    "text_fidelity": {"type": "integer", "minimum": 0, "maximum": 3},
    "structure":     {"type": "integer", "minimum": 0, "maximum": 3},
    "formatting":    {"type": "integer", "minimum": 0, "maximum": 2},
    "score":         {"type": "number",  "minimum": 0, "maximum": 10},
    "notes":         {"type": "string"}
  }
}`

var judgmentSchema = mustCompileSchema("judgment.json", judgmentSchemaJSON)

func mustCompileSchema(name, src string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		panic(fmt.Sprintf("adding schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// rawJudgment mirrors the model's JSON. Integers may arrive as 2.0.
type rawJudgment struct {
	TextFidelity float64 `json:"text_fidelity"`
	Structure    float64 `json:"structure"`
	Formatting   float64 `json:"formatting"`
	Score        float64 `json:"score"`
	Notes        string  `json:"notes"`
}

// stripFences removes a Markdown code fence around the reply, with or
// without a json language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.Split(text, "```")[1]
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(text)
}

// ParseJudgment decodes and validates the model's reply for fixture.
func ParseJudgment(fixture, text string) (types.Judgment, error) {
	text = stripFences(text)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return types.Judgment{}, fmt.Errorf("parsing judge reply: %w", err)
	}
	if err := judgmentSchema.Validate(v); err != nil {
		return types.Judgment{}, fmt.Errorf("judge reply does not match schema: %w", err)
	}

	var raw rawJudgment
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return types.Judgment{}, fmt.Errorf("decoding judge reply: %w", err)
	}
	return types.Judgment{
		Fixture:      fixture,
		TextFidelity: int(raw.TextFidelity),
		Structure:    int(raw.Structure),
		Formatting:   int(raw.Formatting),
		Score:        math.Round(raw.Score*10) / 10,
		Notes:        raw.Notes,
	}, nil
}

// RubricScore is the score implied by the three dimensions.
func RubricScore(textFidelity, structure, formatting int) float64 {
	return math.Round(float64(textFidelity+structure+formatting)/8*100) / 10
}
