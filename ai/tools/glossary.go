package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// GlossaryTool answers lookups for common agronomy terms without an LLM
// round-trip. Entries are intentionally short; the model elaborates on them.
type GlossaryTool struct{}

func NewGlossaryTool() *GlossaryTool {
	return &GlossaryTool{}
}

func (t *GlossaryTool) Name() string {
	return "lookup_glossary"
}

func (t *GlossaryTool) Description() string {
	return `Look up the definition of a farming or agronomy term.

Input: {"term": "NPK"}
- term (required): the term to define

Output: a short definition, or a not-found marker when the term is unknown.`
}

func (t *GlossaryTool) Parameters() string {
	return `{
		"type": "object",
		"properties": {
			"term": {
				"type": "string",
				"description": "Farming term to define, e.g. NPK, drip irrigation"
			}
		},
		"required": ["term"],
		"additionalProperties": false
	}`
}

// GlossaryInput represents the input for the glossary tool.
type GlossaryInput struct {
	Term string `json:"term"`
}

func (t *GlossaryTool) Run(_ context.Context, input string) (string, error) {
	var in GlossaryInput
	if err := json.Unmarshal([]byte(input), &in); err != nil {
		return "", fmt.Errorf("invalid JSON input: %w", err)
	}
	term := strings.ToLower(strings.TrimSpace(in.Term))
	if term == "" {
		return "", fmt.Errorf("term is required")
	}

	definition, ok := glossary[term]
	result, err := json.Marshal(map[string]any{
		"term":       in.Term,
		"found":      ok,
		"definition": definition,
	})
	if err != nil {
		return "", fmt.Errorf("marshal glossary result: %w", err)
	}
	return string(result), nil
}

var glossary = map[string]string{
	"npk":              "The three primary plant nutrients: nitrogen (N) for leaf growth, phosphorus (P) for roots and flowering, potassium (K) for overall vigor. Fertilizer bags list the N-P-K ratio.",
	"ph":               "A 0-14 scale of soil acidity. Most crops prefer 6.0-7.5; below 6 is acidic, above 7.5 is alkaline. pH controls how available nutrients are to roots.",
	"soil ph":          "A 0-14 scale of soil acidity. Most crops prefer 6.0-7.5; below 6 is acidic, above 7.5 is alkaline. pH controls how available nutrients are to roots.",
	"drip irrigation":  "Watering through emitters that drip directly at the root zone. Uses 30-50% less water than flood irrigation and reduces fungal disease on leaves.",
	"crop rotation":    "Growing different crop families on the same field in sequence. Breaks pest and disease cycles and balances nutrient demand on the soil.",
	"mulching":         "Covering soil with straw, leaves, or plastic film. Conserves moisture, suppresses weeds, and moderates soil temperature.",
	"compost":          "Decomposed organic matter used as fertilizer. Improves soil structure, water retention, and microbial life.",
	"green manure":     "A cover crop (often a legume) grown to be plowed back into the soil, adding nitrogen and organic matter.",
	"vermicompost":     "Compost produced by earthworms. Richer in available nutrients and beneficial microbes than ordinary compost.",
	"msp":              "Minimum Support Price: the floor price at which the government procures certain crops from farmers, announced each season.",
	"mandi":            "A regulated agricultural wholesale market where farmers sell produce to traders through auction.",
	"modal price":      "The price at which most trades happened in a mandi on a given day. More representative than the minimum or maximum price.",
	"quintal":          "A unit of mass equal to 100 kilograms, the standard unit for mandi price quotes.",
	"kharif":           "The monsoon cropping season (June-October) for crops like rice, cotton, and soybean, sown with the first rains.",
	"rabi":             "The winter cropping season (November-April) for crops like wheat, mustard, and gram, sown after the monsoon.",
	"zaid":             "The short summer season between rabi and kharif, used for quick crops like watermelon and fodder.",
	"soil moisture":    "The water content held in soil pores, usually given as a percentage. Drives irrigation scheduling.",
	"fungicide":        "A chemical or biological agent that kills or inhibits fungi. Applied preventively or at the first sign of fungal disease.",
	"ipm":              "Integrated Pest Management: combining resistant varieties, crop rotation, beneficial insects, and targeted spraying to keep pest damage below economic thresholds.",
	"yield":            "The harvested output per unit of land, commonly tonnes or quintals per hectare or acre.",
	"sustainability score": "A relative 0-100 rating of how a crop choice affects long-term soil health, water use, and input dependency.",
}
