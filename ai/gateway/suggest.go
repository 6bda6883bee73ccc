package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/ai/core/llm"
)

const suggestSystemPrompt = `You are an AI assistant designed to provide crop suggestions to farmers based on their farm's specific conditions and current market demands.

For each suggested crop, provide:
- cropName: the name of the crop.
- yieldForecast: the estimated yield in an appropriate unit (e.g. quintals/acre).
- profitMargin: an estimated profit margin percentage.
- sustainabilityScore: a score from 0 to 100 representing how sustainable the crop is for the given conditions (considering water usage, soil health impact, etc.).

Also provide a short, overall explanation of your reasoning.

Respond with ONLY a JSON object of the form:
{"suggestions": [{"cropName": "...", "yieldForecast": "...", "profitMargin": "...", "sustainabilityScore": 0}], "reasoning": "..."}
No prose outside the JSON, no markdown fences.`

// SuggestionRequest carries the farm conditions fed to the model.
type SuggestionRequest struct {
	SoilType   string
	Location   string
	PH         float64
	Moisture   float64 // percent
	Nitrogen   float64 // kg/ha
	Phosphorus float64 // kg/ha
	Potassium  float64 // kg/ha

	// Weather and MarketPrices are pre-fetched summaries; empty strings are
	// omitted from the prompt.
	Weather      string
	MarketPrices string
	MarketDemand string
}

// CropSuggestion is one recommended crop.
type CropSuggestion struct {
	CropName            string `json:"cropName"`
	YieldForecast       string `json:"yieldForecast"`
	ProfitMargin        string `json:"profitMargin"`
	SustainabilityScore int    `json:"sustainabilityScore"`
}

// SuggestionReport is the model's full recommendation.
type SuggestionReport struct {
	Suggestions []CropSuggestion `json:"suggestions"`
	Reasoning   string           `json:"reasoning"`
}

// GenerateCropSuggestions asks the model for crop recommendations tailored to
// the given farm conditions.
func (g *Gateway) GenerateCropSuggestions(ctx context.Context, req *SuggestionRequest) (*SuggestionReport, error) {
	if req == nil {
		return nil, errors.New("nil suggestion request")
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter")
	}

	content, err := g.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(suggestSystemPrompt),
		llm.UserMessage(req.prompt()),
	})
	if err != nil {
		return nil, err
	}

	var report SuggestionReport
	if err := json.Unmarshal([]byte(extractJSON(content)), &report); err != nil {
		slog.Warn("gateway: unparseable suggestion response", "content", content, "error", err)
		return nil, errors.Wrap(err, "parse suggestion response")
	}
	if len(report.Suggestions) == 0 {
		return nil, errors.New("no suggestions in response")
	}
	return &report, nil
}

func (r *SuggestionRequest) prompt() string {
	var b strings.Builder
	b.WriteString("Consider the following information about the farm:\n")
	fmt.Fprintf(&b, "- Soil Type: %s\n", r.SoilType)
	fmt.Fprintf(&b, "- Location: %s\n", r.Location)
	fmt.Fprintf(&b, "- pH Level: %.1f\n", r.PH)
	fmt.Fprintf(&b, "- Moisture Content: %.0f%%\n", r.Moisture)
	fmt.Fprintf(&b, "- Nutrient Content: N %.0f, P %.0f, K %.0f kg/ha\n", r.Nitrogen, r.Phosphorus, r.Potassium)
	if r.Weather != "" {
		fmt.Fprintf(&b, "- Weather Forecast: %s\n", r.Weather)
	}
	if r.MarketPrices != "" {
		fmt.Fprintf(&b, "- Market Prices: %s\n", r.MarketPrices)
	}
	demand := r.MarketDemand
	if demand == "" {
		demand = "general regional demand"
	}
	fmt.Fprintf(&b, "\nConsidering the current market demand (%s), suggest the most suitable crops for the farmer to plant.", demand)
	return b.String()
}
