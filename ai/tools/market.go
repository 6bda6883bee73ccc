package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cropify/cropify/plugin/market"
)

// MarketTool lets the chatbot look up commodity prices for a region.
type MarketTool struct {
	service         *market.Service
	defaultLocation string
}

func NewMarketTool(service *market.Service, defaultLocation string) (*MarketTool, error) {
	if service == nil {
		return nil, fmt.Errorf("market service cannot be nil")
	}
	return &MarketTool{service: service, defaultLocation: defaultLocation}, nil
}

func (t *MarketTool) Name() string {
	return "get_market_prices"
}

func (t *MarketTool) Description() string {
	return `Get current mandi (market) prices for crops in a region.

Input: {"location": "Nashik, Maharashtra"}
- location (optional): city and state; defaults to the farmer's registered location

Output: list of crops with modal price in rupees per quintal.`
}

func (t *MarketTool) Parameters() string {
	return `{
		"type": "object",
		"properties": {
			"location": {
				"type": "string",
				"description": "City and state, e.g. Nashik, Maharashtra"
			}
		},
		"additionalProperties": false
	}`
}

// MarketInput represents the input for the market prices tool.
type MarketInput struct {
	Location string `json:"location"`
}

func (t *MarketTool) Run(ctx context.Context, input string) (string, error) {
	var in MarketInput
	if input != "" {
		if err := json.Unmarshal([]byte(input), &in); err != nil {
			return "", fmt.Errorf("invalid JSON input: %w", err)
		}
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = t.defaultLocation
	}
	if location == "" {
		return "", fmt.Errorf("no location given and no default configured")
	}

	prices := t.service.Prices(ctx, location)
	result, err := json.Marshal(map[string]any{
		"location": location,
		"unit":     "INR per quintal",
		"prices":   prices,
	})
	if err != nil {
		return "", fmt.Errorf("marshal market result: %w", err)
	}
	return string(result), nil
}
