package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cropify/cropify/plugin/weather"
)

// WeatherTool lets the chatbot look up current conditions for a location.
type WeatherTool struct {
	service         *weather.Service
	defaultLocation string
}

// NewWeatherTool creates a weather lookup tool. defaultLocation is used when
// the model omits the location argument.
func NewWeatherTool(service *weather.Service, defaultLocation string) (*WeatherTool, error) {
	if service == nil {
		return nil, fmt.Errorf("weather service cannot be nil")
	}
	return &WeatherTool{service: service, defaultLocation: defaultLocation}, nil
}

func (t *WeatherTool) Name() string {
	return "get_weather"
}

func (t *WeatherTool) Description() string {
	return `Get the current weather for a farm location.

Input: {"location": "Nashik, Maharashtra"}
- location (optional): city and state; defaults to the farmer's registered location

Output: temperature (Celsius), condition, humidity, wind speed, UV index.`
}

func (t *WeatherTool) Parameters() string {
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

// WeatherInput represents the input for the weather tool.
type WeatherInput struct {
	Location string `json:"location"`
}

// Run executes the weather lookup. The underlying service never fails (it
// falls back to mock data), so Run only errors on malformed input.
func (t *WeatherTool) Run(ctx context.Context, input string) (string, error) {
	var in WeatherInput
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

	report := t.service.Current(ctx, location)
	result, err := json.Marshal(map[string]any{
		"location":  location,
		"temp_c":    report.Temp,
		"condition": report.Condition,
		"humidity":  report.Humidity,
		"wind_kmh":  report.Wind,
		"uv_index":  report.UV,
	})
	if err != nil {
		return "", fmt.Errorf("marshal weather result: %w", err)
	}
	return string(result), nil
}
