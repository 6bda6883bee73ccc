// Package weather fetches current conditions for a farm location from an
// OpenWeatherMap-compatible endpoint. Without an API key, or on any request
// failure, it degrades to deterministic mock data so dependent features (the
// dashboard card and the chatbot weather tool) keep working.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cropify/cropify/store/cache"
)

// Report is a current-conditions snapshot for one location.
type Report struct {
	Temp      int    `json:"temp"` // degrees Celsius
	Condition string `json:"condition"`
	Humidity  int    `json:"humidity"` // percent
	Wind      int    `json:"wind"`     // km/h
	UV        string `json:"uv"`
}

// Service fetches weather reports with a short-lived cache in front.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

// NewService creates a weather service. cache may be nil to disable caching.
func NewService(apiKey, baseURL string, c *cache.Cache) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   c,
	}
}

// Current returns the weather for a location such as "Nashik, Maharashtra".
// Never returns an error: any failure falls back to the deterministic mock.
func (s *Service) Current(ctx context.Context, location string) *Report {
	key := strings.ToLower(strings.TrimSpace(location))
	if s.cache != nil {
		if cached, ok := s.cache.Get("weather/" + key); ok {
			return cached.(*Report)
		}
	}

	report := s.fetch(ctx, location)
	if s.cache != nil {
		s.cache.Set("weather/"+key, report)
	}
	return report
}

func (s *Service) fetch(ctx context.Context, location string) *Report {
	if s.apiKey == "" {
		slog.Debug("weather: no API key configured, using mock data", "location", location)
		return Mock(location)
	}

	// The upstream endpoint resolves by city name only.
	city := strings.TrimSpace(strings.Split(location, ",")[0])
	endpoint := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=metric",
		s.baseURL, url.QueryEscape(city), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Warn("weather: building request failed, using mock data", "error", err)
		return Mock(location)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn("weather: request failed, using mock data", "location", location, "error", err)
		return Mock(location)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("weather: unexpected status, using mock data", "location", location, "status", resp.StatusCode)
		return Mock(location)
	}

	var payload struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"` // m/s
		} `json:"wind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Warn("weather: malformed response, using mock data", "location", location, "error", err)
		return Mock(location)
	}

	condition := "Clear"
	if len(payload.Weather) > 0 && payload.Weather[0].Description != "" {
		condition = payload.Weather[0].Description
	}
	return &Report{
		Temp:      int(math.Round(payload.Main.Temp)),
		Condition: condition,
		Humidity:  payload.Main.Humidity,
		Wind:      int(math.Round(payload.Wind.Speed * 3.6)),
		// The free tier does not report a UV index.
		UV: "N/A",
	}
}

// Mock generates a stable pseudo-report for a location, so repeated calls for
// the same place agree with each other.
func Mock(location string) *Report {
	hash := 0
	for _, r := range location {
		hash += int(r)
	}
	conditions := []string{"Sunny", "Partly Cloudy", "Clear"}
	uvLevels := []string{"High", "Very High", "Moderate"}
	return &Report{
		Temp:      25 + hash%10,
		Condition: conditions[hash%len(conditions)],
		Humidity:  60 + hash%15,
		Wind:      8 + hash%10,
		UV:        uvLevels[hash%len(uvLevels)],
	}
}
