// Package market fetches commodity prices for a region from an
// Agmarknet-style endpoint, with the same degrade-to-mock policy as the
// weather service.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cropify/cropify/store/cache"
)

// Price is the modal price for one commodity, in rupees per quintal.
type Price struct {
	Crop  string  `json:"crop"`
	Price float64 `json:"price"`
}

// Service fetches market prices with a short-lived cache in front.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

// NewService creates a market data service. cache may be nil to disable caching.
func NewService(apiKey, baseURL string, c *cache.Cache) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   c,
	}
}

// Prices returns commodity prices for a location such as "Nashik, Maharashtra".
// Never returns an error: any failure falls back to the deterministic mock.
func (s *Service) Prices(ctx context.Context, location string) []Price {
	key := strings.ToLower(strings.TrimSpace(location))
	if s.cache != nil {
		if cached, ok := s.cache.Get("market/" + key); ok {
			return cached.([]Price)
		}
	}

	prices := s.fetch(ctx, location)
	if s.cache != nil {
		s.cache.Set("market/"+key, prices)
	}
	return prices
}

func (s *Service) fetch(ctx context.Context, location string) []Price {
	if s.apiKey == "" {
		slog.Debug("market: no API key configured, using mock data", "location", location)
		return Mock(location)
	}

	// The upstream filters by state; take the part after the comma when the
	// location is "City, State".
	state := location
	if parts := strings.SplitN(location, ",", 2); len(parts) == 2 {
		state = strings.TrimSpace(parts[1])
	}
	endpoint := fmt.Sprintf("%s/agmarknet.json?api-key=%s&filters[state]=%s&sort[arrival_date]=desc&limit=10",
		s.baseURL, url.QueryEscape(s.apiKey), url.QueryEscape(state))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Warn("market: building request failed, using mock data", "error", err)
		return Mock(location)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Warn("market: request failed, using mock data", "location", location, "error", err)
		return Mock(location)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("market: unexpected status, using mock data", "location", location, "status", resp.StatusCode)
		return Mock(location)
	}

	var payload struct {
		Records []struct {
			Commodity  string `json:"commodity"`
			ModalPrice string `json:"modal_price"`
		} `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Warn("market: malformed response, using mock data", "location", location, "error", err)
		return Mock(location)
	}
	if len(payload.Records) == 0 {
		slog.Debug("market: no records for location, using mock data", "location", location)
		return Mock(location)
	}

	// Keep the first (most recent) entry per commodity.
	seen := map[string]bool{}
	prices := []Price{}
	for _, record := range payload.Records {
		if record.Commodity == "" || seen[record.Commodity] {
			continue
		}
		price, err := strconv.ParseFloat(record.ModalPrice, 64)
		if err != nil {
			continue
		}
		seen[record.Commodity] = true
		prices = append(prices, Price{Crop: record.Commodity, Price: price})
	}
	if len(prices) == 0 {
		return Mock(location)
	}
	return prices
}

// Mock returns region-flavored placeholder prices.
func Mock(location string) []Price {
	lower := strings.ToLower(location)
	switch {
	case strings.Contains(lower, "maharashtra"):
		return []Price{
			{Crop: "Soybeans", Price: 3600},
			{Crop: "Cotton", Price: 7500},
			{Crop: "Sugarcane", Price: 3200},
			{Crop: "Grapes", Price: 85},
		}
	case strings.Contains(lower, "punjab"):
		return []Price{
			{Crop: "Wheat", Price: 2250},
			{Crop: "Rice", Price: 3800},
			{Crop: "Corn", Price: 1450},
			{Crop: "Potato", Price: 1500},
		}
	default:
		return []Price{
			{Crop: "Corn", Price: 1420},
			{Crop: "Soybeans", Price: 3550},
			{Crop: "Wheat", Price: 2230},
			{Crop: "Grapes", Price: 82},
		}
	}
}
