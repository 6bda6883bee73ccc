package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/store/cache"
)

func TestMockIsRegionFlavored(t *testing.T) {
	maharashtra := Mock("Nashik, Maharashtra")
	require.Equal(t, "Soybeans", maharashtra[0].Crop)
	require.Equal(t, 3600.0, maharashtra[0].Price)

	punjab := Mock("Ludhiana, Punjab")
	require.Equal(t, "Wheat", punjab[0].Crop)
	require.Equal(t, 2250.0, punjab[0].Price)

	elsewhere := Mock("Somewhere Else")
	require.Equal(t, "Corn", elsewhere[0].Crop)
	require.Equal(t, 1420.0, elsewhere[0].Price)

	// Stable across calls.
	require.Equal(t, maharashtra, Mock("Nashik, Maharashtra"))
}

func TestPricesWithoutKeyUsesMock(t *testing.T) {
	s := NewService("", "https://example.invalid", nil)
	prices := s.Prices(context.Background(), "Nashik, Maharashtra")
	require.Equal(t, Mock("Nashik, Maharashtra"), prices)
}

func TestPricesFetchesAndDeduplicates(t *testing.T) {
	var gotState string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotState = r.URL.Query().Get("filters[state]")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records": [
			{"commodity": "Onion", "modal_price": "1850"},
			{"commodity": "Onion", "modal_price": "1700"},
			{"commodity": "Tomato", "modal_price": "not-a-number"},
			{"commodity": "Grapes", "modal_price": "90.5"},
			{"commodity": "", "modal_price": "100"}
		]}`))
	}))
	defer server.Close()

	s := NewService("test-key", server.URL, nil)
	prices := s.Prices(context.Background(), "Nashik, Maharashtra")

	// The state, not the city, is the upstream filter.
	require.Equal(t, "Maharashtra", gotState)
	// First record per commodity wins; unparseable and unnamed rows drop out.
	require.Equal(t, []Price{
		{Crop: "Onion", Price: 1850},
		{Crop: "Grapes", Price: 90.5},
	}, prices)
}

func TestPricesFallsBackOnEmptyRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records": []}`))
	}))
	defer server.Close()

	s := NewService("test-key", server.URL, nil)
	prices := s.Prices(context.Background(), "Ludhiana, Punjab")
	require.Equal(t, Mock("Ludhiana, Punjab"), prices)
}

func TestPricesUsesCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"records": [{"commodity": "Onion", "modal_price": "1850"}]}`))
	}))
	defer server.Close()

	c := cache.New(cache.Config{DefaultTTL: time.Minute})
	defer c.Close()

	s := NewService("test-key", server.URL, c)
	first := s.Prices(context.Background(), "Nashik, Maharashtra")
	second := s.Prices(context.Background(), "nashik, maharashtra")
	require.Equal(t, 1, calls)
	require.Equal(t, first, second)
}
