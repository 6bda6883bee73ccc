package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/store/cache"
)

func TestMockIsDeterministic(t *testing.T) {
	a := Mock("Nashik, Maharashtra")
	b := Mock("Nashik, Maharashtra")
	require.Equal(t, a, b)

	require.GreaterOrEqual(t, a.Temp, 25)
	require.Less(t, a.Temp, 35)
	require.GreaterOrEqual(t, a.Humidity, 60)
	require.Less(t, a.Humidity, 75)
	require.GreaterOrEqual(t, a.Wind, 8)
	require.Less(t, a.Wind, 18)
	require.Contains(t, []string{"Sunny", "Partly Cloudy", "Clear"}, a.Condition)
	require.Contains(t, []string{"High", "Very High", "Moderate"}, a.UV)
}

func TestCurrentWithoutKeyUsesMock(t *testing.T) {
	s := NewService("", "https://example.invalid", nil)
	report := s.Current(context.Background(), "Ludhiana, Punjab")
	require.Equal(t, Mock("Ludhiana, Punjab"), report)
}

func TestCurrentFetchesAndParses(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"main": {"temp": 27.4, "humidity": 61},
			"weather": [{"description": "scattered clouds"}],
			"wind": {"speed": 3.5}
		}`))
	}))
	defer server.Close()

	s := NewService("test-key", server.URL, nil)
	report := s.Current(context.Background(), "Nashik, Maharashtra")

	// Only the city goes upstream; the endpoint resolves by name.
	require.Equal(t, "Nashik", gotQuery)
	require.Equal(t, 27, report.Temp)
	require.Equal(t, "scattered clouds", report.Condition)
	require.Equal(t, 61, report.Humidity)
	require.Equal(t, 13, report.Wind) // 3.5 m/s rounded to km/h
	require.Equal(t, "N/A", report.UV)
}

func TestCurrentFallsBackOnUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewService("test-key", server.URL, nil)
	report := s.Current(context.Background(), "Pune, Maharashtra")
	require.Equal(t, Mock("Pune, Maharashtra"), report)
}

func TestCurrentUsesCache(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"main": {"temp": 20, "humidity": 50}, "weather": [], "wind": {"speed": 0}}`))
	}))
	defer server.Close()

	c := cache.New(cache.Config{DefaultTTL: time.Minute})
	defer c.Close()

	s := NewService("test-key", server.URL, c)
	first := s.Current(context.Background(), "Nagpur")
	second := s.Current(context.Background(), "NAGPUR ")
	require.Equal(t, 1, calls, "second lookup must hit the cache, case-insensitively")
	require.Equal(t, first, second)
}
