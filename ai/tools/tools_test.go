package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/plugin/weather"
)

func TestRegistryPreservesOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewGlossaryTool()))

	w, err := NewWeatherTool(weather.NewService("", "", nil), "Nashik")
	require.NoError(t, err)
	require.NoError(t, r.Register(w))

	descriptors := r.Descriptors()
	require.Len(t, descriptors, 2)
	require.Equal(t, "lookup_glossary", descriptors[0].Name)
	require.Equal(t, "get_weather", descriptors[1].Name)

	require.NotNil(t, r.Get("get_weather"))
	require.Nil(t, r.Get("unknown"))

	// Duplicate registration is a programming error.
	require.Error(t, r.Register(NewGlossaryTool()))
}

func TestGlossaryLookup(t *testing.T) {
	tool := NewGlossaryTool()

	result, err := tool.Run(context.Background(), `{"term": "NPK"}`)
	require.NoError(t, err)

	var out struct {
		Term       string `json:"term"`
		Found      bool   `json:"found"`
		Definition string `json:"definition"`
	}
	require.NoError(t, json.Unmarshal([]byte(result), &out))
	require.True(t, out.Found)
	require.Contains(t, out.Definition, "nitrogen")

	// Unknown terms return a not-found marker, not an error; the model decides
	// what to do with it.
	result, err = tool.Run(context.Background(), `{"term": "blockchain"}`)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(result), &out))
	require.False(t, out.Found)

	_, err = tool.Run(context.Background(), `{"term": ""}`)
	require.Error(t, err)
	_, err = tool.Run(context.Background(), `not json`)
	require.Error(t, err)
}

func TestWeatherToolDefaultsLocation(t *testing.T) {
	// No API key: the service returns deterministic mock data.
	tool, err := NewWeatherTool(weather.NewService("", "", nil), "Nashik, Maharashtra")
	require.NoError(t, err)

	result, err := tool.Run(context.Background(), "{}")
	require.NoError(t, err)

	var out struct {
		Location string `json:"location"`
		TempC    int    `json:"temp_c"`
	}
	require.NoError(t, json.Unmarshal([]byte(result), &out))
	require.Equal(t, "Nashik, Maharashtra", out.Location)
	require.Equal(t, weather.Mock("Nashik, Maharashtra").Temp, out.TempC)
}

func TestWeatherToolRequiresSomeLocation(t *testing.T) {
	tool, err := NewWeatherTool(weather.NewService("", "", nil), "")
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), `{"location": ""}`)
	require.Error(t, err)
}
