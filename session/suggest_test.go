package session

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/cropify/cropify/ai/gateway"
	"github.com/cropify/cropify/store"
	"github.com/cropify/cropify/store/kv"
)

type fakeSuggestionGateway struct {
	fn func(ctx context.Context, req *gateway.SuggestionRequest) (*gateway.SuggestionReport, error)
}

func (f *fakeSuggestionGateway) GenerateCropSuggestions(ctx context.Context, req *gateway.SuggestionRequest) (*gateway.SuggestionReport, error) {
	return f.fn(ctx, req)
}

func TestSuggestionGenerateAndLatest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	snapshots := kv.NewMemory()

	farm, err := s.CreateFarm(ctx, &store.Farm{
		Name:       "North Field",
		Location:   "Nashik, Maharashtra",
		SoilType:   "loamy",
		PH:         6.8,
		Moisture:   40,
		Nitrogen:   40,
		Phosphorus: 25,
		Potassium:  30,
	})
	require.NoError(t, err)

	gw := &fakeSuggestionGateway{fn: func(_ context.Context, req *gateway.SuggestionRequest) (*gateway.SuggestionReport, error) {
		require.Equal(t, "loamy", req.SoilType)
		require.Equal(t, "Nashik, Maharashtra", req.Location)
		require.Equal(t, 6.8, req.PH)
		return &gateway.SuggestionReport{
			Suggestions: []gateway.CropSuggestion{{
				CropName:            "Soybeans",
				YieldForecast:       "12 quintal/acre",
				ProfitMargin:        "high",
				SustainabilityScore: 8,
			}},
			Reasoning: "Soil suits legumes.",
		}, nil
	}}

	service, err := NewSuggestionService(s, gw, nil, nil, snapshots)
	require.NoError(t, err)

	_, ok := service.Latest(ctx)
	require.False(t, ok, "no snapshot before the first generation")

	snapshot, err := service.Generate(ctx, farm.ID)
	require.NoError(t, err)
	require.Equal(t, farm.ID, snapshot.FarmID)
	require.Equal(t, "Soybeans", snapshot.Report.Suggestions[0].CropName)

	latest, ok := service.Latest(ctx)
	require.True(t, ok)
	require.Equal(t, snapshot.Report, latest.Report)
}

func TestSuggestionGenerateUnknownFarm(t *testing.T) {
	s := newTestStore(t)
	gw := &fakeSuggestionGateway{fn: func(context.Context, *gateway.SuggestionRequest) (*gateway.SuggestionReport, error) {
		return nil, nil
	}}
	service, err := NewSuggestionService(s, gw, nil, nil, kv.NewMemory())
	require.NoError(t, err)

	_, err = service.Generate(context.Background(), 999)
	require.Error(t, err)
}

func TestSuggestionGenerateFailureKeepsPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	snapshots := kv.NewMemory()

	farm, err := s.CreateFarm(ctx, &store.Farm{Name: "Field", Location: "Pune"})
	require.NoError(t, err)

	calls := 0
	gw := &fakeSuggestionGateway{fn: func(context.Context, *gateway.SuggestionRequest) (*gateway.SuggestionReport, error) {
		calls++
		if calls == 1 {
			return &gateway.SuggestionReport{
				Suggestions: []gateway.CropSuggestion{{CropName: "Wheat"}},
			}, nil
		}
		return nil, errors.New("model unavailable")
	}}
	service, err := NewSuggestionService(s, gw, nil, nil, snapshots)
	require.NoError(t, err)

	_, err = service.Generate(ctx, farm.ID)
	require.NoError(t, err)
	_, err = service.Generate(ctx, farm.ID)
	require.Error(t, err)

	// The earlier result remains available to the dashboard.
	latest, ok := service.Latest(ctx)
	require.True(t, ok)
	require.Equal(t, "Wheat", latest.Report.Suggestions[0].CropName)
}
