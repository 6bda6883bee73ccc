package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/ai/gateway"
	"github.com/cropify/cropify/plugin/market"
	"github.com/cropify/cropify/plugin/weather"
	"github.com/cropify/cropify/store"
	"github.com/cropify/cropify/store/kv"
)

// suggestionSnapshotKey is the snapshot namespace for crop suggestions.
const suggestionSnapshotKey = "farm-suggestions"

// SuggestionSnapshot is the last generated crop recommendation, kept so the
// dashboard can show it without re-running inference.
type SuggestionSnapshot struct {
	FarmID      int32                     `json:"farmId"`
	Report      *gateway.SuggestionReport `json:"report"`
	GeneratedTs int64                     `json:"generatedTs"`
}

// SuggestionGateway is the inference dependency of the suggestion service.
// *gateway.Gateway satisfies it; tests substitute fakes.
type SuggestionGateway interface {
	GenerateCropSuggestions(ctx context.Context, req *gateway.SuggestionRequest) (*gateway.SuggestionReport, error)
}

// SuggestionService generates crop suggestions for a farm, enriching the
// prompt with current weather and market data.
type SuggestionService struct {
	store     *store.Store
	gateway   SuggestionGateway
	weather   *weather.Service
	market    *market.Service
	snapshots kv.Store
}

func NewSuggestionService(s *store.Store, gw SuggestionGateway, w *weather.Service, m *market.Service, snapshots kv.Store) (*SuggestionService, error) {
	if s == nil || gw == nil || snapshots == nil {
		return nil, errors.New("store, gateway and snapshots are required")
	}
	return &SuggestionService{
		store:     s,
		gateway:   gw,
		weather:   w,
		market:    m,
		snapshots: snapshots,
	}, nil
}

// Latest returns the most recent suggestion snapshot, if any.
func (s *SuggestionService) Latest(ctx context.Context) (*SuggestionSnapshot, bool) {
	return kv.Load[SuggestionSnapshot](ctx, s.snapshots, suggestionSnapshotKey)
}

// Generate runs crop-suggestion inference for the given farm and persists the
// result as the latest snapshot.
func (s *SuggestionService) Generate(ctx context.Context, farmID int32) (*SuggestionSnapshot, error) {
	farms, err := s.store.ListFarms(ctx, &store.FindFarm{ID: &farmID})
	if err != nil {
		return nil, errors.Wrap(err, "find farm")
	}
	if len(farms) == 0 {
		return nil, errors.Errorf("farm %d not found", farmID)
	}
	farm := farms[0]

	req := &gateway.SuggestionRequest{
		SoilType:   farm.SoilType,
		Location:   farm.Location,
		PH:         farm.PH,
		Moisture:   farm.Moisture,
		Nitrogen:   farm.Nitrogen,
		Phosphorus: farm.Phosphorus,
		Potassium:  farm.Potassium,
	}
	if s.weather != nil {
		report := s.weather.Current(ctx, farm.Location)
		req.Weather = fmt.Sprintf("%d°C, %s, humidity %d%%, wind %d km/h",
			report.Temp, report.Condition, report.Humidity, report.Wind)
	}
	if s.market != nil {
		prices := s.market.Prices(ctx, farm.Location)
		lines := make([]string, 0, len(prices))
		for _, p := range prices {
			lines = append(lines, fmt.Sprintf("%s ₹%.0f/quintal", p.Crop, p.Price))
		}
		req.MarketPrices = strings.Join(lines, ", ")
	}

	report, err := s.gateway.GenerateCropSuggestions(ctx, req)
	if err != nil {
		return nil, err
	}

	snapshot := &SuggestionSnapshot{
		FarmID:      farmID,
		Report:      report,
		GeneratedTs: time.Now().Unix(),
	}
	kv.Save(ctx, s.snapshots, suggestionSnapshotKey, snapshot)
	return snapshot, nil
}
