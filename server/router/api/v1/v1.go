// Package v1 implements the REST API consumed by the web dashboard.
package v1

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/cropify/cropify/ai"
	"github.com/cropify/cropify/ai/core/llm"
	"github.com/cropify/cropify/ai/gateway"
	"github.com/cropify/cropify/ai/metrics"
	"github.com/cropify/cropify/ai/tools"
	"github.com/cropify/cropify/internal/profile"
	"github.com/cropify/cropify/plugin/market"
	"github.com/cropify/cropify/plugin/markdown"
	"github.com/cropify/cropify/plugin/weather"
	"github.com/cropify/cropify/session"
	"github.com/cropify/cropify/store"
	"github.com/cropify/cropify/store/kv"
)

type APIV1Service struct {
	Profile   *profile.Profile
	Store     *store.Store
	Snapshots kv.Store

	// Session layer
	Monitor            *session.Monitor
	Queue              *session.Queue
	ChatController     *session.ChatController
	AnalysisController *session.AnalysisController
	SuggestionService  *session.SuggestionService

	// Collaborators
	WeatherService  *weather.Service
	MarketService   *market.Service
	MarkdownService *markdown.Service
	Gateway         *gateway.Gateway
	Exporter        *metrics.PrometheusExporter
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, snapshots kv.Store) (*APIV1Service, error) {
	s := &APIV1Service{
		Profile:         profile,
		Store:           store,
		Snapshots:       snapshots,
		Monitor:         session.NewMonitor(),
		WeatherService:  weather.NewService(profile.WeatherAPIKey, profile.WeatherBaseURL, store.WeatherCache),
		MarketService:   market.NewService(profile.MarketAPIKey, profile.MarketBaseURL, store.MarketCache),
		MarkdownService: markdown.NewService(),
		Exporter:        metrics.NewPrometheusExporter(metrics.DefaultConfig()),
	}
	s.Queue = session.NewQueue(store, s.Exporter)

	if err := s.initAI(); err != nil {
		return nil, err
	}
	return s, nil
}

// initAI builds the inference stack when AI is enabled. A disabled or
// misconfigured AI leaves the gateway nil; the affected endpoints answer 503
// while the rest of the API keeps working.
func (s *APIV1Service) initAI() error {
	aiConfig := ai.NewConfigFromProfile(s.Profile)
	if !aiConfig.Enabled {
		slog.Info("AI features disabled")
		return nil
	}
	if err := aiConfig.Validate(); err != nil {
		slog.Warn("AI config validation failed, AI features disabled", "error", err)
		return nil
	}

	llmService, err := llm.NewService(&aiConfig.LLM)
	if err != nil {
		slog.Warn("Failed to initialize LLM service, AI features disabled",
			"provider", aiConfig.LLM.Provider,
			"error", err,
		)
		return nil
	}
	slog.Info("LLM service initialized",
		"provider", aiConfig.LLM.Provider,
		"model", aiConfig.LLM.Model,
	)
	// Warmup is best-effort and must not delay startup.
	go func() {
		warmupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		llmService.Warmup(warmupCtx)
	}()

	registry := tools.NewRegistry()
	defaultLocation := s.defaultFarmLocation()
	weatherTool, err := tools.NewWeatherTool(s.WeatherService, defaultLocation)
	if err != nil {
		return errors.Wrap(err, "weather tool")
	}
	marketTool, err := tools.NewMarketTool(s.MarketService, defaultLocation)
	if err != nil {
		return errors.Wrap(err, "market tool")
	}
	for _, t := range []tools.Tool{weatherTool, marketTool, tools.NewGlossaryTool()} {
		if err := registry.Register(t); err != nil {
			return err
		}
	}

	s.Gateway, err = gateway.New(llmService, registry, s.Exporter, gateway.Config{})
	if err != nil {
		return errors.Wrap(err, "gateway")
	}

	s.ChatController, err = session.NewChatController(session.ChatControllerConfig{
		Store:       s.Store,
		Gateway:     s.Gateway,
		Monitor:     s.Monitor,
		Queue:       s.Queue,
		Titles:      ai.NewTitleGenerator(llmService),
		Renderer:    s.MarkdownService,
		FarmContext: s.farmContext,
	})
	if err != nil {
		return errors.Wrap(err, "chat controller")
	}

	s.AnalysisController, err = session.NewAnalysisController(session.AnalysisControllerConfig{
		Gateway:   s.Gateway,
		Monitor:   s.Monitor,
		Queue:     s.Queue,
		Snapshots: s.Snapshots,
	})
	if err != nil {
		return errors.Wrap(err, "analysis controller")
	}

	s.SuggestionService, err = session.NewSuggestionService(s.Store, s.Gateway, s.WeatherService, s.MarketService, s.Snapshots)
	if err != nil {
		return errors.Wrap(err, "suggestion service")
	}
	return nil
}

// Register mounts all v1 routes.
func (s *APIV1Service) Register(e *echo.Echo) {
	e.GET("/healthz", s.GetHealth)
	e.GET("/metrics", echo.WrapHandler(s.Exporter.Handler()))

	g := e.Group("/api/v1")

	g.GET("/network/status", s.GetNetworkStatus)
	g.POST("/network/status", s.SetNetworkStatus)

	g.GET("/conversations", s.ListConversations)
	g.POST("/conversations", s.CreateConversation)
	g.GET("/conversations/:uid", s.GetConversation)
	g.PATCH("/conversations/:uid", s.UpdateConversation)
	g.DELETE("/conversations/:uid", s.DeleteConversation)
	g.GET("/conversations/:uid/messages", s.ListConversationMessages)

	g.POST("/chat", s.SubmitChat)
	g.GET("/chat/status", s.GetChatStatus)

	g.POST("/analysis", s.SubmitAnalysis)
	g.GET("/analysis", s.GetAnalysisSnapshot)
	g.DELETE("/analysis", s.ResetAnalysis)

	g.POST("/suggestions", s.GenerateSuggestions)
	g.GET("/suggestions", s.GetLatestSuggestions)

	g.GET("/farms", s.ListFarms)
	g.POST("/farms", s.CreateFarm)
	g.GET("/farms/:id", s.GetFarm)
	g.PATCH("/farms/:id", s.UpdateFarm)
	g.DELETE("/farms/:id", s.DeleteFarm)

	g.GET("/transactions", s.ListTransactions)
	g.POST("/transactions", s.CreateTransaction)
	g.DELETE("/transactions/:id", s.DeleteTransaction)
	g.GET("/transactions/summary", s.GetTransactionSummary)

	g.GET("/weather", s.GetWeather)
	g.GET("/market", s.GetMarketPrices)

	g.POST("/speech/synthesize", s.SynthesizeSpeech)
	g.POST("/speech/transcribe", s.TranscribeSpeech)
}

// ResumePending replays requests left queued by a previous run. Called once
// after the server starts listening.
func (s *APIV1Service) ResumePending(ctx context.Context) {
	if !s.Monitor.Online() {
		return
	}
	if s.ChatController != nil {
		go s.ChatController.ResumePending(ctx)
	}
	if s.AnalysisController != nil {
		go s.AnalysisController.ResumePending(ctx)
	}
}

// defaultFarmLocation returns the registered farm's location for tool
// defaults, or empty when no farm exists yet.
func (s *APIV1Service) defaultFarmLocation() string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	farms, err := s.Store.ListFarms(ctx, &store.FindFarm{})
	if err != nil || len(farms) == 0 {
		return ""
	}
	return farms[0].Location
}

// farmContext renders the registered farm for chat prompt personalization.
func (s *APIV1Service) farmContext(ctx context.Context) string {
	farms, err := s.Store.ListFarms(ctx, &store.FindFarm{})
	if err != nil || len(farms) == 0 {
		return ""
	}
	farm := farms[0]
	return fmt.Sprintf("%s in %s: %s soil, pH %.1f, moisture %.0f%%, N %.0f / P %.0f / K %.0f kg/ha",
		farm.Name, farm.Location, farm.SoilType, farm.PH, farm.Moisture,
		farm.Nitrogen, farm.Phosphorus, farm.Potassium)
}
