// Package gateway is the single entry point for all model inference: chat,
// disease identification, crop suggestions, and speech. It owns rate limiting
// and concurrency caps so callers never talk to the LLM service directly.
package gateway

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/cropify/cropify/ai/core/llm"
	"github.com/cropify/cropify/ai/metrics"
	"github.com/cropify/cropify/ai/tools"
)

const (
	// Upper bound on tool-call rounds within one chat turn.
	maxToolRounds = 4

	defaultRatePerSecond = 2
	defaultRateBurst     = 4
	defaultMaxAnalyses   = 2
)

// Config configures the inference gateway.
type Config struct {
	// RatePerSecond limits LLM calls across all callers. Zero uses the default.
	RatePerSecond float64

	// RateBurst is the limiter burst size. Zero uses the default.
	RateBurst int

	// MaxConcurrentAnalyses caps in-flight vision analyses, which are the
	// most expensive calls. Zero uses the default.
	MaxConcurrentAnalyses int64
}

// Gateway routes inference requests to the LLM service.
type Gateway struct {
	llm         llm.Service
	registry    *tools.Registry
	exporter    *metrics.PrometheusExporter
	limiter     *rate.Limiter
	analysisSem *semaphore.Weighted
}

// New creates an inference gateway. registry and exporter may be nil; a nil
// registry disables tool calling and a nil exporter disables metrics.
func New(service llm.Service, registry *tools.Registry, exporter *metrics.PrometheusExporter, cfg Config) (*Gateway, error) {
	if service == nil {
		return nil, errors.New("llm service is required")
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultRatePerSecond
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}
	if cfg.MaxConcurrentAnalyses <= 0 {
		cfg.MaxConcurrentAnalyses = defaultMaxAnalyses
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}

	return &Gateway{
		llm:         service,
		registry:    registry,
		exporter:    exporter,
		limiter:     rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		analysisSem: semaphore.NewWeighted(cfg.MaxConcurrentAnalyses),
	}, nil
}
