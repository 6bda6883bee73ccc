package ai

import (
	"errors"

	"github.com/cropify/cropify/ai/core/llm"
	"github.com/cropify/cropify/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	LLM     llm.Config
	Enabled bool
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.AIEnabled,
	}
	if !cfg.Enabled {
		return cfg
	}

	cfg.LLM = llm.Config{
		Provider:    p.LLMProvider,
		Model:       p.LLMModel,
		VisionModel: p.VisionModel,
		TTSModel:    p.TTSModel,
		TTSVoice:    p.TTSVoice,
		STTModel:    p.STTModel,
		APIKey:      p.LLMAPIKey,
		BaseURL:     p.LLMBaseURL,
		MaxTokens:   2048,
		Temperature: 0.7,
		Timeout:     p.LLMTimeout,
	}
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.LLM.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.LLM.Model == "" {
		return errors.New("LLM model is required")
	}
	return nil
}
