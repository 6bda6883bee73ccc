package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol).
	// All providers (gemini, openai, deepseek, siliconflow, openrouter, ollama)
	// speak the same wire protocol and share one config block.
	LLMProvider string // Provider identifier
	LLMAPIKey   string // API key for the inference service
	LLMBaseURL  string // Base URL (optional, has a default per provider)
	LLMModel    string // Chat model name
	LLMTimeout  int    // Request timeout in seconds (default: 120)

	// Vision / audio model overrides. Empty values fall back to provider defaults.
	VisionModel string // Model used for crop-disease image analysis
	TTSModel    string // Text-to-speech model
	TTSVoice    string // Text-to-speech voice name
	STTModel    string // Speech-to-text model

	// Collaborator endpoints. Missing keys switch the services to deterministic
	// mock data, matching the documented degraded behavior.
	WeatherAPIKey  string
	WeatherBaseURL string
	MarketAPIKey   string
	MarketBaseURL  string

	// Snapshot key-value store backing: "db" (default), "redis" or "memory".
	KVBackend string
	RedisURL  string

	// Server configuration
	Mode        string // "prod", "dev" or "demo"
	Addr        string
	Port        int
	Data        string // data directory
	Driver      string // "sqlite" or "postgres"
	DSN         string
	InstanceURL string
	Version     string

	AIEnabled bool
}

// Provider default configurations for the LLM gateway.
// Used when CROPIFY_AI_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL     string
	Model       string
	VisionModel string
}{
	"gemini": {
		BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai",
		Model:       "gemini-2.0-flash",
		VisionModel: "gemini-2.0-flash",
	},
	"openai": {
		BaseURL:     "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		VisionModel: "gpt-4o",
	},
	"deepseek": {
		BaseURL:     "https://api.deepseek.com",
		Model:       "deepseek-chat",
		VisionModel: "deepseek-chat",
	},
	"siliconflow": {
		BaseURL:     "https://api.siliconflow.cn/v1",
		Model:       "Qwen/Qwen2.5-72B-Instruct",
		VisionModel: "Qwen/Qwen2-VL-72B-Instruct",
	},
	"openrouter": {
		BaseURL:     "https://openrouter.ai/api/v1",
		Model:       "google/gemini-2.0-flash-001",
		VisionModel: "google/gemini-2.0-flash-001",
	},
	"ollama": {
		BaseURL:     "http://localhost:11434/v1",
		Model:       "llama3.1",
		VisionModel: "llava",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an inference API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("CROPIFY_AI_PROVIDER", "gemini")
	p.LLMAPIKey = getEnvOrDefault("CROPIFY_AI_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("CROPIFY_AI_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("CROPIFY_AI_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("CROPIFY_AI_TIMEOUT_SECONDS", 120)

	p.VisionModel = getEnvOrDefault("CROPIFY_AI_VISION_MODEL", "")
	p.TTSModel = getEnvOrDefault("CROPIFY_AI_TTS_MODEL", "tts-1")
	p.TTSVoice = getEnvOrDefault("CROPIFY_AI_TTS_VOICE", "alloy")
	p.STTModel = getEnvOrDefault("CROPIFY_AI_STT_MODEL", "whisper-1")

	p.AIEnabled = p.LLMAPIKey != ""

	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("unknown LLM provider, using default: gemini", "provider", p.LLMProvider)
			p.LLMProvider = "gemini"
		}
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
		if p.VisionModel == "" {
			p.VisionModel = defaults.VisionModel
		}
	}

	// Collaborator services
	p.WeatherAPIKey = getEnvOrDefault("CROPIFY_WEATHER_API_KEY", "")
	p.WeatherBaseURL = getEnvOrDefault("CROPIFY_WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")
	p.MarketAPIKey = getEnvOrDefault("CROPIFY_MARKET_API_KEY", "")
	p.MarketBaseURL = getEnvOrDefault("CROPIFY_MARKET_BASE_URL", "https://data.gov.in/api/v2")

	// Snapshot store backing
	p.KVBackend = getEnvOrDefault("CROPIFY_KV_BACKEND", "db")
	p.RedisURL = getEnvOrDefault("CROPIFY_REDIS_URL", "")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes the profile and verifies that it can serve.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtimeIsWindows() {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "cropify")
		} else {
			p.Data = "/var/opt/cropify"
		}
		if _, err := os.Stat(p.Data); err != nil {
			if err := os.MkdirAll(p.Data, 0o750); err != nil {
				return errors.Wrapf(err, "unable to create data directory %s", p.Data)
			}
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if !slices.Contains([]string{"sqlite", "postgres"}, p.Driver) {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("cropify_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	if !slices.Contains([]string{"db", "redis", "memory"}, p.KVBackend) {
		return errors.Errorf("unsupported kv backend %q", p.KVBackend)
	}
	if p.KVBackend == "redis" && p.RedisURL == "" {
		return errors.New("redis url is required for the redis kv backend")
	}

	return nil
}

func runtimeIsWindows() bool {
	return os.PathSeparator == '\\'
}
