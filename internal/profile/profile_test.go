package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func validProfile(t *testing.T) *Profile {
	t.Helper()
	return &Profile{
		Mode:      "dev",
		Data:      t.TempDir(),
		Driver:    "sqlite",
		KVBackend: "db",
	}
}

func TestValidateDefaultsSqliteDSN(t *testing.T) {
	p := validProfile(t)
	require.NoError(t, p.Validate())
	require.Equal(t, filepath.Join(p.Data, "cropify_dev.db"), p.DSN)
}

func TestValidateUnknownModeBecomesDemo(t *testing.T) {
	p := validProfile(t)
	p.Mode = "staging"
	require.NoError(t, p.Validate())
	require.Equal(t, "demo", p.Mode)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	p := validProfile(t)
	p.Driver = "mysql"
	require.Error(t, p.Validate())
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	p := validProfile(t)
	p.Driver = "postgres"
	require.Error(t, p.Validate())

	p.DSN = "postgres://cropify@localhost/cropify"
	require.NoError(t, p.Validate())
}

func TestValidateRedisBackendRequiresURL(t *testing.T) {
	p := validProfile(t)
	p.KVBackend = "redis"
	require.Error(t, p.Validate())

	p.RedisURL = "redis://localhost:6379/0"
	require.NoError(t, p.Validate())
}

func TestValidateRejectsUnknownKVBackend(t *testing.T) {
	p := validProfile(t)
	p.KVBackend = "etcd"
	require.Error(t, p.Validate())
}

func TestFromEnvProviderDefaults(t *testing.T) {
	t.Setenv("CROPIFY_AI_PROVIDER", "openai")
	t.Setenv("CROPIFY_AI_API_KEY", "sk-test")
	t.Setenv("CROPIFY_AI_MODEL", "")
	t.Setenv("CROPIFY_AI_BASE_URL", "")

	p := &Profile{}
	p.FromEnv()

	require.True(t, p.AIEnabled)
	require.Equal(t, "openai", p.LLMProvider)
	require.Equal(t, "https://api.openai.com/v1", p.LLMBaseURL)
	require.Equal(t, "gpt-4o-mini", p.LLMModel)
	require.Equal(t, "gpt-4o", p.VisionModel)
}

func TestFromEnvUnknownProviderFallsBack(t *testing.T) {
	t.Setenv("CROPIFY_AI_PROVIDER", "made-up")
	t.Setenv("CROPIFY_AI_API_KEY", "")

	p := &Profile{}
	p.FromEnv()

	require.Equal(t, "gemini", p.LLMProvider)
	require.False(t, p.AIEnabled, "no API key means AI features stay off")
}

func TestIsAIEnabled(t *testing.T) {
	require.False(t, (&Profile{}).IsAIEnabled())
	require.True(t, (&Profile{LLMAPIKey: "key"}).IsAIEnabled())
}
