package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("GEMINI_BACKEND", "")
	t.Setenv("VEO_POLL_INTERVAL", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("REDIS_ENABLED", "")
	t.Setenv("CREDENTIAL_SELECTION_ENABLED", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendGemini, cfg.GeminiBackend)
	assert.Equal(t, 10*time.Second, cfg.VeoPollInterval)
	assert.Equal(t, 10*time.Minute, cfg.VeoGenerationTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionInactiveTimeout)
	assert.True(t, cfg.CredentialSelectionEnabled)
	assert.False(t, cfg.RedisEnabled)
	assert.False(t, cfg.SupabaseEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("GEMINI_BACKEND", BackendVertex)
	t.Setenv("VERTEXAI_PROJECT", "veo-project")
	t.Setenv("VEO_POLL_INTERVAL", "2s")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("SUPABASE_SERVICE_KEY", "service")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, BackendVertex, cfg.GeminiBackend)
	assert.Equal(t, 2*time.Second, cfg.VeoPollInterval)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "cache:6380", cfg.GetRedisAddr())
	assert.True(t, cfg.SupabaseEnabled())
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("GEMINI_BACKEND", "")
	t.Setenv("VEO_POLL_INTERVAL", "soon")
	t.Setenv("CREDENTIAL_SELECTION_ENABLED", "maybe")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.VeoPollInterval)
	assert.True(t, cfg.CredentialSelectionEnabled)
}

func TestFromEnv_CredentialsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600))

	t.Setenv("GEMINI_BACKEND", BackendVertex)
	t.Setenv("VERTEXAI_PROJECT", "veo-project")
	t.Setenv("VERTEXAI_CREDENTIALS_JSON", "")
	t.Setenv("VERTEXAI_CREDENTIALS_PATH", path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"service_account"}`, cfg.VertexCredentialsJSON)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			GeminiBackend:              BackendGemini,
			VeoPollInterval:            time.Second,
			CredentialSelectionEnabled: true,
		}
	}

	require.NoError(t, base().validate())

	noSharedKey := base()
	noSharedKey.CredentialSelectionEnabled = false
	assert.ErrorContains(t, noSharedKey.validate(), "GEMINI_API_KEY")

	vertex := base()
	vertex.GeminiBackend = BackendVertex
	assert.ErrorContains(t, vertex.validate(), "VERTEXAI_PROJECT")

	unknown := base()
	unknown.GeminiBackend = "openai"
	assert.ErrorContains(t, unknown.validate(), "unknown GEMINI_BACKEND")

	badPoll := base()
	badPoll.VeoPollInterval = 0
	assert.ErrorContains(t, badPoll.validate(), "VEO_POLL_INTERVAL")

	halfSupabase := base()
	halfSupabase.SupabaseURL = "https://x.supabase.co"
	assert.ErrorContains(t, halfSupabase.validate(), "SUPABASE_SERVICE_KEY")
}
