package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "HTTP_PORT", "FRONTEND_URL", "GROQ_API_KEY", "AI_MODEL", "AI_BASE_URL",
		"SCHEDULES", "TIMEZONE", "HEADLESS", "COOKIES_PATH", "SCREENSHOT_DIR",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, DefaultAIModel, cfg.AIModel)
	assert.Equal(t, DefaultAIBaseURL, cfg.AIBaseURL)
	assert.Equal(t, DefaultSchedules, cfg.Schedules)
	assert.True(t, cfg.Headless)
	assert.False(t, cfg.TelegramEnabled())
	assert.Error(t, cfg.RequireDatabase())
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
database_url: postgres://yaml
schedules: ["0 3 * * *"]
timezone: UTC
headless: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0644))

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("HEADLESS", "false")
	t.Setenv("SCHEDULES", "0 1 * * *, 30 5 * * *")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, []string{"0 1 * * *", "30 5 * * *"}, cfg.Schedules)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.NoError(t, cfg.RequireDatabase())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad headless", env: map[string]string{"HEADLESS": "maybe"}},
		{name: "bad chat id", env: map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
		{name: "token without chat", env: map[string]string{"TELEGRAM_BOT_TOKEN": "tok"}},
		{name: "bad timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
			assert.Error(t, err)
		})
	}
}
