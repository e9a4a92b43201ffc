package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"OPENAI_API_KEY": "sk-test"})
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-3.5-turbo-1106", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, "nova", cfg.TTSVoice)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "/data/database/mission_database.db", cfg.SQLitePath())
	assert.Equal(t, "/data/audio", cfg.AudioDir)
	assert.Equal(t, 5, cfg.BufferSize)
	assert.Equal(t, 15*time.Minute, cfg.MaintenanceInterval)
	assert.Equal(t, 0, cfg.MaxPassAttempts)
	assert.Equal(t, 30*time.Minute, cfg.DraftTTL)
	assert.False(t, cfg.S3.Enabled())
	assert.Equal(t, "missions", cfg.S3.Prefix)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadFrom_MissingCredential(t *testing.T) {
	_, err := LoadFrom(map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"OPENAI_API_KEY":          "sk-test",
		"MISSION_BUFFER_SIZE":     "8",
		"MAINTENANCE_INTERVAL":    "30m",
		"DATABASE_DRIVER":         "postgres",
		"DATABASE_URL":            "postgres://u:p@localhost/missions?sslmode=disable",
		"TTS_PROVIDER":            "ElevenLabs",
		"ELEVENLABS_API_KEY":      "xi",
		"S3_ENDPOINT":             "s3.local:9000",
		"S3_BUCKET":               "missions",
		"TELEGRAM_BOT_TOKEN":      "123:abc",
		"TELEGRAM_ADMIN_CHAT_IDS": "1,2",
	})
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.BufferSize)
	assert.Equal(t, 30*time.Minute, cfg.MaintenanceInterval)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, ProviderElevenLabs, cfg.TTSProvider)
	assert.True(t, cfg.S3.Enabled())
	assert.Equal(t, []int64{1, 2}, cfg.TelegramAdminChatIDs)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"DATABASE_DRIVER": "postgres"},
		"unknown driver":       {"DATABASE_DRIVER": "mysql"},
		"unknown provider":     {"TTS_PROVIDER": "espeak"},
		"elevenlabs no key":    {"TTS_PROVIDER": "elevenlabs"},
		"zero buffer":          {"MISSION_BUFFER_SIZE": "0"},
		"negative cap":         {"MAX_PASS_ATTEMPTS": "-1"},
	}

	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			vars["OPENAI_API_KEY"] = "sk-test"
			_, err := LoadFrom(vars)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
