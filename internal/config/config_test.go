package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/dreams")
	t.Setenv("S3_ENDPOINT", "s3.local:9000")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dreams", cfg.S3.Bucket)
	assert.True(t, cfg.S3.UseSSL)
	assert.Equal(t, "gemini-pro", cfg.Gemini.Model)
	assert.Equal(t, "whisper", cfg.Transcriber.Kind)
	assert.Equal(t, "memory", cfg.RecorderBuffer)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.AlertChatIDs)
	assert.Empty(t, cfg.AdminEmails)
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TRANSCRIBER", "deepgram")
	t.Setenv("DEEPGRAM_API_KEY", "dg")
	t.Setenv("RECORDER_BUFFER", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("ALERT_CHAT_IDS", "11, 22")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("ADMIN_EMAILS", " Ops@Example.com,,night@example.com ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "deepgram", cfg.Transcriber.Kind)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, []int64{11, 22}, cfg.AlertChatIDs)
	assert.False(t, cfg.S3.UseSSL)
	assert.Equal(t, []string{"ops@example.com", "night@example.com"}, cfg.AdminEmails)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing gemini key":  {"GEMINI_API_KEY": ""},
		"unknown transcriber": {"TRANSCRIBER": "vosk"},
		"deepgram no key":     {"TRANSCRIBER": "deepgram"},
		"bad chat ids":        {"ALERT_CHAT_IDS": "abc"},
		"bad buffer":          {"RECORDER_BUFFER": "disk"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
