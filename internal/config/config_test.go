package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "http://localhost:9000", cfg.ResumeServiceURL)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Zero(t, cfg.MaxQuestions)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9999")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("MAX_QUESTIONS", "4")
	t.Setenv("MIN_ANSWER_SECONDS", "6")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/interviews")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t,
		[]string{"https://app.example.com", "https://staging.example.com"},
		cfg.AllowedOrigins)
	assert.Equal(t, 4, cfg.MaxQuestions)
	assert.Equal(t, 6, cfg.MinAnswerSeconds)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/interviews", cfg.MySQLDSN)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("MAX_QUESTIONS", "many")

	_, err := Load()
	assert.Error(t, err)
}
