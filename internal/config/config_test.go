package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 0.85, cfg.BanProbabilityThreshold)
	assert.Equal(t, "high", cfg.BanRequiredConfidence)
	assert.Equal(t, 720*time.Hour, cfg.BanDuration)
	assert.Equal(t, "caller", cfg.BanNotify)
	assert.Equal(t, int64(16384), cfg.MaxMessageBytes)
	assert.Equal(t, 10, cfg.LeaderboardSize)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GAMEHUB_PORT", "9090")
	t.Setenv("GAMEHUB_STORAGE", "redis")
	t.Setenv("GAMEHUB_BAN_PROBABILITY_THRESHOLD", "0.5")
	t.Setenv("GAMEHUB_BAN_DURATION", "1h")
	t.Setenv("GAMEHUB_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "redis", cfg.Storage)
	assert.Equal(t, 0.5, cfg.BanProbabilityThreshold)
	assert.Equal(t, time.Hour, cfg.BanDuration)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("GAMEHUB_PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}
