package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all server configuration, loaded from the environment.
// Ban thresholds are policy knobs, deliberately outside the core logic.
type Config struct {
	Host string `env:"GAMEHUB_HOST" envDefault:""`
	Port int    `env:"GAMEHUB_PORT" envDefault:"8080"`

	// Storage selects the backend: "memory" or "redis"
	Storage  string `env:"GAMEHUB_STORAGE" envDefault:"memory"`
	RedisURL string `env:"GAMEHUB_REDIS_URL" envDefault:"redis://localhost:6379"`

	// Ban policy
	BanProbabilityThreshold float64       `env:"GAMEHUB_BAN_PROBABILITY_THRESHOLD" envDefault:"0.85"`
	BanRequiredConfidence   string        `env:"GAMEHUB_BAN_CONFIDENCE" envDefault:"high"`
	BanDuration             time.Duration `env:"GAMEHUB_BAN_DURATION" envDefault:"720h"`
	BanNotify               string        `env:"GAMEHUB_BAN_NOTIFY" envDefault:"caller"`

	// Transport
	AllowedOrigins  []string `env:"GAMEHUB_ALLOWED_ORIGINS" envSeparator:","`
	MaxMessageBytes int64    `env:"GAMEHUB_MAX_MESSAGE_BYTES" envDefault:"16384"`
	ConnectRate     float64  `env:"GAMEHUB_CONNECT_RATE" envDefault:"20"`
	ConnectBurst    int      `env:"GAMEHUB_CONNECT_BURST" envDefault:"40"`
	LeaderboardSize int      `env:"GAMEHUB_LEADERBOARD_SIZE" envDefault:"10"`
}

// Load parses configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
