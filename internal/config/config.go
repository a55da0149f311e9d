package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/trailhunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:""`

	// SessionTTL is the team session validity window; each validated use
	// slides the expiry forward by the same amount.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"48h"`

	// LeaderboardTTL bounds staleness of cached standings between writes.
	LeaderboardTTL time.Duration `env:"LEADERBOARD_TTL" envDefault:"3s"`

	// PresenceTimeout is how long a team may miss heartbeats before it is
	// reported as disconnected.
	PresenceTimeout time.Duration `env:"PRESENCE_TIMEOUT" envDefault:"15s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
