package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"aoe2-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	DataDir            string
	ServerPort         string
	LogLevel           string
	MatchSource        string
	UserIDs            []string
	MaxFetchPages      int
	SyncTimeout        time.Duration
	SessionIdleMinutes float64
	GameSpeedFactor    float64
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DataDir:            getEnv("DATA_DIR", "data"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		MatchSource:        getEnv("MATCH_SOURCE", "api"),
		UserIDs:            splitList(getEnv("USER_IDS", "")),
		MaxFetchPages:      getEnvInt("MAX_FETCH_PAGES", constants.MaxFetchPages),
		SyncTimeout:        getEnvDuration("SYNC_TIMEOUT", 5*time.Minute),
		SessionIdleMinutes: getEnvFloat("SESSION_IDLE_MINUTES", constants.SessionIdleMinutes),
		GameSpeedFactor:    getEnvFloat("GAME_SPEED_FACTOR", constants.GameSpeedFactor),
	}

	if cfg.MaxFetchPages <= 0 {
		return nil, fmt.Errorf("MAX_FETCH_PAGES must be positive, got %d", cfg.MaxFetchPages)
	}
	if cfg.GameSpeedFactor <= 0 {
		return nil, fmt.Errorf("GAME_SPEED_FACTOR must be positive, got %v", cfg.GameSpeedFactor)
	}
	if cfg.MatchSource != "api" && cfg.MatchSource != "feed" {
		return nil, fmt.Errorf("MATCH_SOURCE must be \"api\" or \"feed\", got %q", cfg.MatchSource)
	}

	logger.Info().
		Str("data_dir", cfg.DataDir).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("match_source", cfg.MatchSource).
		Strs("user_ids", cfg.UserIDs).
		Int("max_fetch_pages", cfg.MaxFetchPages).
		Dur("sync_timeout", cfg.SyncTimeout).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var Module = fx.Provide(Load)
