// Package config loads service configuration from a .env file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment leaves a value unset.
const (
	DefaultDatabaseDriver   = "sqlite3"
	DefaultSQLitePath       = "data/lingooru.db"
	DefaultNotifyStartHour  = 8
	DefaultNotifyEndHour    = 22
	DefaultLogLevel         = "info"
	DefaultLearnedThreshold = 5
)

// Config holds everything the process needs at startup.
type Config struct {
	// DatabaseDriver is "postgres" or "sqlite3".
	DatabaseDriver string
	// DatabaseDSN is the Postgres connection string or the SQLite file path.
	DatabaseDSN string

	// TelegramToken enables the reminder notifier when non-empty.
	TelegramToken string

	// NotifyStartHour/NotifyEndHour bound the daily window (inclusive, local
	// time) in which reminders may be sent.
	NotifyStartHour int
	NotifyEndHour   int

	// LearnedThreshold marks a word learned after this many consecutive
	// successful recalls. Zero disables the policy.
	LearnedThreshold int

	LogLevel string
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine; deployments may configure purely via env.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseDriver:   getenv("DATABASE_DRIVER", DefaultDatabaseDriver),
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		LogLevel:         getenv("LOG_LEVEL", DefaultLogLevel),
		LearnedThreshold: DefaultLearnedThreshold,
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		cfg.DatabaseDSN = os.Getenv("DATABASE_URL")
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite3":
		cfg.DatabaseDSN = getenv("SQLITE_PATH", DefaultSQLitePath)
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	var err error
	if cfg.NotifyStartHour, err = getHour("NOTIFICATION_START_HOUR", DefaultNotifyStartHour); err != nil {
		return nil, err
	}
	if cfg.NotifyEndHour, err = getHour("NOTIFICATION_END_HOUR", DefaultNotifyEndHour); err != nil {
		return nil, err
	}
	if cfg.NotifyEndHour < cfg.NotifyStartHour {
		return nil, fmt.Errorf("notification window end %d before start %d", cfg.NotifyEndHour, cfg.NotifyStartHour)
	}

	if v := os.Getenv("LEARNED_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid LEARNED_THRESHOLD %q", v)
		}
		cfg.LearnedThreshold = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getHour(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid %s %q: want an hour 0-23", key, v)
	}
	return h, nil
}
