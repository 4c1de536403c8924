// Package config handles application configuration and environment loading.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"reportsql/internal/dialect"
	"reportsql/internal/period"
)

// Config holds the server configuration. All values load from environment
// variables with sensible defaults; nothing else reads the environment.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")
	MetaDBPath string // path to the SQLite spec store (default "reportsql.db")
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"

	// SQLDialect is the default target dialect when a request names none.
	SQLDialect string

	// Calendar defaults used when a request carries no calendar settings.
	WeekStartDay string // MON..SUN (default "MON")
	Weekend      string // sat_sun or fri_sat (default "sat_sun")

	// CORS
	CORSAllowedOrigins []string // allowed origins (default: ["*"])
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		MetaDBPath:         getEnv("META_DB_PATH", "reportsql.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Env:                getEnv("ENV", "development"),
		SQLDialect:         getEnv("SQL_DIALECT", "postgres"),
		WeekStartDay:       getEnv("WEEK_START_DAY", "MON"),
		Weekend:            getEnv("WEEKEND_DEFINITION", "sat_sun"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if _, err := dialect.Lookup(c.SQLDialect); err != nil {
		return fmt.Errorf("SQL_DIALECT: %w", err)
	}
	if _, err := period.ParseWeekday(c.WeekStartDay); err != nil {
		return fmt.Errorf("WEEK_START_DAY: %w", err)
	}
	if _, err := period.ParseWeekend(c.Weekend); err != nil {
		return fmt.Errorf("WEEKEND_DEFINITION: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}
	return nil
}

// Dialect returns the default dialect. Validate must have passed.
func (c *Config) Dialect() *dialect.Dialect {
	d, err := dialect.Lookup(c.SQLDialect)
	if err != nil {
		return dialect.Default
	}
	return d
}

// Calendar returns the default calendar rules. Validate must have passed.
func (c *Config) Calendar() period.Calendar {
	cal := period.DefaultCalendar()
	if d, err := period.ParseWeekday(c.WeekStartDay); err == nil {
		cal.WeekStartDay = d
	}
	if w, err := period.ParseWeekend(c.Weekend); err == nil {
		cal.Weekend = w
	}
	return cal
}

// SlogLevel maps LogLevel to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
