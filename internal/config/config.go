// Package config reads server settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/game"
	"github.com/mcoot/lettercrush/internal/services/scoring"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds everything the server needs at startup
type Config struct {
	Port     int
	LogLevel slog.Level

	StorageType    string
	RedisURL       string
	RedisKeyPrefix string
	SQLitePath     string
	PostgresDSN    string

	GridSize        int
	DefaultLanguage model.Language
	DictionaryDir   string

	// Sessions untouched for this long are removed
	SessionIdleTimeout time.Duration

	Game    game.Config
	Scoring scoring.Config
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone
func FromEnv() (*Config, error) {
	p := &parser{}

	gameCfg := game.DefaultConfig()
	gameCfg.MinWordLength = p.int("MIN_WORD_LENGTH", gameCfg.MinWordLength)
	gameCfg.MinWords = p.int("MIN_WORDS", gameCfg.MinWords)
	gameCfg.EnsureAttempts = p.int("ENSURE_ATTEMPTS", gameCfg.EnsureAttempts)
	gameCfg.MatchDelay = p.millis("MATCH_DELAY_MS", gameCfg.MatchDelay)
	gameCfg.ClearDelay = p.millis("CLEAR_DELAY_MS", gameCfg.ClearDelay)
	gameCfg.CascadeDelay = p.millis("CASCADE_DELAY_MS", gameCfg.CascadeDelay)
	gameCfg.WatchdogTimeout = p.millis("WATCHDOG_TIMEOUT_MS", gameCfg.WatchdogTimeout)
	gameCfg.MaxStrikes = p.int("MAX_STRIKES", gameCfg.MaxStrikes)
	gameCfg.TimeLimit = time.Duration(p.int("TIME_LIMIT_SECONDS", int(gameCfg.TimeLimit/time.Second))) * time.Second

	scoringCfg := scoring.DefaultConfig()
	scoringCfg.ComboBase = p.float("COMBO_BASE", scoringCfg.ComboBase)

	cfg := &Config{
		Port:               p.int("PORT", 8080),
		LogLevel:           p.level("LOG_LEVEL", slog.LevelInfo),
		StorageType:        strings.ToLower(getEnvOrDefault("STORAGE_TYPE", StorageMemory)),
		RedisURL:           getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix:     getEnvOrDefault("REDIS_KEY_PREFIX", "lettercrush"),
		SQLitePath:         getEnvOrDefault("SQLITE_PATH", "lettercrush.db"),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		GridSize:           p.int("GRID_SIZE", 6),
		DictionaryDir:      os.Getenv("DICTIONARY_DIR"),
		SessionIdleTimeout: time.Duration(p.int("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		Game:               gameCfg,
		Scoring:            scoringCfg,
	}

	lang, err := model.ParseLanguage(getEnvOrDefault("DEFAULT_LANGUAGE", string(model.LanguageEnglish)))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("DEFAULT_LANGUAGE: %w", err))
	}
	cfg.DefaultLanguage = lang

	p.errs = append(p.errs, cfg.validate()...)
	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() []error {
	var errs []error
	switch c.StorageType {
	case StorageMemory, StorageRedis, StorageSQLite:
	case StoragePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN required when STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE: unknown backend %q", c.StorageType))
	}
	if c.GridSize < 3 {
		errs = append(errs, fmt.Errorf("GRID_SIZE: must be at least 3, got %d", c.GridSize))
	}
	if c.SessionIdleTimeout <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_MINUTES: must be positive"))
	}
	if c.Game.MinWordLength < 1 {
		errs = append(errs, fmt.Errorf("MIN_WORD_LENGTH: must be positive, got %d", c.Game.MinWordLength))
	}
	if c.Game.WatchdogTimeout <= 0 {
		errs = append(errs, errors.New("WATCHDOG_TIMEOUT_MS: must be positive"))
	}
	if c.Game.MaxStrikes < 0 {
		errs = append(errs, errors.New("MAX_STRIKES: must not be negative"))
	}
	if c.Scoring.ComboBase < 1 {
		errs = append(errs, fmt.Errorf("COMBO_BASE: must be at least 1, got %g", c.Scoring.ComboBase))
	}
	return errs
}

// parser collects every malformed variable instead of stopping at the first
type parser struct {
	errs []error
}

func (p *parser) int(key string, defaultVal int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}
	return v
}

func (p *parser) float(key string, defaultVal float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}
	return v
}

func (p *parser) millis(key string, defaultVal time.Duration) time.Duration {
	return time.Duration(p.int(key, int(defaultVal/time.Millisecond))) * time.Millisecond
}

func (p *parser) level(key string, defaultVal slog.Level) slog.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return defaultVal
	}
	return lvl
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
