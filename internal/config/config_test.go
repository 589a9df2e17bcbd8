package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lettercrush/internal/model"
)

var allKeys = []string{
	"PORT", "LOG_LEVEL", "STORAGE_TYPE", "REDIS_URL", "REDIS_KEY_PREFIX", "SQLITE_PATH",
	"POSTGRES_DSN", "GRID_SIZE", "MIN_WORD_LENGTH", "MIN_WORDS", "COMBO_BASE",
	"MATCH_DELAY_MS", "CLEAR_DELAY_MS", "CASCADE_DELAY_MS", "WATCHDOG_TIMEOUT_MS",
	"MAX_STRIKES", "TIME_LIMIT_SECONDS", "ENSURE_ATTEMPTS", "DEFAULT_LANGUAGE", "DICTIONARY_DIR",
	"SESSION_IDLE_MINUTES",
}

// clearEnv blanks every variable Load reads; t.Setenv restores them afterwards
func clearEnv(t *testing.T) {
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StorageMemory, cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "lettercrush", cfg.RedisKeyPrefix)
	assert.Equal(t, 6, cfg.GridSize)
	assert.Equal(t, model.LanguageEnglish, cfg.DefaultLanguage)
	assert.Equal(t, 3, cfg.Game.MinWordLength)
	assert.Equal(t, 6, cfg.Game.MinWords)
	assert.Equal(t, 300*time.Millisecond, cfg.Game.MatchDelay)
	assert.Equal(t, 10*time.Second, cfg.Game.WatchdogTimeout)
	assert.Equal(t, 3, cfg.Game.MaxStrikes)
	assert.Equal(t, 120*time.Second, cfg.Game.TimeLimit)
	assert.Equal(t, 1.5, cfg.Scoring.ComboBase)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
}

func TestOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_TYPE", "SQLite")
	t.Setenv("GRID_SIZE", "8")
	t.Setenv("CASCADE_DELAY_MS", "50")
	t.Setenv("TIME_LIMIT_SECONDS", "0")
	t.Setenv("MAX_STRIKES", "0")
	t.Setenv("COMBO_BASE", "2")
	t.Setenv("DEFAULT_LANGUAGE", "pl")
	t.Setenv("SESSION_IDLE_MINUTES", "5")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StorageSQLite, cfg.StorageType)
	assert.Equal(t, 8, cfg.GridSize)
	assert.Equal(t, 50*time.Millisecond, cfg.Game.CascadeDelay)
	assert.Equal(t, time.Duration(0), cfg.Game.TimeLimit)
	assert.Equal(t, 0, cfg.Game.MaxStrikes)
	assert.Equal(t, 2.0, cfg.Scoring.ComboBase)
	assert.Equal(t, model.LanguagePolish, cfg.DefaultLanguage)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTimeout)
}

func TestInvalidValuesAreAllReported(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")
	t.Setenv("COMBO_BASE", "lots")
	t.Setenv("DEFAULT_LANGUAGE", "klingon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "COMBO_BASE")
	assert.ErrorIs(t, err, model.ErrUnsupportedLanguage)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"unknown storage", "STORAGE_TYPE", "mongo", "STORAGE_TYPE"},
		{"postgres without dsn", "STORAGE_TYPE", "postgres", "POSTGRES_DSN"},
		{"tiny grid", "GRID_SIZE", "2", "GRID_SIZE"},
		{"no watchdog", "WATCHDOG_TIMEOUT_MS", "0", "WATCHDOG_TIMEOUT_MS"},
		{"combo below one", "COMBO_BASE", "0.5", "COMBO_BASE"},
		{"no idle timeout", "SESSION_IDLE_MINUTES", "0", "SESSION_IDLE_MINUTES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is already set, even to ""
	require.NoError(t, os.Unsetenv("GRID_SIZE"))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GRID_SIZE=7\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.GridSize)
}
