package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/lettercrush/internal/api"
	"github.com/mcoot/lettercrush/internal/api/sse"
	"github.com/mcoot/lettercrush/internal/config"
	"github.com/mcoot/lettercrush/internal/dependencies/clock"
	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/dependencies/scheduler"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/dictionary"
	"github.com/mcoot/lettercrush/internal/services/session"
	"github.com/mcoot/lettercrush/internal/storage"
	"github.com/mcoot/lettercrush/internal/storage/memory"
	redisstorage "github.com/mcoot/lettercrush/internal/storage/redis"
	"github.com/mcoot/lettercrush/internal/storage/sqldb"
	"github.com/mcoot/lettercrush/internal/wordlist"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Dictionaries map[model.Language]*dictionary.Service
	Sessions     *session.Manager
	HubManager   *sse.HubManager

	logger  *slog.Logger
	closers []io.Closer
}

// New creates a new application with all dependencies wired. Word lists
// are loaded for every language before New returns.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, closer, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	dicts, err := LoadDictionaries(ctx, store, cfg.DictionaryDir, logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	app := newWithDependencies(store, dicts, sessionConfig(cfg), session.Dependencies{
		Clock:  clock.New(),
		IDs:    random.New(),
		Logger: logger,
	}, logger)
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func sessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		GridSize:        cfg.GridSize,
		DefaultLanguage: cfg.DefaultLanguage,
		Game:            cfg.Game,
		Scoring:         cfg.Scoring,
	}
}

// newStorage creates the configured storage backend. The closer is nil for
// backends that hold no connections.
func newStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, io.Closer, error) {
	switch cfg.StorageType {
	case "", config.StorageMemory:
		return memory.New(), nil, nil

	case config.StorageRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.KeyPrefix = cfg.RedisKeyPrefix
		store, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("redis storage: %w", err)
		}
		return store, store, nil

	case config.StorageSQLite, config.StoragePostgres:
		sqlCfg := sqldb.DefaultConfig()
		if cfg.StorageType == config.StorageSQLite {
			sqlCfg.DSN = cfg.SQLitePath
		} else {
			sqlCfg.Driver = sqldb.DriverPostgres
			sqlCfg.DSN = cfg.PostgresDSN
		}
		store, err := sqldb.Open(ctx, sqlCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("%s storage: %w", cfg.StorageType, err)
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("invalid storage type %q", cfg.StorageType)
	}
}

// LoadDictionaries builds one dictionary per language. Each list comes
// from dir (or the embedded default) and is cached in storage; if the list
// cannot be read the cached copy is used instead.
func LoadDictionaries(ctx context.Context, store storage.Storage, dir string, logger *slog.Logger) (map[model.Language]*dictionary.Service, error) {
	dicts := make(map[model.Language]*dictionary.Service)
	for _, lang := range model.Languages() {
		dict := dictionary.New(store, lang)

		words, err := wordlist.Load(dir, lang)
		if err != nil {
			logger.Warn("word list unreadable, using cached copy",
				slog.String("language", string(lang)),
				slog.Any("error", err))
			if cacheErr := dict.LoadFromStorage(ctx); cacheErr != nil {
				return nil, fmt.Errorf("load %s dictionary: %w", lang, errors.Join(err, cacheErr))
			}
		} else {
			if err := dict.LoadWords(words); err != nil {
				return nil, fmt.Errorf("load %s dictionary: %w", lang, err)
			}
			if err := store.SaveDictionaryWords(ctx, lang, dict.Words()); err != nil {
				logger.Warn("failed to cache dictionary",
					slog.String("language", string(lang)),
					slog.Any("error", err))
			}
		}

		logger.Info("dictionary loaded",
			slog.String("language", string(lang)),
			slog.Int("words", dict.WordCount()))
		dicts[lang] = dict
	}
	return dicts, nil
}

// newWithDependencies wires services around a storage and loaded
// dictionaries (useful for testing)
func newWithDependencies(store storage.Storage, dicts map[model.Language]*dictionary.Service, cfg session.Config, deps session.Dependencies, logger *slog.Logger) *App {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.IDs == nil {
		deps.IDs = random.New()
	}
	if deps.NewScheduler == nil {
		deps.NewScheduler = func() scheduler.Runner { return scheduler.New(logger) }
	}
	hubManager := sse.NewHubManager(logger)

	deps.Dictionaries = dicts
	deps.Scores = store
	deps.Publisher = hubManager
	deps.Logger = logger

	return &App{
		Storage:      store,
		Clock:        deps.Clock,
		Random:       deps.IDs,
		Dictionaries: dicts,
		Sessions:     session.NewManager(cfg, deps),
		HubManager:   hubManager,
		logger:       logger,
	}
}

// Router builds the HTTP API for the app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:       a.logger,
		Sessions:     a.Sessions,
		HighScores:   a.Storage,
		Dictionaries: a.Dictionaries,
		HubManager:   a.HubManager,
	})
}

// ReapIdle removes sessions untouched for longer than maxIdle and drops
// event hubs with no listeners. Returns the number of sessions removed.
func (a *App) ReapIdle(maxIdle time.Duration) int {
	removed := a.Sessions.RemoveIdle(maxIdle)
	hubs := a.HubManager.CleanupEmptyHubs()
	if removed > 0 || hubs > 0 {
		a.logger.Debug("reaped idle sessions",
			slog.Int("sessions", removed),
			slog.Int("hubs", hubs),
		)
	}
	return removed
}

// RunReaper calls ReapIdle every interval until ctx is cancelled
func (a *App) RunReaper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.ReapIdle(maxIdle)
		}
	}
}

// Close ends every session and releases storage connections
func (a *App) Close() error {
	a.Sessions.Close()
	a.HubManager.Close()

	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
