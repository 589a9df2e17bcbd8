package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/storage"
)

// Storage is a database/sql implementation of the storage interface,
// backed by sqlite3 or postgres
type Storage struct {
	db      *sql.DB
	driver  string
	timeout time.Duration
	logger  *slog.Logger
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to the configured database and applies migrations
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Storage, error) {
	dsn, err := driverDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.Driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragmas: %w", err)
		}
	}

	s, err := NewWithDB(ctx, db, cfg.Driver, cfg.QueryTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an open database and applies migrations
func NewWithDB(ctx context.Context, db *sql.DB, driver string, timeout time.Duration, logger *slog.Logger) (*Storage, error) {
	if timeout <= 0 {
		timeout = DefaultConfig().QueryTimeout
	}
	s := &Storage{
		db:      db,
		driver:  driver,
		timeout: timeout,
		logger:  logger,
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// driverDSN validates the driver and adds sqlite connection options
func driverDSN(cfg Config) (string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.DSN != ":memory:" {
			// Ensure directory exists for ./data/app.db, etc.
			dir := filepath.Dir(cfg.DSN)
			if dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return "", fmt.Errorf("mkdir %s: %w", dir, err)
				}
			}
		}
		return cfg.DSN + "?_busy_timeout=5000&_journal_mode=WAL", nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return "", fmt.Errorf("postgres storage requires a DSN")
		}
		return cfg.DSN, nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $n for postgres
func (s *Storage) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// inTx runs fn in a transaction, rolling back on error
func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction due to %v: %w", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// High score operations

const rankOrder = `ORDER BY score DESC, created_at ASC, id ASC`

func (s *Storage) SaveHighScore(ctx context.Context, score *model.HighScore) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, s.rebind(`
			INSERT INTO high_scores
				(session_id, score, moves, words_found, longest_word, best_combo, reason, language, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
			string(score.SessionID), score.Score, score.Moves, score.WordsFound, score.LongestWord,
			score.BestCombo, string(score.Reason), string(score.Language), score.CreatedAt.UTC(),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert high score: %w", err)
		}

		_, err = tx.ExecContext(ctx, s.rebind(`
			DELETE FROM high_scores
			WHERE id NOT IN (SELECT id FROM high_scores `+rankOrder+` LIMIT ?)`),
			model.MaxHighScores,
		)
		if err != nil {
			return fmt.Errorf("trim high scores: %w", err)
		}
		score.ID = id
		return nil
	})
}

func (s *Storage) TopHighScores(ctx context.Context, limit int) ([]*model.HighScore, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	limit = storage.ClampLimit(limit)
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, session_id, score, moves, words_found, longest_word, best_combo, reason, language, created_at
		FROM high_scores `+rankOrder+`
		LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*model.HighScore, 0, limit)
	for rows.Next() {
		var (
			hs                        model.HighScore
			session, reason, language string
		)
		if err := rows.Scan(&hs.ID, &session, &hs.Score, &hs.Moves, &hs.WordsFound, &hs.LongestWord,
			&hs.BestCombo, &reason, &language, &hs.CreatedAt); err != nil {
			return nil, err
		}
		hs.SessionID = model.SessionID(session)
		hs.Reason = model.GameOverReason(reason)
		hs.Language = model.Language(language)
		out = append(out, &hs)
	}
	return out, rows.Err()
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context, language model.Language) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT word FROM dictionary_words WHERE language = ? ORDER BY position ASC`),
		string(language),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, model.ErrDictionaryNotLoaded
	}
	return words, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, language model.Language, words []string) error {
	// Bulk insert gets a longer deadline
	ctx, cancel := context.WithTimeout(ctx, 6*s.timeout)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM dictionary_words WHERE language = ?`), string(language)); err != nil {
			return fmt.Errorf("clear dictionary: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO dictionary_words (language, position, word) VALUES (?, ?, ?)`))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, w := range words {
			if _, err := stmt.ExecContext(ctx, string(language), i, w); err != nil {
				return fmt.Errorf("insert %q: %w", w, err)
			}
		}
		return nil
	})
}
