package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/lettercrush/internal/dependencies/clock"
	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/dependencies/scheduler"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/dictionary"
	"github.com/mcoot/lettercrush/internal/services/game"
	"github.com/mcoot/lettercrush/internal/services/grid"
	"github.com/mcoot/lettercrush/internal/services/scoring"
)

const (
	// IDLength is the length of generated session ids
	IDLength = 10
	// IDAlphabet is the characters used in session ids
	IDAlphabet = "abcdefghijkmnpqrstuvwxyz23456789"

	maxIDAttempts = 16
)

// Config holds the rules every new session starts with
type Config struct {
	GridSize        int
	DefaultLanguage model.Language
	Game            game.Config
	Scoring         scoring.Config
}

// DefaultConfig returns the standard session rules
func DefaultConfig() Config {
	return Config{
		GridSize:        grid.DefaultSize,
		DefaultLanguage: model.LanguageEnglish,
		Game:            game.DefaultConfig(),
		Scoring:         scoring.DefaultConfig(),
	}
}

// Options customise a single session
type Options struct {
	Language model.Language
	MinWords int
}

// Dependencies are shared by every session a Manager creates
type Dependencies struct {
	// Dictionaries are read-only after loading and shared across sessions
	Dictionaries map[model.Language]*dictionary.Service
	Scores       game.ScoreSaver
	Publisher    game.Publisher
	Clock        clock.Clock
	// IDs generates session ids
	IDs random.Random
	// BoardRandom returns the letter source for a new session's engine
	BoardRandom func() random.Random
	// NewScheduler returns the task loop a new session runs on
	NewScheduler func() scheduler.Runner
	Logger       *slog.Logger
}

// session is one running game with everything it owns
type session struct {
	id         model.SessionID
	language   model.Language
	createdAt  time.Time
	lastActive atomic.Int64 // unix nanos
	sched      scheduler.Runner
	controller *game.Controller
}

func (s *session) touch(now time.Time) {
	s.lastActive.Store(now.UnixNano())
}

// Info summarises a live session
type Info struct {
	ID         model.SessionID
	Language   model.Language
	CreatedAt  time.Time
	LastActive time.Time
}

// Manager owns every live session. Calls into a session are serialised on
// that session's scheduler, so different sessions run independently.
type Manager struct {
	config Config
	deps   Dependencies
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[model.SessionID]*session
}

// NewManager creates a Manager
func NewManager(config Config, deps Dependencies) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.IDs == nil {
		deps.IDs = random.New()
	}
	if deps.BoardRandom == nil {
		deps.BoardRandom = func() random.Random { return random.New() }
	}
	if deps.NewScheduler == nil {
		logger := deps.Logger
		deps.NewScheduler = func() scheduler.Runner { return scheduler.New(logger) }
	}
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = model.LanguageEnglish
	}
	return &Manager{
		config:   config,
		deps:     deps,
		logger:   deps.Logger.With(slog.String("component", "sessions")),
		sessions: make(map[model.SessionID]*session),
	}
}

// Create starts a new session with a freshly generated board
func (m *Manager) Create(ctx context.Context, opts Options) (*game.Snapshot, error) {
	language := opts.Language
	if language == "" {
		language = m.config.DefaultLanguage
	}
	if _, err := model.ParseLanguage(string(language)); err != nil {
		return nil, err
	}
	dict, ok := m.deps.Dictionaries[language]
	if !ok || !dict.IsLoaded() {
		return nil, fmt.Errorf("%w: %s", model.ErrDictionaryNotLoaded, language)
	}

	gameCfg := m.config.Game
	if opts.MinWords > 0 {
		gameCfg.MinWords = opts.MinWords
	}

	id, err := m.newID()
	if err != nil {
		return nil, err
	}

	scorer := scoring.New(m.config.Scoring, language)
	engine := grid.New(
		grid.Config{Size: m.config.GridSize, Language: language},
		dict, scorer, dict.Words(), m.deps.BoardRandom(), m.deps.Logger,
	)
	sched := m.deps.NewScheduler()
	s := &session{
		id:        id,
		language:  language,
		createdAt: m.deps.Clock.Now(),
		sched:     sched,
		controller: game.NewController(id, language, gameCfg, engine, dict, scorer,
			m.deps.Scores, sched, m.deps.Clock, m.deps.Publisher, m.deps.Logger),
	}
	s.touch(s.createdAt)

	var snap game.Snapshot
	if err := sched.Do(func() {
		s.controller.Start(ctx)
		snap = s.controller.Snapshot()
	}); err != nil {
		sched.Stop()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.String("language", string(language)),
		slog.Int("active_sessions", count),
	)
	return &snap, nil
}

// newID picks an id no live session uses
func (m *Manager) newID() (model.SessionID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := 0; i < maxIDAttempts; i++ {
		id := model.SessionID(m.deps.IDs.String(IDLength, IDAlphabet))
		if id == "" {
			continue
		}
		if _, exists := m.sessions[id]; !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a session id after %d attempts", maxIDAttempts)
}

func (m *Manager) get(id model.SessionID) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

// run executes fn on the session's scheduler
func (m *Manager) run(id model.SessionID, fn func(c *game.Controller) error) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}
	var opErr error
	if err := s.sched.Do(func() { opErr = fn(s.controller) }); err != nil {
		if errors.Is(err, scheduler.ErrStopped) {
			// Removed while the call was queued
			return model.ErrSessionNotFound
		}
		return fmt.Errorf("session %s: %w", id, err)
	}
	s.touch(m.deps.Clock.Now())
	return opErr
}

// snapshotAfter runs fn and then returns the resulting state
func (m *Manager) snapshotAfter(id model.SessionID, fn func(c *game.Controller) error) (*game.Snapshot, error) {
	var snap game.Snapshot
	err := m.run(id, func(c *game.Controller) error {
		if err := fn(c); err != nil {
			return err
		}
		snap = c.Snapshot()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Snapshot returns a session's current state
func (m *Manager) Snapshot(id model.SessionID) (*game.Snapshot, error) {
	return m.snapshotAfter(id, func(*game.Controller) error { return nil })
}

// ToggleSelection selects or deselects a tile
func (m *Manager) ToggleSelection(id model.SessionID, pos model.Position) (*game.Snapshot, error) {
	return m.snapshotAfter(id, func(c *game.Controller) error { return c.ToggleSelection(pos) })
}

// ClearSelection drops the current selection
func (m *Manager) ClearSelection(id model.SessionID) (*game.Snapshot, error) {
	return m.snapshotAfter(id, func(c *game.Controller) error { return c.ClearSelection() })
}

// Submit plays a word
func (m *Manager) Submit(id model.SessionID, sub game.Submission) (*game.SubmitResult, error) {
	var result *game.SubmitResult
	err := m.run(id, func(c *game.Controller) error {
		var err error
		result, err = c.Submit(sub)
		return err
	})
	return result, err
}

// Swap exchanges two adjacent tiles
func (m *Manager) Swap(id model.SessionID, a, b model.Position) (*game.SubmitResult, error) {
	var result *game.SubmitResult
	err := m.run(id, func(c *game.Controller) error {
		var err error
		result, err = c.Swap(a, b)
		return err
	})
	return result, err
}

// Pause stops the session's countdown
func (m *Manager) Pause(id model.SessionID) (*game.Snapshot, error) {
	return m.snapshotAfter(id, func(c *game.Controller) error { return c.Pause() })
}

// Resume restarts the session's countdown
func (m *Manager) Resume(id model.SessionID) (*game.Snapshot, error) {
	return m.snapshotAfter(id, func(c *game.Controller) error { return c.Resume() })
}

// Recover forces a stuck session back to idle
func (m *Manager) Recover(id model.SessionID) (*game.Snapshot, error) {
	return m.snapshotAfter(id, func(c *game.Controller) error {
		c.ForceRecover()
		return nil
	})
}

// Restart deals a new board and resets the turn state
func (m *Manager) Restart(ctx context.Context, id model.SessionID) (*game.Snapshot, error) {
	return m.snapshotAfter(id, func(c *game.Controller) error {
		c.Start(ctx)
		return nil
	})
}

// Hint returns the longest word currently on the board
func (m *Manager) Hint(id model.SessionID) (model.WordMatch, bool, error) {
	var (
		match model.WordMatch
		found bool
	)
	err := m.run(id, func(c *game.Controller) error {
		match, found = c.Hint()
		return nil
	})
	return match, found, err
}

// Remove ends a session and releases its scheduler
func (m *Manager) Remove(id model.SessionID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return model.ErrSessionNotFound
	}

	m.stop(s, "removed")
	return nil
}

func (m *Manager) stop(s *session, reason string) {
	_ = s.sched.Do(func() {
		s.controller.Stop()
	})
	s.sched.Stop()

	if m.deps.Publisher != nil {
		m.deps.Publisher.Publish(model.Event{
			Type:      model.EventSessionEnded,
			Timestamp: m.deps.Clock.Now(),
			SessionID: s.id,
		})
	}
	m.logger.Info("session ended",
		slog.String("session_id", string(s.id)),
		slog.String("reason", reason),
	)
}

// RemoveIdle ends every session untouched for longer than maxIdle
func (m *Manager) RemoveIdle(maxIdle time.Duration) int {
	cutoff := m.deps.Clock.Now().Add(-maxIdle).UnixNano()

	m.mu.Lock()
	var stale []*session
	for id, s := range m.sessions {
		if s.lastActive.Load() < cutoff {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		m.stop(s, "idle")
	}
	if len(stale) > 0 {
		m.logger.Info("idle sessions removed", slog.Int("removed", len(stale)))
	}
	return len(stale)
}

// List returns every live session, oldest first
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, Info{
			ID:         s.id,
			Language:   s.language,
			CreatedAt:  s.createdAt,
			LastActive: time.Unix(0, s.lastActive.Load()).UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Exists reports whether a session is live
func (m *Manager) Exists(id model.SessionID) bool {
	_, err := m.get(id)
	return err == nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close ends every session
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		m.stop(s, "shutdown")
	}
}

// ManagerInterface defines the contract for session management
type ManagerInterface interface {
	Create(ctx context.Context, opts Options) (*game.Snapshot, error)
	Snapshot(id model.SessionID) (*game.Snapshot, error)
	ToggleSelection(id model.SessionID, pos model.Position) (*game.Snapshot, error)
	ClearSelection(id model.SessionID) (*game.Snapshot, error)
	Submit(id model.SessionID, sub game.Submission) (*game.SubmitResult, error)
	Swap(id model.SessionID, a, b model.Position) (*game.SubmitResult, error)
	Pause(id model.SessionID) (*game.Snapshot, error)
	Resume(id model.SessionID) (*game.Snapshot, error)
	Recover(id model.SessionID) (*game.Snapshot, error)
	Restart(ctx context.Context, id model.SessionID) (*game.Snapshot, error)
	Hint(id model.SessionID) (model.WordMatch, bool, error)
	Remove(id model.SessionID) error
	RemoveIdle(maxIdle time.Duration) int
	List() []Info
	Exists(id model.SessionID) bool
	Count() int
}

// Ensure Manager implements ManagerInterface
var _ ManagerInterface = (*Manager)(nil)
