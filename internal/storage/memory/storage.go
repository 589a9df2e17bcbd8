package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	highScores      []*model.HighScore
	nextScoreID     int64
	dictionaryWords map[model.Language][]string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		dictionaryWords: make(map[model.Language][]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// High score operations

func (s *Storage) SaveHighScore(ctx context.Context, score *model.HighScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextScoreID++
	stored := *score
	stored.ID = s.nextScoreID
	score.ID = stored.ID

	s.highScores = append(s.highScores, &stored)
	sort.SliceStable(s.highScores, func(i, j int) bool {
		return ranksAbove(s.highScores[i], s.highScores[j])
	})
	if len(s.highScores) > model.MaxHighScores {
		s.highScores = s.highScores[:model.MaxHighScores]
	}
	return nil
}

func (s *Storage) TopHighScores(ctx context.Context, limit int) ([]*model.HighScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = storage.ClampLimit(limit)
	if limit > len(s.highScores) {
		limit = len(s.highScores)
	}
	result := make([]*model.HighScore, 0, limit)
	for _, hs := range s.highScores[:limit] {
		cp := *hs
		result = append(result, &cp)
	}
	return result, nil
}

// ranksAbove orders by score, then by who got there first
func ranksAbove(a, b *model.HighScore) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Dictionary operations

func (s *Storage) GetDictionaryWords(ctx context.Context, language model.Language) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words, ok := s.dictionaryWords[language]
	if !ok || len(words) == 0 {
		return nil, model.ErrDictionaryNotLoaded
	}
	result := make([]string, len(words))
	copy(result, words)
	return result, nil
}

func (s *Storage) SaveDictionaryWords(ctx context.Context, language model.Language, words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]string, len(words))
	copy(stored, words)
	s.dictionaryWords[language] = stored
	return nil
}
