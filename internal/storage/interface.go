package storage

import (
	"context"

	"github.com/mcoot/lettercrush/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// High score operations
	SaveHighScore(ctx context.Context, score *model.HighScore) error
	TopHighScores(ctx context.Context, limit int) ([]*model.HighScore, error)

	// Dictionary operations
	GetDictionaryWords(ctx context.Context, language model.Language) ([]string, error)
	SaveDictionaryWords(ctx context.Context, language model.Language, words []string) error
}

// ClampLimit bounds a requested high score count to the retained table size
func ClampLimit(limit int) int {
	if limit <= 0 || limit > model.MaxHighScores {
		return model.MaxHighScores
	}
	return limit
}
