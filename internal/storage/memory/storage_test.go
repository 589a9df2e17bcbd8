package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mcoot/lettercrush/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
	now     time.Time
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *StorageSuite) score(points int, offset time.Duration) *model.HighScore {
	return &model.HighScore{
		SessionID: model.SessionID(fmt.Sprintf("session-%d", points)),
		Score:     points,
		Moves:     3,
		Reason:    model.GameOverTimeout,
		Language:  model.LanguageEnglish,
		CreatedAt: s.now.Add(offset),
	}
}

// High score tests

func (s *StorageSuite) TestSaveAndListHighScores() {
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, s.score(150, 0)))
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, s.score(900, time.Minute)))
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, s.score(400, 2*time.Minute)))

	scores, err := s.storage.TopHighScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(scores, 3)
	s.Equal(900, scores[0].Score)
	s.Equal(400, scores[1].Score)
	s.Equal(150, scores[2].Score)
}

func (s *StorageSuite) TestSaveAssignsID() {
	hs := s.score(100, 0)
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, hs))
	s.Equal(int64(1), hs.ID)

	other := s.score(200, 0)
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, other))
	s.Equal(int64(2), other.ID)
}

func (s *StorageSuite) TestTiesKeepEarlierFirst() {
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, s.score(300, time.Minute)))
	early := s.score(300, 0)
	early.SessionID = "early"
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, early))

	scores, err := s.storage.TopHighScores(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(model.SessionID("early"), scores[0].SessionID)
}

func (s *StorageSuite) TestHighScoreTableIsBounded() {
	for i := 1; i <= model.MaxHighScores+20; i++ {
		s.Require().NoError(s.storage.SaveHighScore(s.ctx, s.score(i, 0)))
	}

	scores, err := s.storage.TopHighScores(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(scores, model.MaxHighScores)
	s.Equal(model.MaxHighScores+20, scores[0].Score)
	s.Equal(21, scores[len(scores)-1].Score)
}

func (s *StorageSuite) TestTopHighScoresLimit() {
	for i := 1; i <= 5; i++ {
		_ = s.storage.SaveHighScore(s.ctx, s.score(i*10, 0))
	}

	scores, err := s.storage.TopHighScores(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(scores, 2)
	s.Equal(50, scores[0].Score)
}

func (s *StorageSuite) TestTopHighScoresEmpty() {
	scores, err := s.storage.TopHighScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(scores)
}

func (s *StorageSuite) TestReturnedScoresAreCopies() {
	_ = s.storage.SaveHighScore(s.ctx, s.score(100, 0))

	scores, _ := s.storage.TopHighScores(s.ctx, 1)
	scores[0].Score = 1

	again, _ := s.storage.TopHighScores(s.ctx, 1)
	s.Equal(100, again[0].Score)
}

// Dictionary tests

func (s *StorageSuite) TestSaveAndGetDictionaryWords() {
	words := []string{"CAT", "DOG", "BIRD"}

	err := s.storage.SaveDictionaryWords(s.ctx, model.LanguageEnglish, words)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetDictionaryWords(s.ctx, model.LanguageEnglish)
	s.Require().NoError(err)
	s.Equal(words, retrieved)
}

func (s *StorageSuite) TestDictionaryIsPerLanguage() {
	_ = s.storage.SaveDictionaryWords(s.ctx, model.LanguageEnglish, []string{"CAT"})

	_, err := s.storage.GetDictionaryWords(s.ctx, model.LanguagePolish)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *StorageSuite) TestGetDictionaryWordsNotLoaded() {
	_, err := s.storage.GetDictionaryWords(s.ctx, model.LanguageEnglish)
	s.ErrorIs(err, model.ErrDictionaryNotLoaded)
}

func (s *StorageSuite) TestSaveDictionaryWordsReplacesExisting() {
	_ = s.storage.SaveDictionaryWords(s.ctx, model.LanguageEnglish, []string{"CAT", "DOG"})
	_ = s.storage.SaveDictionaryWords(s.ctx, model.LanguageEnglish, []string{"FISH"})

	retrieved, err := s.storage.GetDictionaryWords(s.ctx, model.LanguageEnglish)
	s.Require().NoError(err)
	s.Equal([]string{"FISH"}, retrieved)
}
