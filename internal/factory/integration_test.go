package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/game"
	"github.com/mcoot/lettercrush/internal/services/session"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close())
}

// Test: a full session from the first word to a saved high score
func (s *IntegrationSuite) TestCompleteSessionFlow() {
	s.app.MockRandom.QueueString("game01")

	snap, err := s.app.Sessions.Create(s.ctx, session.Options{})
	s.Require().NoError(err)
	s.Equal(model.SessionID("game01"), snap.SessionID)
	s.Equal(model.PhaseIdle, snap.Phase)
	sched := s.app.LastScheduler()
	s.Require().NotNil(sched)

	// Play the longest word on the board
	hint, found, err := s.app.Sessions.Hint(snap.SessionID)
	s.Require().NoError(err)
	s.Require().True(found)

	result, err := s.app.Sessions.Submit(snap.SessionID, game.Submission{Word: hint.Word, Path: hint.Positions})
	s.Require().NoError(err)
	s.Equal([]string{hint.Word}, result.Delta.Words)

	// Let the cascade finish
	sched.Advance(2 * time.Second)
	snap, err = s.app.Sessions.Snapshot(snap.SessionID)
	s.Require().NoError(err)
	s.Equal(1, snap.State.Moves)
	s.Positive(snap.State.Score)
	score := snap.State.Score

	// Run out the clock
	sched.Advance(5 * time.Minute)
	snap, err = s.app.Sessions.Snapshot(snap.SessionID)
	s.Require().NoError(err)
	s.Equal(model.PhaseGameOver, snap.Phase)

	scores, err := s.app.Storage.TopHighScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal(score, scores[0].Score)
	s.Equal(snap.Reason, scores[0].Reason)
	s.Equal(model.LanguageEnglish, scores[0].Language)
	s.Equal(hint.Word, scores[0].LongestWord)
}

// Test: word lists are cached in storage and readable back
func (s *IntegrationSuite) TestLoadDictionariesCachesWords() {
	dicts, err := LoadDictionaries(s.ctx, s.app.Memory, "", s.app.logger)
	s.Require().NoError(err)
	s.Len(dicts, len(model.Languages()))

	for _, lang := range model.Languages() {
		s.True(dicts[lang].IsLoaded())
		cached, err := s.app.Memory.GetDictionaryWords(s.ctx, lang)
		s.Require().NoError(err)
		s.Equal(dicts[lang].WordCount(), len(cached))
	}
	s.True(dicts[model.LanguageEnglish].IsValidWord("cactus"))
	s.True(dicts[model.LanguagePolish].IsValidWord("ZABA"))
}

// Test: a session can be played in Polish with the embedded list
func (s *IntegrationSuite) TestPolishSession() {
	s.app.MockRandom.QueueString("polski")

	snap, err := s.app.Sessions.Create(s.ctx, session.Options{Language: model.LanguagePolish})
	s.Require().NoError(err)
	s.Equal(model.LanguagePolish, snap.Language)

	table := model.LanguagePolish.Letters()
	for _, row := range snap.Grid.Tiles {
		for _, tile := range row {
			_, ok := table.Values[tile.Letter]
			s.True(ok, "letter %q is not a Polish board letter", tile.Letter)
		}
	}
}

// Test: ending a session removes it and frees its scheduler
func (s *IntegrationSuite) TestRemoveSession() {
	s.app.MockRandom.QueueString("gone")
	snap, err := s.app.Sessions.Create(s.ctx, session.Options{})
	s.Require().NoError(err)

	s.Require().NoError(s.app.Sessions.Remove(snap.SessionID))
	s.True(s.app.LastScheduler().Stopped())

	_, err = s.app.Sessions.Snapshot(snap.SessionID)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Test: sessions left alone past the idle limit are reaped
func (s *IntegrationSuite) TestReapIdle() {
	s.app.MockRandom.QueueString("stale", "fresh")
	_, err := s.app.Sessions.Create(s.ctx, session.Options{})
	s.Require().NoError(err)
	stale := s.app.LastScheduler()

	s.app.MockClock.Advance(20 * time.Minute)
	_, err = s.app.Sessions.Create(s.ctx, session.Options{})
	s.Require().NoError(err)

	s.app.MockClock.Advance(15 * time.Minute)
	s.Equal(1, s.app.ReapIdle(30*time.Minute))
	s.True(stale.Stopped())
	s.Equal(1, s.app.Sessions.Count())

	_, err = s.app.Sessions.Snapshot("stale")
	s.ErrorIs(err, model.ErrSessionNotFound)
	_, err = s.app.Sessions.Snapshot("fresh")
	s.NoError(err)
}
