package game

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mcoot/lettercrush/internal/dependencies/mocks"
	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/dictionary"
	"github.com/mcoot/lettercrush/internal/services/grid"
	"github.com/mcoot/lettercrush/internal/services/scoring"
	"github.com/mcoot/lettercrush/internal/storage/memory"
	"github.com/mcoot/lettercrush/internal/testutil"
	"github.com/stretchr/testify/suite"
)

// stubEngine wraps the real engine with switches for failure paths
type stubEngine struct {
	*grid.Engine
	noMoves       bool
	gravityPanics int
}

func (e *stubEngine) HasValidMoves() bool {
	return !e.noMoves
}

func (e *stubEngine) ApplyGravity() []model.Position {
	if e.gravityPanics > 0 {
		e.gravityPanics--
		panic("gravity failed")
	}
	return e.Engine.ApplyGravity()
}

type recorder struct {
	events []model.Event
}

func (r *recorder) Publish(e model.Event) {
	r.events = append(r.events, e)
}

func (r *recorder) phases() []model.Phase {
	var out []model.Phase
	for _, e := range r.events {
		if p, ok := e.Payload.(model.PhaseChangedPayload); ok {
			out = append(out, p.To)
		}
	}
	return out
}

func (r *recorder) count(t model.EventType) int {
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type panickingChecker struct{}

func (panickingChecker) IsValidWord(string) bool {
	panic("dictionary unavailable")
}

type failingSaver struct{}

func (failingSaver) SaveHighScore(context.Context, *model.HighScore) error {
	return errors.New("disk full")
}

type ControllerSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	sched      *mocks.ManualScheduler
	dict       *dictionary.Service
	engine     *stubEngine
	storage    *memory.Storage
	events     *recorder
	logs       *bytes.Buffer
	config     Config
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.sched = mocks.NewManualScheduler(s.clock)
	s.storage = memory.New()
	s.events = &recorder{}
	s.logs = &bytes.Buffer{}
	s.config = DefaultConfig()

	s.dict = dictionary.New(s.storage, model.LanguageEnglish)
	s.Require().NoError(s.dict.LoadWords(testutil.Words()))

	s.newController(s.storage)
}

func (s *ControllerSuite) newController(saver ScoreSaver) {
	if s.controller != nil {
		s.controller.Stop()
	}
	logger := slog.New(slog.NewTextHandler(s.logs, nil))
	scorer := scoring.New(scoring.DefaultConfig(), model.LanguageEnglish)
	s.engine = &stubEngine{
		Engine: grid.New(grid.Config{Size: 6}, s.dict, scorer, testutil.Words(), random.NewSeeded(3), logger),
	}
	s.controller = NewController("S1", model.LanguageEnglish, s.config, s.engine, s.dict, scorer,
		saver, s.sched, s.clock, s.events, logger)
	s.controller.Start(s.ctx)
	s.loadRows("CAT...", "......", "......", "......", "......", "......")
	s.events.events = nil
}

// loadRows replaces the board; '.' cells become Z
func (s *ControllerSuite) loadRows(rows ...string) {
	b, err := model.BoardFromRows(rows)
	s.Require().NoError(err)
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if b.Cells[r][c] == 0 {
				b.Cells[r][c] = 'Z'
			}
		}
	}
	s.Require().NoError(s.engine.Load(b))
}

func path(cells ...int) []model.Position {
	out := make([]model.Position, 0, len(cells)/2)
	for i := 0; i+1 < len(cells); i += 2 {
		out = append(out, model.Position{Row: cells[i], Col: cells[i+1]})
	}
	return out
}

var catPath = path(0, 0, 0, 1, 0, 2)

func (s *ControllerSuite) runCascade() {
	s.sched.Advance(s.config.MatchDelay + s.config.ClearDelay + s.config.CascadeDelay)
}

func (s *ControllerSuite) assertSettledGrid() {
	g := s.controller.Snapshot().Grid
	for r := range g.Tiles {
		for _, t := range g.Tiles[r] {
			s.NotZero(t.Letter)
			s.False(t.Matched)
		}
	}
}

func (s *ControllerSuite) TestStartsIdle() {
	snap := s.controller.Snapshot()
	s.Equal(model.PhaseIdle, snap.Phase)
	s.Equal(120, snap.Remaining)
	s.Equal(model.TurnState{}, snap.State)
	s.Equal(model.SessionID("S1"), snap.SessionID)
}

func (s *ControllerSuite) TestShortWordIsRejectedWithoutSideEffects() {
	_, err := s.controller.Submit(Submission{Path: path(0, 0, 0, 1)})

	s.ErrorIs(err, model.ErrWordTooShort)
	s.Contains(err.Error(), "at least 3 letters")
	snap := s.controller.Snapshot()
	s.Equal(model.PhaseIdle, snap.Phase)
	s.Equal(0, snap.State.Score)
	s.Equal(0, snap.State.Moves)
	s.Equal(0, snap.Strikes)
	s.Empty(s.events.phases())
}

func (s *ControllerSuite) TestAcceptedWordRunsCascade() {
	result, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)
	s.Require().Len(result.Matches, 1)
	s.Equal("CAT", result.Matches[0].Word)
	s.Equal(150, result.Delta.Score)

	s.Equal(model.PhaseMatching, s.controller.Phase())
	s.Equal(1, s.events.count(model.EventMatchFound))

	s.sched.Advance(s.config.MatchDelay)
	s.Equal(model.PhaseCascading, s.controller.Phase())
	s.True(s.controller.Snapshot().Grid.Tiles[0][0].Matched)

	s.sched.Advance(s.config.ClearDelay)
	s.Equal(model.PhaseRefilling, s.controller.Phase())

	s.sched.Advance(s.config.CascadeDelay)
	s.Equal(model.PhaseIdle, s.controller.Phase())

	s.Equal([]model.Phase{
		model.PhaseValidating,
		model.PhaseMatching,
		model.PhaseCascading,
		model.PhaseRefilling,
		model.PhaseIdle,
	}, s.events.phases())

	state := s.controller.Snapshot().State
	s.Equal(model.TurnState{
		Score:       150,
		Moves:       1,
		Combo:       1,
		WordsFound:  1,
		LongestWord: "CAT",
		BestCombo:   1,
	}, state)
	s.Equal(1, s.events.count(model.EventScoreUpdated))
	s.assertSettledGrid()
}

func (s *ControllerSuite) TestSubmissionWhileBusyIsRejected() {
	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)

	_, err = s.controller.Submit(Submission{Path: catPath})
	s.ErrorIs(err, model.ErrPhaseBusy)
	s.ErrorIs(s.controller.Pause(), model.ErrCannotPause)
	s.ErrorIs(s.controller.ToggleSelection(model.Position{}), model.ErrPhaseBusy)
}

func (s *ControllerSuite) TestInvalidWordAddsStrike() {
	_, err := s.controller.Submit(Submission{Path: path(1, 0, 1, 1, 1, 2)})

	s.ErrorIs(err, model.ErrInvalidWord)
	var subErr *model.SubmissionError
	s.Require().ErrorAs(err, &subErr)
	s.Equal(`"ZZZ" is not a valid word. Strike 1/3`, subErr.Error())

	snap := s.controller.Snapshot()
	s.Equal(model.PhaseIdle, snap.Phase)
	s.Equal(1, snap.Strikes)
	s.Equal(0, snap.State.Moves)
	s.Equal(1, s.events.count(model.EventWordRejected))
}

func (s *ControllerSuite) TestStrikesEndGame() {
	zzz := path(1, 0, 1, 1, 1, 2)
	for i := 0; i < 3; i++ {
		_, err := s.controller.Submit(Submission{Path: zzz})
		s.ErrorIs(err, model.ErrInvalidWord)
	}

	snap := s.controller.Snapshot()
	s.Equal(model.PhaseGameOver, snap.Phase)
	s.Equal(model.GameOverStrikes, snap.Reason)

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.ErrorIs(err, model.ErrGameOver)

	// Nothing scored, nothing saved
	s.sched.RunPending()
	scores, err := s.storage.TopHighScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(scores)
}

func (s *ControllerSuite) TestStrikesGameOverSavesPositiveScore() {
	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)
	s.runCascade()

	s.loadRows("CAT...", "......", "......", "......", "......", "......")
	zzz := path(1, 0, 1, 1, 1, 2)
	for i := 0; i < 3; i++ {
		_, _ = s.controller.Submit(Submission{Path: zzz})
	}
	s.sched.RunPending()

	scores, err := s.storage.TopHighScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal(150, scores[0].Score)
	s.Equal(1, scores[0].Moves)
	s.Equal(model.GameOverStrikes, scores[0].Reason)
	s.Equal(model.SessionID("S1"), scores[0].SessionID)
}

func (s *ControllerSuite) TestStrikesDisabled() {
	s.config.MaxStrikes = 0
	s.newController(s.storage)

	for i := 0; i < 5; i++ {
		_, err := s.controller.Submit(Submission{Path: path(1, 0, 1, 1, 1, 2)})
		s.ErrorIs(err, model.ErrInvalidWord)
		s.Equal(`"ZZZ" is not a valid word`, err.Error())
	}
	s.Equal(model.PhaseIdle, s.controller.Phase())
}

func (s *ControllerSuite) TestNoMovesEndsGameAndSavesScore() {
	s.engine.noMoves = true

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)
	s.runCascade()

	snap := s.controller.Snapshot()
	s.Equal(model.PhaseGameOver, snap.Phase)
	s.Equal(model.GameOverNoMoves, snap.Reason)
	s.Equal(150, snap.State.Score)
	s.Equal(1, s.events.count(model.EventGameOver))

	scores, err := s.storage.TopHighScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal(model.GameOverNoMoves, scores[0].Reason)
	s.Equal("CAT", scores[0].LongestWord)
}

func (s *ControllerSuite) TestPersistenceFailureIsLogged() {
	s.newController(failingSaver{})
	s.engine.noMoves = true

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)
	s.runCascade()

	s.Equal(model.PhaseGameOver, s.controller.Phase())
	s.Equal(150, s.controller.Snapshot().State.Score)
	s.Contains(s.logs.String(), "failed to save high score")
}

func (s *ControllerSuite) TestWatchdogRecoversFromPanickingStep() {
	s.engine.gravityPanics = 1

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)

	s.sched.Advance(s.config.MatchDelay + s.config.ClearDelay)
	s.Equal(model.PhaseCascading, s.controller.Phase())
	s.Contains(s.logs.String(), "turn step panicked")

	s.sched.Advance(s.config.WatchdogTimeout)
	s.Equal(model.PhaseIdle, s.controller.Phase())
	s.Contains(s.logs.String(), "forcing phase recovery")
	s.assertSettledGrid()

	// The abandoned word is not scored, and play continues
	s.Equal(0, s.controller.Snapshot().State.Score)
	s.loadRows("CAT...", "......", "......", "......", "......", "......")
	_, err = s.controller.Submit(Submission{Path: catPath})
	s.NoError(err)
}

func (s *ControllerSuite) TestPanicDuringValidationReturnsToIdle() {
	s.controller.dict = panickingChecker{}

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.ErrorIs(err, model.ErrSubmissionFailed)
	s.Equal(model.PhaseIdle, s.controller.Phase())
	s.Contains(s.logs.String(), "turn step panicked")
	s.assertSettledGrid()

	s.sched.Advance(30 * time.Second)
	snap := s.controller.Snapshot()
	s.Equal(model.PhaseIdle, snap.Phase)
	s.Equal(0, snap.State.Score)
	s.Equal(0, snap.Strikes)

	// The session is still playable
	s.Require().NoError(s.controller.Pause())
	s.Require().NoError(s.controller.Resume())
	s.controller.dict = s.dict
	_, err = s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)
	s.runCascade()
	s.Equal(150, s.controller.Snapshot().State.Score)
}

func (s *ControllerSuite) TestWatchdogIdleAfterNormalCascade() {
	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)
	s.runCascade()

	s.sched.Advance(s.config.WatchdogTimeout)
	s.NotContains(s.logs.String(), "forcing phase recovery")
	s.Equal(model.PhaseIdle, s.controller.Phase())
}

func (s *ControllerSuite) TestForceRecover() {
	s.controller.ForceRecover()
	s.NotContains(s.logs.String(), "forcing phase recovery")

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)
	s.controller.ForceRecover()
	s.Equal(model.PhaseIdle, s.controller.Phase())

	// The abandoned cascade never resumes
	s.runCascade()
	s.Equal(0, s.controller.Snapshot().State.Moves)
	s.assertSettledGrid()
}

func (s *ControllerSuite) TestPauseAndResume() {
	s.Require().NoError(s.controller.Pause())
	s.Equal(model.PhasePaused, s.controller.Phase())
	s.ErrorIs(s.controller.Pause(), model.ErrGamePaused)

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.ErrorIs(err, model.ErrGamePaused)

	s.sched.Advance(5 * time.Second)
	s.Equal(120, s.controller.Snapshot().Remaining)

	s.Require().NoError(s.controller.Resume())
	s.Equal(model.PhaseIdle, s.controller.Phase())
	s.sched.Advance(time.Second)
	s.Equal(119, s.controller.Snapshot().Remaining)

	s.ErrorIs(s.controller.Resume(), model.ErrNotPaused)
}

func (s *ControllerSuite) TestResumeRestoresSelecting() {
	s.Require().NoError(s.controller.ToggleSelection(model.Position{Row: 0, Col: 0}))
	s.Require().NoError(s.controller.Pause())
	s.Require().NoError(s.controller.Resume())

	s.Equal(model.PhaseSelecting, s.controller.Phase())
	s.Equal("C", s.controller.Snapshot().Word)
}

func (s *ControllerSuite) TestTimerRunsOut() {
	s.config.TimeLimit = 3 * time.Second
	s.newController(s.storage)

	s.sched.Advance(2 * time.Second)
	s.Equal(1, s.controller.Snapshot().Remaining)
	s.Equal(model.PhaseIdle, s.controller.Phase())

	s.sched.Advance(time.Second)
	snap := s.controller.Snapshot()
	s.Equal(model.PhaseGameOver, snap.Phase)
	s.Equal(model.GameOverTimeout, snap.Reason)
	s.Equal(0, snap.Remaining)
	s.Equal(3, s.events.count(model.EventTimerTick))
	s.Equal(0, s.sched.Pending())
}

func (s *ControllerSuite) TestTimeoutMidCascadeScoresWordFirst() {
	s.config.TimeLimit = time.Second
	s.config.ClearDelay = 2 * time.Second
	s.newController(s.storage)

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)

	// The countdown expires while the cleared tiles are on show
	s.sched.Advance(time.Second)
	s.Equal(model.PhaseCascading, s.controller.Phase())
	s.Equal(0, s.controller.Snapshot().Remaining)

	s.sched.Advance(5 * time.Second)
	snap := s.controller.Snapshot()
	s.Equal(model.PhaseGameOver, snap.Phase)
	s.Equal(model.GameOverTimeout, snap.Reason)
	s.Equal(150, snap.State.Score)
	s.Equal(1, snap.State.Moves)
	s.assertSettledGrid()
	s.Equal([]model.Phase{
		model.PhaseValidating,
		model.PhaseMatching,
		model.PhaseCascading,
		model.PhaseRefilling,
		model.PhaseGameOver,
	}, s.events.phases())

	scores, err := s.storage.TopHighScores(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(scores, 1)
	s.Equal(150, scores[0].Score)
	s.Equal(model.GameOverTimeout, scores[0].Reason)
}

func (s *ControllerSuite) TestTimeoutDuringStuckCascadeEndsAfterRecovery() {
	s.config.TimeLimit = time.Second
	s.newController(s.storage)
	s.engine.gravityPanics = 1

	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)

	s.sched.Advance(2 * time.Second)
	s.Equal(model.PhaseCascading, s.controller.Phase())

	s.sched.Advance(s.config.WatchdogTimeout)
	snap := s.controller.Snapshot()
	s.Equal(model.PhaseGameOver, snap.Phase)
	s.Equal(model.GameOverTimeout, snap.Reason)
	s.assertSettledGrid()
}

func (s *ControllerSuite) TestTimerDisabled() {
	s.config.TimeLimit = 0
	s.newController(s.storage)

	s.sched.Advance(time.Hour)
	s.Equal(model.PhaseIdle, s.controller.Phase())
	s.Equal(0, s.sched.Pending())
}

func (s *ControllerSuite) TestToggleSelection() {
	s.Require().NoError(s.controller.ToggleSelection(model.Position{Row: 0, Col: 0}))
	s.Require().NoError(s.controller.ToggleSelection(model.Position{Row: 0, Col: 1}))
	s.Equal(model.PhaseSelecting, s.controller.Phase())
	s.Equal("CA", s.controller.Snapshot().Word)

	s.ErrorIs(s.controller.ToggleSelection(model.Position{Row: 3, Col: 3}), model.ErrNotAdjacent)
	s.ErrorIs(s.controller.ToggleSelection(model.Position{Row: 6, Col: 0}), model.ErrInvalidPosition)

	// Deselecting the first tile drops everything after it
	s.Require().NoError(s.controller.ToggleSelection(model.Position{Row: 0, Col: 0}))
	s.Empty(s.controller.Snapshot().Selection)
	s.Equal(model.PhaseIdle, s.controller.Phase())
	s.Equal(3, s.events.count(model.EventSelectionChanged))
}

func (s *ControllerSuite) TestSubmitUsesCurrentSelection() {
	for _, p := range catPath {
		s.Require().NoError(s.controller.ToggleSelection(p))
	}
	s.True(s.controller.Snapshot().Grid.Tiles[0][2].Selected)

	result, err := s.controller.Submit(Submission{})
	s.Require().NoError(err)
	s.Equal("CAT", result.Matches[0].Word)
	s.Empty(s.controller.Snapshot().Selection)
}

func (s *ControllerSuite) TestSubmitEmptySelection() {
	_, err := s.controller.Submit(Submission{Word: "CAT"})
	s.ErrorIs(err, model.ErrEmptySelection)
}

func (s *ControllerSuite) TestSubmitWordMustMatchPath() {
	_, err := s.controller.Submit(Submission{Word: "dog", Path: catPath})
	s.ErrorIs(err, model.ErrSelectionMismatch)

	_, err = s.controller.Submit(Submission{Word: "cat", Path: catPath})
	s.NoError(err)
}

func (s *ControllerSuite) TestSubmitRejectsBrokenPath() {
	_, err := s.controller.Submit(Submission{Path: path(0, 0, 0, 2, 0, 1)})
	s.ErrorIs(err, model.ErrNotAdjacent)
	s.Equal(model.PhaseIdle, s.controller.Phase())
}

func (s *ControllerSuite) TestSwapClearsEveryMatch() {
	s.loadRows("CTA...", "......", "......", "......", "......", "......")

	result, err := s.controller.Swap(model.Position{Row: 0, Col: 1}, model.Position{Row: 0, Col: 2})
	s.Require().NoError(err)
	s.Require().Len(result.Matches, 1)
	s.Equal(150, result.Delta.Score)

	s.runCascade()
	state := s.controller.Snapshot().State
	s.Equal(150, state.Score)
	s.Equal(1, state.Moves)
	s.Equal(model.PhaseIdle, s.controller.Phase())
}

func (s *ControllerSuite) TestSwapRejections() {
	s.loadRows("CTA...", "......", "......", "......", "......", "......")
	before := s.controller.Snapshot().Grid

	_, err := s.controller.Swap(model.Position{Row: 0, Col: 0}, model.Position{Row: 0, Col: 2})
	s.ErrorIs(err, model.ErrNotAdjacent)
	_, err = s.controller.Swap(model.Position{Row: 2, Col: 2}, model.Position{Row: 2, Col: 3})
	s.ErrorIs(err, model.ErrNoMatch)
	_, err = s.controller.Swap(model.Position{Row: 5, Col: 5}, model.Position{Row: 5, Col: 6})
	s.ErrorIs(err, model.ErrInvalidPosition)
	_, err = s.controller.Swap(model.Position{Row: -1, Col: 0}, model.Position{Row: 0, Col: 0})
	s.ErrorIs(err, model.ErrInvalidPosition)

	s.True(before.Equal(s.controller.Snapshot().Grid))
	s.Equal(model.PhaseIdle, s.controller.Phase())
}

func (s *ControllerSuite) TestRestartResetsSession() {
	_, _ = s.controller.Submit(Submission{Path: path(1, 0, 1, 1, 1, 2)})
	s.Equal(1, s.controller.Snapshot().Strikes)

	s.controller.Start(s.ctx)
	snap := s.controller.Snapshot()
	s.Equal(0, snap.Strikes)
	s.Equal(model.PhaseIdle, snap.Phase)
	s.Equal(120, snap.Remaining)
}

func (s *ControllerSuite) TestEventsCarrySessionAndTime() {
	_, err := s.controller.Submit(Submission{Path: catPath})
	s.Require().NoError(err)

	s.Require().NotEmpty(s.events.events)
	for _, e := range s.events.events {
		s.Equal(model.SessionID("S1"), e.SessionID)
		s.Equal(s.clock.Now(), e.Timestamp)
	}
}
