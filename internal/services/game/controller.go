package game

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mcoot/lettercrush/internal/dependencies/clock"
	"github.com/mcoot/lettercrush/internal/dependencies/scheduler"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/grid"
)

// persistTimeout bounds a single high score save
const persistTimeout = 5 * time.Second

// WordChecker validates submitted words
type WordChecker interface {
	IsValidWord(word string) bool
}

// Scorer computes points for accepted words
type Scorer interface {
	ScoreWord(word string, combo int) model.ScoreResult
	ScoreMatches(matches []model.WordMatch, startCombo int) int
}

// ScoreSaver persists final scores
type ScoreSaver interface {
	SaveHighScore(ctx context.Context, score *model.HighScore) error
}

// Publisher receives every event the controller emits
type Publisher interface {
	Publish(event model.Event)
}

// Submission is a word played by selecting tiles. Either field may be
// empty: the word is read off the path, and an empty path means the
// current selection.
type Submission struct {
	Word string
	Path []model.Position
}

// SubmitResult describes an accepted submission. Score and statistics are
// applied once the cascade finishes.
type SubmitResult struct {
	Matches []model.WordMatch
	Delta   model.TurnDelta
}

// Snapshot is a read-only view of a session
type Snapshot struct {
	SessionID  model.SessionID
	Language   model.Language
	Phase      model.Phase
	Grid       model.Grid
	State      model.TurnState
	Strikes    int
	MaxStrikes int
	Remaining  int // seconds, 0 when the countdown is disabled or over
	Reason     model.GameOverReason
	Selection  []model.Position
	Word       string
}

// Controller runs the turn state machine for one session.
//
// All methods must be called from the session's scheduler; delayed steps
// are scheduled on the same scheduler, so nothing here runs concurrently.
type Controller struct {
	id        model.SessionID
	language  model.Language
	config    Config
	engine    grid.EngineInterface
	dict      WordChecker
	scorer    Scorer
	scores    ScoreSaver
	sched     scheduler.Scheduler
	clock     clock.Clock
	publisher Publisher
	logger    *slog.Logger

	phase      model.Phase
	pausedFrom model.Phase
	state      model.TurnState
	strikes    int
	remaining  int
	timeUp     bool // countdown expired while a turn was in flight
	reason     model.GameOverReason
	selection  []model.Position

	// turn increments whenever in-flight work must be abandoned; steps
	// scheduled under an older turn do nothing when they fire
	turn     int
	inflight *submission
	watchdog scheduler.Timer
	ticker   scheduler.Timer
}

// submission is an accepted play working through the cascade
type submission struct {
	matches   []model.WordMatch
	positions []model.Position
	delta     model.TurnDelta
}

// NewController creates a Controller. Call Start before use.
func NewController(
	id model.SessionID,
	language model.Language,
	config Config,
	engine grid.EngineInterface,
	dict WordChecker,
	scorer Scorer,
	scores ScoreSaver,
	sched scheduler.Scheduler,
	clock clock.Clock,
	publisher Publisher,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		id:        id,
		language:  language,
		config:    config,
		engine:    engine,
		dict:      dict,
		scorer:    scorer,
		scores:    scores,
		sched:     sched,
		clock:     clock,
		publisher: publisher,
		logger:    logger.With(slog.String("session_id", string(id))),
		phase:     model.PhaseIdle,
	}
}

// Start builds a fresh board and begins the countdown
func (c *Controller) Start(ctx context.Context) {
	c.abandonInflight()
	c.stopTicker()

	found := c.engine.Initialize(ctx, c.config.MinWords)
	c.state = model.TurnState{}
	c.strikes = 0
	c.reason = ""
	c.selection = nil
	c.timeUp = false
	c.remaining = int(c.config.TimeLimit / time.Second)

	c.logger.Info("board ready",
		slog.Int("straight_words", found),
		slog.String("language", string(c.language)),
	)

	c.publishGrid(nil)
	c.setPhase(model.PhaseIdle)
	c.startTicker()
}

// Stop cancels timers and any in-flight submission
func (c *Controller) Stop() {
	c.abandonInflight()
	c.stopTicker()
}

// Snapshot returns the current session state
func (c *Controller) Snapshot() Snapshot {
	selection := make([]model.Position, len(c.selection))
	copy(selection, c.selection)
	return Snapshot{
		SessionID:  c.id,
		Language:   c.language,
		Phase:      c.phase,
		Grid:       c.engine.Grid(),
		State:      c.state,
		Strikes:    c.strikes,
		MaxStrikes: c.config.MaxStrikes,
		Remaining:  c.remaining,
		Reason:     c.reason,
		Selection:  selection,
		Word:       c.engine.WordAt(c.selection),
	}
}

// Phase returns the current phase
func (c *Controller) Phase() model.Phase {
	return c.phase
}

// Hint returns the longest word currently selectable
func (c *Controller) Hint() (model.WordMatch, bool) {
	return c.engine.Hint()
}

// inputGate returns the error for phases that do not accept plays
func (c *Controller) inputGate() error {
	switch c.phase {
	case model.PhaseIdle, model.PhaseSelecting:
		return nil
	case model.PhasePaused:
		return model.ErrGamePaused
	case model.PhaseGameOver:
		return model.ErrGameOver
	default:
		return model.ErrPhaseBusy
	}
}

// ToggleSelection adds a tile to the selection, or deselects it along with
// every tile selected after it
func (c *Controller) ToggleSelection(pos model.Position) error {
	if err := c.inputGate(); err != nil {
		return err
	}
	if !c.inBounds(pos) {
		return model.ErrInvalidPosition
	}

	idx := -1
	for i, p := range c.selection {
		if p == pos {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0:
		c.selection = c.selection[:idx]
	case len(c.selection) > 0 && !c.selection[len(c.selection)-1].Adjacent(pos):
		return model.ErrNotAdjacent
	default:
		c.selection = append(c.selection, pos)
	}

	c.applySelection()
	return nil
}

// ClearSelection drops the current selection
func (c *Controller) ClearSelection() error {
	if err := c.inputGate(); err != nil {
		return err
	}
	c.selection = nil
	c.applySelection()
	return nil
}

func (c *Controller) inBounds(pos model.Position) bool {
	size := c.engine.Size()
	return pos.Row >= 0 && pos.Col >= 0 && pos.Row < size && pos.Col < size
}

func (c *Controller) applySelection() {
	c.engine.SetSelection(c.selection)
	path := make([]model.Position, len(c.selection))
	copy(path, c.selection)
	c.publish(model.EventSelectionChanged, model.SelectionChangedPayload{
		Path: path,
		Word: c.engine.WordAt(path),
	})
	if len(c.selection) > 0 {
		c.setPhase(model.PhaseSelecting)
	} else {
		c.setPhase(model.PhaseIdle)
	}
}

// Submit validates a word and, if it is accepted, starts the cascade.
// Rejections leave score and moves untouched.
func (c *Controller) Submit(sub Submission) (*SubmitResult, error) {
	if err := c.inputGate(); err != nil {
		return nil, err
	}

	path := sub.Path
	if len(path) == 0 {
		path = c.selection
	}
	word := strings.ToUpper(strings.TrimSpace(sub.Word))
	if len(path) > 0 {
		built := c.engine.WordAt(path)
		if word == "" {
			word = built
		} else if word != built {
			return nil, model.ErrSelectionMismatch
		}
	}

	if utf8.RuneCountInString(word) < c.config.MinWordLength {
		return nil, model.TooShortError(c.config.MinWordLength)
	}
	if len(path) == 0 {
		return nil, model.ErrEmptySelection
	}
	if err := c.engine.ValidatePath(path); err != nil {
		return nil, err
	}

	c.setPhase(model.PhaseValidating)
	turn := c.armWatchdog()
	var (
		result *SubmitResult
		err    error
	)
	if !c.guard(func() { result, err = c.validate(turn, word, path) }) {
		c.forceIdle("validation")
		return nil, model.ErrSubmissionFailed
	}
	return result, err
}

// validate checks the word and either rejects it or starts the cascade
func (c *Controller) validate(turn int, word string, path []model.Position) (*SubmitResult, error) {
	if !c.dict.IsValidWord(word) {
		return nil, c.rejectWord(word)
	}

	score := c.scorer.ScoreWord(word, 1)
	positions := make([]model.Position, len(path))
	copy(positions, path)
	match := model.WordMatch{
		Word:      word,
		Positions: positions,
		Direction: model.DirectionFreeform,
		Score:     score.Total,
	}
	delta := model.TurnDelta{Score: score.Total, Words: []string{word}, ComboSteps: 1}

	c.logger.Info("word accepted",
		slog.String("word", word),
		slog.Int("score", score.Total),
	)
	c.beginCascade(turn, []model.WordMatch{match}, positions, delta)
	return &SubmitResult{Matches: []model.WordMatch{match}, Delta: delta}, nil
}

func (c *Controller) rejectWord(word string) error {
	if c.config.MaxStrikes > 0 {
		c.strikes++
	}
	err := &model.SubmissionError{
		Err:     model.ErrInvalidWord,
		Word:    word,
		Strikes: c.strikes,
		Max:     c.config.MaxStrikes,
	}

	c.logger.Info("word rejected",
		slog.String("word", word),
		slog.Int("strikes", c.strikes),
	)
	c.publish(model.EventWordRejected, model.WordRejectedPayload{
		Word:    word,
		Message: err.Error(),
		Strikes: c.strikes,
	})

	c.selection = nil
	c.engine.ClearSelection()
	c.stopWatchdog()

	if c.config.MaxStrikes > 0 && c.strikes >= c.config.MaxStrikes {
		c.gameOver(model.GameOverStrikes)
	} else {
		c.setPhase(model.PhaseIdle)
	}
	return err
}

// Swap exchanges two adjacent tiles. If that forms straight-line words
// they are all cleared together, each scored one combo level higher.
func (c *Controller) Swap(a, b model.Position) (*SubmitResult, error) {
	if err := c.inputGate(); err != nil {
		return nil, err
	}
	if !c.inBounds(a) || !c.inBounds(b) {
		return nil, model.ErrInvalidPosition
	}
	if !a.Adjacent(b) {
		return nil, model.ErrNotAdjacent
	}

	var (
		result *SubmitResult
		err    error
	)
	if !c.guard(func() { result, err = c.swap(a, b) }) {
		c.forceIdle("swap")
		return nil, model.ErrSubmissionFailed
	}
	return result, err
}

func (c *Controller) swap(a, b model.Position) (*SubmitResult, error) {
	matches, ok := c.engine.TrySwap(a, b)
	if !ok {
		return nil, model.ErrNoMatch
	}

	seen := make(map[model.Position]bool)
	var positions []model.Position
	words := make([]string, 0, len(matches))
	for _, m := range matches {
		words = append(words, m.Word)
		for _, p := range m.Positions {
			if !seen[p] {
				seen[p] = true
				positions = append(positions, p)
			}
		}
	}
	delta := model.TurnDelta{
		Score:      c.scorer.ScoreMatches(matches, 1),
		Words:      words,
		ComboSteps: len(matches),
	}

	turn := c.armWatchdog()
	c.publishGrid([]model.Position{a, b})
	c.beginCascade(turn, matches, positions, delta)
	return &SubmitResult{Matches: matches, Delta: delta}, nil
}

// Pause stops the countdown. Only allowed while idle or selecting.
func (c *Controller) Pause() error {
	switch c.phase {
	case model.PhaseIdle, model.PhaseSelecting:
	case model.PhasePaused:
		return model.ErrGamePaused
	case model.PhaseGameOver:
		return model.ErrGameOver
	default:
		return model.ErrCannotPause
	}
	c.pausedFrom = c.phase
	c.stopTicker()
	c.setPhase(model.PhasePaused)
	return nil
}

// Resume restores the phase that was active before Pause
func (c *Controller) Resume() error {
	if c.phase != model.PhasePaused {
		return model.ErrNotPaused
	}
	prev := c.pausedFrom
	if prev == "" {
		prev = model.PhaseIdle
	}
	c.pausedFrom = ""
	c.setPhase(prev)
	c.startTicker()
	return nil
}

// ForceRecover abandons any in-flight cascade and returns to Idle
func (c *Controller) ForceRecover() {
	if c.phase.Settled() {
		return
	}
	c.forceIdle("manual")
}

type step func() transition

// transition moves the machine to phase and, unless next is nil, runs
// next after delay
type transition struct {
	phase model.Phase
	delay time.Duration
	next  step
}

// armWatchdog starts a new turn and returns it. If the turn has not
// settled when the watchdog fires, the session is forced back to Idle.
func (c *Controller) armWatchdog() int {
	c.stopWatchdog()
	c.turn++
	turn := c.turn
	c.watchdog = c.sched.AfterFunc(c.config.WatchdogTimeout, func() {
		if turn == c.turn && !c.phase.Settled() {
			c.forceIdle("watchdog")
		}
	})
	return turn
}

func (c *Controller) beginCascade(turn int, matches []model.WordMatch, positions []model.Position, delta model.TurnDelta) {
	c.inflight = &submission{matches: matches, positions: positions, delta: delta}
	c.selection = nil
	c.engine.ClearSelection()

	c.publish(model.EventMatchFound, model.MatchFoundPayload{Matches: matches})
	c.advance(turn, transition{phase: model.PhaseMatching, delay: c.config.MatchDelay, next: c.clearStep})
}

func (c *Controller) advance(turn int, t transition) {
	if turn != c.turn {
		return
	}
	if t.next == nil {
		c.inflight = nil
		c.stopWatchdog()
		if c.timeUp && t.phase == model.PhaseIdle {
			c.gameOver(model.GameOverTimeout)
			return
		}
		c.setPhase(t.phase)
		return
	}
	c.setPhase(t.phase)
	next := t.next
	c.sched.AfterFunc(t.delay, func() {
		if turn != c.turn {
			return
		}
		var out transition
		if !c.guard(func() { out = next() }) {
			// Left for the watchdog
			return
		}
		c.advance(turn, out)
	})
}

// guard runs fn and reports whether it returned normally
func (c *Controller) guard(fn func()) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("turn step panicked",
				slog.Any("panic", rec),
				slog.String("phase", string(c.phase)),
				slog.String("stack", string(debug.Stack())),
			)
			ok = false
		}
	}()
	fn()
	return true
}

func (c *Controller) clearStep() transition {
	cleared := c.engine.ClearSelectedPositions(c.inflight.positions)
	c.publishGrid(cleared)
	return transition{phase: model.PhaseCascading, delay: c.config.ClearDelay, next: c.gravityStep}
}

func (c *Controller) gravityStep() transition {
	changed := c.engine.ApplyGravity()
	c.publishGrid(changed)
	return transition{phase: model.PhaseRefilling, delay: c.config.CascadeDelay, next: c.refillStep}
}

func (c *Controller) refillStep() transition {
	if c.engine.SelectableWordCount() < c.config.MinWords {
		c.engine.EnsureMinimumWords(c.config.MinWords, c.config.EnsureAttempts)
		c.logger.Info("grid regenerated after cascade")
		c.publishGrid(nil)
	}

	delta := c.inflight.delta
	c.state = c.state.Apply(delta)
	c.publish(model.EventScoreUpdated, model.ScoreUpdatedPayload{State: c.state, Delta: delta})

	if !c.engine.HasValidMoves() {
		c.gameOver(model.GameOverNoMoves)
		return transition{phase: model.PhaseGameOver}
	}
	return transition{phase: model.PhaseIdle}
}

// forceIdle discards in-flight work and transient grid state, then idles
func (c *Controller) forceIdle(source string) {
	c.logger.Warn("forcing phase recovery",
		slog.String("source", source),
		slog.String("phase", string(c.phase)),
	)
	c.abandonInflight()
	c.selection = nil
	c.guard(func() {
		c.engine.ClearSelection()
		if hasMatched(c.engine.Grid()) {
			c.engine.ApplyGravity()
		}
	})
	c.publishGrid(nil)
	if c.timeUp {
		c.gameOver(model.GameOverTimeout)
		return
	}
	c.setPhase(model.PhaseIdle)
}

func hasMatched(g model.Grid) bool {
	for r := range g.Tiles {
		for _, t := range g.Tiles[r] {
			if t.Matched {
				return true
			}
		}
	}
	return false
}

func (c *Controller) abandonInflight() {
	c.turn++
	c.inflight = nil
	c.stopWatchdog()
}

func (c *Controller) stopWatchdog() {
	if c.watchdog != nil {
		c.watchdog.Stop()
		c.watchdog = nil
	}
}

func (c *Controller) startTicker() {
	if c.config.TimeLimit <= 0 || c.remaining <= 0 {
		return
	}
	c.stopTicker()
	c.ticker = c.sched.AfterFunc(time.Second, c.tick)
}

func (c *Controller) stopTicker() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

func (c *Controller) tick() {
	c.ticker = nil
	if c.phase == model.PhasePaused || c.phase == model.PhaseGameOver {
		return
	}
	c.remaining--
	c.publish(model.EventTimerTick, model.TimerTickPayload{Remaining: c.remaining})
	if c.remaining <= 0 {
		c.remaining = 0
		if !c.phase.Settled() {
			// The word in flight is scored before the game ends
			c.timeUp = true
			return
		}
		c.gameOver(model.GameOverTimeout)
		return
	}
	c.ticker = c.sched.AfterFunc(time.Second, c.tick)
}

func (c *Controller) gameOver(reason model.GameOverReason) {
	c.abandonInflight()
	c.stopTicker()
	c.reason = reason
	c.selection = nil
	c.engine.ClearSelection()
	c.setPhase(model.PhaseGameOver)

	c.logger.Info("game over",
		slog.String("reason", string(reason)),
		slog.Int("score", c.state.Score),
		slog.Int("moves", c.state.Moves),
	)
	c.publish(model.EventGameOver, model.GameOverPayload{Reason: reason, State: c.state})

	if c.state.Score <= 0 || c.scores == nil {
		return
	}
	hs := &model.HighScore{
		SessionID:   c.id,
		Score:       c.state.Score,
		Moves:       c.state.Moves,
		WordsFound:  c.state.WordsFound,
		LongestWord: c.state.LongestWord,
		BestCombo:   c.state.BestCombo,
		Reason:      reason,
		Language:    c.language,
		CreatedAt:   c.clock.Now(),
	}
	// Fire and forget: the outcome is already decided
	c.sched.AfterFunc(0, func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.scores.SaveHighScore(ctx, hs); err != nil {
			c.logger.Warn("failed to save high score",
				slog.Int("score", hs.Score),
				slog.String("error", err.Error()),
			)
		}
	})
}

func (c *Controller) setPhase(p model.Phase) {
	if c.phase == p {
		return
	}
	from := c.phase
	c.phase = p
	c.publish(model.EventPhaseChanged, model.PhaseChangedPayload{From: from, To: p})
}

func (c *Controller) publishGrid(changed []model.Position) {
	c.publish(model.EventGridUpdated, model.GridUpdatedPayload{
		Grid:    c.engine.Grid(),
		Changed: changed,
	})
}

func (c *Controller) publish(eventType model.EventType, payload any) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		SessionID: c.id,
		Payload:   payload,
	})
}
