package model

import (
	"time"
	"unicode/utf8"
)

// SessionID uniquely identifies a game session
type SessionID string

// Phase is the turn state machine's current state. It is the only gate for
// which player actions are accepted.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSelecting  Phase = "selecting"
	PhaseValidating Phase = "validating"
	PhaseMatching   Phase = "matching"
	PhaseCascading  Phase = "cascading"
	PhaseRefilling  Phase = "refilling"
	PhasePaused     Phase = "paused"
	PhaseGameOver   Phase = "game_over"
)

// AcceptsInput returns true for phases in which a submission may start
func (p Phase) AcceptsInput() bool {
	return p == PhaseIdle || p == PhaseSelecting
}

// Settled returns true for phases that need no watchdog
func (p Phase) Settled() bool {
	return p == PhaseIdle || p == PhaseSelecting || p == PhasePaused || p == PhaseGameOver
}

// GameOverReason records why a session ended
type GameOverReason string

const (
	GameOverNoMoves GameOverReason = "no_moves"
	GameOverTimeout GameOverReason = "timeout"
	GameOverStrikes GameOverReason = "strikes"
)

// TurnState is the caller-owned running tally of a session
type TurnState struct {
	Score       int
	Moves       int
	Combo       int
	WordsFound  int
	LongestWord string
	BestCombo   int
}

// TurnDelta is what one resolved submission adds to the TurnState
type TurnDelta struct {
	Score      int
	Words      []string
	ComboSteps int
}

// Apply returns the state after the delta. The receiver is not modified.
func (s TurnState) Apply(d TurnDelta) TurnState {
	next := s
	next.Score += d.Score
	next.Moves++
	next.WordsFound += len(d.Words)
	for _, w := range d.Words {
		if utf8.RuneCountInString(w) > utf8.RuneCountInString(next.LongestWord) {
			next.LongestWord = w
		}
	}
	next.Combo += d.ComboSteps
	if next.Combo > next.BestCombo {
		next.BestCombo = next.Combo
	}
	return next
}

// HighScore is a persisted final result
type HighScore struct {
	ID          int64          `json:"id"`
	SessionID   SessionID      `json:"session_id"`
	Score       int            `json:"score"`
	Moves       int            `json:"moves"`
	WordsFound  int            `json:"words_found"`
	LongestWord string         `json:"longest_word"`
	BestCombo   int            `json:"best_combo"`
	Reason      GameOverReason `json:"reason"`
	Language    Language       `json:"language"`
	CreatedAt   time.Time      `json:"created_at"`
}

// MaxHighScores is how many entries a high score table retains
const MaxHighScores = 100
