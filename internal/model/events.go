package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventPhaseChanged     EventType = "phase_changed"
	EventGridUpdated      EventType = "grid_updated"
	EventMatchFound       EventType = "match_found"
	EventScoreUpdated     EventType = "score_updated"
	EventSelectionChanged EventType = "selection_changed"
	EventWordRejected     EventType = "word_rejected"
	EventTimerTick        EventType = "timer_tick"
	EventGameOver         EventType = "game_over"
	EventSessionEnded     EventType = "session_ended"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType
	Timestamp time.Time
	SessionID SessionID
	Payload   any // Type-specific data
}

// PhaseChangedPayload contains data for phase changed events
type PhaseChangedPayload struct {
	From Phase
	To   Phase
}

// GridUpdatedPayload carries a snapshot of the grid after a mutation
type GridUpdatedPayload struct {
	Grid    Grid
	Changed []Position // cells whose tile moved or was created, may be empty
}

// MatchFoundPayload contains data for match found events
type MatchFoundPayload struct {
	Matches []WordMatch
}

// ScoreUpdatedPayload contains data for score updated events
type ScoreUpdatedPayload struct {
	State TurnState
	Delta TurnDelta
}

// SelectionChangedPayload contains data for selection changed events
type SelectionChangedPayload struct {
	Path []Position
	Word string
}

// WordRejectedPayload contains data for word rejected events
type WordRejectedPayload struct {
	Word    string
	Message string
	Strikes int
}

// TimerTickPayload contains data for timer tick events
type TimerTickPayload struct {
	Remaining int // seconds
}

// GameOverPayload contains data for game over events
type GameOverPayload struct {
	Reason GameOverReason
	State  TurnState
}
