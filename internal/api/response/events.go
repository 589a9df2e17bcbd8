package response

import (
	"time"

	"github.com/mcoot/lettercrush/internal/model"
)

// Event is a session event as streamed to clients
type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// PhaseChanged is the data of a phase_changed event
type PhaseChanged struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GridUpdated is the data of a grid_updated event
type GridUpdated struct {
	Grid    Grid       `json:"grid"`
	Changed []Position `json:"changed"`
}

// MatchFound is the data of a match_found event
type MatchFound struct {
	Matches []WordMatch `json:"matches"`
}

// ScoreUpdated is the data of a score_updated event
type ScoreUpdated struct {
	State TurnState `json:"state"`
	Delta TurnDelta `json:"delta"`
}

// SelectionChanged is the data of a selection_changed event
type SelectionChanged struct {
	Path []Position `json:"path"`
	Word string     `json:"word"`
}

// WordRejected is the data of a word_rejected event
type WordRejected struct {
	Word    string `json:"word"`
	Message string `json:"message"`
	Strikes int    `json:"strikes"`
}

// TimerTick is the data of a timer_tick event
type TimerTick struct {
	Remaining int `json:"remaining"`
}

// GameOver is the data of a game_over event
type GameOver struct {
	Reason string    `json:"reason"`
	State  TurnState `json:"state"`
}

// EventFromModel converts model.Event, mapping the payload to its JSON shape
func EventFromModel(e model.Event) Event {
	out := Event{
		Type:      string(e.Type),
		SessionID: string(e.SessionID),
		Timestamp: e.Timestamp,
	}

	switch p := e.Payload.(type) {
	case model.PhaseChangedPayload:
		out.Data = PhaseChanged{From: string(p.From), To: string(p.To)}
	case model.GridUpdatedPayload:
		out.Data = GridUpdated{Grid: GridFromModel(p.Grid), Changed: PositionsFromModel(p.Changed)}
	case model.MatchFoundPayload:
		out.Data = MatchFound{Matches: WordMatchesFromModel(p.Matches)}
	case model.ScoreUpdatedPayload:
		out.Data = ScoreUpdated{State: TurnStateFromModel(p.State), Delta: TurnDeltaFromModel(p.Delta)}
	case model.SelectionChangedPayload:
		out.Data = SelectionChanged{Path: PositionsFromModel(p.Path), Word: p.Word}
	case model.WordRejectedPayload:
		out.Data = WordRejected{Word: p.Word, Message: p.Message, Strikes: p.Strikes}
	case model.TimerTickPayload:
		out.Data = TimerTick{Remaining: p.Remaining}
	case model.GameOverPayload:
		out.Data = GameOver{Reason: string(p.Reason), State: TurnStateFromModel(p.State)}
	}
	return out
}
