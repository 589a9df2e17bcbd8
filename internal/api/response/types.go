package response

import (
	"time"

	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/game"
	"github.com/mcoot/lettercrush/internal/services/scoring"
)

// Position is a grid cell
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// PositionsFromModel converts a slice of model.Position
func PositionsFromModel(ps []model.Position) []Position {
	out := make([]Position, len(ps))
	for i, p := range ps {
		out[i] = Position{Row: p.Row, Col: p.Col}
	}
	return out
}

// Tile represents one lettered cell
type Tile struct {
	ID             string `json:"id"`
	Letter         string `json:"letter"`
	Row            int    `json:"row"`
	Col            int    `json:"col"`
	Selected       bool   `json:"selected,omitempty"`
	Matched        bool   `json:"matched,omitempty"`
	SelectionOrder int    `json:"selection_order,omitempty"`
}

// Grid represents the play grid. Empty cells have an empty letter.
type Grid struct {
	Size  int      `json:"size"`
	Tiles [][]Tile `json:"tiles"`
}

// GridFromModel converts model.Grid
func GridFromModel(g model.Grid) Grid {
	tiles := make([][]Tile, len(g.Tiles))
	for r, row := range g.Tiles {
		tiles[r] = make([]Tile, len(row))
		for c, t := range row {
			letter := ""
			if t.Letter != 0 {
				letter = string(t.Letter)
			}
			tiles[r][c] = Tile{
				ID:             string(t.ID),
				Letter:         letter,
				Row:            r,
				Col:            c,
				Selected:       t.Selected,
				Matched:        t.Matched,
				SelectionOrder: t.SelectionOrder,
			}
		}
	}
	return Grid{Size: g.Size, Tiles: tiles}
}

// Rows returns the grid letters one string per row, with '.' for empty cells
func (g Grid) Rows() []string {
	rows := make([]string, len(g.Tiles))
	for r, row := range g.Tiles {
		b := make([]byte, 0, len(row))
		for _, t := range row {
			if t.Letter == "" {
				b = append(b, '.')
				continue
			}
			b = append(b, t.Letter...)
		}
		rows[r] = string(b)
	}
	return rows
}

// WordMatch represents a word found on the grid
type WordMatch struct {
	Word      string     `json:"word"`
	Positions []Position `json:"positions"`
	Direction string     `json:"direction"`
	Score     int        `json:"score"`
}

// WordMatchFromModel converts model.WordMatch
func WordMatchFromModel(m model.WordMatch) WordMatch {
	return WordMatch{
		Word:      m.Word,
		Positions: PositionsFromModel(m.Positions),
		Direction: string(m.Direction),
		Score:     m.Score,
	}
}

// WordMatchesFromModel converts a slice of model.WordMatch
func WordMatchesFromModel(ms []model.WordMatch) []WordMatch {
	out := make([]WordMatch, len(ms))
	for i, m := range ms {
		out[i] = WordMatchFromModel(m)
	}
	return out
}

// TurnState is the running tally of a session
type TurnState struct {
	Score       int    `json:"score"`
	Moves       int    `json:"moves"`
	Combo       int    `json:"combo"`
	WordsFound  int    `json:"words_found"`
	LongestWord string `json:"longest_word"`
	BestCombo   int    `json:"best_combo"`
}

// TurnStateFromModel converts model.TurnState
func TurnStateFromModel(s model.TurnState) TurnState {
	return TurnState{
		Score:       s.Score,
		Moves:       s.Moves,
		Combo:       s.Combo,
		WordsFound:  s.WordsFound,
		LongestWord: s.LongestWord,
		BestCombo:   s.BestCombo,
	}
}

// TurnDelta is what one submission added
type TurnDelta struct {
	Score      int      `json:"score"`
	Words      []string `json:"words"`
	ComboSteps int      `json:"combo_steps"`
}

// TurnDeltaFromModel converts model.TurnDelta
func TurnDeltaFromModel(d model.TurnDelta) TurnDelta {
	words := d.Words
	if words == nil {
		words = []string{}
	}
	return TurnDelta{Score: d.Score, Words: words, ComboSteps: d.ComboSteps}
}

// Session is the full state of a session
type Session struct {
	ID         string     `json:"id"`
	Language   string     `json:"language"`
	Phase      string     `json:"phase"`
	Grid       Grid       `json:"grid"`
	State      TurnState  `json:"state"`
	Strikes    int        `json:"strikes"`
	MaxStrikes int        `json:"max_strikes"`
	Remaining  int        `json:"time_remaining"`
	Reason     string     `json:"game_over_reason,omitempty"`
	Selection  []Position `json:"selection"`
	Word       string     `json:"word,omitempty"`
}

// SessionFromSnapshot converts game.Snapshot
func SessionFromSnapshot(s *game.Snapshot) Session {
	return Session{
		ID:         string(s.SessionID),
		Language:   string(s.Language),
		Phase:      string(s.Phase),
		Grid:       GridFromModel(s.Grid),
		State:      TurnStateFromModel(s.State),
		Strikes:    s.Strikes,
		MaxStrikes: s.MaxStrikes,
		Remaining:  s.Remaining,
		Reason:     string(s.Reason),
		Selection:  PositionsFromModel(s.Selection),
		Word:       s.Word,
	}
}

// SubmitResponse describes an accepted word or swap
type SubmitResponse struct {
	Matches []WordMatch `json:"matches"`
	Delta   TurnDelta   `json:"delta"`
}

// SubmitResponseFromResult converts game.SubmitResult
func SubmitResponseFromResult(r *game.SubmitResult) SubmitResponse {
	return SubmitResponse{
		Matches: WordMatchesFromModel(r.Matches),
		Delta:   TurnDeltaFromModel(r.Delta),
	}
}

// HintResponse is the longest word on the grid, if any
type HintResponse struct {
	Found bool       `json:"found"`
	Match *WordMatch `json:"match,omitempty"`
}

// HighScore is a persisted final result
type HighScore struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Score       int       `json:"score"`
	Formatted   string    `json:"formatted"`
	Moves       int       `json:"moves"`
	WordsFound  int       `json:"words_found"`
	LongestWord string    `json:"longest_word"`
	BestCombo   int       `json:"best_combo"`
	Reason      string    `json:"reason"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
}

// HighScoreFromModel converts model.HighScore
func HighScoreFromModel(h *model.HighScore) HighScore {
	return HighScore{
		ID:          h.ID,
		SessionID:   string(h.SessionID),
		Score:       h.Score,
		Formatted:   scoring.FormatScore(h.Score),
		Moves:       h.Moves,
		WordsFound:  h.WordsFound,
		LongestWord: h.LongestWord,
		BestCombo:   h.BestCombo,
		Reason:      string(h.Reason),
		Language:    string(h.Language),
		CreatedAt:   h.CreatedAt,
	}
}

// HighScoresResponse is the response for the high score table
type HighScoresResponse struct {
	Scores []HighScore `json:"scores"`
}

// DictionaryCheckResponse is the response for a dictionary lookup
type DictionaryCheckResponse struct {
	Language    string   `json:"language"`
	Word        string   `json:"word"`
	Valid       bool     `json:"valid"`
	IsPrefix    bool     `json:"is_prefix"`
	Completions []string `json:"completions"`
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}
