package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/lettercrush/internal/api/response"
)

// BoardReport is the result of an offline board command
type BoardReport struct {
	Language string               `json:"language"`
	Size     int                  `json:"size"`
	Rows     []string             `json:"rows"`
	Lines    []response.WordMatch `json:"straight_line_words"`
	Words    []string             `json:"selectable_words"`
	Hint     *response.WordMatch  `json:"hint,omitempty"`
	HasMoves bool                 `json:"has_valid_moves"`
}

// ScoreReport is the result of the offline score command
type ScoreReport struct {
	Word            string  `json:"word"`
	Language        string  `json:"language"`
	Combo           int     `json:"combo"`
	Base            int     `json:"base"`
	LengthBonus     int     `json:"length_bonus"`
	LetterBonus     int     `json:"letter_bonus"`
	ComboMultiplier float64 `json:"combo_multiplier"`
	Total           int     `json:"total"`
	Formatted       string  `json:"formatted"`
	Breakdown       string  `json:"-"`
}

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Session:
		o.printSession(v)
	case response.SubmitResponse:
		o.printSubmit(v)
	case response.HintResponse:
		o.printHint(v)
	case response.HighScoresResponse:
		o.printHighScores(v)
	case response.DictionaryCheckResponse:
		o.printCheck(v)
	case response.HealthResponse:
		o.printHealth(v)
	case BoardReport:
		o.printBoard(v)
	case ScoreReport:
		o.printScore(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printRows(rows []string) {
	for _, row := range rows {
		letters := make([]string, 0, len(row))
		for _, r := range row {
			letters = append(letters, string(r))
		}
		fmt.Fprintf(o.w, "  %s\n", strings.Join(letters, " "))
	}
}

func (o *Output) printSession(s response.Session) {
	fmt.Fprintf(o.w, "Session: %s (%s)\n", s.ID, s.Language)
	fmt.Fprintf(o.w, "Phase: %s", s.Phase)
	if s.Reason != "" {
		fmt.Fprintf(o.w, " (%s)", s.Reason)
	}
	fmt.Fprintln(o.w)
	fmt.Fprintf(o.w, "Time remaining: %d:%02d\n", s.Remaining/60, s.Remaining%60)
	fmt.Fprintf(o.w, "Strikes: %d/%d\n", s.Strikes, s.MaxStrikes)
	fmt.Fprintf(o.w, "Score: %d  Moves: %d  Words: %d  Combo: %d\n",
		s.State.Score, s.State.Moves, s.State.WordsFound, s.State.Combo)
	if s.State.LongestWord != "" {
		fmt.Fprintf(o.w, "Longest word: %s\n", s.State.LongestWord)
	}
	fmt.Fprintln(o.w)
	o.printRows(s.Grid.Rows())

	if len(s.Selection) > 0 {
		cells := make([]string, len(s.Selection))
		for i, p := range s.Selection {
			cells[i] = fmt.Sprintf("(%d,%d)", p.Row, p.Col)
		}
		fmt.Fprintf(o.w, "\nSelection: %s %s\n", s.Word, strings.Join(cells, " "))
	}
}

func (o *Output) printSubmit(r response.SubmitResponse) {
	if len(r.Delta.Words) == 0 {
		fmt.Fprintln(o.w, "Accepted")
		return
	}
	fmt.Fprintf(o.w, "Accepted: %s (+%d)\n", strings.Join(r.Delta.Words, ", "), r.Delta.Score)
	for _, m := range r.Matches {
		fmt.Fprintf(o.w, "  %s %s %d\n", m.Word, m.Direction, m.Score)
	}
}

func (o *Output) printHint(h response.HintResponse) {
	if !h.Found || h.Match == nil {
		fmt.Fprintln(o.w, "No words on the grid")
		return
	}
	o.printMatch("Hint", *h.Match)
}

func (o *Output) printMatch(label string, m response.WordMatch) {
	cells := make([]string, len(m.Positions))
	for i, p := range m.Positions {
		cells[i] = fmt.Sprintf("%d,%d", p.Row, p.Col)
	}
	fmt.Fprintf(o.w, "%s: %s (%d points)\n", label, m.Word, m.Score)
	fmt.Fprintf(o.w, "Path: %s\n", strings.Join(cells, " "))
}

func (o *Output) printHighScores(r response.HighScoresResponse) {
	if len(r.Scores) == 0 {
		fmt.Fprintln(o.w, "No high scores yet")
		return
	}
	fmt.Fprintln(o.w, "High scores:")
	for i, h := range r.Scores {
		fmt.Fprintf(o.w, "  %2d. %-7s %-3s moves=%d words=%d longest=%s (%s)\n",
			i+1, h.Formatted, h.Language, h.Moves, h.WordsFound, h.LongestWord, h.Reason)
	}
}

func (o *Output) printCheck(r response.DictionaryCheckResponse) {
	verdict := "not a word"
	if r.Valid {
		verdict = "valid"
	}
	fmt.Fprintf(o.w, "%s (%s): %s\n", r.Word, r.Language, verdict)
	if len(r.Completions) > 0 {
		fmt.Fprintf(o.w, "Completions: %s\n", strings.Join(r.Completions, ", "))
	}
}

func (o *Output) printHealth(h response.HealthResponse) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Active sessions: %d\n", h.Sessions)
}

func (o *Output) printBoard(b BoardReport) {
	fmt.Fprintf(o.w, "Board %dx%d (%s)\n\n", b.Size, b.Size, b.Language)
	o.printRows(b.Rows)

	fmt.Fprintf(o.w, "\nStraight-line words: %d\n", len(b.Lines))
	for _, m := range b.Lines {
		fmt.Fprintf(o.w, "  %s %s at %d,%d\n", m.Word, m.Direction, m.Positions[0].Row, m.Positions[0].Col)
	}
	fmt.Fprintf(o.w, "Selectable words: %d\n", len(b.Words))
	if len(b.Words) > 0 {
		fmt.Fprintf(o.w, "  %s\n", strings.Join(b.Words, " "))
	}
	if b.Hint != nil {
		o.printMatch("Hint", *b.Hint)
	}
	fmt.Fprintf(o.w, "Valid swaps left: %t\n", b.HasMoves)
}

func (o *Output) printScore(s ScoreReport) {
	fmt.Fprintf(o.w, "%s (%s, combo %d)\n", s.Word, s.Language, s.Combo)
	fmt.Fprintln(o.w, s.Breakdown)
	fmt.Fprintf(o.w, "Formatted: %s\n", s.Formatted)
}
