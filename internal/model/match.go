package model

// Direction describes how a word was read off the grid
type Direction string

const (
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
	DirectionFreeform   Direction = "freeform"
)

// WordMatch is a word found on the grid
type WordMatch struct {
	Word      string
	Positions []Position
	Direction Direction
	Score     int
}

// Len returns the number of letters in the word
func (m WordMatch) Len() int {
	return len(m.Positions)
}

// ScoreResult is the point breakdown for one word
type ScoreResult struct {
	Base            int
	LengthBonus     int
	LetterBonus     int
	ComboMultiplier float64
	Total           int
}
