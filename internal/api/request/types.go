package request

import "github.com/mcoot/lettercrush/internal/model"

// CreateSessionRequest is the request body for starting a session.
// Zero values fall back to the server defaults.
type CreateSessionRequest struct {
	Language string `json:"language,omitempty"`
	MinWords int    `json:"min_words,omitempty"`
}

// SelectRequest is the request body for toggling a tile
type SelectRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Position returns the selected cell
func (r SelectRequest) Position() model.Position {
	return model.Position{Row: r.Row, Col: r.Col}
}

// SubmitRequest is the request body for playing a word
type SubmitRequest struct {
	Word string           `json:"word,omitempty"`
	Path []model.Position `json:"path,omitempty"`
}

// SwapRequest is the request body for swapping two tiles
type SwapRequest struct {
	A model.Position `json:"a"`
	B model.Position `json:"b"`
}
