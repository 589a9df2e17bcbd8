package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mcoot/lettercrush/internal/api/apierr"
	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/storage"
)

// HighScoreLister reads the high score table
type HighScoreLister interface {
	TopHighScores(ctx context.Context, limit int) ([]*model.HighScore, error)
}

// HighScoreHandler handles the high score table
type HighScoreHandler struct {
	scores HighScoreLister
}

// NewHighScoreHandler creates a new high score handler
func NewHighScoreHandler(scores HighScoreLister) *HighScoreHandler {
	return &HighScoreHandler{scores: scores}
}

// List handles GET /api/v1/highscores?limit=
func (h *HighScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := model.MaxHighScores
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = storage.ClampLimit(n)
	}

	scores, err := h.scores.TopHighScores(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.HighScoresResponse{Scores: make([]response.HighScore, len(scores))}
	for i, s := range scores {
		resp.Scores[i] = response.HighScoreFromModel(s)
	}
	response.OK(w, resp)
}
