package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/lettercrush/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Strikes int    `json:"strikes,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidPosition     = "INVALID_POSITION"
	CodeWordTooShort        = "WORD_TOO_SHORT"
	CodeInvalidWord         = "INVALID_WORD"
	CodeNotAdjacent         = "NOT_ADJACENT"
	CodeSelectionMismatch   = "SELECTION_MISMATCH"
	CodeEmptySelection      = "EMPTY_SELECTION"
	CodeNoMatch             = "NO_MATCH"
	CodePhaseBusy           = "PHASE_BUSY"
	CodeGamePaused          = "GAME_PAUSED"
	CodeGameOver            = "GAME_OVER"
	CodeNotPaused           = "NOT_PAUSED"
	CodeCannotPause         = "CANNOT_PAUSE"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeDictionaryNotLoaded = "DICTIONARY_NOT_LOADED"
	CodeUnsupportedLanguage = "UNSUPPORTED_LANGUAGE"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Submission rejections keep the player-facing message
	var se *model.SubmissionError
	if errors.As(err, &se) {
		he := toHTTPError(se.Err)
		he.apiError.Message = se.Error()
		he.apiError.Strikes = se.Strikes
		return he
	}

	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeSessionNotFound, Message: "Session not found"}}
	case errors.Is(err, model.ErrWordTooShort):
		return &httpError{http.StatusUnprocessableEntity, APIError{Code: CodeWordTooShort, Message: err.Error()}}
	case errors.Is(err, model.ErrInvalidWord):
		return &httpError{http.StatusUnprocessableEntity, APIError{Code: CodeInvalidWord, Message: "Not a valid word"}}
	case errors.Is(err, model.ErrNotAdjacent):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeNotAdjacent, Message: "Letters must be adjacent"}}
	case errors.Is(err, model.ErrSelectionMismatch):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeSelectionMismatch, Message: "Word does not match the selected letters"}}
	case errors.Is(err, model.ErrEmptySelection):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeEmptySelection, Message: "No letters selected"}}
	case errors.Is(err, model.ErrNoMatch):
		return &httpError{http.StatusUnprocessableEntity, APIError{Code: CodeNoMatch, Message: "Swap does not form a word"}}
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidPosition, Message: "Invalid grid position"}}
	case errors.Is(err, model.ErrPhaseBusy):
		return &httpError{http.StatusConflict, APIError{Code: CodePhaseBusy, Message: "A word is already being processed"}}
	case errors.Is(err, model.ErrGamePaused):
		return &httpError{http.StatusConflict, APIError{Code: CodeGamePaused, Message: "Game is paused"}}
	case errors.Is(err, model.ErrGameOver):
		return &httpError{http.StatusConflict, APIError{Code: CodeGameOver, Message: "Game is over"}}
	case errors.Is(err, model.ErrNotPaused):
		return &httpError{http.StatusConflict, APIError{Code: CodeNotPaused, Message: "Game is not paused"}}
	case errors.Is(err, model.ErrCannotPause):
		return &httpError{http.StatusConflict, APIError{Code: CodeCannotPause, Message: "Game can only be paused while idle or selecting"}}
	case errors.Is(err, model.ErrUnsupportedLanguage):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeUnsupportedLanguage, Message: "Unsupported language"}}
	case errors.Is(err, model.ErrDictionaryNotLoaded):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeDictionaryNotLoaded, Message: "Dictionary not loaded"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) error {
	return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
