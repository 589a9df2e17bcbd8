package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Submission errors
	ErrWordTooShort      = errors.New("word is too short")
	ErrInvalidWord       = errors.New("word is not in the dictionary")
	ErrNotAdjacent       = errors.New("letters must be adjacent")
	ErrSelectionMismatch = errors.New("word does not match the selected letters")
	ErrEmptySelection    = errors.New("no letters selected")
	ErrSubmissionFailed  = errors.New("submission could not be processed")

	// Phase errors
	ErrPhaseBusy   = errors.New("a word is already being processed")
	ErrGamePaused  = errors.New("game is paused")
	ErrGameOver    = errors.New("game is over")
	ErrNotPaused   = errors.New("game is not paused")
	ErrCannotPause = errors.New("game can only be paused while idle or selecting")

	// Grid errors
	ErrInvalidPosition = errors.New("invalid grid position")
	ErrInvalidGrid     = errors.New("grid must be square")
	ErrNoMatch         = errors.New("swap does not form a word")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// SubmissionError is a rejected submission with the details a player sees
type SubmissionError struct {
	Err     error
	Word    string
	Strikes int
	Max     int
}

func (e *SubmissionError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInvalidWord) && e.Max > 0:
		return fmt.Sprintf("%q is not a valid word. Strike %d/%d", e.Word, e.Strikes, e.Max)
	case errors.Is(e.Err, ErrInvalidWord):
		return fmt.Sprintf("%q is not a valid word", e.Word)
	default:
		return e.Err.Error()
	}
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// TooShortError builds the rejection for a word below the minimum length
func TooShortError(minLength int) error {
	return fmt.Errorf("%w: word must be at least %d letters", ErrWordTooShort, minLength)
}
