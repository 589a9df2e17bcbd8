package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/mcoot/lettercrush/internal/model"
)

// Config holds the scoring constants
type Config struct {
	Base             int     // points for any accepted word
	FourLetterBonus  int     // length bonus for 4 letters
	FiveLetterBonus  int     // length bonus for 5 letters
	LongWordBonus    int     // length bonus for 6 letters
	ExtraLetterBonus int     // added per letter beyond 6
	LetterMultiplier int     // applied to the sum of letter values
	ComboBase        float64 // multiplier base, raised to (combo-1)
}

// DefaultConfig returns the standard scoring constants
func DefaultConfig() Config {
	return Config{
		Base:             100,
		FourLetterBonus:  50,
		FiveLetterBonus:  150,
		LongWordBonus:    300,
		ExtraLetterBonus: 200,
		LetterMultiplier: 10,
		ComboBase:        1.5,
	}
}

// Service computes word scores. It holds no mutable state.
type Service struct {
	config  Config
	letters model.LetterTable
}

// New creates a new scoring Service for a language
func New(config Config, language model.Language) *Service {
	return &Service{
		config:  config,
		letters: language.Letters(),
	}
}

// ScoreWord scores a single word at the given combo level.
// Combo levels below 1 are treated as 1.
func (s *Service) ScoreWord(word string, combo int) model.ScoreResult {
	word = strings.ToUpper(word)
	if combo < 1 {
		combo = 1
	}

	letterSum := 0
	for _, r := range word {
		letterSum += s.letters.Value(r)
	}

	result := model.ScoreResult{
		Base:            s.config.Base,
		LengthBonus:     s.lengthBonus(len([]rune(word))),
		LetterBonus:     s.config.LetterMultiplier * letterSum,
		ComboMultiplier: math.Pow(s.config.ComboBase, float64(combo-1)),
	}
	raw := float64(result.Base+result.LengthBonus+result.LetterBonus) * result.ComboMultiplier
	result.Total = int(math.Round(raw))
	return result
}

func (s *Service) lengthBonus(length int) int {
	switch {
	case length <= 3:
		return 0
	case length == 4:
		return s.config.FourLetterBonus
	case length == 5:
		return s.config.FiveLetterBonus
	default:
		return s.config.LongWordBonus + (length-6)*s.config.ExtraLetterBonus
	}
}

// ScoreMatches sums the scores of simultaneous matches. Each match is
// scored one combo level above the one before it.
func (s *Service) ScoreMatches(matches []model.WordMatch, startCombo int) int {
	if startCombo < 1 {
		startCombo = 1
	}
	total := 0
	for i, m := range matches {
		total += s.ScoreWord(m.Word, startCombo+i).Total
	}
	return total
}

// FormatScore abbreviates large scores: 1.2K, 3.4M
func FormatScore(score int) string {
	switch {
	case score >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(score)/1_000_000)
	case score >= 1_000:
		return fmt.Sprintf("%.1fK", float64(score)/1_000)
	default:
		return fmt.Sprintf("%d", score)
	}
}

// Breakdown renders a score result one component per line
func Breakdown(r model.ScoreResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Base: %d\n", r.Base)
	if r.LengthBonus > 0 {
		fmt.Fprintf(&b, "Length bonus: +%d\n", r.LengthBonus)
	}
	if r.LetterBonus > 0 {
		fmt.Fprintf(&b, "Letter bonus: +%d\n", r.LetterBonus)
	}
	if r.ComboMultiplier > 1 {
		fmt.Fprintf(&b, "Combo: x%g\n", r.ComboMultiplier)
	}
	fmt.Fprintf(&b, "Total: %d", r.Total)
	return b.String()
}

// Interface for dependency injection
type ServiceInterface interface {
	ScoreWord(word string, combo int) model.ScoreResult
	ScoreMatches(matches []model.WordMatch, startCombo int) int
}

var _ ServiceInterface = (*Service)(nil)
