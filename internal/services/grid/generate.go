package grid

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/model"
)

// Crossword construction limits
const (
	crosswordPoolSize        = 300
	crosswordAttempts        = 10
	crosswordIterations      = 20
	candidatesPerIteration   = 100
	intersectionsPerWord     = 20
	placementsTriedPerWord   = 5
	maxConsecutiveFailures   = 3
	rejectedPlacementScore   = -1000.0
	acceptablePlacementFloor = -100.0
)

// placement is one word laid on a construction board
type placement struct {
	word       string
	row, col   int
	horizontal bool
}

func (p placement) cell(i int) model.Position {
	if p.horizontal {
		return model.Position{Row: p.row, Col: p.col + i}
	}
	return model.Position{Row: p.row + i, Col: p.col}
}

// crossword is the state of one construction attempt
type crossword struct {
	board  *model.Board
	placed []placement
	used   map[string]bool
}

func newCrossword(size int) *crossword {
	return &crossword{
		board: model.NewBoard(size),
		used:  make(map[string]bool),
	}
}

func (cw *crossword) place(p placement) {
	for i, ch := range []rune(p.word) {
		cw.board.Set(p.cell(i), ch)
	}
	cw.placed = append(cw.placed, p)
	cw.used[p.word] = true
}

// Initialize builds a new board with at least minWords straight-line words
// where the word list allows it. Construction falls through three layers,
// each with a bounded number of attempts; if all of them fall short the
// best board found is kept and a warning is logged. Cancelling ctx cuts the
// first two layers short. Returns the number of straight-line words on the
// final board.
func (e *Engine) Initialize(ctx context.Context, minWords int) int {
	logger := e.logger.With(slog.Int("min_words", minWords), slog.Int("size", e.config.Size))

	if cw := e.generateCrossword(ctx, minWords); cw != nil && len(cw.placed) >= minWords {
		b := cw.board.Clone()
		e.fillEmpty(b)
		found := len(e.findAllWords(b))
		logger.Debug("crossword constructed",
			slog.Int("placed", len(cw.placed)),
			slog.Int("found", found),
		)
		if found >= minWords {
			e.grid = e.tilesFrom(b)
			return found
		}
	}

	if b, found, ok := e.multiPhaseFallback(ctx, minWords); ok {
		logger.Debug("fallback seeded board", slog.Int("found", found))
		e.grid = e.tilesFrom(b)
		return found
	}

	b, found := e.systematicFallback(minWords)
	if found < minWords {
		logger.Warn("could not guarantee minimum words", slog.Int("found", found))
	}
	e.grid = e.tilesFrom(b)
	return found
}

// wordPool returns a shuffled selection of words with lengths in [minLen, maxLen]
func (e *Engine) wordPool(minLen, maxLen, limit int) []string {
	var pool []string
	for _, w := range e.words {
		n := utf8.RuneCountInString(w)
		if n >= minLen && n <= maxLen && n <= e.config.Size {
			pool = append(pool, w)
		}
	}
	random.Shuffle(e.random, pool)
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// generateCrossword runs several construction attempts and returns the one
// that placed the most words
func (e *Engine) generateCrossword(ctx context.Context, minWords int) *crossword {
	pool := e.wordPool(3, 6, crosswordPoolSize)
	if len(pool) == 0 {
		return nil
	}

	var best *crossword
	for attempt := 0; attempt < crosswordAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}
		cw := e.buildCrossword(pool, minWords)
		if len(cw.placed) >= minWords {
			return cw
		}
		if best == nil || len(cw.placed) > len(best.placed) {
			best = cw
		}
		// Diminishing returns once within one word of the target
		if len(best.placed) >= minWords-1 {
			break
		}
	}
	return best
}

func (e *Engine) buildCrossword(pool []string, minWords int) *crossword {
	size := e.config.Size
	cw := newCrossword(size)

	// Longest first, random order within a length
	candidates := make([]string, len(pool))
	copy(candidates, pool)
	random.Shuffle(e.random, candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return utf8.RuneCountInString(candidates[i]) > utf8.RuneCountInString(candidates[j])
	})

	first := pickFirstWord(candidates, size)
	if first == "" {
		return cw
	}
	n := utf8.RuneCountInString(first)
	cw.place(placement{word: first, row: size / 2, col: (size - n) / 2, horizontal: true})

	failures := 0
	for iter := 0; iter < crosswordIterations && len(cw.placed) < minWords; iter++ {
		if e.placeIntersectingWord(cw, candidates) {
			failures = 0
			continue
		}
		failures++
		if failures >= maxConsecutiveFailures {
			break
		}
	}
	return cw
}

// pickFirstWord prefers a 6-letter word, then a 5-letter word, then
// anything that fits
func pickFirstWord(candidates []string, size int) string {
	for _, want := range []int{6, 5} {
		for _, w := range candidates {
			if utf8.RuneCountInString(w) == want && want <= size {
				return w
			}
		}
	}
	for _, w := range candidates {
		if utf8.RuneCountInString(w) <= size {
			return w
		}
	}
	return ""
}

type scoredPlacement struct {
	placement
	score float64
}

// placeIntersectingWord tries to add one more word crossing the board
func (e *Engine) placeIntersectingWord(cw *crossword, candidates []string) bool {
	tried := 0
	for _, word := range candidates {
		if tried >= candidatesPerIteration {
			break
		}
		if cw.used[word] || utf8.RuneCountInString(word) > cw.board.Size {
			continue
		}
		tried++

		intersections := e.findIntersections(cw, word)
		if len(intersections) > intersectionsPerWord {
			intersections = intersections[:intersectionsPerWord]
		}

		var scored []scoredPlacement
		for _, p := range intersections {
			score := scorePlacement(cw.board, p)
			if score > acceptablePlacementFloor {
				scored = append(scored, scoredPlacement{placement: p, score: score})
			}
		}
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].score > scored[j].score
		})

		for i := 0; i < len(scored) && i < placementsTriedPerWord; i++ {
			if canPlaceCrossword(cw.board, scored[i].placement) {
				cw.place(scored[i].placement)
				return true
			}
		}
	}
	return false
}

// findIntersections lists every perpendicular placement of word that
// shares a letter with an already placed word
func (e *Engine) findIntersections(cw *crossword, word string) []placement {
	letters := []rune(word)
	var out []placement
	for _, p := range cw.placed {
		for pi, pch := range []rune(p.word) {
			for ci, ch := range letters {
				if ch != pch {
					continue
				}
				if p.horizontal {
					out = append(out, placement{word: word, row: p.row - ci, col: p.col + pi, horizontal: false})
				} else {
					out = append(out, placement{word: word, row: p.row + pi, col: p.col - ci, horizontal: true})
				}
			}
		}
	}
	random.Shuffle(e.random, out)
	return out
}

// canPlaceCrossword applies the crossword rules: every cell is empty or
// already holds the same letter, newly filled cells have no parallel
// neighbours, and the cells just before and after the word are empty
func canPlaceCrossword(b *model.Board, p placement) bool {
	letters := []rune(p.word)
	n := len(letters)
	if p.row < 0 || p.col < 0 {
		return false
	}
	if p.horizontal && (p.row >= b.Size || p.col+n > b.Size) {
		return false
	}
	if !p.horizontal && (p.col >= b.Size || p.row+n > b.Size) {
		return false
	}

	for i, ch := range letters {
		pos := p.cell(i)
		existing := b.Get(pos)
		if existing != 0 && existing != ch {
			return false
		}
		if existing != 0 {
			continue
		}
		var sideA, sideB model.Position
		if p.horizontal {
			sideA = model.Position{Row: pos.Row - 1, Col: pos.Col}
			sideB = model.Position{Row: pos.Row + 1, Col: pos.Col}
		} else {
			sideA = model.Position{Row: pos.Row, Col: pos.Col - 1}
			sideB = model.Position{Row: pos.Row, Col: pos.Col + 1}
		}
		if !b.IsEmpty(sideA) || !b.IsEmpty(sideB) {
			return false
		}
	}

	before := p.cell(-1)
	after := p.cell(n)
	return b.IsEmpty(before) && b.IsEmpty(after)
}

// scorePlacement ranks a crossword placement: crossings are worth the most,
// then closeness to the centre; touching the border costs a little
func scorePlacement(b *model.Board, p placement) float64 {
	if !canPlaceCrossword(b, p) {
		return rejectedPlacementScore
	}
	letters := []rune(p.word)
	score := 0.0
	for i, ch := range letters {
		if b.Get(p.cell(i)) == ch {
			score += 10
		}
	}

	center := float64(b.Size-1) / 2
	end := p.cell(len(letters) - 1)
	midRow := float64(p.row+end.Row) / 2
	midCol := float64(p.col+end.Col) / 2
	distance := math.Abs(midRow-center) + math.Abs(midCol-center)
	score += math.Max(0, 5-distance)

	if p.row == 0 || p.col == 0 || p.row == b.Size-1 || p.col == b.Size-1 {
		score -= 3
	}
	return score
}
