package grid

import (
	"context"
	"unicode/utf8"

	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/model"
)

// Fallback construction limits
const (
	fallbackAttempts      = 50
	fallbackPoolSize      = 300
	anchorCount           = 3
	extraWordTarget       = 8
	randomPositionTries   = 10
	systematicAttempts    = 20
	systematicWordLength  = 3
	systematicColumnSpace = 3
)

// canPlaceWordAt checks bounds and letter conflicts only
func canPlaceWordAt(b *model.Board, p placement) bool {
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
		existing := b.Get(p.cell(i))
		if existing != 0 && existing != ch {
			return false
		}
	}
	return true
}

func commit(b *model.Board, p placement) {
	for i, ch := range []rune(p.word) {
		b.Set(p.cell(i), ch)
	}
}

// multiPhaseFallback seeds anchors, crossing words and extra words, then
// fills the rest randomly. Returns the first board reaching minWords.
func (e *Engine) multiPhaseFallback(ctx context.Context, minWords int) (*model.Board, int, bool) {
	seedable := e.wordPool(3, 5, fallbackPoolSize)
	var fourLetter []string
	for _, w := range seedable {
		if utf8.RuneCountInString(w) == 4 {
			fourLetter = append(fourLetter, w)
		}
	}

	b := model.NewBoard(e.config.Size)
	for attempt := 0; attempt < fallbackAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, 0, false
		}
		b.Clear()

		anchors := e.placeAnchorWords(b, e.pickRandom(fourLetter, anchorCount))
		if len(anchors) > 0 {
			e.placeCrossingWords(b, anchors, seedable)
		}
		e.placeRandomWords(b, seedable, extraWordTarget)
		e.fillEmpty(b)

		if found := len(e.findAllWords(b)); found >= minWords {
			return b, found, true
		}
	}
	return nil, 0, false
}

func (e *Engine) pickRandom(words []string, count int) []string {
	picked := make([]string, len(words))
	copy(picked, words)
	random.Shuffle(e.random, picked)
	if len(picked) > count {
		picked = picked[:count]
	}
	return picked
}

// anchorRows spreads the anchors across the grid: rows 1, 3, 5 on 6x6
func anchorRows(size int) []int {
	rows := make([]int, anchorCount)
	for i := range rows {
		rows[i] = (2*i + 1) * size / (2 * anchorCount)
	}
	return rows
}

// placeAnchorWords lays each word horizontally on its row, at the first
// column where it fits
func (e *Engine) placeAnchorWords(b *model.Board, words []string) []placement {
	var placed []placement
	for i, row := range anchorRows(b.Size) {
		if i >= len(words) {
			break
		}
		word := words[i]
		for col := 0; col+utf8.RuneCountInString(word) <= b.Size; col++ {
			p := placement{word: word, row: row, col: col, horizontal: true}
			if canPlaceWordAt(b, p) {
				commit(b, p)
				placed = append(placed, p)
				break
			}
		}
	}
	return placed
}

// placeCrossingWords places at most one perpendicular word through each anchor
func (e *Engine) placeCrossingWords(b *model.Board, anchors []placement, candidates []string) []placement {
	used := make(map[string]bool, len(anchors))
	for _, a := range anchors {
		used[a.word] = true
	}

	var placed []placement
	for _, anchor := range anchors {
		var options []placement
		anchorLetters := []rune(anchor.word)
		for _, word := range candidates {
			if used[word] {
				continue
			}
			for ci, ch := range []rune(word) {
				for pi, pch := range anchorLetters {
					if ch != pch {
						continue
					}
					p := placement{word: word, horizontal: !anchor.horizontal}
					if anchor.horizontal {
						p.row, p.col = anchor.row-ci, anchor.col+pi
					} else {
						p.row, p.col = anchor.row+pi, anchor.col-ci
					}
					options = append(options, p)
				}
			}
		}
		random.Shuffle(e.random, options)

		for _, p := range options {
			if used[p.word] || !canPlaceWordAt(b, p) {
				continue
			}
			commit(b, p)
			used[p.word] = true
			placed = append(placed, p)
			break
		}
	}
	return placed
}

// placeRandomWords drops words at random positions, about half horizontal,
// trying a bounded number of positions per word
func (e *Engine) placeRandomWords(b *model.Board, words []string, target int) int {
	shuffled := make([]string, len(words))
	copy(shuffled, words)
	random.Shuffle(e.random, shuffled)

	placedCount := 0
	next := 0
	tryPlace := func(horizontal bool) {
		word := shuffled[next]
		next++
		n := utf8.RuneCountInString(word)
		if n > b.Size {
			return
		}
		for try := 0; try < randomPositionTries; try++ {
			p := placement{word: word, horizontal: horizontal}
			if horizontal {
				p.row = e.random.Intn(b.Size)
				p.col = e.random.Intn(b.Size - n + 1)
			} else {
				p.row = e.random.Intn(b.Size - n + 1)
				p.col = e.random.Intn(b.Size)
			}
			if canPlaceWordAt(b, p) {
				commit(b, p)
				placedCount++
				return
			}
		}
	}

	horizontalTarget := (target + 1) / 2
	for placedCount < horizontalTarget && next < len(shuffled) {
		tryPlace(true)
	}
	for placedCount < target && next < len(shuffled) {
		tryPlace(false)
	}
	return placedCount
}

// systematicSlots are fixed, non-overlapping spots for short words:
// horizontals on every other row, then verticals, both every third column
func systematicSlots(size int) []placement {
	var slots []placement
	for row := 0; row < size; row += 2 {
		for col := 0; col+systematicWordLength <= size; col += systematicColumnSpace {
			slots = append(slots, placement{row: row, col: col, horizontal: true})
		}
	}
	for row := 0; row+systematicWordLength <= size; row += systematicColumnSpace {
		for col := 0; col+systematicWordLength <= size; col += systematicColumnSpace {
			slots = append(slots, placement{row: row, col: col, horizontal: false})
		}
	}
	return slots
}

// systematicFallback is the last resort. It always returns a full board;
// the word count may still be below minWords.
func (e *Engine) systematicFallback(minWords int) (*model.Board, int) {
	var short []string
	for _, w := range e.words {
		if utf8.RuneCountInString(w) == systematicWordLength {
			short = append(short, w)
		}
	}
	slots := systematicSlots(e.config.Size)

	var best *model.Board
	bestFound := -1
	for attempt := 0; attempt < systematicAttempts; attempt++ {
		b := model.NewBoard(e.config.Size)
		words := make([]string, len(short))
		copy(words, short)
		random.Shuffle(e.random, words)

		for i, slot := range slots {
			if i >= len(words) {
				break
			}
			slot.word = words[i]
			if canPlaceWordAt(b, slot) {
				commit(b, slot)
			}
		}
		e.fillEmpty(b)

		found := len(e.findAllWords(b))
		if found >= minWords {
			return b, found
		}
		if found > bestFound {
			best, bestFound = b, found
		}
	}
	return best, bestFound
}
