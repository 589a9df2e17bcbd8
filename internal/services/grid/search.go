package grid

import (
	"sort"

	"github.com/mcoot/lettercrush/internal/model"
)

const (
	// maxFreeformLength bounds the DFS used to count selectable words
	maxFreeformLength = 12
	// maxPathLength bounds the DFS that keeps every path
	maxPathLength = 8
)

var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// FindAllWords returns the straight-line words on the grid. Where words
// overlap, only the longest is kept.
func (e *Engine) FindAllWords() []model.WordMatch {
	return e.findAllWords(e.grid.Letters())
}

// FindStraightLineWords returns every horizontal and vertical word on the
// grid without resolving overlaps
func (e *Engine) FindStraightLineWords() []model.WordMatch {
	return e.straightLineCandidates(e.grid.Letters())
}

func (e *Engine) findAllWords(b *model.Board) []model.WordMatch {
	candidates := e.straightLineCandidates(b)

	// Greedy: prefer longer words
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Len() > candidates[j].Len()
	})

	used := make(map[model.Position]bool)
	var selected []model.WordMatch
	for _, c := range candidates {
		overlaps := false
		for _, pos := range c.Positions {
			if used[pos] {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		for _, pos := range c.Positions {
			used[pos] = true
		}
		selected = append(selected, c)
	}
	return selected
}

// straightLineCandidates scans rows then columns for valid runs
func (e *Engine) straightLineCandidates(b *model.Board) []model.WordMatch {
	var matches []model.WordMatch

	for row := 0; row < b.Size; row++ {
		for _, vw := range e.dict.FindAllValidWords(b.GetRow(row)) {
			positions := make([]model.Position, 0, vw.End-vw.Start)
			for col := vw.Start; col < vw.End; col++ {
				positions = append(positions, model.Position{Row: row, Col: col})
			}
			matches = append(matches, e.match(vw.Word, positions, model.DirectionHorizontal))
		}
	}

	for col := 0; col < b.Size; col++ {
		for _, vw := range e.dict.FindAllValidWords(b.GetCol(col)) {
			positions := make([]model.Position, 0, vw.End-vw.Start)
			for row := vw.Start; row < vw.End; row++ {
				positions = append(positions, model.Position{Row: row, Col: col})
			}
			matches = append(matches, e.match(vw.Word, positions, model.DirectionVertical))
		}
	}

	return matches
}

func (e *Engine) match(word string, positions []model.Position, dir model.Direction) model.WordMatch {
	return model.WordMatch{
		Word:      word,
		Positions: positions,
		Direction: dir,
		Score:     e.scorer.ScoreWord(word, 1).Total,
	}
}

// searcher is the state of one depth-first search. It lives only for the
// duration of a single search call.
type searcher struct {
	board   *model.Board
	dict    Dictionary
	maxLen  int
	visited []bool
	path    []model.Position
	letters []rune
	visit   func(word string, path []model.Position)
}

func newSearcher(b *model.Board, dict Dictionary, maxLen int, visit func(string, []model.Position)) *searcher {
	return &searcher{
		board:   b,
		dict:    dict,
		maxLen:  maxLen,
		visited: make([]bool, b.Size*b.Size),
		visit:   visit,
	}
}

func (s *searcher) run() {
	for r := 0; r < s.board.Size; r++ {
		for c := 0; c < s.board.Size; c++ {
			s.walk(model.Position{Row: r, Col: c})
		}
	}
}

func (s *searcher) walk(pos model.Position) {
	idx := pos.Row*s.board.Size + pos.Col
	s.visited[idx] = true
	s.path = append(s.path, pos)
	s.letters = append(s.letters, s.board.Get(pos))
	defer func() {
		s.visited[idx] = false
		s.path = s.path[:len(s.path)-1]
		s.letters = s.letters[:len(s.letters)-1]
	}()

	word := string(s.letters)
	n := len(s.letters)
	if n >= 2 && !s.dict.HasPrefix(word) {
		return
	}
	if n >= 3 && s.dict.IsValidWord(word) {
		s.visit(word, s.path)
	}
	if n >= s.maxLen {
		return
	}

	for _, d := range directions {
		next := model.Position{Row: pos.Row + d[0], Col: pos.Col + d[1]}
		if !s.board.IsValidPosition(next) || s.visited[next.Row*s.board.Size+next.Col] {
			continue
		}
		s.walk(next)
	}
}

// FindAllPossibleWords returns the distinct words that can be selected by
// chaining adjacent tiles, sorted alphabetically
func (e *Engine) FindAllPossibleWords() []string {
	return e.possibleWords(e.grid.Letters())
}

func (e *Engine) possibleWords(b *model.Board) []string {
	found := make(map[string]struct{})
	newSearcher(b, e.dict, maxFreeformLength, func(word string, _ []model.Position) {
		found[word] = struct{}{}
	}).run()

	words := make([]string, 0, len(found))
	for w := range found {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// FindWordsWithPositions returns every selectable word with the path that
// spells it. The same word may appear once per distinct path.
func (e *Engine) FindWordsWithPositions() []model.WordMatch {
	var matches []model.WordMatch
	newSearcher(e.grid.Letters(), e.dict, maxPathLength, func(word string, path []model.Position) {
		positions := make([]model.Position, len(path))
		copy(positions, path)
		matches = append(matches, e.match(word, positions, model.DirectionFreeform))
	}).run()
	return matches
}

// SelectableWordCount returns the number of distinct selectable words
func (e *Engine) SelectableWordCount() int {
	return len(e.FindAllPossibleWords())
}

// Hint returns the longest selectable word, best score first on ties
func (e *Engine) Hint() (model.WordMatch, bool) {
	matches := e.FindWordsWithPositions()
	if len(matches) == 0 {
		return model.WordMatch{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		switch {
		case m.Len() > best.Len():
			best = m
		case m.Len() == best.Len() && m.Score > best.Score:
			best = m
		case m.Len() == best.Len() && m.Score == best.Score && m.Word < best.Word:
			best = m
		}
	}
	return best, true
}

// HasValidMoves reports whether some orthogonal swap leaves a straight-line
// word in one of the rows or columns it touches
func (e *Engine) HasValidMoves() bool {
	b := e.grid.Letters()
	size := b.Size

	lineHasWord := func(letters []rune) bool {
		return len(e.dict.FindAllValidWords(letters)) > 0
	}

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			// Swap right: touches row r, columns c and c+1
			if c+1 < size {
				b.Cells[r][c], b.Cells[r][c+1] = b.Cells[r][c+1], b.Cells[r][c]
				found := lineHasWord(b.GetRow(r)) || lineHasWord(b.GetCol(c)) || lineHasWord(b.GetCol(c+1))
				b.Cells[r][c], b.Cells[r][c+1] = b.Cells[r][c+1], b.Cells[r][c]
				if found {
					return true
				}
			}
			// Swap down: touches rows r and r+1, column c
			if r+1 < size {
				b.Cells[r][c], b.Cells[r+1][c] = b.Cells[r+1][c], b.Cells[r][c]
				found := lineHasWord(b.GetRow(r)) || lineHasWord(b.GetRow(r+1)) || lineHasWord(b.GetCol(c))
				b.Cells[r][c], b.Cells[r+1][c] = b.Cells[r+1][c], b.Cells[r][c]
				if found {
					return true
				}
			}
		}
	}
	return false
}
