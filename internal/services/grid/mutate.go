package grid

import (
	"log/slog"

	"github.com/mcoot/lettercrush/internal/model"
)

// SwapTiles returns a copy of g with the tiles at a and b exchanged.
// The input grid is not modified.
func SwapTiles(g model.Grid, a, b model.Position) model.Grid {
	out := g.Clone()
	ta, tb := out.At(a), out.At(b)
	ta.Row, ta.Col = b.Row, b.Col
	tb.Row, tb.Col = a.Row, a.Col
	out.Tiles[b.Row][b.Col] = ta
	out.Tiles[a.Row][a.Col] = tb
	return out
}

// Swapped evaluates a swap on g without touching the engine's grid.
// It returns the new grid and its straight-line matches when the swap
// forms at least one word.
func (e *Engine) Swapped(g model.Grid, a, b model.Position) (model.Grid, []model.WordMatch, bool) {
	if !g.InBounds(a) || !g.InBounds(b) || !a.Adjacent(b) {
		return g, nil, false
	}
	next := SwapTiles(g, a, b)
	matches := e.findAllWords(next.Letters())
	if len(matches) == 0 {
		return g, nil, false
	}
	return next, matches, true
}

// TrySwap exchanges two adjacent tiles if that forms at least one word.
// On failure the grid is left exactly as it was.
func (e *Engine) TrySwap(a, b model.Position) ([]model.WordMatch, bool) {
	next, matches, ok := e.Swapped(e.grid, a, b)
	if !ok {
		return nil, false
	}
	e.grid = next
	return matches, true
}

// ClearSelectedPositions marks the given tiles matched and unselected.
// Out-of-bounds positions are skipped with a warning. Returns the
// positions that were cleared.
func (e *Engine) ClearSelectedPositions(positions []model.Position) []model.Position {
	next := e.grid.Clone()
	cleared := make([]model.Position, 0, len(positions))
	for _, pos := range positions {
		if !next.InBounds(pos) {
			e.logger.Warn("skipping out-of-bounds position",
				slog.Int("row", pos.Row),
				slog.Int("col", pos.Col),
				slog.Int("size", next.Size),
			)
			continue
		}
		t := &next.Tiles[pos.Row][pos.Col]
		t.Matched = true
		t.Selected = false
		t.SelectionOrder = 0
		cleared = append(cleared, pos)
	}
	e.grid = next
	return cleared
}

// ApplyGravity drops unmatched tiles to the bottom of each column and
// fills the cells above them with new tiles. Returns every cell whose tile
// moved or was created.
func (e *Engine) ApplyGravity() []model.Position {
	next := e.grid.Clone()
	var changed []model.Position

	for col := 0; col < next.Size; col++ {
		write := next.Size - 1
		for row := next.Size - 1; row >= 0; row-- {
			t := next.Tiles[row][col]
			if t.Matched {
				continue
			}
			if row != write {
				t.Row = write
				next.Tiles[write][col] = t
				changed = append(changed, model.Position{Row: write, Col: col})
			}
			write--
		}
		for row := write; row >= 0; row-- {
			next.Tiles[row][col] = e.newTile(e.randomLetter(), row, col)
			changed = append(changed, model.Position{Row: row, Col: col})
		}
	}

	e.grid = next
	return changed
}

// EnsureMinimumWords regenerates the whole grid with random letters until
// at least minWords distinct words are selectable, up to maxAttempts
// regenerations. Returns false if the floor was never reached.
func (e *Engine) EnsureMinimumWords(minWords, maxAttempts int) bool {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		count := e.SelectableWordCount()
		if count >= minWords {
			if attempt > 0 {
				e.logger.Info("grid regenerated",
					slog.Int("words", count),
					slog.Int("attempts", attempt),
				)
			}
			return true
		}
		e.grid = e.randomGrid()
	}

	if e.SelectableWordCount() >= minWords {
		return true
	}
	e.logger.Warn("could not reach minimum selectable words",
		slog.Int("min_words", minWords),
		slog.Int("attempts", maxAttempts),
	)
	return false
}
