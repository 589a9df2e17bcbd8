package model

// TileID identifies a tile for as long as it stays on the grid
type TileID string

// Tile is one lettered cell of the play grid
type Tile struct {
	ID             TileID
	Letter         rune
	Row            int
	Col            int
	Selected       bool
	Matched        bool
	SelectionOrder int // 1-based position in the current selection, 0 if unselected
}

// Position returns the tile's grid coordinates
func (t Tile) Position() Position {
	return Position{Row: t.Row, Col: t.Col}
}

// Grid is a square matrix of tiles, Tiles[row][col]
type Grid struct {
	Size  int
	Tiles [][]Tile
}

// NewGrid allocates a grid of the given size with zero-value tiles
func NewGrid(size int) Grid {
	tiles := make([][]Tile, size)
	for i := range tiles {
		tiles[i] = make([]Tile, size)
	}
	return Grid{Size: size, Tiles: tiles}
}

// InBounds returns true if the position lies on the grid
func (g Grid) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.Size && pos.Col >= 0 && pos.Col < g.Size
}

// At returns the tile at the given position. The position must be in bounds.
func (g Grid) At(pos Position) Tile {
	return g.Tiles[pos.Row][pos.Col]
}

// Clone returns a deep copy; tiles are values so copying rows is enough
func (g Grid) Clone() Grid {
	out := NewGrid(g.Size)
	for r := range g.Tiles {
		copy(out.Tiles[r], g.Tiles[r])
	}
	return out
}

// Letters returns the letters of the grid as a Board
func (g Grid) Letters() *Board {
	b := NewBoard(g.Size)
	for r := range g.Tiles {
		for c := range g.Tiles[r] {
			b.Cells[r][c] = g.Tiles[r][c].Letter
		}
	}
	return b
}

// Equal reports whether two grids hold the same tiles in the same cells
func (g Grid) Equal(other Grid) bool {
	if g.Size != other.Size {
		return false
	}
	for r := range g.Tiles {
		for c := range g.Tiles[r] {
			if g.Tiles[r][c] != other.Tiles[r][c] {
				return false
			}
		}
	}
	return true
}
