package model

import "unicode"

// Position identifies a cell on the grid
type Position struct {
	Row int `json:"row"` // 0-indexed from top
	Col int `json:"col"` // 0-indexed from left
}

// Adjacent reports whether two positions touch in any of the 8 directions.
// A position is not adjacent to itself.
func (p Position) Adjacent(other Position) bool {
	dr := abs(p.Row - other.Row)
	dc := abs(p.Col - other.Col)
	return max(dr, dc) == 1
}

// Orthogonal reports whether two positions share an edge
func (p Position) Orthogonal(other Position) bool {
	return abs(p.Row-other.Row)+abs(p.Col-other.Col) == 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Board is a bare letter matrix. It is used while constructing a grid,
// before letters are turned into tiles, and for letter-only searches.
type Board struct {
	Size  int      // Grid dimension (e.g., 6 for 6x6)
	Cells [][]rune // Row-major: Cells[row][col], 0 means empty
}

// NewBoard creates an empty board of the given size
func NewBoard(size int) *Board {
	cells := make([][]rune, size)
	for i := range cells {
		cells[i] = make([]rune, size)
	}
	return &Board{
		Size:  size,
		Cells: cells,
	}
}

// BoardFromRows builds a board from equal-length rows of letters.
// Returns ErrInvalidGrid if the rows do not form a square.
func BoardFromRows(rows []string) (*Board, error) {
	size := len(rows)
	if size == 0 {
		return nil, ErrInvalidGrid
	}
	b := NewBoard(size)
	for r, row := range rows {
		letters := []rune(row)
		if len(letters) != size {
			return nil, ErrInvalidGrid
		}
		for c, ch := range letters {
			if ch == '.' || ch == '?' {
				continue
			}
			b.Cells[r][c] = unicode.ToUpper(ch)
		}
	}
	return b, nil
}

// Get returns the letter at the given position, or 0 if empty
func (b *Board) Get(pos Position) rune {
	if !b.IsValidPosition(pos) {
		return 0
	}
	return b.Cells[pos.Row][pos.Col]
}

// Set places a letter at the given position
func (b *Board) Set(pos Position, letter rune) {
	if b.IsValidPosition(pos) {
		b.Cells[pos.Row][pos.Col] = letter
	}
}

// IsEmpty returns true if the cell at the given position is empty
func (b *Board) IsEmpty(pos Position) bool {
	return b.Get(pos) == 0
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Size && pos.Col >= 0 && pos.Col < b.Size
}

// IsFull returns true if all cells are filled
func (b *Board) IsFull() bool {
	return b.EmptyCount() == 0
}

// EmptyCount returns the number of empty cells
func (b *Board) EmptyCount() int {
	count := 0
	for row := 0; row < b.Size; row++ {
		for col := 0; col < b.Size; col++ {
			if b.Cells[row][col] == 0 {
				count++
			}
		}
	}
	return count
}

// Clear empties every cell
func (b *Board) Clear() {
	for row := range b.Cells {
		clear(b.Cells[row])
	}
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	out := NewBoard(b.Size)
	for row := range b.Cells {
		copy(out.Cells[row], b.Cells[row])
	}
	return out
}

// GetRow returns all letters in the given row
func (b *Board) GetRow(row int) []rune {
	if row < 0 || row >= b.Size {
		return nil
	}
	result := make([]rune, b.Size)
	copy(result, b.Cells[row])
	return result
}

// GetCol returns all letters in the given column
func (b *Board) GetCol(col int) []rune {
	if col < 0 || col >= b.Size {
		return nil
	}
	result := make([]rune, b.Size)
	for row := 0; row < b.Size; row++ {
		result[row] = b.Cells[row][col]
	}
	return result
}

// Rows renders the board as strings, empty cells as '.'
func (b *Board) Rows() []string {
	rows := make([]string, b.Size)
	for r := range b.Cells {
		line := make([]rune, b.Size)
		for c, ch := range b.Cells[r] {
			if ch == 0 {
				ch = '.'
			}
			line[c] = ch
		}
		rows[r] = string(line)
	}
	return rows
}
