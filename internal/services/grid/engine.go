package grid

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/dictionary"
)

// DefaultSize is the grid dimension used when none is configured
const DefaultSize = 6

// Dictionary is the word lookup the engine searches against
type Dictionary interface {
	IsValidWord(word string) bool
	HasPrefix(prefix string) bool
	FindAllValidWords(letters []rune) []dictionary.ValidWord
}

// Scorer ranks words found on the grid
type Scorer interface {
	ScoreWord(word string, combo int) model.ScoreResult
}

// Config holds the engine settings
type Config struct {
	Size     int
	Language model.Language
}

// Engine owns a session's tile grid and every positional algorithm on it.
// It is not safe for concurrent use; a session drives it from one goroutine.
type Engine struct {
	config  Config
	dict    Dictionary
	scorer  Scorer
	words   []string // generation source
	letters model.LetterTable
	random  random.Random
	logger  *slog.Logger

	grid      model.Grid
	idCounter int
}

// New creates an Engine. The grid is filled with random letters until
// Initialize is called.
func New(config Config, dict Dictionary, scorer Scorer, words []string, rng random.Random, logger *slog.Logger) *Engine {
	if config.Size <= 0 {
		config.Size = DefaultSize
	}
	if config.Language == "" {
		config.Language = model.LanguageEnglish
	}
	e := &Engine{
		config:  config,
		dict:    dict,
		scorer:  scorer,
		words:   normalizeWords(words),
		letters: config.Language.Letters(),
		random:  rng,
		logger:  logger.With(slog.String("component", "grid")),
	}
	e.grid = e.randomGrid()
	return e
}

func normalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Size returns the grid dimension
func (e *Engine) Size() int {
	return e.config.Size
}

// Language returns the language whose letter tables are in use
func (e *Engine) Language() model.Language {
	return e.config.Language
}

// SetLanguage switches letter tables and the generation word source.
// The current grid is kept until the next Initialize.
func (e *Engine) SetLanguage(language model.Language, words []string) {
	e.config.Language = language
	e.letters = language.Letters()
	e.words = normalizeWords(words)
}

// Grid returns a snapshot of the current grid
func (e *Engine) Grid() model.Grid {
	return e.grid.Clone()
}

// Load replaces the grid with the given letters. Empty cells get random
// letters so the grid is always full.
func (e *Engine) Load(board *model.Board) error {
	if board.Size != e.config.Size {
		return fmt.Errorf("%w: expected %dx%d, got %dx%d",
			model.ErrInvalidGrid, e.config.Size, e.config.Size, board.Size, board.Size)
	}
	b := board.Clone()
	e.fillEmpty(b)
	e.grid = e.tilesFrom(b)
	return nil
}

// AreAdjacent reports whether two cells touch in any of the 8 directions
func (e *Engine) AreAdjacent(a, b model.Position) bool {
	return a.Adjacent(b)
}

// ValidatePath checks that a path stays on the grid, visits no cell twice
// and only steps between adjacent cells
func (e *Engine) ValidatePath(path []model.Position) error {
	seen := make(map[model.Position]bool, len(path))
	for i, pos := range path {
		if !e.grid.InBounds(pos) {
			return fmt.Errorf("%w: (%d,%d)", model.ErrInvalidPosition, pos.Row, pos.Col)
		}
		if seen[pos] {
			return fmt.Errorf("%w: (%d,%d) selected twice", model.ErrInvalidPosition, pos.Row, pos.Col)
		}
		seen[pos] = true
		if i > 0 && !path[i-1].Adjacent(pos) {
			return model.ErrNotAdjacent
		}
	}
	return nil
}

// WordAt returns the letters spelled by a path. Out-of-bounds cells are skipped.
func (e *Engine) WordAt(path []model.Position) string {
	var b strings.Builder
	for _, pos := range path {
		if e.grid.InBounds(pos) {
			b.WriteRune(e.grid.At(pos).Letter)
		}
	}
	return b.String()
}

// SetSelection marks the tiles of path as selected, in order, and
// clears any previous selection
func (e *Engine) SetSelection(path []model.Position) {
	e.ClearSelection()
	for i, pos := range path {
		if !e.grid.InBounds(pos) {
			continue
		}
		t := &e.grid.Tiles[pos.Row][pos.Col]
		t.Selected = true
		t.SelectionOrder = i + 1
	}
}

// ClearSelection removes selection state from every tile
func (e *Engine) ClearSelection() {
	for r := range e.grid.Tiles {
		for c := range e.grid.Tiles[r] {
			e.grid.Tiles[r][c].Selected = false
			e.grid.Tiles[r][c].SelectionOrder = 0
		}
	}
}

func (e *Engine) newTile(letter rune, row, col int) model.Tile {
	e.idCounter++
	return model.Tile{
		ID:     model.TileID(fmt.Sprintf("tile-%d", e.idCounter)),
		Letter: letter,
		Row:    row,
		Col:    col,
	}
}

// randomLetter draws a letter weighted by the language frequency table
func (e *Engine) randomLetter() rune {
	total := e.letters.TotalWeight()
	target := e.random.Float64() * total
	for _, lw := range e.letters.Weights {
		target -= lw.Weight
		if target < 0 {
			return lw.Letter
		}
	}
	return e.letters.Fallback
}

func (e *Engine) fillEmpty(b *model.Board) {
	for r := 0; r < b.Size; r++ {
		for c := 0; c < b.Size; c++ {
			if b.Cells[r][c] == 0 {
				b.Cells[r][c] = e.randomLetter()
			}
		}
	}
}

func (e *Engine) tilesFrom(b *model.Board) model.Grid {
	g := model.NewGrid(b.Size)
	for r := 0; r < b.Size; r++ {
		for c := 0; c < b.Size; c++ {
			g.Tiles[r][c] = e.newTile(b.Cells[r][c], r, c)
		}
	}
	return g
}

func (e *Engine) randomGrid() model.Grid {
	b := model.NewBoard(e.config.Size)
	e.fillEmpty(b)
	return e.tilesFrom(b)
}

// EngineInterface is the grid surface the turn controller depends on
type EngineInterface interface {
	Initialize(ctx context.Context, minWords int) int
	Grid() model.Grid
	Size() int
	ValidatePath(path []model.Position) error
	WordAt(path []model.Position) string
	SetSelection(path []model.Position)
	ClearSelection()
	TrySwap(a, b model.Position) ([]model.WordMatch, bool)
	ClearSelectedPositions(positions []model.Position) []model.Position
	ApplyGravity() []model.Position
	EnsureMinimumWords(minWords, maxAttempts int) bool
	SelectableWordCount() int
	HasValidMoves() bool
	Hint() (model.WordMatch, bool)
}

var _ EngineInterface = (*Engine)(nil)
