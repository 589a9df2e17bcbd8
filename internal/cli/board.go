package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/dictionary"
	"github.com/mcoot/lettercrush/internal/services/grid"
	"github.com/mcoot/lettercrush/internal/services/scoring"
	"github.com/mcoot/lettercrush/internal/storage/memory"
	"github.com/mcoot/lettercrush/internal/wordlist"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Generate and solve boards offline",
	}

	cmd.AddCommand(newBoardGenerateCmd())
	cmd.AddCommand(newBoardSolveCmd())

	return cmd
}

func newBoardGenerateCmd() *cobra.Command {
	var (
		size     int
		minWords int
		lang     string
		seed     uint64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a board and list the words on it",
		Long: `Generate a board the way a new session does and print it with its
straight-line words, every selectable word and a hint.

The same --seed always gives the same board for a given word list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			language, err := model.ParseLanguage(lang)
			if err != nil {
				return err
			}
			if size < 3 {
				return fmt.Errorf("size must be at least 3")
			}
			if minWords < 0 {
				return fmt.Errorf("min-words must not be negative")
			}

			var rng random.Random = random.New()
			if cmd.Flags().Changed("seed") {
				rng = random.NewSeeded(seed)
			}

			engine, err := newOfflineEngine(cmd, language, size, rng)
			if err != nil {
				return err
			}
			engine.Initialize(cmd.Context(), minWords)

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(boardReport(engine))
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", grid.DefaultSize, "Grid size")
	cmd.Flags().IntVar(&minWords, "min-words", 3, "Minimum straight-line words on the board")
	cmd.Flags().StringVar(&lang, "lang", string(model.LanguageEnglish), "Language: en, pl")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible board")

	return cmd
}

func newBoardSolveCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "solve <ROW1> <ROW2> ...",
		Short: "List the words on a given board",
		Long: `Load a square board, one argument per row, and list its words.

Use '.' for an empty cell; empty cells get random letters.`,
		Example: `  lettercrush board solve CATS ODXE GQRT NFYZ`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, err := model.ParseLanguage(lang)
			if err != nil {
				return err
			}
			rows := make([]string, len(args))
			for i, row := range args {
				normalized, ok := wordlist.Normalize(language, row)
				if !ok {
					// Keep placeholders for empty cells
					normalized = row
				}
				rows[i] = normalized
			}
			board, err := model.BoardFromRows(rows)
			if err != nil {
				return fmt.Errorf("rows must form a square board: %w", err)
			}

			engine, err := newOfflineEngine(cmd, language, board.Size, random.New())
			if err != nil {
				return err
			}
			if err := engine.Load(board); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(boardReport(engine))
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", string(model.LanguageEnglish), "Language: en, pl")

	return cmd
}

func newOfflineEngine(cmd *cobra.Command, language model.Language, size int, rng random.Random) (*grid.Engine, error) {
	dict, words, err := loadDictionary(language)
	if err != nil {
		return nil, err
	}
	scorer := scoring.New(scoring.DefaultConfig(), language)
	return grid.New(grid.Config{Size: size, Language: language}, dict, scorer, words, rng, cliLogger(cmd)), nil
}

func loadDictionary(language model.Language) (*dictionary.Service, []string, error) {
	words, err := wordlist.Load(cfg.DictionaryDir, language)
	if err != nil {
		return nil, nil, err
	}
	dict := dictionary.New(memory.New(), language)
	if err := dict.LoadWords(words); err != nil {
		return nil, nil, fmt.Errorf("load %s dictionary: %w", language, err)
	}
	return dict, dict.Words(), nil
}

func cliLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func boardReport(engine *grid.Engine) BoardReport {
	report := BoardReport{
		Language: string(engine.Language()),
		Size:     engine.Size(),
		Rows:     response.GridFromModel(engine.Grid()).Rows(),
		Lines:    response.WordMatchesFromModel(engine.FindAllWords()),
		Words:    engine.FindAllPossibleWords(),
		HasMoves: engine.HasValidMoves(),
	}
	if report.Words == nil {
		report.Words = []string{}
	}
	if hint, ok := engine.Hint(); ok {
		m := response.WordMatchFromModel(hint)
		report.Hint = &m
	}
	return report
}
