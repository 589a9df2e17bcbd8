package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/lettercrush/internal/api/request"
	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/model"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Play a session on the server",
		Long: `Create and play LetterCrush sessions through the API.

Positions are written as ROW,COL with 0,0 the top-left tile.`,
	}

	cmd.AddCommand(newSessionNewCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionSelectCmd())
	cmd.AddCommand(newSessionClearCmd())
	cmd.AddCommand(newSessionSubmitCmd())
	cmd.AddCommand(newSessionSwapCmd())
	cmd.AddCommand(newSessionActionCmd("pause", "Pause the timer"))
	cmd.AddCommand(newSessionActionCmd("resume", "Resume a paused session"))
	cmd.AddCommand(newSessionActionCmd("recover", "Force a stuck session back to idle"))
	cmd.AddCommand(newSessionActionCmd("restart", "Start over with a new board"))
	cmd.AddCommand(newSessionHintCmd())
	cmd.AddCommand(newSessionEndCmd())

	return cmd
}

func sessionPath(id string, suffix string) string {
	return "/api/v1/sessions/" + url.PathEscape(id) + suffix
}

// parsePosition parses "ROW,COL"
func parsePosition(s string) (model.Position, error) {
	rowStr, colStr, ok := strings.Cut(s, ",")
	if !ok {
		return model.Position{}, fmt.Errorf("invalid position %q: expected ROW,COL", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowStr))
	if err != nil {
		return model.Position{}, fmt.Errorf("invalid row in %q: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colStr))
	if err != nil {
		return model.Position{}, fmt.Errorf("invalid column in %q: %w", s, err)
	}
	return model.Position{Row: row, Col: col}, nil
}

func parsePositions(args []string) ([]model.Position, error) {
	positions := make([]model.Position, 0, len(args))
	for _, arg := range args {
		pos, err := parsePosition(arg)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

func newSessionNewCmd() *cobra.Command {
	var (
		lang     string
		minWords int
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.CreateSessionRequest{
				Language: lang,
				MinWords: minWords,
			}

			var result response.Session
			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Language: en, pl (default: server default)")
	cmd.Flags().IntVar(&minWords, "min-words", 0, "Minimum words on the first board (default: server default)")

	return cmd
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Get(sessionPath(args[0], ""), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <session-id> <ROW,COL>...",
		Short: "Toggle tiles in the selection",
		Long: `Toggle each tile in turn. Selecting the last selected tile again
removes it; selecting an earlier tile cuts the selection back to it.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := parsePositions(args[1:])
			if err != nil {
				return err
			}

			var result response.Session
			for _, pos := range positions {
				req := request.SelectRequest{Row: pos.Row, Col: pos.Col}
				if err := client.Post(sessionPath(args[0], "/select"), req, &result); err != nil {
					return err
				}
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session-id>",
		Short: "Clear the selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Delete(sessionPath(args[0], "/select"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <session-id> [word] [ROW,COL...]",
		Short: "Play a word",
		Long: `Play a word along a path of tiles.

With no path the current selection is used. With no word the word is
read from the path.`,
		Example: `  lettercrush session submit abc123 CAT 0,0 0,1 0,2
  lettercrush session submit abc123`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req request.SubmitRequest
			rest := args[1:]
			if len(rest) > 0 && !strings.Contains(rest[0], ",") {
				req.Word = strings.ToUpper(rest[0])
				rest = rest[1:]
			}
			path, err := parsePositions(rest)
			if err != nil {
				return err
			}
			if len(path) > 0 {
				req.Path = path
			}

			var result response.SubmitResponse
			if err := client.Post(sessionPath(args[0], "/words"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionSwapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <session-id> <ROW,COL> <ROW,COL>",
		Short: "Swap two adjacent tiles",
		Long: `Swap two orthogonally adjacent tiles. The swap is kept only when it
forms a straight-line word; otherwise it costs a strike.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := parsePositions(args[1:])
			if err != nil {
				return err
			}

			req := request.SwapRequest{A: positions[0], B: positions[1]}
			var result response.SubmitResponse
			if err := client.Post(sessionPath(args[0], "/swap"), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

// newSessionActionCmd builds a command that posts to a bodyless session
// endpoint and prints the resulting session
func newSessionActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <session-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session
			if err := client.Post(sessionPath(args[0], "/"+action), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionHintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint <session-id>",
		Short: "Show the longest word on the grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.HintResponse
			if err := client.Get(sessionPath(args[0], "/hint"), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newSessionEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <session-id>",
		Short: "End and remove a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(sessionPath(args[0], ""), nil); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Session ended")
			return nil
		},
	}
}
