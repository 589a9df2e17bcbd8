package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "lettercrush",
		Short: "CLI tool for the LetterCrush word grid game",
		Long: `lettercrush works with LetterCrush boards offline and talks to the
LetterCrush JSON API.

Offline commands (board, score) need no server. Session, events,
highscores, check and health commands call the server given by --server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output != "text" && cfg.Output != "json" {
				return fmt.Errorf("unknown output format %q: use text or json", cfg.Output)
			}
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: LETTERCRUSH_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: LETTERCRUSH_OUTPUT)")
	rootCmd.PersistentFlags().StringVar(&cfg.DictionaryDir, "dict-dir", cfg.DictionaryDir, "Directory of <lang>.txt word lists for offline commands (env: DICTIONARY_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Offline
	rootCmd.AddCommand(newBoardCmd())
	rootCmd.AddCommand(newScoreCmd())

	// API
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHighScoresCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
