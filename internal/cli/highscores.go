package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/lettercrush/internal/api/response"
)

func newHighScoresCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "highscores",
		Short: "List the best finished sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/highscores"
			if cmd.Flags().Changed("limit") {
				path += fmt.Sprintf("?limit=%d", limit)
			}

			var result response.HighScoresResponse
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of scores to show")

	return cmd
}
