package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/lettercrush/internal/api/response"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long:  "Report the server status and the number of live sessions. Exits non-zero unless the server reports ok.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.HealthResponse
			if err := client.Get("/api/v1/health", &result); err != nil {
				return fmt.Errorf("server at %s unreachable: %w", client.BaseURL(), err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			if result.Status != "ok" {
				return fmt.Errorf("server at %s reports %q", client.BaseURL(), result.Status)
			}
			return nil
		},
	}
}
