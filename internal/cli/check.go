package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/model"
)

func newCheckCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "check <word>",
		Short: "Look a word up in the server's dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/dictionary/" + url.PathEscape(lang) + "/check/" + url.PathEscape(args[0])

			var result response.DictionaryCheckResponse
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", string(model.LanguageEnglish), "Language: en, pl")

	return cmd
}
