package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/scoring"
	"github.com/mcoot/lettercrush/internal/wordlist"
)

func newScoreCmd() *cobra.Command {
	var (
		combo int
		lang  string
	)

	cmd := &cobra.Command{
		Use:   "score <word>",
		Short: "Show how a word would score",
		Long: `Score a word with the game's scoring rules and print the breakdown.

The word is not checked against the dictionary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, err := model.ParseLanguage(lang)
			if err != nil {
				return err
			}
			word, ok := wordlist.Normalize(language, args[0])
			if !ok {
				return fmt.Errorf("%q cannot be spelled with %s tiles", args[0], language)
			}
			if combo < 1 {
				return fmt.Errorf("combo must be at least 1")
			}

			result := scoring.New(scoring.DefaultConfig(), language).ScoreWord(word, combo)
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(ScoreReport{
				Word:            word,
				Language:        string(language),
				Combo:           combo,
				Base:            result.Base,
				LengthBonus:     result.LengthBonus,
				LetterBonus:     result.LetterBonus,
				ComboMultiplier: result.ComboMultiplier,
				Total:           result.Total,
				Formatted:       scoring.FormatScore(result.Total),
				Breakdown:       scoring.Breakdown(result),
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&combo, "combo", 1, "Combo level")
	cmd.Flags().StringVar(&lang, "lang", string(model.LanguageEnglish), "Language: en, pl")

	return cmd
}
