package commands

import (
	"errors"

	"partquote/lib/pricebreak"

	"github.com/spf13/cobra"
)

var quoteQuantity *int

func init() {
	quoteQuantity = quoteCmd.Flags().IntP("qty", "q", 1, "The quantity to buy.")
	rootCmd.AddCommand(quoteCmd)
}

var quoteCmd = &cobra.Command{
	Use:   "quote <part number> [--qty <n>]",
	Short: "Looks a part up at every configured supplier and recommends how many to buy and where.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if *quoteQuantity <= 0 {
			return pricebreak.ErrInvalidQuantity
		}
		if args[0] == "" {
			return errors.New("part number must not be empty")
		}

		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		agg, err := newAggregator(cfg)
		if err != nil {
			return err
		}

		quote, err := agg.Quote(cmd.Context(), args[0], *quoteQuantity)
		if err != nil {
			return err
		}
		renderQuote(cmd.OutOrStdout(), quote)
		return nil
	},
}
