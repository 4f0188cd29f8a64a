package commands

import (
	"errors"
	"fmt"

	"partquote/lib/pricebreak"

	"github.com/spf13/cobra"
)

var aggregateQuantity *int

func init() {
	aggregateQuantity = aggregateCmd.Flags().IntP("qty", "q", 1, "The quantity to recommend a purchase for at every supplier.")
	rootCmd.AddCommand(aggregateCmd)
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [--qty <n>]",
	Short: "Looks up every part listed in the config at every configured supplier.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if *aggregateQuantity <= 0 {
			return fmt.Errorf("%w: %d", pricebreak.ErrInvalidQuantity, *aggregateQuantity)
		}

		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if len(cfg.Parts) == 0 {
			return errors.New("no parts listed in the config")
		}
		agg, err := newAggregator(cfg)
		if err != nil {
			return err
		}

		report := agg.Collect(cmd.Context(), cfg.Parts)
		renderReport(cmd.OutOrStdout(), report, *aggregateQuantity)
		return nil
	},
}
