package commands

import (
	"fmt"
	"strconv"
	"strings"

	"partquote/lib/pricebreak"

	"github.com/spf13/cobra"
)

var (
	optimizeQuantity *int
	optimizeBreaks   *[]string
)

func init() {
	optimizeQuantity = optimizeCmd.Flags().IntP("qty", "q", 1, "The quantity to buy.")
	optimizeBreaks = optimizeCmd.Flags().StringArrayP("break", "b", nil, "A price break as <quantity>=<unit price>, repeatable.")
	rootCmd.AddCommand(optimizeCmd)
}

// parseBreaks reads "10=1.50" style flags into a table.
func parseBreaks(raw []string) (pricebreak.Table, error) {
	prices := map[int]string{}
	for _, b := range raw {
		qtyText, price, ok := strings.Cut(b, "=")
		if !ok {
			return pricebreak.Table{}, fmt.Errorf("break %q: expected <quantity>=<unit price>", b)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyText))
		if err != nil {
			return pricebreak.Table{}, fmt.Errorf("break %q: %w", b, err)
		}
		if _, exists := prices[qty]; exists {
			return pricebreak.Table{}, fmt.Errorf("break %q: %w", b, pricebreak.ErrDuplicateBreak)
		}
		prices[qty] = price
	}
	return pricebreak.FromStrings(prices)
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize --break <qty>=<price> ... [--qty <n>]",
	Short: "Recommends a purchase quantity for a price break table given on the command line.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := parseBreaks(*optimizeBreaks)
		if err != nil {
			return err
		}
		rec, err := pricebreak.Recommend(table, *optimizeQuantity)
		if err != nil {
			return err
		}
		renderRecommendation(cmd.OutOrStdout(), rec)
		return nil
	},
}
