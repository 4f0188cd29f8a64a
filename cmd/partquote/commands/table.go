package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"partquote/lib/aggregate"
	"partquote/lib/pricebreak"
	"partquote/lib/supplier"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func formatAmount(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return "-"
	}
	return amount.Decimal.String()
}

func formatUnits(units int) string {
	if units == 0 {
		return "-"
	}
	return fmt.Sprint(units)
}

func formatBreaks(prices map[int]string) string {
	quantities := make([]int, 0, len(prices))
	for qty := range prices {
		quantities = append(quantities, qty)
	}
	slices.Sort(quantities)

	parts := make([]string, len(quantities))
	for i, qty := range quantities {
		parts[i] = fmt.Sprintf("%d: %s", qty, prices[qty])
	}
	if len(parts) == 0 {
		return supplier.NotAvailable
	}
	return strings.Join(parts, ", ")
}

func renderRecommendation(out io.Writer, rec pricebreak.Recommendation) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Unit price", "Units", "Total", "Optimal", "Savings", "Explanation"})
	t.AppendRow(table.Row{
		formatAmount(rec.ApplicableUnitPrice),
		formatUnits(rec.RecommendedUnits),
		formatAmount(rec.TotalCost),
		rec.IsOptimal,
		rec.Savings.String(),
		rec.Explanation,
	})
	t.Render()
}

func renderQuote(out io.Writer, quote aggregate.Quote) {
	t := newTable(out)
	t.SetTitle(fmt.Sprintf("%s x %d", quote.PartNumber, quote.Quantity))
	t.AppendHeader(table.Row{
		"", "Supplier", "Manufacturer", "Availability", "Lifecycle",
		"Unit price", "Units", "Total", "Currency", "Explanation",
	})

	for i, sq := range quote.Suppliers {
		marker := ""
		if i == quote.Best {
			marker = "*"
		}
		if sq.Err != nil {
			t.AppendRow(table.Row{marker, sq.Supplier, "", "", "", "", "", "", "", sq.Err.Error()})
			continue
		}
		rec := sq.Recommendation
		t.AppendRow(table.Row{
			marker,
			sq.Supplier,
			sq.Offer.Manufacturer,
			sq.Offer.Availability,
			sq.Offer.LifeCycleStatus,
			formatAmount(rec.ApplicableUnitPrice),
			formatUnits(rec.RecommendedUnits),
			formatAmount(rec.TotalCost),
			sq.Offer.Currency,
			rec.Explanation,
		})
	}
	t.Render()
}

func renderReport(out io.Writer, report aggregate.Report, quantity int) {
	t := newTable(out)
	t.SetTitle(fmt.Sprintf("x %d", quantity))
	t.AppendHeader(table.Row{
		"Part", "Description", "Supplier", "Availability", "Prices",
		"Units", "Total", "Explanation", "URL",
	})

	for _, pr := range report.Parts {
		for _, result := range pr.Results {
			if result.Err != nil {
				t.AppendRow(table.Row{
					pr.Part.PartNumber, pr.Part.Description, result.Supplier,
					supplier.NotAvailable, "", "", "", result.Err.Error(), "",
				})
				continue
			}

			units, total, explanation := "-", "-", ""
			rec, err := aggregate.RecommendOffer(result.Offer, quantity)
			if err != nil {
				explanation = err.Error()
			} else {
				units = formatUnits(rec.RecommendedUnits)
				total = formatAmount(rec.TotalCost)
				explanation = rec.Explanation
			}

			t.AppendRow(table.Row{
				pr.Part.PartNumber,
				pr.Part.Description,
				result.Supplier,
				result.Offer.Availability,
				formatBreaks(result.Offer.Prices),
				units,
				total,
				explanation,
				result.Offer.URL,
			})
		}
		t.AppendSeparator()
	}
	t.Render()
}
