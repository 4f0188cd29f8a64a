package pricebreak

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Recommendation is the result of Recommend. Zero quantities and invalid
// NullDecimals mean the value is absent.
type Recommendation struct {
	ApplicableUnitPrice decimal.NullDecimal
	TotalCost           decimal.NullDecimal
	IsOptimal           bool
	RecommendedUnits    int
	AlternativeQuantity int
	Explanation         string

	// RequestedTotal is the cost of the units required at the applicable
	// tier, before any cheaper higher tier is considered.
	RequestedTotal decimal.NullDecimal
	// Savings is RequestedTotal - TotalCost.
	Savings decimal.Decimal
}

func (r Recommendation) HasAlternative() bool {
	return !r.IsOptimal && r.AlternativeQuantity > 0
}

func (r Recommendation) HasPrice() bool {
	return r.ApplicableUnitPrice.Valid
}

func alternativeMessage(quantity int) string {
	return fmt.Sprintf("better price available for %d units", quantity)
}

// Recommend picks the tier that applies at the requested quantity and checks
// whether buying up to a higher tier would cost less in total.
//
// Only the first higher tier that beats the requested-quantity total is
// reported, even if a later tier is cheaper still.
func Recommend(table Table, requested int) (Recommendation, error) {
	if requested <= 0 {
		return Recommendation{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, requested)
	}
	if len(table.breaks) == 0 {
		return Recommendation{Explanation: MessageNoPrice}, nil
	}

	// breaks are sorted, the first one is the lowest tier
	applicable := table.breaks[0]
	units := requested
	if applicable.MinimumQuantity > requested {
		units = applicable.MinimumQuantity
	} else {
		for _, b := range table.breaks {
			if b.MinimumQuantity > requested {
				break
			}
			applicable = b
		}
	}

	total := applicable.UnitPrice.Mul(decimal.NewFromInt(int64(units)))
	rec := Recommendation{
		ApplicableUnitPrice: decimal.NewNullDecimal(applicable.UnitPrice),
		TotalCost:           decimal.NewNullDecimal(total),
		IsOptimal:           true,
		RecommendedUnits:    units,
		Explanation:         MessageOptimal,
		RequestedTotal:      decimal.NewNullDecimal(total),
		Savings:             decimal.Zero,
	}

	for _, b := range table.breaks {
		if b.MinimumQuantity <= requested {
			continue
		}
		tierTotal := b.UnitPrice.Mul(decimal.NewFromInt(int64(b.MinimumQuantity)))
		if !tierTotal.LessThan(total) {
			continue
		}

		rec.IsOptimal = false
		rec.AlternativeQuantity = b.MinimumQuantity
		rec.RecommendedUnits = b.MinimumQuantity
		rec.ApplicableUnitPrice = decimal.NewNullDecimal(b.UnitPrice)
		rec.TotalCost = decimal.NewNullDecimal(tierTotal)
		rec.Savings = total.Sub(tierTotal)
		rec.Explanation = alternativeMessage(b.MinimumQuantity)
		break
	}

	return rec, nil
}
