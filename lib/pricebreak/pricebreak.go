package pricebreak

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity  = errors.New("requested quantity must be positive")
	ErrDuplicateBreak   = errors.New("duplicate break quantity")
	ErrNegativeQuantity = errors.New("break quantity must not be negative")
	ErrNegativePrice    = errors.New("unit price must not be negative")
	ErrInvalidPrice     = errors.New("invalid unit price")
)

const (
	MessageNoPrice = "no price available for the given quantity"
	MessageOptimal = "optimal price found"
)

// Break is a single pricing tier: UnitPrice applies to orders of at least
// MinimumQuantity units.
type Break struct {
	MinimumQuantity int
	UnitPrice       decimal.Decimal
}

// Table is an immutable set of price breaks for one offer, kept sorted by
// ascending minimum quantity.
type Table struct {
	breaks []Break
}

// NewTable validates the given breaks and returns them as a Table. The order
// of the input does not matter.
func NewTable(breaks ...Break) (Table, error) {
	sorted := slices.Clone(breaks)
	slices.SortFunc(sorted, func(a, b Break) int {
		return a.MinimumQuantity - b.MinimumQuantity
	})

	for i, b := range sorted {
		if b.MinimumQuantity < 0 {
			return Table{}, fmt.Errorf("%w: %d", ErrNegativeQuantity, b.MinimumQuantity)
		}
		if b.UnitPrice.IsNegative() {
			return Table{}, fmt.Errorf("%w: %s at %d", ErrNegativePrice, b.UnitPrice, b.MinimumQuantity)
		}
		if i > 0 && sorted[i-1].MinimumQuantity == b.MinimumQuantity {
			return Table{}, fmt.Errorf("%w: %d", ErrDuplicateBreak, b.MinimumQuantity)
		}
	}

	return Table{breaks: sorted}, nil
}

// FromStrings builds a Table from a break quantity -> price string mapping,
// the shape supplier offers carry their prices in.
func FromStrings(prices map[int]string) (Table, error) {
	breaks := make([]Break, 0, len(prices))
	for qty, raw := range prices {
		price, err := ParsePrice(raw)
		if err != nil {
			return Table{}, fmt.Errorf("break %d: %w", qty, err)
		}
		breaks = append(breaks, Break{MinimumQuantity: qty, UnitPrice: price})
	}
	return NewTable(breaks...)
}

func (t Table) Len() int {
	return len(t.breaks)
}

// Breaks returns a copy of the breaks in ascending quantity order.
func (t Table) Breaks() []Break {
	return slices.Clone(t.breaks)
}

// pricePattern accepts an optional currency symbol or code on either side of
// a number, with commas only as thousands separators and a dot as the
// decimal mark.
var pricePattern = regexp.MustCompile(
	`^(?:(?:[$€£¥₹]|USD|EUR|GBP|JPY|CNY|INR|CAD|AUD|CHF|Rs\.?)\s*)?` +
		`(-?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)` +
		`(?:\s*(?:[$€£¥₹]|USD|EUR|GBP|JPY|CNY|INR|CAD|AUD|CHF))?$`,
)

// ParsePrice parses a supplier price string such as "1.23", "$1,234.50",
// "Rs. 1,200" or " 0.0081 USD" into a decimal. Decimal commas, exponents and
// any other text are rejected rather than guessed at.
func ParsePrice(raw string) (decimal.Decimal, error) {
	match := pricePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return price, nil
}
