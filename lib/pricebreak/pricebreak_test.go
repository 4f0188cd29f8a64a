package pricebreak

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewTableSorts(t *testing.T) {
	table, err := NewTable(
		Break{MinimumQuantity: 100, UnitPrice: decimal.RequireFromString("1.00")},
		Break{MinimumQuantity: 1, UnitPrice: decimal.RequireFromString("2.00")},
		Break{MinimumQuantity: 10, UnitPrice: decimal.RequireFromString("1.50")},
	)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	var quantities []int
	for _, b := range table.Breaks() {
		quantities = append(quantities, b.MinimumQuantity)
	}
	require.Equal(t, []int{1, 10, 100}, quantities)
}

func TestNewTableRejects(t *testing.T) {
	testCases := []struct {
		breaks   []Break
		expected error
	}{
		{
			breaks: []Break{
				{MinimumQuantity: 10, UnitPrice: decimal.NewFromInt(1)},
				{MinimumQuantity: 10, UnitPrice: decimal.NewFromInt(2)},
			},
			expected: ErrDuplicateBreak,
		},
		{
			breaks:   []Break{{MinimumQuantity: -1, UnitPrice: decimal.NewFromInt(1)}},
			expected: ErrNegativeQuantity,
		},
		{
			breaks:   []Break{{MinimumQuantity: 1, UnitPrice: decimal.NewFromInt(-1)}},
			expected: ErrNegativePrice,
		},
	}

	for _, test := range testCases {
		_, err := NewTable(test.breaks...)
		require.ErrorIs(t, err, test.expected)
	}
}

func TestBreaksIsACopy(t *testing.T) {
	table, err := NewTable(Break{MinimumQuantity: 1, UnitPrice: decimal.NewFromInt(3)})
	require.NoError(t, err)

	breaks := table.Breaks()
	breaks[0].MinimumQuantity = 500

	require.Equal(t, 1, table.Breaks()[0].MinimumQuantity)
}

func TestParsePrice(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "1.23", expected: "1.23"},
		{input: "$1,234.50", expected: "1234.5"},
		{input: " 0.0081 USD\n", expected: "0.0081"},
		{input: "€ 12", expected: "12"},
		{input: "Rs. 1,200", expected: "1200"},
		{input: "12,345,678.9", expected: "12345678.9"},
		{input: "0.89 EUR", expected: "0.89"},
		{input: "1500000", expected: "1500000"},
		{input: "0.00008", expected: "0.00008"},
	}

	for _, row := range table {
		price, err := ParsePrice(row.input)
		require.NoError(t, err)
		require.True(t, decimal.RequireFromString(row.expected).Equal(price), "%s -> %s", row.input, price)
	}

	rejected := []string{
		"", "N/A", "call for price", "-", "1.2.3",
		// a decimal comma must not be read as a thousands separator
		"1,50 €", "1.234,50", "12,34",
		"1.5e+06", "8e-05", "+1.00",
		"Rs 1.2.0", "$ 1.00 each", "1..5", ".5",
	}
	for _, bad := range rejected {
		_, err := ParsePrice(bad)
		require.ErrorIs(t, err, ErrInvalidPrice, bad)
	}
}

func TestFromStrings(t *testing.T) {
	table, err := FromStrings(map[int]string{1: "0.50", 25: "0.41"})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	_, err = FromStrings(map[int]string{1: "0.50", 25: "?"})
	require.ErrorIs(t, err, ErrInvalidPrice)

	empty, err := FromStrings(nil)
	require.NoError(t, err)
	require.Equal(t, 0, empty.Len())
}
