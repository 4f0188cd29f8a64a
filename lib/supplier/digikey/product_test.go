package digikey

import (
	"testing"

	"partquote/lib/supplier"

	_ "embed"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/productdetails.json
var productDetailsFixture []byte

func TestParseProductDetails(t *testing.T) {
	offer, err := parseProductDetails(productDetailsFixture, "RTL8153B-VB-CG", "USD")
	require.NoError(t, err)

	expected := supplier.Offer{
		Supplier:        Name,
		PartNumber:      "RTL8153B-VB-CG",
		Availability:    "4521",
		Manufacturer:    "Realtek Semiconductor Corp.",
		Prices:          map[int]string{1: "1.21", 10: "1.08", 100: "0.89"},
		Currency:        "USD",
		LifeCycleStatus: "Active",
		URL:             "https://www.digikey.com/en/products/detail/realtek-semiconductor-corp/RTL8153B-VB-CG/12345",
	}
	if diff := cmp.Diff(expected, offer); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseProductDetailsMismatch(t *testing.T) {
	_, err := parseProductDetails(productDetailsFixture, "RTL8153B", "USD")
	require.ErrorIs(t, err, supplier.ErrMismatchedPart)
}

func TestParseProductDetailsVariations(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected map[int]string
	}{
		{
			name: "single variation",
			body: `{"Product": {
				"ManufacturerProductNumber": "P1",
				"Manufacturer": {"Name": "M"},
				"ProductStatus": {"Status": "Active"},
				"ProductVariations": [
					{"StandardPricing": [{"BreakQuantity": 1, "UnitPrice": 0.5}]}
				]
			}}`,
			expected: map[int]string{1: "0.5"},
		},
		{
			name: "no variations",
			body: `{"Product": {
				"ManufacturerProductNumber": "P1",
				"Manufacturer": {"Name": "M"},
				"ProductStatus": {"Status": "Obsolete"}
			}}`,
			expected: map[int]string{},
		},
		{
			name: "second variation without pricing",
			body: `{"Product": {
				"ManufacturerProductNumber": "P1",
				"Manufacturer": {"Name": "M"},
				"ProductStatus": {"Status": "Active"},
				"ProductVariations": [
					{"StandardPricing": [{"BreakQuantity": 1, "UnitPrice": 0.5}]},
					{}
				]
			}}`,
			expected: map[int]string{},
		},
		{
			name: "prices given as strings",
			body: `{"Product": {
				"ManufacturerProductNumber": "P1",
				"Manufacturer": {"Name": "M"},
				"ProductStatus": {"Status": "Active"},
				"ProductVariations": [
					{"StandardPricing": [{"BreakQuantity": 5, "UnitPrice": "0.25"}]}
				]
			}}`,
			expected: map[int]string{5: "0.25"},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			offer, err := parseProductDetails([]byte(test.body), "P1", "EUR")
			require.NoError(t, err)
			require.Equal(t, test.expected, offer.Prices)
			require.Equal(t, "0", offer.Availability)
			require.Equal(t, "EUR", offer.Currency)

			table, err := offer.PriceTable()
			require.NoError(t, err)
			require.Equal(t, len(test.expected), table.Len())
		})
	}
}

func TestParseProductDetailsMalformed(t *testing.T) {
	bodies := []string{
		`not json`,
		`{}`,
		`{"Product": {"ManufacturerProductNumber": "P1", "ProductStatus": {"Status": "Active"}}}`,
		`{"Product": {"ManufacturerProductNumber": "P1", "Manufacturer": {"Name": "M"}}}`,
	}
	for _, body := range bodies {
		_, err := parseProductDetails([]byte(body), "P1", "USD")
		require.ErrorIs(t, err, supplier.ErrMalformedResponse, body)
	}
}
