package supplier

import (
	"context"
	"errors"

	"partquote/lib/pricebreak"
)

var (
	// ErrMismatchedPart is returned when a supplier answers with a part other
	// than the one asked for. Its prices must not be used.
	ErrMismatchedPart    = errors.New("supplier returned a different part")
	ErrNotFound          = errors.New("part not found")
	ErrMalformedResponse = errors.New("malformed supplier response")
)

// NotAvailable fills text fields a supplier did not provide.
const NotAvailable = "N/A"

// Offer is one supplier's normalized answer for one part. Prices maps break
// quantity to unit price as the supplier printed it.
type Offer struct {
	Supplier        string
	PartNumber      string
	Availability    string
	Manufacturer    string
	Prices          map[int]string
	Currency        string
	LifeCycleStatus string
	URL             string
}

// PriceTable parses the offer's prices.
func (o Offer) PriceTable() (pricebreak.Table, error) {
	return pricebreak.FromStrings(o.Prices)
}

// Source looks up offers for a part at a single supplier.
type Source interface {
	Name() string
	Lookup(ctx context.Context, partNumber string) (Offer, error)
}
