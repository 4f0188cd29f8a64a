package digikey

import (
	"fmt"

	"partquote/lib/supplier"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type standardPrice struct {
	BreakQuantity int             `json:"BreakQuantity"`
	UnitPrice     decimal.Decimal `json:"UnitPrice"`
	TotalPrice    decimal.Decimal `json:"TotalPrice"`
}

type productVariation struct {
	DigiKeyProductNumber string          `json:"DigiKeyProductNumber"`
	StandardPricing      []standardPrice `json:"StandardPricing"`
}

type product struct {
	ManufacturerProductNumber string      `json:"ManufacturerProductNumber"`
	QuantityAvailable         json.Number `json:"QuantityAvailable"`
	ProductUrl                string      `json:"ProductUrl"`
	Manufacturer              *struct {
		Name string `json:"Name"`
	} `json:"Manufacturer"`
	ProductStatus *struct {
		Status string `json:"Status"`
	} `json:"ProductStatus"`
	ProductVariations []productVariation `json:"ProductVariations"`
}

type productDetailsResponse struct {
	Product *product `json:"Product"`
}

// standardPricing returns the pricing of the second product variation, which
// is where digikey puts the cut tape offer, falling back to the first one.
func (p product) standardPricing() []standardPrice {
	if len(p.ProductVariations) > 1 {
		return p.ProductVariations[1].StandardPricing
	}
	if len(p.ProductVariations) == 1 {
		return p.ProductVariations[0].StandardPricing
	}
	return nil
}

// parseProductDetails maps a productdetails response body to an offer for
// partNumber.
func parseProductDetails(body []byte, partNumber, currency string) (supplier.Offer, error) {
	var res productDetailsResponse
	err := json.Unmarshal(body, &res)
	if err != nil {
		return supplier.Offer{}, fmt.Errorf("%w: unmarshal json: %w", supplier.ErrMalformedResponse, err)
	}
	if res.Product == nil {
		return supplier.Offer{}, fmt.Errorf("%w: no product block", supplier.ErrMalformedResponse)
	}

	p := res.Product
	if p.ManufacturerProductNumber != partNumber {
		return supplier.Offer{}, fmt.Errorf(
			"%w: asked for %q, got %q",
			supplier.ErrMismatchedPart, partNumber, p.ManufacturerProductNumber,
		)
	}
	if p.Manufacturer == nil {
		return supplier.Offer{}, fmt.Errorf("%w: no manufacturer", supplier.ErrMalformedResponse)
	}
	if p.ProductStatus == nil {
		return supplier.Offer{}, fmt.Errorf("%w: no product status", supplier.ErrMalformedResponse)
	}

	availability := p.QuantityAvailable.String()
	if availability == "" {
		availability = "0"
	}

	prices := map[int]string{}
	for _, price := range p.standardPricing() {
		prices[price.BreakQuantity] = price.UnitPrice.String()
	}

	return supplier.Offer{
		Supplier:        Name,
		PartNumber:      partNumber,
		Availability:    availability,
		Manufacturer:    p.Manufacturer.Name,
		Prices:          prices,
		Currency:        currency,
		LifeCycleStatus: p.ProductStatus.Status,
		URL:             p.ProductUrl,
	}, nil
}
