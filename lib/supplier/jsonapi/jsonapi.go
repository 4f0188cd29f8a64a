package jsonapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"partquote/lib/pricebreak"
	"partquote/lib/supplier"
	"partquote/lib/telemetry"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
)

const (
	report_client_lookup = "client.lookup"
)

// Config describes a keyword search API that answers with a flat (or dotted
// path) JSON document.
type Config struct {
	Name              string            `json:"name" validate:"required"`
	Endpoint          string            `json:"endpoint" validate:"required,url"`
	Params            map[string]string `json:"params"`
	QueryParam        string            `json:"query_param"`
	PriceField        string            `json:"price_field"`
	AvailabilityField string            `json:"availability_field"`
	ManufacturerField string            `json:"manufacturer_field"`
	URLField          string            `json:"url_field"`
	Currency          string            `json:"currency"`
	RequestsPerSecond float64           `json:"requests_per_second"`
}

func (c Config) withDefaults() Config {
	if c.QueryParam == "" {
		c.QueryParam = "q"
	}
	if c.PriceField == "" {
		c.PriceField = "price"
	}
	if c.AvailabilityField == "" {
		c.AvailabilityField = "availability"
	}
	if c.URLField == "" {
		c.URLField = "productUrl"
	}
	return c
}

type Client struct {
	http   *resty.Client
	config Config
	tel    telemetry.API
}

func NewClient(config Config, tel telemetry.API) *Client {
	config = config.withDefaults()
	tel = telemetry.NewScopedAPI(config.Name, tel)
	httpClient := supplier.NewHTTPClient(supplier.HTTPOptions{
		RequestsPerSecond: config.RequestsPerSecond,
	}, tel)
	return &Client{http: httpClient, config: config, tel: tel}
}

func (c *Client) Name() string {
	return c.config.Name
}

func (c *Client) Lookup(ctx context.Context, partNumber string) (supplier.Offer, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(c.config.Params).
		SetQueryParam(c.config.QueryParam, partNumber).
		SetHeader("accept", "application/json").
		Get(c.config.Endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_lookup, fmt.Errorf("fetch: %w", err), partNumber)
		return supplier.Offer{}, fmt.Errorf("%s: %w", c.config.Name, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return supplier.Offer{}, fmt.Errorf("%s: %w: %s", c.config.Name, supplier.ErrNotFound, partNumber)
	}
	if res.IsError() {
		err = fmt.Errorf("%s: unexpected status %s", c.config.Name, res.Status())
		c.tel.ReportBroken(report_client_lookup, err, partNumber)
		return supplier.Offer{}, err
	}

	// numbers stay json.Number so prices keep their exact digits
	decoder := json.NewDecoder(bytes.NewReader(res.Body()))
	decoder.UseNumber()
	var doc map[string]any
	err = decoder.Decode(&doc)
	if err != nil {
		c.tel.ReportBroken(report_client_lookup, fmt.Errorf("unmarshal json: %w", err), partNumber)
		return supplier.Offer{}, fmt.Errorf("%s: %w: %w", c.config.Name, supplier.ErrMalformedResponse, err)
	}

	offer := supplier.Offer{
		Supplier:        c.config.Name,
		PartNumber:      partNumber,
		Availability:    stringField(doc, c.config.AvailabilityField, supplier.NotAvailable),
		Manufacturer:    supplier.NotAvailable,
		LifeCycleStatus: supplier.NotAvailable,
		Currency:        c.config.Currency,
		URL:             stringField(doc, c.config.URLField, ""),
		Prices:          map[int]string{},
	}
	if c.config.ManufacturerField != "" {
		offer.Manufacturer = stringField(doc, c.config.ManufacturerField, supplier.NotAvailable)
	}

	price := stringField(doc, c.config.PriceField, "")
	if _, err := pricebreak.ParsePrice(price); err == nil {
		offer.Prices[1] = price
	} else if price != "" {
		c.tel.ReportWarning(report_client_lookup, err, partNumber)
	}

	return offer, nil
}

// lookupField follows a dotted path like "pricing.unit" through nested objects.
func lookupField(doc map[string]any, path string) (any, bool) {
	var current any = doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

func stringField(doc map[string]any, path, fallback string) string {
	value, ok := lookupField(doc, path)
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprint(v)
	default:
		return fallback
	}
}
