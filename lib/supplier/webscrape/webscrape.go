package webscrape

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"partquote/lib/htmlutil"
	"partquote/lib/pricebreak"
	"partquote/lib/supplier"
	"partquote/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_lookup      = "client.lookup"
	report_client_parse_break = "client.parse-break"
)

const (
	DefaultPriceSelector        = "span.price"
	DefaultAvailabilitySelector = "div.availability"
)

// Config describes where a supplier's search page lives and which CSS
// selectors pick the offer out of it.
//
// When BreakRowSelector is set every matching element is one price break, with
// BreakQuantitySelector and BreakPriceSelector evaluated inside it. Otherwise
// the text under PriceSelector is taken as the price of a single unit.
type Config struct {
	Name                  string  `json:"name" validate:"required"`
	Endpoint              string  `json:"endpoint" validate:"required,url"`
	PriceSelector         string  `json:"price_selector"`
	AvailabilitySelector  string  `json:"availability_selector"`
	ManufacturerSelector  string  `json:"manufacturer_selector"`
	ProductLinkSelector   string  `json:"product_link_selector"`
	BreakRowSelector      string  `json:"break_row_selector"`
	BreakQuantitySelector string  `json:"break_quantity_selector"`
	BreakPriceSelector    string  `json:"break_price_selector"`
	Currency              string  `json:"currency"`
	BypassCloudflare      bool    `json:"bypass_cloudflare"`
	RequestsPerSecond     float64 `json:"requests_per_second"`
}

type Client struct {
	http   *resty.Client
	config Config
	tel    telemetry.API
}

func NewClient(config Config, tel telemetry.API) *Client {
	if config.PriceSelector == "" {
		config.PriceSelector = DefaultPriceSelector
	}
	if config.AvailabilitySelector == "" {
		config.AvailabilitySelector = DefaultAvailabilitySelector
	}
	tel = telemetry.NewScopedAPI(config.Name, tel)

	httpClient := supplier.NewHTTPClient(supplier.HTTPOptions{
		RequestsPerSecond: config.RequestsPerSecond,
	}, tel)
	if config.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	return &Client{http: httpClient, config: config, tel: tel}
}

func (c *Client) Name() string {
	return c.config.Name
}

func (c *Client) Lookup(ctx context.Context, partNumber string) (supplier.Offer, error) {
	link := c.config.Endpoint + url.QueryEscape(partNumber)

	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		c.tel.ReportBroken(report_client_lookup, fmt.Errorf("fetch: %w", err), link)
		return supplier.Offer{}, fmt.Errorf("%s: %w", c.config.Name, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return supplier.Offer{}, fmt.Errorf("%s: %w: %s", c.config.Name, supplier.ErrNotFound, partNumber)
	}
	if res.IsError() {
		err = fmt.Errorf("%s: unexpected status %s", c.config.Name, res.Status())
		c.tel.ReportBroken(report_client_lookup, err, link)
		return supplier.Offer{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_lookup, fmt.Errorf("parse html: %w", err), link)
		return supplier.Offer{}, fmt.Errorf("%s: %w: %w", c.config.Name, supplier.ErrMalformedResponse, err)
	}

	offer := c.parsePage(doc)
	offer.PartNumber = partNumber
	offer.URL = c.productLink(doc, res.Request.RawRequest.URL, link)
	return offer, nil
}

// productLink resolves the href under ProductLinkSelector against the page it
// was found on, falling back to the search URL.
func (c *Client) productLink(doc *goquery.Document, page *url.URL, fallback string) string {
	if c.config.ProductLinkSelector == "" || page == nil {
		return fallback
	}
	href := htmlutil.Attr(doc.Find(c.config.ProductLinkSelector), "href", "")
	if href == "" {
		return fallback
	}
	ref, err := url.Parse(href)
	if err != nil {
		c.tel.ReportWarning(report_client_lookup, fmt.Errorf("product link: %w", err), href)
		return fallback
	}
	return page.ResolveReference(ref).String()
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

// parseQuantity reads break quantities like "1", "1,000" or "2500+".
func parseQuantity(text string) (int, error) {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0, fmt.Errorf("no quantity in %q", text)
	}
	return strconv.Atoi(digits)
}

func (c *Client) parsePage(doc *goquery.Document) supplier.Offer {
	offer := supplier.Offer{
		Supplier:        c.config.Name,
		Availability:    htmlutil.SelectionText(doc.Find(c.config.AvailabilitySelector), supplier.NotAvailable),
		Manufacturer:    supplier.NotAvailable,
		LifeCycleStatus: supplier.NotAvailable,
		Currency:        c.config.Currency,
		Prices:          map[int]string{},
	}
	if c.config.ManufacturerSelector != "" {
		offer.Manufacturer = htmlutil.SelectionText(doc.Find(c.config.ManufacturerSelector), supplier.NotAvailable)
	}

	if c.config.BreakRowSelector == "" {
		price := htmlutil.SelectionText(doc.Find(c.config.PriceSelector), supplier.NotAvailable)
		if _, err := pricebreak.ParsePrice(price); err == nil {
			offer.Prices[1] = price
		}
		return offer
	}

	doc.Find(c.config.BreakRowSelector).Each(func(_ int, row *goquery.Selection) {
		qtyText := htmlutil.SelectionText(row.Find(c.config.BreakQuantitySelector), "")
		priceText := htmlutil.SelectionText(row.Find(c.config.BreakPriceSelector), "")

		qty, err := parseQuantity(qtyText)
		if err != nil {
			c.tel.ReportWarning(report_client_parse_break, err)
			return
		}
		_, err = pricebreak.ParsePrice(priceText)
		if err != nil {
			c.tel.ReportWarning(report_client_parse_break, err, qty)
			return
		}
		offer.Prices[qty] = priceText
	})

	return offer
}
