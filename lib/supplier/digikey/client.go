package digikey

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"partquote/lib/chrono"
	"partquote/lib/oauth"
	"partquote/lib/supplier"
	"partquote/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("partquote/lib/supplier/digikey")

const Name = "DigiKey"

const DefaultBaseUrl = "https://api.digikey.com"

const (
	report_client_lookup = "client.lookup"
)

type Config struct {
	ClientId     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	Currency     string `json:"currency"`
	Language     string `json:"language"`
	LocaleSite   string `json:"locale_site"`
	BaseUrl      string `json:"base_url"`
}

func (c Config) withDefaults() Config {
	if c.Currency == "" {
		c.Currency = "USD"
	}
	if c.Language == "" {
		c.Language = "en"
	}
	if c.LocaleSite == "" {
		c.LocaleSite = "US"
	}
	if c.BaseUrl == "" {
		c.BaseUrl = DefaultBaseUrl
	}
	return c
}

// Client looks parts up through the digikey product information API.
type Client struct {
	http   *resty.Client
	config Config
	token  *oauth.ClientCredentialsSource
	tel    telemetry.API
}

func NewClient(config Config, clock chrono.API, tel telemetry.API) *Client {
	config = config.withDefaults()
	tel = telemetry.NewScopedAPI("digikey", tel)

	httpClient := supplier.NewHTTPClient(supplier.HTTPOptions{
		BaseUrl: config.BaseUrl,
		Timeout: 30 * time.Second,
	}, tel)

	token := oauth.NewClientCredentialsSource(httpClient, oauth.ClientCredentials{
		TokenUrl:     "/v1/oauth2/token",
		ClientId:     config.ClientId,
		ClientSecret: config.ClientSecret,
	}, clock, tel)

	return &Client{
		http:   httpClient,
		config: config,
		token:  token,
		tel:    tel,
	}
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) Lookup(ctx context.Context, partNumber string) (supplier.Offer, error) {
	ctx, span := tracer.Start(ctx, "Client:Lookup")
	defer span.End()
	span.SetAttributes(attribute.String("part_number", partNumber))

	accessToken, err := c.token.AccessToken(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to get access token")
		return supplier.Offer{}, fmt.Errorf("digikey: access token: %w", err)
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("partNumber", partNumber).
		SetHeader("accept", "application/json").
		SetHeader("Authorization", "Bearer "+accessToken).
		SetHeader("X-DIGIKEY-Client-Id", c.config.ClientId).
		SetHeader("X-DIGIKEY-Locale-Site", c.config.LocaleSite).
		SetHeader("X-DIGIKEY-Locale-Currency", c.config.Currency).
		SetHeader("X-DIGIKEY-Locale-Language", c.config.Language).
		Get("/products/v4/search/{partNumber}/productdetails")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch product details")
		c.tel.ReportBroken(report_client_lookup, fmt.Errorf("fetch: %w", err), partNumber)
		return supplier.Offer{}, fmt.Errorf("digikey: %w", err)
	}

	switch {
	case res.StatusCode() == http.StatusNotFound:
		span.SetStatus(codes.Error, "part not found")
		return supplier.Offer{}, fmt.Errorf("digikey: %w: %s", supplier.ErrNotFound, partNumber)
	case res.StatusCode() == http.StatusUnauthorized:
		c.token.Invalidate()
		fallthrough
	case res.IsError():
		err = fmt.Errorf("digikey: unexpected status %s: %s", res.Status(), res.String())
		span.SetStatus(codes.Error, "unexpected status")
		c.tel.ReportBroken(report_client_lookup, err, partNumber)
		return supplier.Offer{}, err
	}

	offer, err := parseProductDetails(res.Body(), partNumber, c.config.Currency)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse product details")
		c.tel.ReportWarning(report_client_lookup, err, partNumber)
		return supplier.Offer{}, fmt.Errorf("digikey: %w", err)
	}

	c.tel.ReportDebug("product details", partNumber, len(offer.Prices))
	return offer, nil
}
