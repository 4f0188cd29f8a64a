package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"partquote/lib/chrono"
	"partquote/lib/telemetry"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("partquote/lib/oauth")

const (
	report_token_fetch = "token.fetch"
)

var ErrTokenRejected = errors.New("token request rejected")

// expirySkew is subtracted from the advertised token lifetime so that a token
// is never used right as it expires.
const expirySkew = 30 * time.Second

type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope,omitempty"`
}

type ClientCredentials struct {
	TokenUrl     string
	ClientId     string
	ClientSecret string
}

// ClientCredentialsSource fetches a token with the OAuth2 client credentials
// grant once and hands it out until it expires.
type ClientCredentialsSource struct {
	http  *resty.Client
	creds ClientCredentials
	time  chrono.API
	tel   telemetry.API

	mu        sync.Mutex
	token     Token
	expiresAt time.Time
}

func NewClientCredentialsSource(
	http *resty.Client,
	creds ClientCredentials,
	clock chrono.API,
	tel telemetry.API,
) *ClientCredentialsSource {
	return &ClientCredentialsSource{
		http:  http,
		creds: creds,
		time:  clock,
		tel:   telemetry.NewScopedAPI("oauth", tel),
	}
}

// AccessToken returns a valid access token, fetching a new one if there is
// none yet or the current one expired.
func (s *ClientCredentialsSource) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.AccessToken != "" && s.time.Now().Before(s.expiresAt) {
		return s.token.AccessToken, nil
	}

	token, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}

	lifetime := time.Duration(token.ExpiresIn)*time.Second - expirySkew
	s.token = token
	s.expiresAt = s.time.Now().Add(lifetime)
	return token.AccessToken, nil
}

// Invalidate drops the cached token, the next call to AccessToken fetches a
// fresh one.
func (s *ClientCredentialsSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = Token{}
	s.expiresAt = time.Time{}
}

func (s *ClientCredentialsSource) fetch(ctx context.Context) (Token, error) {
	ctx, span := tracer.Start(ctx, "ClientCredentialsSource:fetch")
	defer span.End()

	span.SetAttributes(
		attribute.String("token_url", s.creds.TokenUrl),
		attribute.String("client_id", s.creds.ClientId),
	)

	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"client_id":     s.creds.ClientId,
			"client_secret": s.creds.ClientSecret,
			"grant_type":    "client_credentials",
		}).
		Post(s.creds.TokenUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to request token")
		s.tel.ReportBroken(report_token_fetch, fmt.Errorf("fetch: %w", err))
		return Token{}, err
	}
	if res.IsError() {
		err = fmt.Errorf("%w: %s: %s", ErrTokenRejected, res.Status(), res.String())
		span.SetStatus(codes.Error, "token endpoint returned an error")
		s.tel.ReportBroken(report_token_fetch, err)
		return Token{}, err
	}

	var token Token
	err = json.Unmarshal(res.Body(), &token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal token")
		s.tel.ReportBroken(report_token_fetch, fmt.Errorf("unmarshal json: %w", err))
		return Token{}, err
	}
	if token.AccessToken == "" {
		err = fmt.Errorf("%w: response carried no access token", ErrTokenRejected)
		s.tel.ReportBroken(report_token_fetch, err)
		return Token{}, err
	}

	span.SetAttributes(attribute.Int("expires_in", token.ExpiresIn))
	return token, nil
}
