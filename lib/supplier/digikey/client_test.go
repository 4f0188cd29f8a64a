package digikey

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"partquote/lib/chrono"
	"partquote/lib/supplier"
	"partquote/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeDigikey struct {
	tokenCalls  int32
	lookupCalls int32
}

func (f *fakeDigikey) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/v1/oauth2/token" {
		atomic.AddInt32(&f.tokenCalls, 1)
		fmt.Fprint(w, `{"access_token":"abc","expires_in":1799,"token_type":"Bearer"}`)
		return
	}

	atomic.AddInt32(&f.lookupCalls, 1)
	if r.Header.Get("Authorization") != "Bearer abc" ||
		r.Header.Get("X-DIGIKEY-Client-Id") != "client" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.Header.Get("X-DIGIKEY-Locale-Currency") != "EUR" ||
		r.Header.Get("X-DIGIKEY-Locale-Site") != "DE" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch r.URL.Path {
	case "/products/v4/search/RTL8153B-VB-CG/productdetails":
		w.Write(productDetailsFixture)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"title":"Not Found"}`)
	}
}

func newTestClient(t testing.TB, tel telemetry.API) (*Client, *fakeDigikey) {
	fake := &fakeDigikey{}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		ClientId:     "client",
		ClientSecret: "secret",
		Currency:     "EUR",
		LocaleSite:   "DE",
		BaseUrl:      server.URL,
	}, chrono.StandardImpl{}, tel)
	return client, fake
}

func TestLookup(t *testing.T) {
	client, fake := newTestClient(t, telemetry.NewRecorder())
	ctx := context.Background()

	offer, err := client.Lookup(ctx, "RTL8153B-VB-CG")
	require.NoError(t, err)
	require.Equal(t, Name, offer.Supplier)
	require.Equal(t, "EUR", offer.Currency)
	require.Len(t, offer.Prices, 3)

	_, err = client.Lookup(ctx, "RTL8153B-VB-CG")
	require.NoError(t, err)

	require.EqualValues(t, 1, atomic.LoadInt32(&fake.tokenCalls))
	require.EqualValues(t, 2, atomic.LoadInt32(&fake.lookupCalls))
}

func TestLookupNotFound(t *testing.T) {
	client, _ := newTestClient(t, telemetry.NewRecorder())

	_, err := client.Lookup(context.Background(), "RTL0000")
	require.ErrorIs(t, err, supplier.ErrNotFound)
}

func TestLookupServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			fmt.Fprint(w, `{"access_token":"abc","expires_in":1799,"token_type":"Bearer"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	tel := telemetry.NewRecorder()
	client := NewClient(Config{
		ClientId:     "client",
		ClientSecret: "secret",
		BaseUrl:      server.URL,
	}, chrono.StandardImpl{}, tel)

	_, err := client.Lookup(context.Background(), "RTL8153B-VB-CG")
	require.Error(t, err)
	require.NotErrorIs(t, err, supplier.ErrNotFound)
	require.Contains(t, tel.BrokenIDs(), "digikey: client.lookup")
}

func TestLookupTokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{
		ClientId:     "client",
		ClientSecret: "bad",
		BaseUrl:      server.URL,
	}, chrono.StandardImpl{}, telemetry.NewRecorder())

	_, err := client.Lookup(context.Background(), "RTL8153B-VB-CG")
	require.Error(t, err)
	require.Contains(t, err.Error(), "access token")
}

func TestLookupRejectedTokenIsReplaced(t *testing.T) {
	var tokenCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/oauth2/token" {
			n := atomic.AddInt32(&tokenCalls, 1)
			fmt.Fprintf(w, `{"access_token":"token-%d","expires_in":1799,"token_type":"Bearer"}`, n)
			return
		}
		// the first token was revoked server side before it expired
		if r.Header.Get("Authorization") != "Bearer token-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write(productDetailsFixture)
	}))
	defer server.Close()

	tel := telemetry.NewRecorder()
	client := NewClient(Config{
		ClientId:     "client",
		ClientSecret: "secret",
		BaseUrl:      server.URL,
	}, chrono.StandardImpl{}, tel)
	ctx := context.Background()

	_, err := client.Lookup(ctx, "RTL8153B-VB-CG")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
	require.Contains(t, tel.BrokenIDs(), "digikey: client.lookup")
	require.EqualValues(t, 1, atomic.LoadInt32(&tokenCalls))

	offer, err := client.Lookup(ctx, "RTL8153B-VB-CG")
	require.NoError(t, err)
	require.Len(t, offer.Prices, 3)
	require.EqualValues(t, 2, atomic.LoadInt32(&tokenCalls))
}
