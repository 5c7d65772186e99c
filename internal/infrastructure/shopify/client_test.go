package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	return &Config{
		APIVersion:        DefaultAPIVersion,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             1000,
		RetryAfter:        10 * time.Millisecond,
		BaseURL:           baseURL,
	}
}

func testCreds() ports.StoreCredentials {
	return ports.StoreCredentials{ShopDomain: "demo.myshopify.com", AccessToken: "shpat_test"}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) ports.StoreClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := testConfig(server.URL)
	limiter := NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst, zerolog.Nop())
	return NewClient(cfg, limiter, nil, zerolog.Nop())
}

func TestFetchCustomersSendsAuthAndPagination(t *testing.T) {
	var got url.Values
	var gotToken, gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"customers": [{"id": 1, "email": "a@example.com", "total_spent": "10.00"}]}`))
	})

	sinceID := int64(99)
	records, err := client.FetchCustomers(context.Background(), testCreds(), ports.FetchOptions{SinceID: &sinceID, Limit: 50})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, "/customers.json", gotPath)
	assert.Equal(t, "shpat_test", gotToken)
	assert.Equal(t, "50", got.Get("limit"))
	assert.Equal(t, "99", got.Get("since_id"))
}

func TestFetchOrdersDefaultsStatusAny(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"orders": []}`))
	})

	_, err := client.FetchOrders(context.Background(), testCreds(), ports.FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, "any", got.Get("status"))
	assert.Equal(t, "250", got.Get("limit"))
}

func TestFetchCapsLimitAtMaxPageSize(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products": []}`))
	})

	_, err := client.FetchProducts(context.Background(), testCreds(), ports.FetchOptions{Limit: 9999})

	require.NoError(t, err)
	assert.Equal(t, "250", got.Get("limit"))
}

func TestFetchRetriesOnceAfterThrottle(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0.01")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products": [{"id": 7, "title": "Blue Tee"}]}`))
	})

	records, err := client.FetchProducts(context.Background(), testCreds(), ports.FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, records, 1)
	assert.Equal(t, "Blue Tee", records[0].Title)
}

func TestFetchFailsAfterSecondThrottle(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "0.01")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchProducts(context.Background(), testCreds(), ports.FetchOptions{})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, domain.IsConnectivity(err))
}

func TestFetchAuthFailureIsConnectivityError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchCustomers(context.Background(), testCreds(), ports.FetchOptions{})

	require.Error(t, err)
	var connErr *domain.ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "demo.myshopify.com", connErr.Shop)
}

func TestFetchUnreachableServer(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	limiter := NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst, zerolog.Nop())
	client := NewClient(cfg, limiter, nil, zerolog.Nop())

	_, err := client.FetchCustomers(context.Background(), testCreds(), ports.FetchOptions{})

	require.Error(t, err)
	assert.True(t, domain.IsConnectivity(err))
}
