package shopify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// RequestRecorder receives client-side observations. Implemented by the
// metrics package; a nil recorder disables recording.
type RequestRecorder interface {
	ObserveAPIRequest(resource string, status int)
	ObserveThrottle()
}

type client struct {
	cfg      *Config
	http     *resty.Client
	limiter  *RateLimiter
	recorder RequestRecorder
	logger   zerolog.Logger
}

// NewClient creates the Admin API client adapter. The client enforces the
// rate-limit contract (token-bucket pacing plus a Retry-After backoff on a
// throttled response) but never retries failed calls beyond that; retry
// policy is the orchestrator's.
func NewClient(cfg *Config, limiter *RateLimiter, recorder RequestRecorder, logger zerolog.Logger) ports.StoreClient {
	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &client{
		cfg:      cfg,
		http:     httpClient,
		limiter:  limiter,
		recorder: recorder,
		logger:   logger,
	}
}

type customersEnvelope struct {
	Customers []ports.CustomerRecord `json:"customers"`
}

type productsEnvelope struct {
	Products []ports.ProductRecord `json:"products"`
}

type ordersEnvelope struct {
	Orders []ports.OrderRecord `json:"orders"`
}

func (c *client) FetchCustomers(ctx context.Context, creds ports.StoreCredentials, opts ports.FetchOptions) ([]ports.CustomerRecord, error) {
	var out customersEnvelope
	if err := c.get(ctx, creds, "customers", opts, &out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

func (c *client) FetchProducts(ctx context.Context, creds ports.StoreCredentials, opts ports.FetchOptions) ([]ports.ProductRecord, error) {
	var out productsEnvelope
	if err := c.get(ctx, creds, "products", opts, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *client) FetchOrders(ctx context.Context, creds ports.StoreCredentials, opts ports.FetchOptions) ([]ports.OrderRecord, error) {
	var out ordersEnvelope
	if err := c.get(ctx, creds, "orders", opts, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// get performs one paced GET against {base}/{resource}.json. A throttled
// response is retried once after the advertised Retry-After delay; any other
// failure surfaces immediately as a ConnectivityError.
func (c *client) get(ctx context.Context, creds ports.StoreCredentials, resource string, opts ports.FetchOptions, result any) error {
	url := c.endpoint(creds.ShopDomain, resource)
	params := queryParams(resource, opts)

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return &domain.ConnectivityError{Op: "fetch " + resource, Shop: creds.ShopDomain, Cause: err}
			}
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("X-Shopify-Access-Token", creds.AccessToken).
			SetQueryParams(params).
			SetResult(result).
			Get(url)
		if err != nil {
			return &domain.ConnectivityError{Op: "fetch " + resource, Shop: creds.ShopDomain, Cause: err}
		}
		if c.recorder != nil {
			c.recorder.ObserveAPIRequest(resource, resp.StatusCode())
		}

		if resp.StatusCode() == 200 {
			return nil
		}

		if resp.StatusCode() == 429 && attempt == 0 {
			delay := c.retryAfter(resp)
			if c.recorder != nil {
				c.recorder.ObserveThrottle()
			}
			c.logger.Warn().
				Str("shop", creds.ShopDomain).
				Str("resource", resource).
				Dur("retryAfter", delay).
				Msg("Store API throttled request, backing off")
			if err := sleepCtx(ctx, delay); err != nil {
				return &domain.ConnectivityError{Op: "fetch " + resource, Shop: creds.ShopDomain, Cause: err}
			}
			continue
		}

		return &domain.ConnectivityError{
			Op:    "fetch " + resource,
			Shop:  creds.ShopDomain,
			Cause: fmt.Errorf("unexpected status %d: %s", resp.StatusCode(), resp.String()),
		}
	}
}

func (c *client) endpoint(shopDomain, resource string) string {
	base := c.cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s/admin/api/%s", shopDomain, c.cfg.APIVersion)
	}
	return base + "/" + resource + ".json"
}

func queryParams(resource string, opts ports.FetchOptions) map[string]string {
	limit := opts.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	params := map[string]string{"limit": strconv.Itoa(limit)}
	if opts.SinceID != nil {
		params["since_id"] = strconv.FormatInt(*opts.SinceID, 10)
	}
	if resource == "orders" {
		status := opts.Status
		if status == "" {
			status = "any"
		}
		params["status"] = status
	}
	return params
}

// retryAfter reads the throttle delay advertised by the platform, falling
// back to the configured default when the header is absent or malformed.
func (c *client) retryAfter(resp *resty.Response) time.Duration {
	if v := resp.Header().Get("Retry-After"); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return c.cfg.RetryAfter
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
