package shopify

import (
	"os"
	"strconv"
	"time"
)

// Defaults mirror the platform's published Admin API limits.
const (
	DefaultAPIVersion        = "2025-07"
	DefaultTimeout           = 30 * time.Second
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 40
	DefaultRetryAfter        = 2 * time.Second
	MaxPageSize              = 250
)

// Config carries every external-API knob as one explicit value, constructed
// once per process and passed by reference into the client and webhook
// verifier. There is no package-level mutable state.
type Config struct {
	APIVersion        string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// RetryAfter is the backoff applied on a throttled response that
	// carries no explicit Retry-After header.
	RetryAfter    time.Duration
	WebhookSecret string
	// BaseURL overrides the https://{shop-domain} scheme when set. Used to
	// point the client at a local server in tests; empty in production.
	BaseURL string
}

// ConfigFromEnv builds a Config from environment variables, falling back to
// the platform defaults for anything unset.
func ConfigFromEnv() *Config {
	cfg := &Config{
		APIVersion:        envOr("SHOPIFY_API_VERSION", DefaultAPIVersion),
		Timeout:           DefaultTimeout,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
		RetryAfter:        DefaultRetryAfter,
		WebhookSecret:     os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
	}
	if v := os.Getenv("SHOPIFY_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("SHOPIFY_REQUESTS_PER_SECOND"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			cfg.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("SHOPIFY_BURST_LIMIT"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil && burst > 0 {
			cfg.Burst = burst
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
