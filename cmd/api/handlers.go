package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopmetrics/ingest/internal/application"
	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const tenantKey contextKey = "tenant"

func tenantFromContext(ctx context.Context) *domain.Tenant {
	tenant, _ := ctx.Value(tenantKey).(*domain.Tenant)
	return tenant
}

// tenantContext resolves the X-Tenant-ID header to a tenant and stores it in
// the request context. Every tenant-scoped route sits behind it.
func tenantContext(tenants ports.TenantRepository, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantID := r.Header.Get("X-Tenant-ID")
			if tenantID == "" {
				http.Error(w, "X-Tenant-ID header is required", http.StatusBadRequest)
				return
			}

			tenant, err := tenants.GetByID(r.Context(), tenantID)
			if errors.Is(err, domain.ErrTenantNotFound) {
				http.Error(w, "Unknown tenant", http.StatusNotFound)
				return
			}
			if err != nil {
				logger.Error().Err(err).Str("tenantId", tenantID).Msg("Failed to resolve tenant")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), tenantKey, tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// fetchOptions reads the pagination query parameters shared by the entity
// sync endpoints.
func fetchOptions(r *http.Request) ports.FetchOptions {
	var opts ports.FetchOptions
	if raw := r.URL.Query().Get("since_id"); raw != "" {
		if sinceID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			opts.SinceID = &sinceID
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			opts.Limit = limit
		}
	}
	opts.Status = r.URL.Query().Get("status")
	return opts
}

func fullSyncHandler(sync *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())
		force := r.URL.Query().Get("force") == "true"

		result, err := sync.SyncAll(r.Context(), tenant, force)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Full sync failed")
			http.Error(w, "Sync failed", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// entitySyncHandler adapts one kind-level sync method. Connectivity failures
// map to 502: the store API, not this service, was unavailable.
func entitySyncHandler(
	sync func(context.Context, *domain.Tenant, ports.FetchOptions) (application.SyncResult, error),
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		result, err := sync(r.Context(), tenant, fetchOptions(r))
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Entity sync failed")
			if domain.IsConnectivity(err) {
				http.Error(w, "Store API unavailable", http.StatusBadGateway)
				return
			}
			http.Error(w, "Sync failed", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func syncStatusHandler(sync *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		status, err := sync.GetSyncStatus(r.Context(), tenant.ID)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to read sync status")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, status)
	}
}

// webhookHandler receives store notifications. The signature is verified over
// the exact raw body bytes before anything else happens; an invalid signature
// is rejected with 401 and no write occurs.
func webhookHandler(webhooks *application.WebhookService, tenants ports.TenantRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tenantID := chi.URLParam(r, "tenantID")
		if _, err := tenants.GetByID(ctx, tenantID); err != nil {
			if errors.Is(err, domain.ErrTenantNotFound) {
				http.Error(w, "Unknown tenant", http.StatusNotFound)
				return
			}
			logger.Error().Err(err).Str("tenantId", tenantID).Msg("Failed to resolve tenant")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if !webhooks.VerifySignature(payload, r.Header.Get("X-Shopify-Hmac-SHA256")) {
			logger.Warn().Err(domain.ErrInvalidSignature).Str("tenantId", tenantID).Msg("Webhook rejected")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		topic := r.Header.Get("X-Shopify-Topic")
		if topic == "" {
			http.Error(w, "Missing X-Shopify-Topic header", http.StatusBadRequest)
			return
		}

		if err := webhooks.Handle(ctx, topic, tenantID, payload); err != nil {
			logger.Error().Err(err).Str("topic", topic).Str("tenantId", tenantID).Msg("Failed to process webhook")
			// 500 asks the platform to redeliver.
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"received": "true"})
	}
}

func dashboardHandler(analytics *application.AnalyticsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		dashboard, err := analytics.FullDashboard(r.Context(), tenant.ID)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to build dashboard")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, dashboard)
	}
}

func overviewHandler(analytics *application.AnalyticsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		overview, err := analytics.Overview(r.Context(), tenant.ID)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to compute overview")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, overview)
	}
}

// parseDay accepts a calendar date query parameter.
func parseDay(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}

func ordersByDateHandler(analytics *application.AnalyticsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		from, err := parseDay(r.URL.Query().Get("from"))
		if err != nil {
			http.Error(w, "Invalid from date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to, err := parseDay(r.URL.Query().Get("to"))
		if err != nil {
			http.Error(w, "Invalid to date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		series, err := analytics.OrdersByDate(r.Context(), tenant.ID, from, to)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to bucket orders by date")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, series)
	}
}

func forecastHandler(analytics *application.AnalyticsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		days := 0
		if raw := r.URL.Query().Get("days"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				days = parsed
			}
		}

		forecast, err := analytics.RevenueForecast(r.Context(), tenant.ID, days)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to compute forecast")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, forecast)
	}
}

func topN(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return 0
}

func productPerformanceHandler(analytics *application.AnalyticsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		performance, err := analytics.ProductPerformance(r.Context(), tenant.ID, topN(r))
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to compute product performance")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, performance)
	}
}

func customerInsightsHandler(analytics *application.AnalyticsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		insights, err := analytics.CustomerInsights(r.Context(), tenant.ID)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to compute customer insights")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, insights)
	}
}

func funnelHandler(analytics *application.AnalyticsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		funnel, err := analytics.CheckoutFunnel(r.Context(), tenant.ID)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to compute checkout funnel")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, funnel)
	}
}

func profitabilityHandler(analytics *application.AnalyticsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := tenantFromContext(r.Context())

		rows, err := analytics.Profitability(r.Context(), tenant.ID, topN(r))
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("Failed to compute profitability")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, rows)
	}
}

func healthHandler(mongoClient *mongo.Client, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "mongo": "ok", "redis": "ok"}
		code := http.StatusOK
		if err := mongoClient.Ping(ctx, nil); err != nil {
			status["status"] = "degraded"
			status["mongo"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// Dashboard caching degrades, the service still works.
			status["redis"] = "unreachable"
		}
		respondJSON(w, code, status)
	}
}
