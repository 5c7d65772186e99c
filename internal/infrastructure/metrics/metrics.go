// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the service registers. One instance is wired
// through the application layer and the Shopify client.
type Metrics struct {
	RecordsSynced   *prometheus.CounterVec
	SyncErrors      *prometheus.CounterVec
	SyncRuns        *prometheus.CounterVec
	WebhooksHandled *prometheus.CounterVec
	APIRequests     *prometheus.CounterVec
	Throttles       prometheus.Counter
	DashboardCache  *prometheus.CounterVec
}

// New creates the collectors and registers them on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RecordsSynced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_records_synced_total",
			Help: "Records persisted per sync run, by entity kind.",
		}, []string{"kind"}),
		SyncErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_sync_errors_total",
			Help: "Records skipped during sync, by entity kind.",
		}, []string{"kind"}),
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_sync_runs_total",
			Help: "Sync runs by entity kind and outcome.",
		}, []string{"kind", "outcome"}),
		WebhooksHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_webhooks_total",
			Help: "Webhook deliveries by topic and outcome.",
		}, []string{"topic", "outcome"}),
		APIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_shopify_api_requests_total",
			Help: "Shopify Admin API requests by resource and status code.",
		}, []string{"resource", "status"}),
		Throttles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ingest_shopify_throttled_total",
			Help: "Responses throttled by the Shopify Admin API.",
		}),
		DashboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_dashboard_cache_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.RecordsSynced,
		m.SyncErrors,
		m.SyncRuns,
		m.WebhooksHandled,
		m.APIRequests,
		m.Throttles,
		m.DashboardCache,
	)
	return m
}

// ObserveAPIRequest records one Admin API round trip.
func (m *Metrics) ObserveAPIRequest(resource string, status int) {
	m.APIRequests.WithLabelValues(resource, strconv.Itoa(status)).Inc()
}

// ObserveThrottle records one throttled response.
func (m *Metrics) ObserveThrottle() {
	m.Throttles.Inc()
}

// ObserveSync records the outcome of one entity-kind sync run.
func (m *Metrics) ObserveSync(kind string, synced, errors int) {
	m.RecordsSynced.WithLabelValues(kind).Add(float64(synced))
	m.SyncErrors.WithLabelValues(kind).Add(float64(errors))
	outcome := "ok"
	if errors > 0 {
		outcome = "partial"
	}
	if synced == 0 && errors > 0 {
		outcome = "failed"
	}
	m.SyncRuns.WithLabelValues(kind, outcome).Inc()
}

// ObserveWebhook records one webhook delivery outcome.
func (m *Metrics) ObserveWebhook(topic, outcome string) {
	m.WebhooksHandled.WithLabelValues(topic, outcome).Inc()
}

// ObserveCache records one dashboard cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.DashboardCache.WithLabelValues(result).Inc()
}
