package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/rs/zerolog"
)

// maxPageSize is the largest page the platform serves per listing call.
const maxPageSize = 250

const (
	kindCustomers = "customers"
	kindProducts  = "products"
	kindOrders    = "orders"
)

// SyncResult reports one entity-kind sync run. Errors counts records that
// failed mapping or persistence; the batch itself still completed.
type SyncResult struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}

// FullSyncResult reports one SyncAll run per entity kind.
type FullSyncResult struct {
	Customers SyncResult `json:"customers"`
	Products  SyncResult `json:"products"`
	Orders    SyncResult `json:"orders"`
}

// SyncStatusReport is a point-in-time view of a tenant's ingested data,
// independent of any sync currently running.
type SyncStatusReport struct {
	SyncStatus        domain.SyncStatus `json:"sync_status"`
	LastSyncAt        *time.Time        `json:"last_sync_at,omitempty"`
	Customers         int64             `json:"customers"`
	Products          int64             `json:"products"`
	Orders            int64             `json:"orders"`
	LastOrderSyncedAt *time.Time        `json:"last_order_synced_at,omitempty"`
}

// SyncService orchestrates pulling a tenant's store data through the external
// API into the local store.
//
// Error policy: a connectivity failure aborts the sync for that entity kind
// and surfaces to the caller; a single record failing to map or persist is
// counted, logged and skipped. SyncAll additionally isolates kinds from each
// other.
type SyncService struct {
	client    ports.StoreClient
	tenants   ports.TenantRepository
	writer    *entityWriter
	customers ports.CustomerRepository
	products  ports.ProductRepository
	orders    ports.OrderRepository
	cache     ports.Cache
	recorder  Recorder
	logger    zerolog.Logger
}

// NewSyncService creates the sync orchestrator. recorder may be nil.
func NewSyncService(
	client ports.StoreClient,
	tenants ports.TenantRepository,
	customers ports.CustomerRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	cache ports.Cache,
	recorder Recorder,
	logger zerolog.Logger,
) *SyncService {
	return &SyncService{
		client:    client,
		tenants:   tenants,
		writer:    newEntityWriter(customers, products, orders, logger),
		customers: customers,
		products:  products,
		orders:    orders,
		cache:     cache,
		recorder:  recorder,
		logger:    logger,
	}
}

func credentials(tenant *domain.Tenant) ports.StoreCredentials {
	return ports.StoreCredentials{
		ShopDomain:  tenant.ShopDomain,
		AccessToken: tenant.AccessToken,
	}
}

// normalize clamps the page size and reports whether the caller pinned the
// sync to a single page by passing an explicit cursor.
func normalize(opts ports.FetchOptions) (ports.FetchOptions, bool) {
	if opts.Limit <= 0 || opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	return opts, opts.SinceID != nil
}

// SyncCustomers pulls customer pages for the tenant. With a nil SinceID it
// pages until a short page comes back; with an explicit SinceID it fetches
// exactly one page.
func (s *SyncService) SyncCustomers(ctx context.Context, tenant *domain.Tenant, opts ports.FetchOptions) (SyncResult, error) {
	opts, singlePage := normalize(opts)
	var result SyncResult

	for {
		page, err := s.client.FetchCustomers(ctx, credentials(tenant), opts)
		if err != nil {
			return result, fmt.Errorf("sync customers for tenant %s: %w", tenant.ID, err)
		}
		for _, rec := range page {
			if err := s.writer.writeCustomer(ctx, tenant.ID, rec); err != nil {
				result.Errors++
				s.logger.Error().Err(err).
					Str("tenantId", tenant.ID).
					Int64("shopifyId", rec.ID).
					Msg("customer sync record failed")
				continue
			}
			result.Synced++
		}
		if singlePage || len(page) < opts.Limit {
			break
		}
		last := page[len(page)-1].ID
		opts.SinceID = &last
	}

	s.finishKind(ctx, tenant.ID, kindCustomers, result)
	return result, nil
}

// SyncProducts pulls product pages for the tenant.
func (s *SyncService) SyncProducts(ctx context.Context, tenant *domain.Tenant, opts ports.FetchOptions) (SyncResult, error) {
	opts, singlePage := normalize(opts)
	var result SyncResult

	for {
		page, err := s.client.FetchProducts(ctx, credentials(tenant), opts)
		if err != nil {
			return result, fmt.Errorf("sync products for tenant %s: %w", tenant.ID, err)
		}
		for _, rec := range page {
			if err := s.writer.writeProduct(ctx, tenant.ID, rec); err != nil {
				result.Errors++
				s.logger.Error().Err(err).
					Str("tenantId", tenant.ID).
					Int64("shopifyId", rec.ID).
					Msg("product sync record failed")
				continue
			}
			result.Synced++
		}
		if singlePage || len(page) < opts.Limit {
			break
		}
		last := page[len(page)-1].ID
		opts.SinceID = &last
	}

	s.finishKind(ctx, tenant.ID, kindProducts, result)
	return result, nil
}

// SyncOrders pulls order pages for the tenant, resolving customer links and
// upserting line items per order. Status defaults to "any".
func (s *SyncService) SyncOrders(ctx context.Context, tenant *domain.Tenant, opts ports.FetchOptions) (SyncResult, error) {
	opts, singlePage := normalize(opts)
	if opts.Status == "" {
		opts.Status = "any"
	}
	var result SyncResult

	for {
		page, err := s.client.FetchOrders(ctx, credentials(tenant), opts)
		if err != nil {
			return result, fmt.Errorf("sync orders for tenant %s: %w", tenant.ID, err)
		}
		for _, rec := range page {
			itemErrors, err := s.writer.writeOrder(ctx, tenant.ID, rec)
			result.Errors += itemErrors
			if err != nil {
				result.Errors++
				s.logger.Error().Err(err).
					Str("tenantId", tenant.ID).
					Int64("shopifyId", rec.ID).
					Msg("order sync record failed")
				continue
			}
			result.Synced++
		}
		if singlePage || len(page) < opts.Limit {
			break
		}
		last := page[len(page)-1].ID
		opts.SinceID = &last
	}

	s.finishKind(ctx, tenant.ID, kindOrders, result)
	return result, nil
}

// SyncAll runs a full sync: customers, then products, then orders. The order
// matters: order ingestion links against customers and products already in
// the store. A connectivity failure for one kind is recorded as a single
// error for that kind and the remaining kinds still run. SyncAll never fails
// on connectivity; the per-kind counts carry the outcome.
//
// Unless force is set, a tenant already marked in progress is skipped.
func (s *SyncService) SyncAll(ctx context.Context, tenant *domain.Tenant, force bool) (FullSyncResult, error) {
	var full FullSyncResult

	if !force && tenant.SyncStatus == domain.SyncStatusInProgress {
		s.logger.Warn().Str("tenantId", tenant.ID).Msg("sync already in progress, skipping")
		return full, nil
	}

	startedAt := time.Now().UTC()
	if err := s.tenants.UpdateSyncState(ctx, tenant.ID, domain.SyncStatusInProgress, startedAt); err != nil {
		return full, fmt.Errorf("mark sync in progress: %w", err)
	}

	s.logger.Info().Str("tenantId", tenant.ID).Str("shop", tenant.ShopDomain).Msg("starting full sync")

	aborted := false
	run := func(kind string, sync func() (SyncResult, error)) SyncResult {
		result, err := sync()
		if err != nil {
			aborted = true
			s.logger.Error().Err(err).
				Str("tenantId", tenant.ID).
				Str("kind", kind).
				Msg("sync aborted for entity kind")
			return SyncResult{Synced: 0, Errors: 1}
		}
		return result
	}

	full.Customers = run(kindCustomers, func() (SyncResult, error) {
		return s.SyncCustomers(ctx, tenant, ports.FetchOptions{})
	})
	full.Products = run(kindProducts, func() (SyncResult, error) {
		return s.SyncProducts(ctx, tenant, ports.FetchOptions{})
	})
	full.Orders = run(kindOrders, func() (SyncResult, error) {
		return s.SyncOrders(ctx, tenant, ports.FetchOptions{})
	})

	status := domain.SyncStatusCompleted
	if aborted {
		status = domain.SyncStatusFailed
	}
	if err := s.tenants.UpdateSyncState(ctx, tenant.ID, status, time.Now().UTC()); err != nil {
		s.logger.Error().Err(err).Str("tenantId", tenant.ID).Msg("failed to record sync outcome")
	}

	s.logger.Info().
		Str("tenantId", tenant.ID).
		Str("status", string(status)).
		Int("customersSynced", full.Customers.Synced).
		Int("productsSynced", full.Products.Synced).
		Int("ordersSynced", full.Orders.Synced).
		Msg("full sync finished")
	return full, nil
}

// GetSyncStatus reports row counts per entity kind plus the latest order
// sync time. It reads committed data only and is safe to call mid-sync.
func (s *SyncService) GetSyncStatus(ctx context.Context, tenantID string) (*SyncStatusReport, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	customerCount, err := s.customers.Count(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	productCount, err := s.products.Count(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	orderCount, err := s.orders.Count(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	lastOrderSyncedAt, err := s.orders.LatestSyncedAt(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("latest order sync time: %w", err)
	}

	return &SyncStatusReport{
		SyncStatus:        tenant.SyncStatus,
		LastSyncAt:        tenant.LastSyncAt,
		Customers:         customerCount,
		Products:          productCount,
		Orders:            orderCount,
		LastOrderSyncedAt: lastOrderSyncedAt,
	}, nil
}

// finishKind records metrics and drops the tenant's cached dashboard after a
// kind-level sync wrote anything.
func (s *SyncService) finishKind(ctx context.Context, tenantID, kind string, result SyncResult) {
	if s.recorder != nil {
		s.recorder.ObserveSync(kind, result.Synced, result.Errors)
	}
	if result.Synced == 0 {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey(tenantID)); err != nil {
		s.logger.Warn().Err(err).Str("tenantId", tenantID).Msg("failed to invalidate dashboard cache")
	}
}
