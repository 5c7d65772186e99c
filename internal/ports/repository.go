package ports

import (
	"context"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
)

// TenantRepository persists tenants. Tenants are soft-deleted only.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error)
	// UpdateSyncState records the outcome of a sync attempt.
	UpdateSyncState(ctx context.Context, id string, status domain.SyncStatus, lastSyncAt time.Time) error
}

// CustomerRepository persists customers keyed by (tenantId, shopifyId).
// Upsert is idempotent: applying the same record twice neither grows the
// collection nor changes any field.
type CustomerRepository interface {
	Upsert(ctx context.Context, customer *domain.Customer) error
	GetByShopifyID(ctx context.Context, tenantID string, shopifyID int64) (*domain.Customer, error)
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Customer, error)
	Count(ctx context.Context, tenantID string) (int64, error)
}

// ProductRepository persists products keyed by (tenantId, shopifyId).
type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) error
	GetByShopifyID(ctx context.Context, tenantID string, shopifyID int64) (*domain.Product, error)
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Product, error)
	Count(ctx context.Context, tenantID string) (int64, error)
}

// OrderRepository persists orders and their line items. Upsert returns the
// local order id so line items can link to it. UpsertItem recomputes the
// derived line total before writing and never trusts the input value.
type OrderRepository interface {
	Upsert(ctx context.Context, order *domain.Order) (orderID string, err error)
	UpsertItem(ctx context.Context, item *domain.OrderItem) error
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Order, error)
	ListInRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.Order, error)
	ListItemsByTenant(ctx context.Context, tenantID string) ([]domain.OrderItem, error)
	ListItemsSince(ctx context.Context, tenantID string, since time.Time) ([]domain.OrderItem, error)
	Count(ctx context.Context, tenantID string) (int64, error)
	// LatestSyncedAt returns the most recent syncedAt among the tenant's
	// orders, or nil when none exist.
	LatestSyncedAt(ctx context.Context, tenantID string) (*time.Time, error)
}

// EventRepository persists funnel signals. Counting over an empty collection
// yields zeros, never an error: funnel capture is optional per tenant.
type EventRepository interface {
	Insert(ctx context.Context, event *domain.Event) error
	CountByTypeInRange(ctx context.Context, tenantID string, eventType domain.EventType, from, to time.Time) (int64, error)
}
