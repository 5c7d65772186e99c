package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"
)

// In-memory port implementations shared by the service tests.

type memTenants struct {
	rows     map[string]*domain.Tenant
	statuses []domain.SyncStatus
}

func newMemTenants(tenants ...*domain.Tenant) *memTenants {
	m := &memTenants{rows: make(map[string]*domain.Tenant)}
	for _, t := range tenants {
		m.rows[t.ID] = t
	}
	return m
}

func (m *memTenants) Create(ctx context.Context, tenant *domain.Tenant) error {
	m.rows[tenant.ID] = tenant
	return nil
}

func (m *memTenants) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	t, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *memTenants) GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	for _, t := range m.rows {
		if t.ShopDomain == shopDomain {
			return t, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

func (m *memTenants) UpdateSyncState(ctx context.Context, id string, status domain.SyncStatus, lastSyncAt time.Time) error {
	t, ok := m.rows[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.SyncStatus = status
	t.LastSyncAt = &lastSyncAt
	m.statuses = append(m.statuses, status)
	return nil
}

type memCustomers struct {
	rows map[int64]domain.Customer
}

func newMemCustomers() *memCustomers {
	return &memCustomers{rows: make(map[int64]domain.Customer)}
}

func (m *memCustomers) Upsert(ctx context.Context, customer *domain.Customer) error {
	if existing, ok := m.rows[customer.ShopifyID]; ok {
		customer.ID = existing.ID
	}
	if customer.ID == "" {
		customer.ID = fmt.Sprintf("c-%d", customer.ShopifyID)
	}
	m.rows[customer.ShopifyID] = *customer
	return nil
}

func (m *memCustomers) GetByShopifyID(ctx context.Context, tenantID string, shopifyID int64) (*domain.Customer, error) {
	c, ok := m.rows[shopifyID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCustomers) ListByTenant(ctx context.Context, tenantID string) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, c := range m.rows {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCustomers) Count(ctx context.Context, tenantID string) (int64, error) {
	return int64(len(m.rows)), nil
}

type memProducts struct {
	rows map[int64]domain.Product
}

func newMemProducts() *memProducts {
	return &memProducts{rows: make(map[int64]domain.Product)}
}

func (m *memProducts) Upsert(ctx context.Context, product *domain.Product) error {
	if existing, ok := m.rows[product.ShopifyID]; ok {
		product.ID = existing.ID
	}
	if product.ID == "" {
		product.ID = fmt.Sprintf("p-%d", product.ShopifyID)
	}
	m.rows[product.ShopifyID] = *product
	return nil
}

func (m *memProducts) GetByShopifyID(ctx context.Context, tenantID string, shopifyID int64) (*domain.Product, error) {
	p, ok := m.rows[shopifyID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memProducts) ListByTenant(ctx context.Context, tenantID string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range m.rows {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProducts) Count(ctx context.Context, tenantID string) (int64, error) {
	return int64(len(m.rows)), nil
}

type memOrders struct {
	rows  map[int64]domain.Order
	items map[int64]domain.OrderItem
}

func newMemOrders() *memOrders {
	return &memOrders{
		rows:  make(map[int64]domain.Order),
		items: make(map[int64]domain.OrderItem),
	}
}

func (m *memOrders) add(orders ...domain.Order) {
	for _, o := range orders {
		if o.ID == "" {
			o.ID = fmt.Sprintf("o-%d", o.ShopifyID)
		}
		m.rows[o.ShopifyID] = o
	}
}

func (m *memOrders) addItems(items ...domain.OrderItem) {
	for _, i := range items {
		m.items[i.ShopifyLineItemID] = i
	}
}

func (m *memOrders) Upsert(ctx context.Context, order *domain.Order) (string, error) {
	if existing, ok := m.rows[order.ShopifyID]; ok {
		order.ID = existing.ID
	}
	if order.ID == "" {
		order.ID = fmt.Sprintf("o-%d", order.ShopifyID)
	}
	m.rows[order.ShopifyID] = *order
	return order.ID, nil
}

func (m *memOrders) UpsertItem(ctx context.Context, item *domain.OrderItem) error {
	m.items[item.ShopifyLineItemID] = *item
	return nil
}

func (m *memOrders) ListByTenant(ctx context.Context, tenantID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.rows {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrders) ListInRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.rows {
		placed := o.PlacedAt()
		if !placed.Before(from) && placed.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) ListItemsByTenant(ctx context.Context, tenantID string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	for _, i := range m.items {
		out = append(out, i)
	}
	return out, nil
}

func (m *memOrders) ListItemsSince(ctx context.Context, tenantID string, since time.Time) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	for _, i := range m.items {
		placed := i.CreatedAt
		if i.OrderCreatedAt != nil {
			placed = *i.OrderCreatedAt
		}
		if !placed.Before(since) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *memOrders) Count(ctx context.Context, tenantID string) (int64, error) {
	return int64(len(m.rows)), nil
}

func (m *memOrders) LatestSyncedAt(ctx context.Context, tenantID string) (*time.Time, error) {
	var latest *time.Time
	for _, o := range m.rows {
		syncedAt := o.SyncedAt
		if latest == nil || syncedAt.After(*latest) {
			latest = &syncedAt
		}
	}
	return latest, nil
}

type memEvents struct {
	rows []domain.Event
}

func (m *memEvents) Insert(ctx context.Context, event *domain.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	m.rows = append(m.rows, *event)
	return nil
}

func (m *memEvents) CountByTypeInRange(ctx context.Context, tenantID string, eventType domain.EventType, from, to time.Time) (int64, error) {
	var n int64
	for _, e := range m.rows {
		if e.Type == eventType && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			n++
		}
	}
	return n, nil
}

type memCache struct {
	values  map[string][]byte
	deleted []string
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string][]byte)}
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.values[key] = value
	return nil
}

func (m *memCache) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	m.deleted = append(m.deleted, key)
	return nil
}

// fakeClient serves canned pages per entity kind. Pages are consumed in call
// order; once exhausted it returns empty pages.
type fakeClient struct {
	customerPages [][]ports.CustomerRecord
	productPages  [][]ports.ProductRecord
	orderPages    [][]ports.OrderRecord

	customersErr error
	productsErr  error
	ordersErr    error

	customerCalls int
	productCalls  int
	orderCalls    int
}

func (f *fakeClient) FetchCustomers(ctx context.Context, creds ports.StoreCredentials, opts ports.FetchOptions) ([]ports.CustomerRecord, error) {
	f.customerCalls++
	if f.customersErr != nil {
		return nil, f.customersErr
	}
	if len(f.customerPages) == 0 {
		return nil, nil
	}
	page := f.customerPages[0]
	f.customerPages = f.customerPages[1:]
	return page, nil
}

func (f *fakeClient) FetchProducts(ctx context.Context, creds ports.StoreCredentials, opts ports.FetchOptions) ([]ports.ProductRecord, error) {
	f.productCalls++
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	if len(f.productPages) == 0 {
		return nil, nil
	}
	page := f.productPages[0]
	f.productPages = f.productPages[1:]
	return page, nil
}

func (f *fakeClient) FetchOrders(ctx context.Context, creds ports.StoreCredentials, opts ports.FetchOptions) ([]ports.OrderRecord, error) {
	f.orderCalls++
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	if len(f.orderPages) == 0 {
		return nil, nil
	}
	page := f.orderPages[0]
	f.orderPages = f.orderPages[1:]
	return page, nil
}

type stubVerifier struct{ ok bool }

func (s stubVerifier) Verify(rawBody []byte, signatureHeader string) bool { return s.ok }
