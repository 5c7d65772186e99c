package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	client    *fakeClient
	tenants   *memTenants
	customers *memCustomers
	products  *memProducts
	orders    *memOrders
	cache     *memCache
	tenant    *domain.Tenant
	service   *SyncService
}

func newSyncFixture(client *fakeClient) *syncFixture {
	tenant := &domain.Tenant{
		ID:          "t1",
		ShopDomain:  "demo.myshopify.com",
		AccessToken: "shpat_test",
		SyncStatus:  domain.SyncStatusPending,
	}
	f := &syncFixture{
		client:    client,
		tenants:   newMemTenants(tenant),
		customers: newMemCustomers(),
		products:  newMemProducts(),
		orders:    newMemOrders(),
		cache:     newMemCache(),
		tenant:    tenant,
	}
	f.service = NewSyncService(
		client, f.tenants, f.customers, f.products, f.orders, f.cache, nil, zerolog.Nop(),
	)
	return f
}

func customerRecord(id int64) ports.CustomerRecord {
	return ports.CustomerRecord{
		ID:         id,
		Email:      fmt.Sprintf("c%d@example.com", id),
		TotalSpent: "10.00",
	}
}

func TestSyncCustomersCountsBadRecordAndContinues(t *testing.T) {
	page := make([]ports.CustomerRecord, 0, 10)
	for i := int64(1); i <= 10; i++ {
		rec := customerRecord(i)
		if i == 4 {
			rec.TotalSpent = "not-a-number"
		}
		page = append(page, rec)
	}
	f := newSyncFixture(&fakeClient{customerPages: [][]ports.CustomerRecord{page}})

	result, err := f.service.SyncCustomers(context.Background(), f.tenant, ports.FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 9, Errors: 1}, result)
	// The records around the failure are persisted.
	for _, id := range []int64{1, 2, 3, 5, 10} {
		c, err := f.customers.GetByShopifyID(context.Background(), "t1", id)
		require.NoError(t, err)
		assert.NotNil(t, c, "customer %d should be persisted", id)
	}
	missing, _ := f.customers.GetByShopifyID(context.Background(), "t1", 4)
	assert.Nil(t, missing)
}

func TestSyncCustomersPagesUntilShortPage(t *testing.T) {
	pages := [][]ports.CustomerRecord{
		{customerRecord(1), customerRecord(2)},
		{customerRecord(3), customerRecord(4)},
		{customerRecord(5)},
	}
	f := newSyncFixture(&fakeClient{customerPages: pages})

	result, err := f.service.SyncCustomers(context.Background(), f.tenant, ports.FetchOptions{Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 5}, result)
	assert.Equal(t, 3, f.client.customerCalls)
}

func TestSyncCustomersExplicitCursorFetchesOnePage(t *testing.T) {
	pages := [][]ports.CustomerRecord{
		{customerRecord(11), customerRecord(12)},
		{customerRecord(13), customerRecord(14)},
	}
	f := newSyncFixture(&fakeClient{customerPages: pages})

	sinceID := int64(10)
	result, err := f.service.SyncCustomers(context.Background(), f.tenant, ports.FetchOptions{SinceID: &sinceID, Limit: 2})

	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 2}, result)
	assert.Equal(t, 1, f.client.customerCalls)
}

func TestSyncCustomersConnectivityFailureSurfaces(t *testing.T) {
	f := newSyncFixture(&fakeClient{
		customersErr: &domain.ConnectivityError{Op: "fetch customers", Shop: "demo"},
	})

	_, err := f.service.SyncCustomers(context.Background(), f.tenant, ports.FetchOptions{})

	require.Error(t, err)
	assert.True(t, domain.IsConnectivity(err))
}

func TestSyncOrdersLinksCustomerAndItems(t *testing.T) {
	productID := int64(7)
	f := newSyncFixture(&fakeClient{
		customerPages: [][]ports.CustomerRecord{{customerRecord(42)}},
		orderPages: [][]ports.OrderRecord{{
			{
				ID:         900,
				Customer:   &ports.OrderCustomerRef{ID: 42},
				TotalPrice: "59.97",
				LineItems: []ports.LineItemRecord{
					{ID: 9000, ProductID: &productID, Quantity: 3, Price: "19.99"},
				},
			},
		}},
	})

	_, err := f.service.SyncCustomers(context.Background(), f.tenant, ports.FetchOptions{})
	require.NoError(t, err)
	result, err := f.service.SyncOrders(context.Background(), f.tenant, ports.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 1}, result)

	order := f.orders.rows[900]
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, "c-42", *order.CustomerID)

	item := f.orders.items[9000]
	assert.Equal(t, order.ID, item.OrderID)
	// Product was never ingested, so the local link stays empty while the
	// external reference is kept.
	assert.Nil(t, item.ProductID)
	assert.Equal(t, int64(7), item.ProductShopifyID)
}

func TestSyncOrdersWithoutCustomerKeepsNilLink(t *testing.T) {
	f := newSyncFixture(&fakeClient{
		orderPages: [][]ports.OrderRecord{{
			{ID: 901, Customer: &ports.OrderCustomerRef{ID: 999}, TotalPrice: "10.00"},
		}},
	})

	result, err := f.service.SyncOrders(context.Background(), f.tenant, ports.FetchOptions{})

	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 1}, result)
	assert.Nil(t, f.orders.rows[901].CustomerID)
}

func TestSyncAllIsolatesConnectivityFailurePerKind(t *testing.T) {
	f := newSyncFixture(&fakeClient{
		customerPages: [][]ports.CustomerRecord{{customerRecord(1)}},
		productsErr:   &domain.ConnectivityError{Op: "fetch products", Shop: "demo"},
		orderPages: [][]ports.OrderRecord{{
			{ID: 900, TotalPrice: "10.00"},
		}},
	})

	result, err := f.service.SyncAll(context.Background(), f.tenant, false)

	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 1}, result.Customers)
	assert.Equal(t, SyncResult{Synced: 0, Errors: 1}, result.Products)
	assert.Equal(t, SyncResult{Synced: 1}, result.Orders)
	// The aborted kind marks the run failed.
	assert.Equal(t, domain.SyncStatusFailed, f.tenant.SyncStatus)
	assert.NotNil(t, f.tenant.LastSyncAt)
}

func TestSyncAllCompletesAndInvalidatesCache(t *testing.T) {
	f := newSyncFixture(&fakeClient{
		customerPages: [][]ports.CustomerRecord{{customerRecord(1)}},
	})
	f.cache.values[dashboardCacheKey("t1")] = []byte(`{}`)

	_, err := f.service.SyncAll(context.Background(), f.tenant, false)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusCompleted, f.tenant.SyncStatus)
	_, cached := f.cache.values[dashboardCacheKey("t1")]
	assert.False(t, cached)
}

func TestSyncAllSkipsWhenAlreadyInProgress(t *testing.T) {
	f := newSyncFixture(&fakeClient{
		customerPages: [][]ports.CustomerRecord{{customerRecord(1)}},
	})
	f.tenant.SyncStatus = domain.SyncStatusInProgress

	result, err := f.service.SyncAll(context.Background(), f.tenant, false)

	require.NoError(t, err)
	assert.Equal(t, FullSyncResult{}, result)
	assert.Equal(t, 0, f.client.customerCalls)
}

func TestSyncAllForceOverridesInProgress(t *testing.T) {
	f := newSyncFixture(&fakeClient{
		customerPages: [][]ports.CustomerRecord{{customerRecord(1)}},
	})
	f.tenant.SyncStatus = domain.SyncStatusInProgress

	result, err := f.service.SyncAll(context.Background(), f.tenant, true)

	require.NoError(t, err)
	assert.Equal(t, SyncResult{Synced: 1}, result.Customers)
}

func TestGetSyncStatusReportsCounts(t *testing.T) {
	f := newSyncFixture(&fakeClient{
		customerPages: [][]ports.CustomerRecord{{customerRecord(1), customerRecord(2)}},
		orderPages: [][]ports.OrderRecord{{
			{ID: 900, TotalPrice: "10.00"},
		}},
	})

	_, err := f.service.SyncAll(context.Background(), f.tenant, false)
	require.NoError(t, err)

	status, err := f.service.GetSyncStatus(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), status.Customers)
	assert.Equal(t, int64(0), status.Products)
	assert.Equal(t, int64(1), status.Orders)
	assert.NotNil(t, status.LastOrderSyncedAt)
	assert.Equal(t, domain.SyncStatusCompleted, status.SyncStatus)
}
