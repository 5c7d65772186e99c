package application

import (
	"testing"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Equal(t, []string{"vip", "wholesale"}, splitTags("vip, wholesale"))
	assert.Equal(t, []string{"a", "b"}, splitTags("a,,b,"))
	// Order is preserved.
	assert.Equal(t, []string{"z", "a", "m"}, splitTags("z,a,m"))
}

func TestMapCustomer(t *testing.T) {
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	customer, err := mapCustomer("t1", ports.CustomerRecord{
		ID:          42,
		Email:       "jo@example.com",
		FirstName:   "Jo",
		TotalSpent:  "199.90",
		OrdersCount: 3,
		State:       "enabled",
		Tags:        "vip, returning",
		CreatedAt:   &created,
	}, now)

	require.NoError(t, err)
	assert.Equal(t, "t1", customer.TenantID)
	assert.Equal(t, int64(42), customer.ShopifyID)
	assert.True(t, customer.TotalSpent.Equal(decimal.NewFromFloat(199.90)))
	assert.Equal(t, []string{"vip", "returning"}, customer.Tags)
	assert.Equal(t, domain.CustomerStateEnabled, customer.State)
	assert.Equal(t, now, customer.SyncedAt)
}

func TestMapCustomerRejectsBadMoney(t *testing.T) {
	_, err := mapCustomer("t1", ports.CustomerRecord{ID: 42, TotalSpent: "not-a-number"}, time.Now())

	var mapErr *domain.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "customer", mapErr.Entity)
	assert.Equal(t, int64(42), mapErr.ExternalID)
}

func TestMapCustomerRejectsNegativeMoney(t *testing.T) {
	_, err := mapCustomer("t1", ports.CustomerRecord{ID: 42, TotalSpent: "-5.00"}, time.Now())

	var mapErr *domain.MappingError
	require.ErrorAs(t, err, &mapErr)
}

func TestMapProductFlattensFirstVariant(t *testing.T) {
	inventory := 15
	product, err := mapProduct("t1", ports.ProductRecord{
		ID:    7,
		Title: "Blue Tee",
		Variants: []ports.VariantRecord{
			{ID: 70, SKU: "BT-1", Price: "25.00", CostPerItem: "10.00", InventoryQuantity: &inventory},
			{ID: 71, SKU: "BT-2", Price: "27.00"},
		},
	}, time.Now())

	require.NoError(t, err)
	assert.True(t, product.Price.Equal(decimal.NewFromInt(25)))
	require.NotNil(t, product.Cost)
	assert.True(t, product.Cost.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "BT-1", product.SKU)
	require.NotNil(t, product.InventoryQuantity)
	assert.Equal(t, 15, *product.InventoryQuantity)
	assert.Len(t, product.Variants, 2)
	assert.Equal(t, domain.ProductStatusActive, product.Status)
}

func TestMapProductWithoutCost(t *testing.T) {
	product, err := mapProduct("t1", ports.ProductRecord{
		ID:       7,
		Variants: []ports.VariantRecord{{ID: 70, Price: "25.00"}},
	}, time.Now())

	require.NoError(t, err)
	assert.Nil(t, product.Cost)
	assert.Nil(t, product.InventoryQuantity)
}

func TestMapOrderValidatesAllMoneyFields(t *testing.T) {
	rec := ports.OrderRecord{
		ID:             9,
		TotalPrice:     "100.00",
		SubtotalPrice:  "90.00",
		TotalTax:       "10.00",
		TotalDiscounts: "-1.00",
	}
	_, err := mapOrder("t1", rec, time.Now())

	var mapErr *domain.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "order", mapErr.Entity)
}

func TestMapOrderDefaultsStatuses(t *testing.T) {
	order, err := mapOrder("t1", ports.OrderRecord{ID: 9, TotalPrice: "10.00"}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, domain.FinancialStatusPending, order.FinancialStatus)
	assert.Equal(t, domain.FulfillmentStatusNone, order.FulfillmentStatus)
}

func TestMapOrderItemComputesTotal(t *testing.T) {
	productID := int64(7)
	item, err := mapOrderItem("t1", "o-9", nil, ports.LineItemRecord{
		ID:        900,
		ProductID: &productID,
		Quantity:  3,
		Price:     "19.99",
	})

	require.NoError(t, err)
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromFloat(59.97)))
	assert.Equal(t, int64(7), item.ProductShopifyID)
}

func TestMapOrderItemRejectsZeroQuantity(t *testing.T) {
	_, err := mapOrderItem("t1", "o-9", nil, ports.LineItemRecord{ID: 900, Quantity: 0, Price: "19.99"})

	var mapErr *domain.MappingError
	require.ErrorAs(t, err, &mapErr)
	assert.Equal(t, "order_item", mapErr.Entity)
}
