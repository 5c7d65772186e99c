package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialStatus is the settlement state of an order.
type FinancialStatus string

const (
	FinancialStatusPending           FinancialStatus = "pending"
	FinancialStatusAuthorized        FinancialStatus = "authorized"
	FinancialStatusPartiallyPaid     FinancialStatus = "partially_paid"
	FinancialStatusPaid              FinancialStatus = "paid"
	FinancialStatusPartiallyRefunded FinancialStatus = "partially_refunded"
	FinancialStatusRefunded          FinancialStatus = "refunded"
	FinancialStatusVoided            FinancialStatus = "voided"
)

// FulfillmentStatus is the shipping state of an order. The platform reports
// an absent status for unfulfilled orders; that maps to the empty string.
type FulfillmentStatus string

const (
	FulfillmentStatusFulfilled FulfillmentStatus = "fulfilled"
	FulfillmentStatusPartial   FulfillmentStatus = "partial"
	FulfillmentStatusRestocked FulfillmentStatus = "restocked"
	FulfillmentStatusNone      FulfillmentStatus = ""
)

// Order is a store order, unique per (TenantID, ShopifyID). CustomerID is
// nil when the order arrived before its customer was ingested; money fields
// are validated non-negative at the mapping boundary.
type Order struct {
	ID                string            `json:"id"`
	TenantID          string            `json:"tenant_id"`
	CustomerID        *string           `json:"customer_id,omitempty"`
	ShopifyID         int64             `json:"shopify_id"`
	OrderNumber       int               `json:"order_number,omitempty"`
	Email             string            `json:"email,omitempty"`
	FinancialStatus   FinancialStatus   `json:"financial_status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	Currency          string            `json:"currency"`
	TotalPrice        decimal.Decimal   `json:"total_price"`
	SubtotalPrice     decimal.Decimal   `json:"subtotal_price"`
	TotalTax          decimal.Decimal   `json:"total_tax"`
	TotalDiscounts    decimal.Decimal   `json:"total_discounts"`
	ProcessedAt       *time.Time        `json:"processed_at,omitempty"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
	Tags              []string          `json:"tags"`
	ShopifyCreatedAt  *time.Time        `json:"shopify_created_at,omitempty"`
	ShopifyUpdatedAt  *time.Time        `json:"shopify_updated_at,omitempty"`
	SyncedAt          time.Time         `json:"synced_at"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// PlacedAt is the canonical order timestamp for analytics: the shop-side
// creation time when known, otherwise our ingestion time.
func (o *Order) PlacedAt() time.Time {
	if o.ShopifyCreatedAt != nil {
		return *o.ShopifyCreatedAt
	}
	return o.CreatedAt
}

// OrderItem links an order to a product with quantities and a price snapshot.
// Unique per external line item id. TotalPrice is derived: the repository
// recomputes quantity x priceAtTime on every write and never trusts input.
type OrderItem struct {
	ID                string          `json:"id"`
	TenantID          string          `json:"tenant_id"`
	OrderID           string          `json:"order_id"`
	ProductID         *string         `json:"product_id,omitempty"`
	ShopifyLineItemID int64           `json:"shopify_line_item_id"`
	Title             string          `json:"title"`
	SKU               string          `json:"sku,omitempty"`
	Quantity          int             `json:"quantity"`
	PriceAtTime       decimal.Decimal `json:"price_at_time"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	// ProductShopifyID keeps the external product reference even when the
	// product row has not been ingested yet.
	ProductShopifyID int64      `json:"product_shopify_id,omitempty"`
	OrderCreatedAt   *time.Time `json:"order_created_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
