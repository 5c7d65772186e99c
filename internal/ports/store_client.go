package ports

import (
	"context"
	"time"
)

// FetchOptions drive one page of a cursor-style listing. The caller paginates
// by passing the last seen id as SinceID until a short page (< Limit) comes
// back. Limit is capped at 250 by the platform.
type FetchOptions struct {
	SinceID *int64
	Limit   int
	// Status filters orders only ("any" fetches every order).
	Status string
}

// StoreCredentials identify one tenant's shop on the external platform.
type StoreCredentials struct {
	ShopDomain  string
	AccessToken string
}

// CustomerRecord is the raw customer shape returned by the store API.
// Money comes over the wire as strings and is parsed at the mapping boundary.
type CustomerRecord struct {
	ID               int64      `json:"id"`
	Email            string     `json:"email"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Phone            string     `json:"phone"`
	AcceptsMarketing bool       `json:"accepts_marketing"`
	TotalSpent       string     `json:"total_spent"`
	OrdersCount      int        `json:"orders_count"`
	State            string     `json:"state"`
	Note             string     `json:"note"`
	VerifiedEmail    bool       `json:"verified_email"`
	Tags             string     `json:"tags"`
	CreatedAt        *time.Time `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

// VariantRecord is one product variant as returned by the store API.
type VariantRecord struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	CostPerItem       string `json:"cost_per_item"`
	InventoryQuantity *int   `json:"inventory_quantity"`
}

// ProductRecord is the raw product shape returned by the store API.
type ProductRecord struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Vendor      string          `json:"vendor"`
	ProductType string          `json:"product_type"`
	Status      string          `json:"status"`
	Tags        string          `json:"tags"`
	Variants    []VariantRecord `json:"variants"`
	CreatedAt   *time.Time      `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at"`
}

// LineItemRecord is one order line as returned by the store API.
type LineItemRecord struct {
	ID        int64  `json:"id"`
	ProductID *int64 `json:"product_id"`
	Title     string `json:"title"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderCustomerRef is the embedded customer reference on an order payload.
type OrderCustomerRef struct {
	ID int64 `json:"id"`
}

// OrderRecord is the raw order shape returned by the store API.
type OrderRecord struct {
	ID                int64             `json:"id"`
	OrderNumber       int               `json:"order_number"`
	Email             string            `json:"email"`
	Customer          *OrderCustomerRef `json:"customer"`
	FinancialStatus   string            `json:"financial_status"`
	FulfillmentStatus string            `json:"fulfillment_status"`
	Currency          string            `json:"currency"`
	TotalPrice        string            `json:"total_price"`
	SubtotalPrice     string            `json:"subtotal_price"`
	TotalTax          string            `json:"total_tax"`
	TotalDiscounts    string            `json:"total_discounts"`
	Tags              string            `json:"tags"`
	LineItems         []LineItemRecord  `json:"line_items"`
	ProcessedAt       *time.Time        `json:"processed_at"`
	CancelledAt       *time.Time        `json:"cancelled_at"`
	CreatedAt         *time.Time        `json:"created_at"`
	UpdatedAt         *time.Time        `json:"updated_at"`
}

// StoreClient fetches raw records from one tenant's external store. Each call
// attaches the tenant credentials, honors the platform rate-limit contract,
// and returns at most one page. It fails with *domain.ConnectivityError on
// network or authentication failure and never retries a failed call; retry
// policy belongs to the orchestrator.
type StoreClient interface {
	FetchCustomers(ctx context.Context, creds StoreCredentials, opts FetchOptions) ([]CustomerRecord, error)
	FetchProducts(ctx context.Context, creds StoreCredentials, opts FetchOptions) ([]ProductRecord, error)
	FetchOrders(ctx context.Context, creds StoreCredentials, opts FetchOptions) ([]OrderRecord, error)
}
