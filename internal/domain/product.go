package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus mirrors the listing state reported by the store platform.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
	ProductStatusDraft    ProductStatus = "draft"
)

// Product is a catalog entry, unique per (TenantID, ShopifyID).
//
// Cost and InventoryQuantity are optional: profitability and stock-out
// metrics skip products where they are unknown instead of guessing.
// Variants is carried as an opaque structured blob; nothing in this
// service interprets it beyond persistence.
type Product struct {
	ID                string           `json:"id"`
	TenantID          string           `json:"tenant_id"`
	ShopifyID         int64            `json:"shopify_id"`
	Title             string           `json:"title"`
	Vendor            string           `json:"vendor,omitempty"`
	ProductType       string           `json:"product_type,omitempty"`
	Status            ProductStatus    `json:"status"`
	Price             decimal.Decimal  `json:"price"`
	Cost              *decimal.Decimal `json:"cost,omitempty"`
	SKU               string           `json:"sku,omitempty"`
	InventoryQuantity *int             `json:"inventory_quantity,omitempty"`
	Tags              []string         `json:"tags"`
	Variants          []map[string]any `json:"variants"`
	ShopifyCreatedAt  *time.Time       `json:"shopify_created_at,omitempty"`
	ShopifyUpdatedAt  *time.Time       `json:"shopify_updated_at,omitempty"`
	SyncedAt          time.Time        `json:"synced_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
