package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerState mirrors the account state reported by the store platform.
type CustomerState string

const (
	CustomerStateEnabled  CustomerState = "enabled"
	CustomerStateDisabled CustomerState = "disabled"
	CustomerStateInvited  CustomerState = "invited"
	CustomerStateDeclined CustomerState = "declined"
	CustomerStateArchived CustomerState = "archived"
)

// Customer is a store customer, unique per (TenantID, ShopifyID).
// Tags are an ordered list in memory; the storage layer folds them into a
// single delimited string.
type Customer struct {
	ID               string          `json:"id"`
	TenantID         string          `json:"tenant_id"`
	ShopifyID        int64           `json:"shopify_id"`
	Email            string          `json:"email,omitempty"`
	FirstName        string          `json:"first_name,omitempty"`
	LastName         string          `json:"last_name,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	AcceptsMarketing bool            `json:"accepts_marketing"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	TotalOrders      int             `json:"total_orders"`
	State            CustomerState   `json:"state"`
	Note             string          `json:"note,omitempty"`
	VerifiedEmail    bool            `json:"verified_email"`
	Tags             []string        `json:"tags"`
	ShopifyCreatedAt *time.Time      `json:"shopify_created_at,omitempty"`
	ShopifyUpdatedAt *time.Time      `json:"shopify_updated_at,omitempty"`
	SyncedAt         time.Time       `json:"synced_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
