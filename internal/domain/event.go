package domain

import (
	"encoding/json"
	"time"
)

// EventType labels pre-order funnel signals captured from webhooks.
type EventType string

const (
	EventCartCreated       EventType = "cart_created"
	EventCheckoutStarted   EventType = "checkout_started"
	EventCheckoutCompleted EventType = "checkout_completed"
)

// Event is an optional funnel signal (cart or checkout activity). Only the
// checkout-funnel reconstruction reads these; tenants without event capture
// simply have none.
type Event struct {
	ID        string          `json:"id"`
	TenantID  string          `json:"tenant_id"`
	ShopifyID string          `json:"shopify_id,omitempty"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	// OccurredAt is the shop-side creation time; CreatedAt is ours.
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
