package domain

import "time"

// SyncStatus tracks the outcome of the most recent sync attempt for a tenant.
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusCompleted  SyncStatus = "completed"
	SyncStatusFailed     SyncStatus = "failed"
)

// Tenant represents one connected store. Every other entity is owned by
// exactly one tenant; tenants are soft-deleted, never removed.
type Tenant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	ShopDomain  string     `json:"shop_domain"`
	AccessToken string     `json:"-"`
	APIKey      string     `json:"-"`
	APISecret   string     `json:"-"`
	Active      bool       `json:"active"`
	LastSyncAt  *time.Time `json:"last_sync_at,omitempty"`
	SyncStatus  SyncStatus `json:"sync_status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}
