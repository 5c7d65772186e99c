package repository

import (
	"testing"
	"time"

	"github.com/shopmetrics/ingest/internal/infrastructure/repository/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func storedCustomerDoc() *entity.CustomerDoc {
	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return &entity.CustomerDoc{
		ID:          "existing-row",
		TenantID:    "tenant-1",
		ShopifyID:   42,
		Email:       "jo@example.com",
		FirstName:   "Jo",
		TotalSpent:  "199.90",
		TotalOrders: 3,
		State:       "enabled",
		SyncedAt:    created,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestUpsertUpdateMovesIdentityToInsertOnly(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	update, err := upsertUpdate(storedCustomerDoc(), "proposed-id", now)
	require.NoError(t, err)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)
	assert.NotContains(t, set, "_id")
	assert.NotContains(t, set, "createdAt")
	assert.Equal(t, now, set["updatedAt"])
	assert.Equal(t, "jo@example.com", set["email"])
	assert.Equal(t, "199.90", set["totalSpent"])

	onInsert, ok := update["$setOnInsert"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"_id": "proposed-id", "createdAt": now}, onInsert)
}

func TestUpsertUpdateSameRecordTwiceIsIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	first, err := upsertUpdate(storedCustomerDoc(), "id-from-first-run", now)
	require.NoError(t, err)
	second, err := upsertUpdate(storedCustomerDoc(), "id-from-second-run", now)
	require.NoError(t, err)

	// A replayed record rewrites identical field values; only the insert-only
	// section carries the proposed id, which a matched row never applies.
	assert.Equal(t, first["$set"], second["$set"])
	assert.Equal(t, "id-from-second-run", second["$setOnInsert"].(bson.M)["_id"])
}

func TestUpsertUpdateChangedDataTouchesOnlyChangedFields(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	base, err := upsertUpdate(storedCustomerDoc(), "p", now)
	require.NoError(t, err)

	changed := storedCustomerDoc()
	changed.Email = "jo.new@example.com"
	updated, err := upsertUpdate(changed, "p", now)
	require.NoError(t, err)

	baseSet := base["$set"].(bson.M)
	updatedSet := updated["$set"].(bson.M)
	assert.Equal(t, "jo.new@example.com", updatedSet["email"])

	delete(baseSet, "email")
	delete(updatedSet, "email")
	assert.Equal(t, baseSet, updatedSet)
}
