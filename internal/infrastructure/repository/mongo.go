// Package repository implements the persistence ports on MongoDB. All
// mutation funnels through idempotent upserts keyed by the natural
// (tenantId, shopifyId) identity, so polling syncs and webhooks converge on
// the same rows regardless of interleaving.
package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	tenantsCollection    = "tenants"
	customersCollection  = "customers"
	productsCollection   = "products"
	ordersCollection     = "orders"
	orderItemsCollection = "order_items"
	eventsCollection     = "events"
)

// upsertUpdate splits a document into the upsert update shape: every field
// under $set except the immutable _id and createdAt, which apply only on
// insert. The proposed id is used when no row matches the filter.
func upsertUpdate(doc any, proposedID string, now time.Time) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	delete(set, "_id")
	delete(set, "createdAt")
	set["updatedAt"] = now

	return bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": proposedID, "createdAt": now},
	}, nil
}

// EnsureIndexes declares the uniqueness constraints and query indexes every
// collection relies on. Safe to run at every startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	tenantUnique := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shopDomain", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	naturalKey := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "shopifyId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	orderQueries := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "shopifyId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "placedAt", Value: 1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "customerId", Value: 1}}},
	}
	itemQueries := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "shopifyLineItemId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "orderPlacedAt", Value: 1}}},
	}
	eventQueries := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "type", Value: 1}, {Key: "createdAt", Value: 1}}},
	}

	for coll, models := range map[string][]mongo.IndexModel{
		tenantsCollection:    tenantUnique,
		customersCollection:  naturalKey,
		productsCollection:   naturalKey,
		ordersCollection:     orderQueries,
		orderItemsCollection: itemQueries,
		eventsCollection:     eventQueries,
	} {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", coll, err)
		}
	}
	return nil
}
