package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/infrastructure/repository/entity"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderMongoRepository implements ports.OrderRepository on MongoDB. Orders and
// their line items live in separate collections linked by the local order id.
type OrderMongoRepository struct {
	orders *mongo.Collection
	items  *mongo.Collection
}

// NewOrderRepository creates a MongoDB order repository.
func NewOrderRepository(db *mongo.Database) ports.OrderRepository {
	return &OrderMongoRepository{
		orders: db.Collection(ordersCollection),
		items:  db.Collection(orderItemsCollection),
	}
}

// Upsert creates or updates an order keyed by (tenantId, shopifyId) and
// returns the local order id, which stays stable across repeated syncs of the
// same order.
func (r *OrderMongoRepository) Upsert(ctx context.Context, order *domain.Order) (string, error) {
	doc := entity.OrderDocFromDomain(order)
	update, err := upsertUpdate(doc, uuid.NewString(), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to build order upsert: %w", err)
	}

	filter := bson.M{"tenantId": order.TenantID, "shopifyId": order.ShopifyID}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"_id": 1})

	var result struct {
		ID string `bson:"_id"`
	}
	if err := r.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to upsert order: %w", err)
	}
	return result.ID, nil
}

// UpsertItem creates or updates a line item keyed by (tenantId,
// shopifyLineItemId). The line total is recomputed during document conversion.
func (r *OrderMongoRepository) UpsertItem(ctx context.Context, item *domain.OrderItem) error {
	doc := entity.OrderItemDocFromDomain(item)
	update, err := upsertUpdate(doc, uuid.NewString(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to build order item upsert: %w", err)
	}

	filter := bson.M{"tenantId": item.TenantID, "shopifyLineItemId": item.ShopifyLineItemID}
	opts := options.Update().SetUpsert(true)
	if _, err := r.items.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert order item: %w", err)
	}
	return nil
}

func (r *OrderMongoRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Order, error) {
	return r.findOrders(ctx, bson.M{"tenantId": tenantID})
}

// ListInRange returns the tenant's orders placed in [from, to), ordered by
// placement time ascending.
func (r *OrderMongoRepository) ListInRange(ctx context.Context, tenantID string, from, to time.Time) ([]domain.Order, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"placedAt": bson.M{"$gte": from, "$lt": to},
	}
	return r.findOrders(ctx, filter, options.Find().SetSort(bson.M{"placedAt": 1}))
}

func (r *OrderMongoRepository) findOrders(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.Order, error) {
	cursor, err := r.orders.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	for cursor.Next(ctx) {
		var doc entity.OrderDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		orders = append(orders, *doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return orders, nil
}

func (r *OrderMongoRepository) ListItemsByTenant(ctx context.Context, tenantID string) ([]domain.OrderItem, error) {
	return r.findItems(ctx, bson.M{"tenantId": tenantID})
}

// ListItemsSince returns line items whose parent order was placed at or after
// the given instant.
func (r *OrderMongoRepository) ListItemsSince(ctx context.Context, tenantID string, since time.Time) ([]domain.OrderItem, error) {
	filter := bson.M{
		"tenantId":      tenantID,
		"orderPlacedAt": bson.M{"$gte": since},
	}
	return r.findItems(ctx, filter)
}

func (r *OrderMongoRepository) findItems(ctx context.Context, filter bson.M) ([]domain.OrderItem, error) {
	cursor, err := r.items.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.OrderItem
	for cursor.Next(ctx) {
		var doc entity.OrderItemDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order item: %w", err)
		}
		items = append(items, *doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return items, nil
}

func (r *OrderMongoRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	n, err := r.orders.CountDocuments(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

// LatestSyncedAt returns the newest syncedAt among the tenant's orders, or nil
// when the tenant has no orders yet.
func (r *OrderMongoRepository) LatestSyncedAt(ctx context.Context, tenantID string) (*time.Time, error) {
	opts := options.FindOne().
		SetSort(bson.M{"syncedAt": -1}).
		SetProjection(bson.M{"syncedAt": 1})

	var result struct {
		SyncedAt time.Time `bson:"syncedAt"`
	}
	err := r.orders.FindOne(ctx, bson.M{"tenantId": tenantID}, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync time: %w", err)
	}
	return &result.SyncedAt, nil
}
