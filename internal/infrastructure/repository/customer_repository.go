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

// CustomerMongoRepository implements ports.CustomerRepository on MongoDB.
type CustomerMongoRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository creates a MongoDB customer repository.
func NewCustomerRepository(db *mongo.Database) ports.CustomerRepository {
	return &CustomerMongoRepository{collection: db.Collection(customersCollection)}
}

// Upsert creates or updates a customer keyed by (tenantId, shopifyId).
func (r *CustomerMongoRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	doc := entity.CustomerDocFromDomain(customer)
	update, err := upsertUpdate(doc, uuid.NewString(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to build customer upsert: %w", err)
	}

	filter := bson.M{"tenantId": customer.TenantID, "shopifyId": customer.ShopifyID}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

func (r *CustomerMongoRepository) GetByShopifyID(ctx context.Context, tenantID string, shopifyID int64) (*domain.Customer, error) {
	var doc entity.CustomerDoc
	filter := bson.M{"tenantId": tenantID, "shopifyId": shopifyID}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *CustomerMongoRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Customer, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer cursor.Close(ctx)

	var customers []domain.Customer
	for cursor.Next(ctx) {
		var doc entity.CustomerDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode customer: %w", err)
		}
		customers = append(customers, *doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return customers, nil
}

func (r *CustomerMongoRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return n, nil
}
