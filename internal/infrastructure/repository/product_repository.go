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

// ProductMongoRepository implements ports.ProductRepository on MongoDB.
type ProductMongoRepository struct {
	collection *mongo.Collection
}

// NewProductRepository creates a MongoDB product repository.
func NewProductRepository(db *mongo.Database) ports.ProductRepository {
	return &ProductMongoRepository{collection: db.Collection(productsCollection)}
}

// Upsert creates or updates a product keyed by (tenantId, shopifyId).
func (r *ProductMongoRepository) Upsert(ctx context.Context, product *domain.Product) error {
	doc := entity.ProductDocFromDomain(product)
	update, err := upsertUpdate(doc, uuid.NewString(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to build product upsert: %w", err)
	}

	filter := bson.M{"tenantId": product.TenantID, "shopifyId": product.ShopifyID}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (r *ProductMongoRepository) GetByShopifyID(ctx context.Context, tenantID string, shopifyID int64) (*domain.Product, error) {
	var doc entity.ProductDoc
	filter := bson.M{"tenantId": tenantID, "shopifyId": shopifyID}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *ProductMongoRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	for cursor.Next(ctx) {
		var doc entity.ProductDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode product: %w", err)
		}
		products = append(products, *doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return products, nil
}

func (r *ProductMongoRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"tenantId": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
