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
)

// TenantMongoRepository implements ports.TenantRepository on MongoDB.
type TenantMongoRepository struct {
	collection *mongo.Collection
}

// NewTenantRepository creates a MongoDB tenant repository.
func NewTenantRepository(db *mongo.Database) ports.TenantRepository {
	return &TenantMongoRepository{collection: db.Collection(tenantsCollection)}
}

func (r *TenantMongoRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	if tenant.SyncStatus == "" {
		tenant.SyncStatus = domain.SyncStatusPending
	}

	if _, err := r.collection.InsertOne(ctx, entity.TenantDocFromDomain(tenant)); err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *TenantMongoRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"_id": id, "deletedAt": nil})
}

func (r *TenantMongoRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Tenant, error) {
	return r.findOne(ctx, bson.M{"shopDomain": shopDomain, "active": true, "deletedAt": nil})
}

func (r *TenantMongoRepository) findOne(ctx context.Context, filter bson.M) (*domain.Tenant, error) {
	var doc entity.TenantDoc
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return doc.ToDomain(), nil
}

func (r *TenantMongoRepository) UpdateSyncState(ctx context.Context, id string, status domain.SyncStatus, lastSyncAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"syncStatus": string(status),
		"lastSyncAt": lastSyncAt,
		"updatedAt":  time.Now().UTC(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update tenant sync state: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}
