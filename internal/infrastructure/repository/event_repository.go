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

// EventMongoRepository implements ports.EventRepository on MongoDB.
type EventMongoRepository struct {
	collection *mongo.Collection
}

// NewEventRepository creates a MongoDB event repository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventMongoRepository{collection: db.Collection(eventsCollection)}
}

func (r *EventMongoRepository) Insert(ctx context.Context, event *domain.Event) error {
	doc := entity.EventDocFromDomain(event)
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// CountByTypeInRange counts the tenant's events of one type created in
// [from, to). An empty collection counts as zero.
func (r *EventMongoRepository) CountByTypeInRange(ctx context.Context, tenantID string, eventType domain.EventType, from, to time.Time) (int64, error) {
	filter := bson.M{
		"tenantId":  tenantID,
		"type":      string(eventType),
		"createdAt": bson.M{"$gte": from, "$lt": to},
	}
	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}
