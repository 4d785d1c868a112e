package repository

import (
	"context"
	"fmt"

	"carematch/pkg/config"
	"carematch/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const AuditCollectionName = "Appointment_events"

type AuditRepository interface {
	// Insert stores the record once. Redelivered events with a known id are ignored.
	Insert(ctx context.Context, record *model.AuditRecord) error
}

type mongoAuditRepository struct {
	collection *mongo.Collection
}

func NewAuditRepository(cfg *config.Config) AuditRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAuditRepository{
		collection: db.Collection(AuditCollectionName),
	}
}

func (r *mongoAuditRepository) Insert(ctx context.Context, record *model.AuditRecord) error {
	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}
