package mongo

import (
	"context"
	"fmt"

	"carematch/internal/migrations/mongo/validators"
	"carematch/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	AppointmentsCollection      = "Appointments"
	SlotLocksCollection         = "Appointment_slot_locks"
	AppointmentEventsCollection = "Appointment_events"
	CaregiversCollection        = "Caregivers"
	MembersCollection           = "Members"
)

var (
	AppointmentsIndexes = []mongo.IndexModel{
		{
			// at most one non-terminal appointment per caregiver slot
			Keys: bson.D{
				{Key: "caregiver_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "time", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_active_caregiver_slot").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{
			{Key: "member_id", Value: 1},
			{Key: "date", Value: -1},
			{Key: "time", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "caregiver_id", Value: 1},
			{Key: "date", Value: -1},
			{Key: "time", Value: -1},
		}},
	}

	SlotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	AppointmentEventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "appointment_id", Value: 1},
			{Key: "occurred_at", Value: 1},
		}},
	}

	CaregiversIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "caregiving_type", Value: 1},
			{Key: "city", Value: 1},
			{Key: "hourly_rate", Value: 1},
		}},
		{Keys: bson.D{{Key: "given_name", Value: 1}, {Key: "_id", Value: 1}}},
	}

	MembersIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		AppointmentsCollection: {
			Indexes:   AppointmentsIndexes,
			Validator: validators.AppointmentValidator,
		},
		SlotLocksCollection: {
			Indexes: SlotLocksIndexes,
		},
		AppointmentEventsCollection: {
			Indexes:   AppointmentEventsIndexes,
			Validator: validators.AppointmentEventValidator,
		},
		CaregiversCollection: {
			Indexes:   CaregiversIndexes,
			Validator: validators.CaregiverValidator,
		},
		MembersCollection: {
			Indexes:   MembersIndexes,
			Validator: validators.MemberValidator,
		},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
