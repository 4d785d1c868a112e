package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "carematch/internal/appointments/errors"
	"carematch/pkg/config"
	mongotx "carematch/pkg/db/mongo"
	"carematch/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Appointments"

	FieldMemberID    = "member_id"
	FieldCaregiverID = "caregiver_id"
)

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	// FindActiveAtSlot returns the non-terminal appointment holding the slot, or nil. excludeID may be empty.
	FindActiveAtSlot(ctx context.Context, caregiverID, date, clock, excludeID string) (*model.Appointment, error)
	// Update replaces the mutable fields when the stored status still equals expectedStatus.
	Update(ctx context.Context, appt *model.Appointment, expectedStatus string) (*model.Appointment, error)
	TransitionStatus(ctx context.Context, id, from, to string, at time.Time) (*model.Appointment, error)
	FindByParty(ctx context.Context, field, partyID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error)
	CountByParty(ctx context.Context, field, partyID string, filter model.AppointmentFilter) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds ctx unless it is a transaction session, which cannot be wrapped.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if mongotx.IsSessionContext(ctx) {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	appt.ID = ""
	appt.Active = !appt.IsTerminal()

	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appointmentserrors.ErrSlotTaken
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appointmentserrors.ErrInvalidID
	}

	var appt model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appt, nil
}

func (r *mongoAppointmentRepository) FindActiveAtSlot(ctx context.Context, caregiverID, date, clock, excludeID string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		FieldCaregiverID: caregiverID,
		"date":           date,
		"time":           clock,
		"active":         true,
	}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, appointmentserrors.ErrInvalidID
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	var appt model.Appointment
	err := r.collection.FindOne(ctx, filter).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, appt *model.Appointment, expectedStatus string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(appt.ID)
	if err != nil {
		return nil, appointmentserrors.ErrInvalidID
	}

	update := bson.M{"$set": bson.M{
		"date":       appt.Date,
		"time":       appt.Time,
		"work_hours": appt.WorkHours,
		"total_cost": appt.TotalCost,
		"status":     appt.Status,
		"active":     !appt.IsTerminal(),
		"updated_at": appt.UpdatedAt,
	}}

	return r.findOneAndUpdate(ctx, bson.M{"_id": oid, "status": expectedStatus}, update)
}

func (r *mongoAppointmentRepository) TransitionStatus(ctx context.Context, id, from, to string, at time.Time) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appointmentserrors.ErrInvalidID
	}

	update := bson.M{"$set": bson.M{
		"status":     to,
		"active":     !model.IsTerminalStatus(to),
		"updated_at": at,
	}}

	return r.findOneAndUpdate(ctx, bson.M{"_id": oid, "status": from}, update)
}

func (r *mongoAppointmentRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*model.Appointment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated model.Appointment
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, appointmentserrors.ErrStatusChanged
		case mongo.IsDuplicateKeyError(err):
			return nil, appointmentserrors.ErrSlotTaken
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return &updated, nil
}

func (r *mongoAppointmentRepository) FindByParty(ctx context.Context, field, partyID string, filter model.AppointmentFilter, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "time", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildPartyFilter(field, partyID, filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	appointments := make([]*model.Appointment, 0)
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appointments, nil
}

func (r *mongoAppointmentRepository) CountByParty(ctx context.Context, field, partyID string, filter model.AppointmentFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildPartyFilter(field, partyID, filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

type predicate func(filter bson.D) bson.D

// buildPartyFilter composes the owner match with whichever optional predicates are set.
func buildPartyFilter(field, partyID string, f model.AppointmentFilter) bson.D {
	predicates := []predicate{
		func(d bson.D) bson.D { return append(d, bson.E{Key: field, Value: partyID}) },
	}

	if f.Status != "" {
		predicates = append(predicates, func(d bson.D) bson.D {
			return append(d, bson.E{Key: "status", Value: f.Status})
		})
	}

	if f.From != "" || f.To != "" {
		predicates = append(predicates, func(d bson.D) bson.D {
			dateRange := bson.D{}
			if f.From != "" {
				dateRange = append(dateRange, bson.E{Key: "$gte", Value: f.From})
			}
			if f.To != "" {
				dateRange = append(dateRange, bson.E{Key: "$lte", Value: f.To})
			}
			return append(d, bson.E{Key: "date", Value: dateRange})
		})
	}

	filter := bson.D{}
	for _, p := range predicates {
		filter = p(filter)
	}
	return filter
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
