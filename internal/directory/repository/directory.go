package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	directoryerrors "carematch/internal/directory/errors"
	"carematch/pkg/config"
	mongotx "carematch/pkg/db/mongo"
	"carematch/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CaregiversCollection = "Caregivers"
	MembersCollection    = "Members"
)

type DirectoryRepository interface {
	FindCaregiverByID(ctx context.Context, id string) (*model.Caregiver, error)
	FindMemberByID(ctx context.Context, id string) (*model.Member, error)
	SearchCaregivers(ctx context.Context, filter model.CaregiverFilter, limit int, offset int64) ([]*model.Caregiver, error)
	CountCaregivers(ctx context.Context, filter model.CaregiverFilter) (int64, error)
	UpdateCaregiver(ctx context.Context, caregiver *model.Caregiver) (*model.Caregiver, error)
	UpdateMember(ctx context.Context, member *model.Member) (*model.Member, error)
	SetPrimaryAddress(ctx context.Context, memberID string, address *model.Address) (*model.Member, error)
	ClearPrimaryAddress(ctx context.Context, memberID string) error
}

type mongoDirectoryRepository struct {
	cfg        *config.Config
	caregivers *mongo.Collection
	members    *mongo.Collection
}

func NewMongoDirectoryRepository(cfg *config.Config) DirectoryRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDirectoryRepository{
		cfg:        cfg,
		caregivers: db.Collection(CaregiversCollection),
		members:    db.Collection(MembersCollection),
	}
}

func (r *mongoDirectoryRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if mongotx.IsSessionContext(ctx) {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoDirectoryRepository) withWriteTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if mongotx.IsSessionContext(ctx) {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.WriteTimeout)
}

func (r *mongoDirectoryRepository) FindCaregiverByID(ctx context.Context, id string) (*model.Caregiver, error) {
	var caregiver model.Caregiver
	if err := r.findByID(ctx, r.caregivers, id, &caregiver); err != nil {
		return nil, err
	}
	return &caregiver, nil
}

func (r *mongoDirectoryRepository) FindMemberByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	if err := r.findByID(ctx, r.members, id, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *mongoDirectoryRepository) findByID(ctx context.Context, collection *mongo.Collection, id string, out any) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return directoryerrors.ErrInvalidID
	}

	err = collection.FindOne(ctx, bson.M{"_id": oid}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return directoryerrors.ErrNotFound
		}
		return fmt.Errorf("failed to find %s entry: %w", collection.Name(), err)
	}
	return nil
}

func (r *mongoDirectoryRepository) SearchCaregivers(ctx context.Context, filter model.CaregiverFilter, limit int, offset int64) ([]*model.Caregiver, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(buildCaregiverSort(filter.SortBy)).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.caregivers.Find(ctx, buildCaregiverFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search caregivers: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	caregivers := make([]*model.Caregiver, 0)
	if err := cursor.All(ctx, &caregivers); err != nil {
		return nil, fmt.Errorf("failed to decode caregivers: %w", err)
	}
	return caregivers, nil
}

func (r *mongoDirectoryRepository) CountCaregivers(ctx context.Context, filter model.CaregiverFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	count, err := r.caregivers.CountDocuments(ctx, buildCaregiverFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count caregivers: %w", err)
	}
	return count, nil
}

func (r *mongoDirectoryRepository) UpdateCaregiver(ctx context.Context, caregiver *model.Caregiver) (*model.Caregiver, error) {
	var updated model.Caregiver
	if err := r.findOneAndUpdate(ctx, r.caregivers, caregiver.ID, bson.M{"$set": caregiverProfileSet(caregiver)}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *mongoDirectoryRepository) UpdateMember(ctx context.Context, member *model.Member) (*model.Member, error) {
	var updated model.Member
	if err := r.findOneAndUpdate(ctx, r.members, member.ID, bson.M{"$set": memberProfileSet(member)}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *mongoDirectoryRepository) SetPrimaryAddress(ctx context.Context, memberID string, address *model.Address) (*model.Member, error) {
	update := bson.M{"$set": bson.M{
		"primary_address": address,
		"updated_at":      address.UpdatedAt,
	}}

	var updated model.Member
	if err := r.findOneAndUpdate(ctx, r.members, memberID, update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *mongoDirectoryRepository) ClearPrimaryAddress(ctx context.Context, memberID string) error {
	ctx, cancel := r.withWriteTimeout(ctx)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return directoryerrors.ErrInvalidID
	}

	result, err := r.members.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$unset": bson.M{"primary_address": ""}})
	if err != nil {
		return fmt.Errorf("failed to clear primary address: %w", err)
	}
	if result.MatchedCount == 0 {
		return directoryerrors.ErrNotFound
	}
	return nil
}

func (r *mongoDirectoryRepository) findOneAndUpdate(ctx context.Context, collection *mongo.Collection, id string, update any, out any) error {
	ctx, cancel := r.withWriteTimeout(ctx)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return directoryerrors.ErrInvalidID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return directoryerrors.ErrNotFound
		}
		return fmt.Errorf("failed to update %s entry: %w", collection.Name(), err)
	}
	return nil
}

// caregiverProfileSet lists the fields a caregiver may change on their own profile.
func caregiverProfileSet(c *model.Caregiver) bson.M {
	return bson.M{
		"given_name":          c.GivenName,
		"surname":             c.Surname,
		"city":                c.City,
		"phone_number":        c.PhoneNumber,
		"profile_description": c.ProfileDescription,
		"gender":              c.Gender,
		"caregiving_type":     c.CaregivingType,
		"hourly_rate":         c.HourlyRate,
		"updated_at":          c.UpdatedAt,
	}
}

func memberProfileSet(m *model.Member) bson.M {
	return bson.M{
		"city":                  m.City,
		"phone_number":          m.PhoneNumber,
		"profile_description":   m.ProfileDescription,
		"house_rules":           m.HouseRules,
		"dependent_description": m.DependentDescription,
		"updated_at":            m.UpdatedAt,
	}
}

func buildCaregiverSort(sortBy string) bson.D {
	if sortBy == model.SortByGivenName {
		return bson.D{{Key: "given_name", Value: 1}, {Key: "_id", Value: 1}}
	}
	return bson.D{{Key: "hourly_rate", Value: 1}, {Key: "_id", Value: 1}}
}

// buildCaregiverFilter maps each recognized search option to one optional predicate.
func buildCaregiverFilter(f model.CaregiverFilter) bson.D {
	filter := bson.D{}

	if f.CaregivingType != "" {
		filter = append(filter, bson.E{Key: "caregiving_type", Value: f.CaregivingType})
	}
	if f.City != "" {
		filter = append(filter, bson.E{Key: "city", Value: primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(f.City) + "$",
			Options: "i",
		}})
	}
	if f.Gender != "" {
		filter = append(filter, bson.E{Key: "gender", Value: f.Gender})
	}

	rate := bson.D{}
	if f.MinRate != nil {
		rate = append(rate, bson.E{Key: "$gte", Value: *f.MinRate})
	}
	if f.MaxRate != nil {
		rate = append(rate, bson.E{Key: "$lte", Value: *f.MaxRate})
	}
	if len(rate) > 0 {
		filter = append(filter, bson.E{Key: "hourly_rate", Value: rate})
	}

	return filter
}
