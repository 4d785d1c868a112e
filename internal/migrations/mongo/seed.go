package mongo

import (
	"context"
	"fmt"
	"time"

	mongotx "carematch/pkg/db/mongo"
	"carematch/pkg/logger"
	"carematch/pkg/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fixed ids of the demo directory entries so local runs and integration tests can address them.
const (
	SeedCaregiverBabysitterID = "6650a1f0c0ffee0000000001"
	SeedCaregiverElderlyID    = "6650a1f0c0ffee0000000002"
	SeedCaregiverPlaymateID   = "6650a1f0c0ffee0000000003"
	SeedMemberAstanaID        = "6650a1f0c0ffee0000000101"
	SeedMemberAlmatyID        = "6650a1f0c0ffee0000000102"
)

func seedCaregivers(now time.Time) []model.Caregiver {
	return []model.Caregiver{
		{
			ID: SeedCaregiverBabysitterID, Email: "aruzhan.caregiver@example.com",
			GivenName: "Aruzhan", Surname: "Sadykova", City: "Astana", PhoneNumber: "+77011234567",
			Gender: "Female", CaregivingType: model.CaregivingBabysitter,
			HourlyRate: decimal.RequireFromString("9.50"), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: SeedCaregiverElderlyID, Email: "timur.caregiver@example.com",
			GivenName: "Timur", Surname: "Akhmetov", City: "Almaty", PhoneNumber: "+77017654321",
			Gender: "Male", CaregivingType: model.CaregivingElderly,
			HourlyRate: decimal.RequireFromString("18.00"), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: SeedCaregiverPlaymateID, Email: "dana.caregiver@example.com",
			GivenName: "Dana", Surname: "Nurlanova", City: "Astana", PhoneNumber: "+77019998877",
			Gender: "Female", CaregivingType: model.CaregivingPlaymate,
			HourlyRate: decimal.RequireFromString("12.25"), CreatedAt: now, UpdatedAt: now,
		},
	}
}

func seedMembers(now time.Time) []model.Member {
	return []model.Member{
		{
			ID: SeedMemberAstanaID, Email: "amina.member@example.com",
			GivenName: "Amina", Surname: "Bekova", City: "Astana", PhoneNumber: "+77021112233",
			HouseRules: "No pets.", DependentDescription: "Two children, ages 4 and 7.", CreatedAt: now,
		},
		{
			ID: SeedMemberAlmatyID, Email: "arman.member@example.com",
			GivenName: "Arman", Surname: "Kassymov", City: "Almaty", PhoneNumber: "+77023334455",
			DependentDescription: "Elderly father who needs help with errands.", CreatedAt: now,
		},
	}
}

// Seed upserts a small demo directory. Running it twice leaves the same documents.
func Seed(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	now := time.Now().UTC().Truncate(time.Millisecond)

	for _, c := range seedCaregivers(now) {
		if err := upsert(ctx, db.Collection(CaregiversCollection), c.ID, c); err != nil {
			return err
		}
	}
	for _, m := range seedMembers(now) {
		if err := upsert(ctx, db.Collection(MembersCollection), m.ID, m); err != nil {
			return err
		}
	}

	log.Info("Seeded demo directory", "caregivers", len(seedCaregivers(now)), "members", len(seedMembers(now)))
	return nil
}

func upsert(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid seed id %s: %w", id, err)
	}

	raw, err := bson.MarshalWithRegistry(mongotx.NewRegistry(), doc)
	if err != nil {
		return fmt.Errorf("failed to encode seed %s: %w", id, err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("failed to decode seed %s: %w", id, err)
	}
	delete(fields, "_id")

	_, err = coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to seed %s %s: %w", coll.Name(), id, err)
	}
	return nil
}
