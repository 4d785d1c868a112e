package mongo

import (
	"testing"
	"time"

	"carematch/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCollections_CoverEveryStore(t *testing.T) {
	defs := Collections()

	for _, name := range []string{
		AppointmentsCollection,
		SlotLocksCollection,
		AppointmentEventsCollection,
		CaregiversCollection,
		MembersCollection,
	} {
		_, ok := defs[name]
		assert.True(t, ok, "missing collection %s", name)
	}
	assert.Nil(t, defs[SlotLocksCollection].Validator)
}

func TestActiveSlotIndexIsPartialUnique(t *testing.T) {
	idx := AppointmentsIndexes[0]
	require.NotNil(t, idx.Options)

	assert.Equal(t, bson.D{
		{Key: "caregiver_id", Value: 1},
		{Key: "date", Value: 1},
		{Key: "time", Value: 1},
	}, idx.Keys)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
	assert.Equal(t, bson.M{"active": true}, idx.Options.PartialFilterExpression)
}

func TestSlotLockIndexExpires(t *testing.T) {
	idx := SlotLocksIndexes[0]
	require.NotNil(t, idx.Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *idx.Options.ExpireAfterSeconds)
}

func TestSeedData(t *testing.T) {
	caregivers := seedCaregivers(time.Time{})
	members := seedMembers(time.Time{})

	require.Len(t, caregivers, 3)
	require.Len(t, members, 2)
	for _, c := range caregivers {
		_, err := primitive.ObjectIDFromHex(c.ID)
		assert.NoError(t, err, c.ID)
		assert.Contains(t, model.CaregivingTypes, c.CaregivingType)
		assert.True(t, c.HourlyRate.IsPositive())
	}
	for _, m := range members {
		_, err := primitive.ObjectIDFromHex(m.ID)
		assert.NoError(t, err, m.ID)
	}
}
