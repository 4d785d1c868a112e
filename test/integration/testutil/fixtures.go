package testutil

import (
	"time"

	mongoMigration "carematch/internal/migrations/mongo"
	"carematch/pkg/model"
)

// Seeded directory identities. The babysitter charges 9.50 per hour.
const (
	CaregiverID      = mongoMigration.SeedCaregiverBabysitterID
	OtherCaregiverID = mongoMigration.SeedCaregiverElderlyID
	MemberID         = mongoMigration.SeedMemberAstanaID
	OtherMemberID    = mongoMigration.SeedMemberAlmatyID
)

// AppointmentBuilder builds create-request bodies for the appointments API.
type AppointmentBuilder struct {
	body map[string]any
}

// NewAppointmentBuilder defaults to a three hour booking of the seeded babysitter a week from now.
func NewAppointmentBuilder() *AppointmentBuilder {
	return &AppointmentBuilder{
		body: map[string]any{
			"caregiver_id": CaregiverID,
			"member_id":    MemberID,
			"date":         DaysFromNow(7),
			"time":         "10:00",
			"work_hours":   3,
		},
	}
}

func (b *AppointmentBuilder) WithCaregiver(id string) *AppointmentBuilder {
	b.body["caregiver_id"] = id
	return b
}

func (b *AppointmentBuilder) WithMember(id string) *AppointmentBuilder {
	b.body["member_id"] = id
	return b
}

func (b *AppointmentBuilder) WithSlot(date, clock string) *AppointmentBuilder {
	b.body["date"] = date
	b.body["time"] = clock
	return b
}

func (b *AppointmentBuilder) WithWorkHours(hours float64) *AppointmentBuilder {
	b.body["work_hours"] = hours
	return b
}

func (b *AppointmentBuilder) Build() map[string]any {
	body := make(map[string]any, len(b.body))
	for k, v := range b.body {
		body[k] = v
	}
	return body
}

// DaysFromNow formats a calendar date relative to today in UTC.
func DaysFromNow(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(model.DateLayout)
}
