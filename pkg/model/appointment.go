package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// AppointmentStatuses lists every known status in lifecycle order.
var AppointmentStatuses = []string{
	StatusPending,
	StatusConfirmed,
	StatusDeclined,
	StatusCancelled,
	StatusCompleted,
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID          string           `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CaregiverID string           `json:"caregiver_id" bson:"caregiver_id" validate:"required,mongodb"`
	MemberID    string           `json:"member_id" bson:"member_id" validate:"required,mongodb"`
	Date        string           `json:"date" bson:"date" validate:"required,calendar_date"`
	Time        string           `json:"time" bson:"time" validate:"required,clock_time"`
	WorkHours   float64          `json:"work_hours" bson:"work_hours" validate:"gt=0,max=24"`
	Status      string           `json:"status" bson:"status" validate:"required,appointment_status"`
	TotalCost   *decimal.Decimal `json:"total_cost" bson:"total_cost"`
	Active      bool             `json:"-" bson:"active"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" bson:"updated_at"`
}

// AppointmentUpdate carries a partial change. Nil fields are left untouched.
type AppointmentUpdate struct {
	MemberID  string   `json:"member_id,omitempty" validate:"omitempty,mongodb"`
	Date      *string  `json:"date,omitempty" validate:"omitempty,calendar_date"`
	Time      *string  `json:"time,omitempty" validate:"omitempty,clock_time"`
	WorkHours *float64 `json:"work_hours,omitempty" validate:"omitempty,gt=0,max=24"`
}

func (u *AppointmentUpdate) IsEmpty() bool {
	return u.Date == nil && u.Time == nil && u.WorkHours == nil
}

type AppointmentFilter struct {
	Status string `validate:"omitempty,appointment_status"`
	From   string `validate:"omitempty,calendar_date"`
	To     string `validate:"omitempty,calendar_date"`
}

// IsTerminalStatus reports whether status no longer participates in double-booking checks.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusDeclined, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func IsKnownStatus(status string) bool {
	for _, s := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (a *Appointment) IsTerminal() bool {
	return IsTerminalStatus(a.Status)
}

// SlotKey identifies the caregiver time slot the appointment occupies.
func (a *Appointment) SlotKey() string {
	return SlotKey(a.CaregiverID, a.Date, a.Time)
}

func SlotKey(caregiverID, date, clock string) string {
	return caregiverID + "|" + date + "|" + clock
}

// HasParty reports whether userID is the appointment's member or caregiver.
func (a *Appointment) HasParty(userID string) bool {
	return userID != "" && (userID == a.MemberID || userID == a.CaregiverID)
}
