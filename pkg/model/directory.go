package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CaregivingBabysitter = "babysitter"
	CaregivingElderly    = "caregiver for elderly"
	CaregivingPlaymate   = "playmate for children"
)

var CaregivingTypes = []string{CaregivingBabysitter, CaregivingElderly, CaregivingPlaymate}

var Genders = []string{"Male", "Female", "Other", "Prefer not to say"}

const (
	SortByHourlyRate = "hourly_rate"
	SortByGivenName  = "given_name"
)

type Caregiver struct {
	ID                 string          `json:"id" bson:"_id,omitempty"`
	Email              string          `json:"email" bson:"email"`
	GivenName          string          `json:"given_name" bson:"given_name" validate:"required,max=100"`
	Surname            string          `json:"surname" bson:"surname" validate:"required,max=100"`
	City               string          `json:"city" bson:"city" validate:"required,max=100"`
	PhoneNumber        string          `json:"phone_number" bson:"phone_number" validate:"omitempty,e164"`
	ProfileDescription string          `json:"profile_description,omitempty" bson:"profile_description,omitempty" validate:"max=2000"`
	Photo              string          `json:"photo,omitempty" bson:"photo,omitempty"`
	Gender             string          `json:"gender" bson:"gender" validate:"omitempty,gender"`
	CaregivingType     string          `json:"caregiving_type" bson:"caregiving_type" validate:"required,caregiving_type"`
	HourlyRate         decimal.Decimal `json:"hourly_rate" bson:"hourly_rate"`
	CreatedAt          time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" bson:"updated_at"`
}

// CaregiverUpdate carries a partial profile change. Nil fields are left untouched.
type CaregiverUpdate struct {
	GivenName          *string          `json:"given_name,omitempty"`
	Surname            *string          `json:"surname,omitempty"`
	City               *string          `json:"city,omitempty"`
	PhoneNumber        *string          `json:"phone_number,omitempty"`
	ProfileDescription *string          `json:"profile_description,omitempty"`
	Gender             *string          `json:"gender,omitempty"`
	CaregivingType     *string          `json:"caregiving_type,omitempty"`
	HourlyRate         *decimal.Decimal `json:"hourly_rate,omitempty"`
}

type Member struct {
	ID                   string    `json:"id" bson:"_id,omitempty"`
	Email                string    `json:"email" bson:"email"`
	GivenName            string    `json:"given_name" bson:"given_name"`
	Surname              string    `json:"surname" bson:"surname"`
	City                 string    `json:"city" bson:"city" validate:"required,max=100"`
	PhoneNumber          string    `json:"phone_number" bson:"phone_number" validate:"omitempty,e164"`
	ProfileDescription   string    `json:"profile_description,omitempty" bson:"profile_description,omitempty" validate:"max=2000"`
	HouseRules           string    `json:"house_rules,omitempty" bson:"house_rules,omitempty" validate:"max=2000"`
	DependentDescription string    `json:"dependent_description,omitempty" bson:"dependent_description,omitempty" validate:"max=2000"`
	PrimaryAddress       *Address  `json:"primary_address,omitempty" bson:"primary_address,omitempty"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time `json:"updated_at,omitzero" bson:"updated_at,omitempty"`
}

// MemberUpdate carries a partial profile change. Nil fields are left untouched.
type MemberUpdate struct {
	City                 *string `json:"city,omitempty"`
	PhoneNumber          *string `json:"phone_number,omitempty"`
	ProfileDescription   *string `json:"profile_description,omitempty"`
	HouseRules           *string `json:"house_rules,omitempty"`
	DependentDescription *string `json:"dependent_description,omitempty"`
}

// Address is a member's primary address. A member has at most one.
type Address struct {
	HouseNumber string    `json:"house_number" bson:"house_number" validate:"required,max=10"`
	Street      string    `json:"street" bson:"street" validate:"required,max=200"`
	Town        string    `json:"town" bson:"town" validate:"required,max=100"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// CaregiverFilter holds the recognized caregiver search options. Empty fields are not applied.
type CaregiverFilter struct {
	CaregivingType string `validate:"omitempty,caregiving_type"`
	City           string `validate:"omitempty,max=100"`
	Gender         string `validate:"omitempty,gender"`
	MinRate        *decimal.Decimal
	MaxRate        *decimal.Decimal
	// SortBy orders results by hourly_rate (default) or given_name, both ascending.
	SortBy string `validate:"omitempty,oneof=hourly_rate given_name"`
}
