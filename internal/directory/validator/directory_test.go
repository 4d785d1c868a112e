package validator

import (
	"strings"
	"testing"

	"carematch/pkg/logger"
	"carematch/pkg/model"

	"github.com/shopspring/decimal"
)

func rate(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func checkErr(t *testing.T, err error, wantErr string) {
	t.Helper()
	if wantErr == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil || !strings.Contains(err.Error(), wantErr) {
		t.Fatalf("expected error containing %q, got %v", wantErr, err)
	}
}

func TestDirectoryValidator_ValidateFilter(t *testing.T) {
	v := NewDirectoryValidator(logger.Discard())

	tests := []struct {
		name    string
		filter  model.CaregiverFilter
		wantErr string
	}{
		{name: "empty filter", filter: model.CaregiverFilter{}},
		{
			name: "all options",
			filter: model.CaregiverFilter{
				CaregivingType: model.CaregivingElderly,
				City:           "Almaty",
				Gender:         "Male",
				MinRate:        rate("10"),
				MaxRate:        rate("20.50"),
				SortBy:         model.SortByGivenName,
			},
		},
		{name: "equal bounds", filter: model.CaregiverFilter{MinRate: rate("15"), MaxRate: rate("15")}},
		{name: "unknown caregiving type", filter: model.CaregiverFilter{CaregivingType: "nanny"}, wantErr: "caregiving_type must be one of"},
		{name: "unknown gender", filter: model.CaregiverFilter{Gender: "robot"}, wantErr: "gender must be one of"},
		{name: "city too long", filter: model.CaregiverFilter{City: strings.Repeat("a", 101)}, wantErr: "city must be at most 100 characters"},
		{name: "negative min rate", filter: model.CaregiverFilter{MinRate: rate("-1")}, wantErr: "min_rate must not be negative"},
		{name: "inverted range", filter: model.CaregiverFilter{MinRate: rate("30"), MaxRate: rate("20")}, wantErr: "min_rate must not exceed max_rate"},
		{name: "unknown sort", filter: model.CaregiverFilter{SortBy: "surname"}, wantErr: "sort_by must be one of: hourly_rate, given_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, v.ValidateFilter(&tt.filter), tt.wantErr)
		})
	}
}

func TestDirectoryValidator_ValidateCaregiver(t *testing.T) {
	v := NewDirectoryValidator(logger.Discard())

	valid := func() model.Caregiver {
		return model.Caregiver{
			GivenName:      "Aruzhan",
			Surname:        "Sadykova",
			City:           "Astana",
			PhoneNumber:    "+77011234567",
			Gender:         "Female",
			CaregivingType: model.CaregivingElderly,
			HourlyRate:     decimal.RequireFromString("25.50"),
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *model.Caregiver)
		wantErr string
	}{
		{name: "valid", mutate: func(c *model.Caregiver) {}},
		{name: "no phone", mutate: func(c *model.Caregiver) { c.PhoneNumber = "" }},
		{name: "missing given name", mutate: func(c *model.Caregiver) { c.GivenName = "" }, wantErr: "given_name is required"},
		{name: "bad phone", mutate: func(c *model.Caregiver) { c.PhoneNumber = "call me" }, wantErr: "phone_number must be an E.164 phone number"},
		{name: "unknown gender", mutate: func(c *model.Caregiver) { c.Gender = "robot" }, wantErr: "gender must be one of"},
		{name: "unknown caregiving type", mutate: func(c *model.Caregiver) { c.CaregivingType = "nanny" }, wantErr: "caregiving_type must be one of"},
		{name: "negative rate", mutate: func(c *model.Caregiver) { c.HourlyRate = decimal.RequireFromString("-0.01") }, wantErr: "hourly_rate must not be negative"},
		{name: "description too long", mutate: func(c *model.Caregiver) { c.ProfileDescription = strings.Repeat("x", 2001) }, wantErr: "profile_description must be at most 2000 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			checkErr(t, v.ValidateCaregiver(&c), tt.wantErr)
		})
	}
}

func TestDirectoryValidator_ValidateMember(t *testing.T) {
	v := NewDirectoryValidator(logger.Discard())

	checkErr(t, v.ValidateMember(&model.Member{City: "Astana", PhoneNumber: "+77021112233"}), "")
	checkErr(t, v.ValidateMember(&model.Member{City: ""}), "city is required")
	checkErr(t, v.ValidateMember(&model.Member{City: "Astana", HouseRules: strings.Repeat("x", 2001)}), "house_rules must be at most 2000 characters")
}

func TestDirectoryValidator_ValidateAddress(t *testing.T) {
	v := NewDirectoryValidator(logger.Discard())

	tests := []struct {
		name    string
		address model.Address
		wantErr string
	}{
		{name: "valid", address: model.Address{HouseNumber: "12A", Street: "Kabanbay Batyr", Town: "Astana"}},
		{name: "missing street", address: model.Address{HouseNumber: "12A", Town: "Astana"}, wantErr: "street is required"},
		{name: "house number too long", address: model.Address{HouseNumber: strings.Repeat("1", 11), Street: "Abay", Town: "Almaty"}, wantErr: "house_number must be at most 10 characters"},
		{name: "town too long", address: model.Address{HouseNumber: "1", Street: "Abay", Town: strings.Repeat("t", 101)}, wantErr: "town must be at most 100 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, v.ValidateAddress(&tt.address), tt.wantErr)
		})
	}
}
