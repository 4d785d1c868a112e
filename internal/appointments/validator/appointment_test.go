package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"carematch/pkg/logger"
	"carematch/pkg/model"
)

const (
	caregiverID = "64b7f0c2a1b2c3d4e5f60001"
	memberID    = "64b7f0c2a1b2c3d4e5f60002"
)

func validAppointment() *model.Appointment {
	return &model.Appointment{
		CaregiverID: caregiverID,
		MemberID:    memberID,
		Date:        "2025-06-01",
		Time:        "14:00",
		WorkHours:   3,
		Status:      model.StatusPending,
	}
}

func strPtr(s string) *string { return &s }

func TestValidate(t *testing.T) {
	v := NewAppointmentValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(a *model.Appointment)
		wantField string
	}{
		{name: "valid", mutate: func(a *model.Appointment) {}},
		{name: "missing caregiver", mutate: func(a *model.Appointment) { a.CaregiverID = "" }, wantField: "caregiver_id"},
		{name: "malformed member id", mutate: func(a *model.Appointment) { a.MemberID = "not-an-id" }, wantField: "member_id"},
		{name: "bad date format", mutate: func(a *model.Appointment) { a.Date = "01/06/2025" }, wantField: "date"},
		{name: "impossible date", mutate: func(a *model.Appointment) { a.Date = "2025-02-30" }, wantField: "date"},
		{name: "bad time", mutate: func(a *model.Appointment) { a.Time = "24:00" }, wantField: "time"},
		{name: "time with seconds", mutate: func(a *model.Appointment) { a.Time = "14:00:00" }, wantField: "time"},
		{name: "zero work hours", mutate: func(a *model.Appointment) { a.WorkHours = 0 }, wantField: "work_hours"},
		{name: "negative work hours", mutate: func(a *model.Appointment) { a.WorkHours = -2 }, wantField: "work_hours"},
		{name: "too many work hours", mutate: func(a *model.Appointment) { a.WorkHours = 25 }, wantField: "work_hours"},
		{name: "unknown status", mutate: func(a *model.Appointment) { a.Status = "archived" }, wantField: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := validAppointment()
			tt.mutate(appt)

			err := v.Validate(appt)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verrs[0].Field)
			}
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	v := NewAppointmentValidator(logger.Discard())
	appt := validAppointment()
	appt.Time = "9pm"
	appt.Status = "archived"

	err := v.Validate(appt)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "HH:MM") {
		t.Errorf("expected time hint in %q", msg)
	}
	if !strings.Contains(msg, "pending, confirmed") {
		t.Errorf("expected status list in %q", msg)
	}
	if !strings.HasPrefix(msg, "validation failed: 2 error(s)") {
		t.Errorf("unexpected summary %q", msg)
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewAppointmentValidator(logger.Discard())
	hours := 0.0

	if err := v.ValidateUpdate(&model.AppointmentUpdate{Date: strPtr("2025-06-02")}); err != nil {
		t.Errorf("expected valid update, got %v", err)
	}
	if err := v.ValidateUpdate(&model.AppointmentUpdate{Time: strPtr("7:5")}); err == nil {
		t.Error("expected error for malformed time")
	}
	if err := v.ValidateUpdate(&model.AppointmentUpdate{WorkHours: &hours}); err == nil {
		t.Error("expected error for zero work hours")
	}
}

func TestValidateFilter(t *testing.T) {
	v := NewAppointmentValidator(logger.Discard())

	if err := v.ValidateFilter(&model.AppointmentFilter{}); err != nil {
		t.Errorf("empty filter should be valid, got %v", err)
	}
	if err := v.ValidateFilter(&model.AppointmentFilter{Status: "done"}); err == nil {
		t.Error("expected error for unknown status")
	}
	if err := v.ValidateFilter(&model.AppointmentFilter{From: "2025-07-01", To: "2025-06-01"}); err == nil {
		t.Error("expected error for inverted range")
	}
	if err := v.ValidateFilter(&model.AppointmentFilter{From: "2025-06-01", To: "2025-06-01"}); err != nil {
		t.Errorf("single-day range should be valid, got %v", err)
	}
}

func TestValidateNotPast(t *testing.T) {
	v := NewAppointmentValidator(logger.Discard())
	now := time.Date(2025, 5, 20, 23, 59, 0, 0, time.UTC)

	if err := v.ValidateNotPast("2025-05-20", now); err != nil {
		t.Errorf("today should be allowed, got %v", err)
	}
	if err := v.ValidateNotPast("2025-06-01", now); err != nil {
		t.Errorf("future date should be allowed, got %v", err)
	}
	if err := v.ValidateNotPast("2025-05-19", now); err == nil {
		t.Error("expected error for yesterday")
	}
}
