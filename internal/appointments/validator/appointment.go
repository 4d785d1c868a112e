package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"carematch/pkg/logger"
	"carematch/pkg/model"

	"github.com/go-playground/validator/v10"
)

var clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	// report json names so messages match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"calendar_date":      validateCalendarDate,
		"clock_time":         validateClockTime,
		"appointment_status": validateAppointmentStatus,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	log.Debug("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

func validateClockTime(fl validator.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

func validateAppointmentStatus(fl validator.FieldLevel) bool {
	return model.IsKnownStatus(fl.Field().String())
}

func (v *AppointmentValidator) Validate(appt *model.Appointment) error {
	return v.structErrors(appt)
}

func (v *AppointmentValidator) ValidateUpdate(update *model.AppointmentUpdate) error {
	return v.structErrors(update)
}

func (v *AppointmentValidator) ValidateFilter(filter *model.AppointmentFilter) error {
	if err := v.structErrors(filter); err != nil {
		return err
	}

	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return ValidationErrors{{Field: "from", Message: "from must not be after to"}}
	}
	return nil
}

// ValidateNotPast rejects dates earlier than today's date as seen by now.
func (v *AppointmentValidator) ValidateNotPast(date string, now time.Time) error {
	if date < now.Format(model.DateLayout) {
		return ValidationErrors{{Field: "date", Message: fmt.Sprintf("date %s is in the past", date)}}
	}
	return nil
}

func (v *AppointmentValidator) structErrors(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "calendar_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "clock_time":
			message = fmt.Sprintf("%s must be a time in HH:MM format (00:00-23:59)", err.Field())
		case "appointment_status":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(model.AppointmentStatuses, ", "))
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
