package validator

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"carematch/pkg/logger"
	"carematch/pkg/model"

	"github.com/go-playground/validator/v10"
)

type DirectoryValidator struct {
	validate *validator.Validate
}

func NewDirectoryValidator(log *logger.Logger) *DirectoryValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("caregiving_type", func(fl validator.FieldLevel) bool {
		return slices.Contains(model.CaregivingTypes, fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register caregiving_type validator", "error", err)
	}
	if err := v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return slices.Contains(model.Genders, fl.Field().String())
	}); err != nil {
		log.Fatal("Failed to register gender validator", "error", err)
	}

	return &DirectoryValidator{validate: v}
}

func (v *DirectoryValidator) ValidateFilter(f *model.CaregiverFilter) error {
	if err := v.structErrors(f); err != nil {
		return err
	}

	if f.MinRate != nil && f.MinRate.IsNegative() {
		return fmt.Errorf("min_rate must not be negative")
	}
	if f.MinRate != nil && f.MaxRate != nil && f.MinRate.GreaterThan(*f.MaxRate) {
		return fmt.Errorf("min_rate must not exceed max_rate")
	}
	return nil
}

func (v *DirectoryValidator) ValidateCaregiver(c *model.Caregiver) error {
	if err := v.structErrors(c); err != nil {
		return err
	}
	if c.HourlyRate.IsNegative() {
		return fmt.Errorf("hourly_rate must not be negative")
	}
	return nil
}

func (v *DirectoryValidator) ValidateMember(m *model.Member) error {
	return v.structErrors(m)
}

func (v *DirectoryValidator) ValidateAddress(a *model.Address) error {
	return v.structErrors(a)
}

func (v *DirectoryValidator) structErrors(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) error {
	var messages []string
	for _, err := range errs {
		field := strings.ToLower(err.Field())
		switch err.Tag() {
		case "caregiving_type":
			messages = append(messages, "caregiving_type must be one of: "+strings.Join(model.CaregivingTypes, ", "))
		case "gender":
			messages = append(messages, "gender must be one of: "+strings.Join(model.Genders, ", "))
		case "oneof":
			if field == "sortby" {
				field = "sort_by"
			}
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", ")))
		case "required":
			messages = append(messages, field+" is required")
		case "e164":
			messages = append(messages, field+" must be an E.164 phone number")
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, err.Param()))
		default:
			messages = append(messages, err.Error())
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
