package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	regoRegex = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 \-]{2,18}[A-Z0-9]$`)
)

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

type VehicleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewVehicleValidator(log *logger.Logger) *VehicleValidator {
	v := validator.New()

	if err := v.RegisterValidation("rego", validateRego); err != nil {
		log.Fatal("Failed to register 'rego' validator", "error", err)
	}

	return &VehicleValidator{
		validate: v,
		logger:   log,
	}
}

func validateRego(fl validator.FieldLevel) bool {
	return regoRegex.MatchString(strings.ToUpper(fl.Field().String()))
}

func (v *VehicleValidator) Validate(vehicle *model.Vehicle) error {
	if err := v.validate.Struct(vehicle); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !regoRegex.MatchString(strings.ToUpper(vehicle.RegistrationNo)) {
		return ValidationErrors{
			ValidationError{
				Field:   "RegistrationNo",
				Message: "registration_no must be 4-20 plate characters (letters, digits, spaces, hyphens)",
			},
		}
	}

	if vehicle.RatePerKM <= 0 && vehicle.RatePerHour <= 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "RatePerKM",
				Message: "at least one of rate_per_km or rate_per_hour must be positive",
			},
		}
	}

	return nil
}

func (v *VehicleValidator) ValidateUpdate(updates *model.VehicleUpdate) error {
	if err := v.validate.Struct(updates); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *VehicleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var result ValidationErrors
	for _, err := range errs {
		result = append(result, ValidationError{
			Field:   err.Field(),
			Message: translateTag(err),
		})
	}
	return result
}

func translateTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "mongodb":
		return "must be a valid object id"
	default:
		return fmt.Sprintf("failed validation for '%s'", err.Tag())
	}
}
