package validator

import (
	"errors"
	"fmt"
	"strings"

	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"

	"github.com/go-playground/validator/v10"
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

// ReservationValidator guards the reservation document immediately before
// insert. By this point the booking parameters have round-tripped through
// the payment provider's order notes, so this is the last line of defence
// against a corrupted or truncated note set.
type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	return &ReservationValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	switch reservation.BookingType {
	case model.BookingImmediate:
		if reservation.EndTime != nil {
			return ValidationErrors{
				ValidationError{
					Field:   "EndTime",
					Message: "immediate reservations are open-ended and must not carry an end_time",
				},
			}
		}
	case model.BookingScheduled:
		if reservation.EndTime == nil {
			return ValidationErrors{
				ValidationError{
					Field:   "EndTime",
					Message: "scheduled reservations require an end_time",
				},
			}
		}
		if !reservation.EndTime.After(reservation.StartTime) {
			return ValidationErrors{
				ValidationError{
					Field:   "EndTime",
					Message: "end_time must be after start_time",
				},
			}
		}
	}

	return nil
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "iso4217":
		return "must be a valid ISO 4217 currency code"
	case "mongodb":
		return "must be a valid object id"
	default:
		return fmt.Sprintf("failed validation for '%s'", err.Tag())
	}
}
