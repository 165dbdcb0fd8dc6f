package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"
)

func newTestValidator() *ReservationValidator {
	log := logger.New(logger.Config{Level: logger.LevelError, Format: logger.FormatText})
	return NewReservationValidator(log)
}

func validReservation() *model.Reservation {
	start := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	return &model.Reservation{
		BookingCode: "FLB-A1B2C3-260901120000",
		VehicleID:   "507f1f77bcf86cd799439011",
		UserID:      "user-42",
		Origin:      "Indiranagar",
		Destination: "Whitefield",
		BookingType: model.BookingImmediate,
		StartTime:   start,
		TotalPrice:  1500,
		Status:      model.ReservationConfirmed,
		Payment: model.Payment{
			Provider: "razorpay",
			OrderID:  "order_001",
			Amount:   1500,
			Currency: "INR",
			Status:   model.PaymentPaid,
		},
	}
}

func fieldMessage(t *testing.T, err error, field string) string {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	for _, ve := range verrs {
		if ve.Field == field {
			return ve.Message
		}
	}
	t.Fatalf("no validation error for field %s in %v", field, verrs)
	return ""
}

func TestValidateAcceptsImmediateReservation(t *testing.T) {
	if err := newTestValidator().Validate(validReservation()); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestValidateAcceptsScheduledReservation(t *testing.T) {
	r := validReservation()
	r.BookingType = model.BookingScheduled
	end := r.StartTime.Add(4 * time.Hour)
	r.EndTime = &end

	if err := newTestValidator().Validate(r); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
}

func TestValidateWindowRules(t *testing.T) {
	v := newTestValidator()

	t.Run("immediate with end time", func(t *testing.T) {
		r := validReservation()
		end := r.StartTime.Add(time.Hour)
		r.EndTime = &end

		err := v.Validate(r)
		msg := fieldMessage(t, err, "EndTime")
		if !strings.Contains(msg, "open-ended") {
			t.Errorf("unexpected message: %s", msg)
		}
	})

	t.Run("scheduled without end time", func(t *testing.T) {
		r := validReservation()
		r.BookingType = model.BookingScheduled

		err := v.Validate(r)
		fieldMessage(t, err, "EndTime")
	})

	t.Run("scheduled end before start", func(t *testing.T) {
		r := validReservation()
		r.BookingType = model.BookingScheduled
		end := r.StartTime.Add(-time.Hour)
		r.EndTime = &end

		err := v.Validate(r)
		msg := fieldMessage(t, err, "EndTime")
		if !strings.Contains(msg, "after start_time") {
			t.Errorf("unexpected message: %s", msg)
		}
	})
}

func TestValidateTranslatesTags(t *testing.T) {
	v := newTestValidator()

	cases := []struct {
		name    string
		mutate  func(r *model.Reservation)
		field   string
		message string
	}{
		{
			name:    "missing booking code",
			mutate:  func(r *model.Reservation) { r.BookingCode = "" },
			field:   "BookingCode",
			message: "is required",
		},
		{
			name:    "malformed vehicle id",
			mutate:  func(r *model.Reservation) { r.VehicleID = "not-an-object-id" },
			field:   "VehicleID",
			message: "must be a valid object id",
		},
		{
			name:    "origin too short",
			mutate:  func(r *model.Reservation) { r.Origin = "X" },
			field:   "Origin",
			message: "must be at least 2 characters",
		},
		{
			name:    "unknown booking type",
			mutate:  func(r *model.Reservation) { r.BookingType = "teleport" },
			field:   "BookingType",
			message: "must be one of",
		},
		{
			name:    "zero price",
			mutate:  func(r *model.Reservation) { r.TotalPrice = 0 },
			field:   "TotalPrice",
			message: "is required",
		},
		{
			name:    "bogus currency",
			mutate:  func(r *model.Reservation) { r.Payment.Currency = "ZZZ" },
			field:   "Currency",
			message: "ISO 4217",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validReservation()
			tc.mutate(r)

			err := v.Validate(r)
			msg := fieldMessage(t, err, tc.field)
			if !strings.Contains(msg, tc.message) {
				t.Errorf("field %s: got %q, want substring %q", tc.field, msg, tc.message)
			}
		})
	}
}
