package service

import (
	"context"
	"errors"
	"time"

	vehicleserrors "fleetbook/internal/vehicles/errors"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
	"fleetbook/pkg/payment"
	"fleetbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InitiateOrderRequest struct {
	VehicleID   string  `json:"vehicle_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency,omitempty"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	RoundTrip   bool    `json:"round_trip"`
	StartDate   string  `json:"start_date,omitempty"`
	EndDate     string  `json:"end_date,omitempty"`

	// Caller identity, filled from the access token, never from the body.
	UserID    string `json:"-"`
	UserName  string `json:"-"`
	UserEmail string `json:"-"`
}

type InitiateOrderResponse struct {
	BookingCode string            `json:"booking_code"`
	OrderID     string            `json:"order_id"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	Provider    string            `json:"provider"`
	BookingType model.BookingType `json:"booking_type"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
}

// InitiateOrder validates the booking request and opens a payment order
// whose notes carry every parameter needed to materialize the reservation
// later. Nothing is persisted here: an abandoned checkout leaves no
// residue to clean up.
func (s *bookingService) InitiateOrder(ctx context.Context, req *InitiateOrderRequest) (*InitiateOrderResponse, error) {
	if req.UserID == "" {
		return nil, apperrors.Unauthorized("Caller identity is missing")
	}

	if _, err := primitive.ObjectIDFromHex(req.VehicleID); err != nil {
		return nil, apperrors.InvalidInput("Invalid vehicle reference")
	}

	if req.Amount <= 0 {
		return nil, apperrors.InvalidInput("Amount must be greater than zero")
	}

	origin := sanitizer.SanitizePlace(req.Origin)
	destination := sanitizer.SanitizePlace(req.Destination)
	if origin == "" || destination == "" {
		return nil, apperrors.InvalidInput("Origin and destination are required")
	}

	bookingType, startTime, endTime, err := s.resolveWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, req.VehicleID)
	if err != nil {
		if errors.Is(err, vehicleserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Vehicle", req.VehicleID)
		}
		return nil, apperrors.Internal("Failed to look up vehicle", err)
	}

	if vehicle.Availability == model.VehicleMaintenance {
		return nil, apperrors.Unavailable("Vehicle is under maintenance")
	}
	if bookingType == model.BookingImmediate && vehicle.Availability != model.VehicleAvailable {
		return nil, apperrors.Unavailable("Vehicle is not available")
	}

	// Advisory pre-check. The authoritative check re-runs inside the
	// verification transaction; this one just fails fast before the
	// customer reaches the payment page.
	if err := s.checkConflictWindow(ctx, req.VehicleID, startTime, endTime); err != nil {
		return nil, err
	}

	bookingCode, err := s.generateBookingCode()
	if err != nil {
		return nil, apperrors.Internal("Failed to generate booking code", err)
	}

	params := &bookingParams{
		BookingCode: bookingCode,
		VehicleID:   req.VehicleID,
		UserID:      req.UserID,
		UserName:    sanitizer.SanitizeName(req.UserName),
		UserEmail:   req.UserEmail,
		Origin:      origin,
		Destination: destination,
		RoundTrip:   req.RoundTrip,
		BookingType: bookingType,
		StartTime:   startTime,
		EndTime:     endTime,
		Amount:      req.Amount,
		Currency:    currency,
	}

	order, err := s.gateway.CreateOrder(ctx, payment.CreateOrderInput{
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  bookingCode,
		Notes:    params.toNotes(),
	})
	if err != nil {
		s.cfg.Log.Error("Payment order creation failed",
			"booking_code", bookingCode,
			"vehicle_id", req.VehicleID,
			"error", err,
		)
		return nil, apperrors.Provider("Failed to open payment order", err)
	}

	s.cfg.Log.Info("Booking initiated",
		"booking_code", bookingCode,
		"order_id", order.ID,
		"vehicle_id", req.VehicleID,
		"user_id", req.UserID,
		"booking_type", bookingType,
	)

	return &InitiateOrderResponse{
		BookingCode: bookingCode,
		OrderID:     order.ID,
		Amount:      req.Amount,
		Currency:    currency,
		Provider:    s.cfg.PaymentProvider,
		BookingType: bookingType,
		StartTime:   startTime,
		EndTime:     endTime,
	}, nil
}

// resolveWindow classifies the request as immediate (no dates, starts now,
// open-ended) or scheduled (both dates, closed window in the future).
func (s *bookingService) resolveWindow(startDate, endDate string) (model.BookingType, time.Time, *time.Time, error) {
	if startDate == "" && endDate == "" {
		return model.BookingImmediate, s.now().UTC().Truncate(time.Second), nil, nil
	}

	if startDate == "" || endDate == "" {
		return "", time.Time{}, nil, apperrors.InvalidInput("Provide both start and end dates, or neither")
	}

	start, err := time.Parse(time.RFC3339, startDate)
	if err != nil {
		return "", time.Time{}, nil, apperrors.InvalidInput("Invalid start date, expected RFC3339")
	}
	end, err := time.Parse(time.RFC3339, endDate)
	if err != nil {
		return "", time.Time{}, nil, apperrors.InvalidInput("Invalid end date, expected RFC3339")
	}

	if !end.After(start) {
		return "", time.Time{}, nil, apperrors.InvalidInput("End date must be after start date")
	}
	if start.Before(s.now()) {
		return "", time.Time{}, nil, apperrors.InvalidInput("Start date must be in the future")
	}

	start = start.UTC()
	end = end.UTC()
	return model.BookingScheduled, start, &end, nil
}
