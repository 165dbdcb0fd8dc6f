package service

import (
	"context"
	"errors"

	bookingserrors "fleetbook/internal/bookings/errors"
	vehicleserrors "fleetbook/internal/vehicles/errors"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
	"fleetbook/pkg/payment"
)

type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`

	// Caller identity, filled from the access token, never from the body.
	UserID string `json:"-"`
}

// VerifyPayment is the moment the reservation comes into existence. The
// sequence is: authenticate the callback (HMAC signature), rebuild the
// booking parameters from the provider order, then confirm inside one
// transaction so the conflict check, the reservation insert and the
// vehicle flip commit or abort together.
func (s *bookingService) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*model.Reservation, error) {
	if req.UserID == "" {
		return nil, apperrors.Unauthorized("Caller identity is missing")
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, apperrors.InvalidInput("order_id, payment_id and signature are required")
	}

	if !payment.VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.cfg.PaymentKeySecret) {
		s.cfg.Log.Warn("Payment signature verification failed",
			"order_id", req.OrderID,
			"payment_id", req.PaymentID,
			"user_id", req.UserID,
		)
		return nil, apperrors.Unauthorized("Payment signature verification failed")
	}

	// Replay of an already-verified payment returns the reservation it
	// created, not an error. Payment callbacks retry aggressively.
	if existing, err := s.repo.FindByOrderID(ctx, req.OrderID); err == nil {
		if existing.Payment.Status == model.PaymentPaid || existing.Status == model.ReservationConfirmed {
			s.cfg.Log.Info("Verification replay detected",
				"order_id", req.OrderID,
				"booking_code", existing.BookingCode,
			)
			return existing, nil
		}
	} else if !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to check for existing reservation", err)
	}

	order, err := s.gateway.FetchOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, payment.ErrOrderNotFound) {
			return nil, apperrors.NotFoundWithID("Payment order", req.OrderID)
		}
		return nil, apperrors.Provider("Failed to fetch payment order", err)
	}

	params, err := parseOrderNotes(order.Notes)
	if err != nil {
		s.cfg.Log.Error("Payment order notes unusable", "order_id", req.OrderID, "error", err)
		return nil, apperrors.Internal("Payment order is missing booking parameters", err)
	}

	if params.UserID != req.UserID {
		s.cfg.Log.Warn("Verification caller does not own the order",
			"order_id", req.OrderID,
			"order_user_id", params.UserID,
			"caller_user_id", req.UserID,
		)
		return nil, apperrors.Forbidden("This payment order belongs to a different user")
	}

	lockID, err := s.acquireSlotLock(ctx, params.VehicleID)
	if err != nil {
		return nil, err
	}
	defer s.releaseSlotLock(ctx, lockID)

	reservation := s.buildReservation(params, req.OrderID, req.PaymentID)
	if err := s.validator.Validate(reservation); err != nil {
		return nil, apperrors.Validation("Reservation validation failed", map[string]any{"errors": err.Error()})
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		vehicle, err := s.vehicleRepo.FindByID(sessCtx, params.VehicleID)
		if err != nil {
			if errors.Is(err, vehicleserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Vehicle", params.VehicleID)
			}
			return apperrors.Internal("Failed to look up vehicle", err)
		}
		if vehicle.Availability == model.VehicleMaintenance {
			return apperrors.Unavailable("Vehicle is under maintenance")
		}

		// Every booking type runs the window check: an open-ended immediate
		// rental can collide with a confirmed future scheduled window that
		// never flipped the vehicle's availability.
		if err := s.checkConflictWindow(sessCtx, params.VehicleID, params.StartTime, params.EndTime); err != nil {
			return err
		}

		if err := s.repo.Create(sessCtx, reservation); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicateOrder) {
				return err
			}
			return apperrors.Internal("Failed to create reservation", err)
		}

		if params.BookingType == model.BookingImmediate {
			if err := s.vehicleRepo.MarkReserved(sessCtx, params.VehicleID, reservation.ID, params.UserName); err != nil {
				if errors.Is(err, vehicleserrors.ErrNotAvailable) {
					return apperrors.Unavailable("Vehicle is no longer available")
				}
				return apperrors.Internal("Failed to reserve vehicle", err)
			}
		}

		return nil
	})
	if err != nil {
		// Two verifications for the same order raced; the committed one
		// wins and both callers see the same reservation.
		if errors.Is(err, bookingserrors.ErrDuplicateOrder) {
			existing, findErr := s.repo.FindByOrderID(ctx, req.OrderID)
			if findErr == nil {
				return existing, nil
			}
			return nil, apperrors.Internal("Failed to load reservation after duplicate verification", findErr)
		}
		s.cfg.Log.Error("Payment verification failed",
			"order_id", req.OrderID,
			"booking_code", params.BookingCode,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Reservation confirmed",
		"booking_code", reservation.BookingCode,
		"order_id", req.OrderID,
		"vehicle_id", params.VehicleID,
		"booking_type", params.BookingType,
	)

	s.notify(ctx, model.NotifyBookingConfirmed, reservation, params.UserEmail)

	return reservation, nil
}

func (s *bookingService) buildReservation(params *bookingParams, orderID, paymentID string) *model.Reservation {
	return &model.Reservation{
		BookingCode: params.BookingCode,
		VehicleID:   params.VehicleID,
		UserID:      params.UserID,
		Origin:      params.Origin,
		Destination: params.Destination,
		RoundTrip:   params.RoundTrip,
		BookingType: params.BookingType,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		TotalPrice:  params.Amount,
		Status:      model.ReservationConfirmed,
		Payment: model.Payment{
			Provider:  s.cfg.PaymentProvider,
			OrderID:   orderID,
			PaymentID: paymentID,
			Amount:    params.Amount,
			Currency:  params.Currency,
			Status:    model.PaymentPaid,
		},
	}
}
