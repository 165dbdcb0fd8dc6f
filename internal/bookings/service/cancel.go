package service

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "fleetbook/internal/bookings/errors"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
)

// CancelByCode cancels a reservation the caller owns. Within the refund
// window the paid amount is refunded first; past it the booking is
// cancelled without a refund. A refund whose outcome the provider never
// reported leaves the reservation un-cancelled in a distinct state that
// blocks further cancellation attempts until reconciled.
func (s *bookingService) CancelByCode(ctx context.Context, bookingCode string, userID string, userEmail string) (*model.Reservation, error) {
	if bookingCode == "" {
		return nil, apperrors.InvalidInput("Booking code cannot be empty")
	}
	if userID == "" {
		return nil, apperrors.Unauthorized("Caller identity is missing")
	}

	reservation, err := s.repo.FindByCode(ctx, bookingCode)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", bookingCode)
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	if reservation.UserID != userID {
		// Existence of other users' booking codes is not disclosed.
		return nil, apperrors.NotFoundWithID("Reservation", bookingCode)
	}

	if reservation.Status == model.ReservationCancelled {
		return nil, apperrors.Conflict("Reservation is already cancelled")
	}
	if reservation.Payment.Status == model.PaymentRefundUnknown {
		return nil, apperrors.RefundUnknown(
			"A previous refund attempt is unresolved; cancellation is blocked until it is reconciled",
			nil,
		)
	}
	if !reservation.Status.CanTransitionTo(model.ReservationCancelled) {
		return nil, apperrors.Conflict(fmt.Sprintf("Reservation in status %q cannot be cancelled", reservation.Status))
	}
	if reservation.Payment.Status != model.PaymentPaid {
		return nil, apperrors.Conflict("Reservation has no settled payment to cancel")
	}

	withinWindow := s.now().Sub(reservation.CreatedAt) <= s.cfg.RefundWindow

	if withinWindow {
		if err := s.refund(ctx, reservation); err != nil {
			return nil, err
		}
	} else {
		reservation.Payment.Status = model.PaymentNoRefund
		s.cfg.Log.Info("Cancellation outside refund window",
			"booking_code", bookingCode,
			"created_at", reservation.CreatedAt,
		)
	}

	reservation.Status = model.ReservationCancelled

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx context.Context) error {
		if err := s.repo.Update(sessCtx, reservation.ID, reservation); err != nil {
			return apperrors.Internal("Failed to update reservation", err)
		}
		if reservation.BookingType == model.BookingImmediate {
			if err := s.vehicleRepo.Release(sessCtx, reservation.VehicleID); err != nil {
				return apperrors.Internal("Failed to release vehicle", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "booking_code", bookingCode, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Reservation cancelled",
		"booking_code", bookingCode,
		"payment_status", reservation.Payment.Status,
		"refund_id", reservation.Payment.RefundID,
	)

	s.notify(ctx, model.NotifyBookingCancelled, reservation, userEmail)

	return reservation, nil
}

// refund issues the provider refund with a hard deadline. Three outcomes:
// success mutates the payment to refunded; a definite provider rejection
// aborts the cancellation with the payment still settled; a timeout means
// the money may or may not have moved, so the payment is parked in the
// unknown state and the cancellation aborts.
func (s *bookingService) refund(ctx context.Context, reservation *model.Reservation) error {
	refundCtx, cancel := context.WithTimeout(ctx, s.cfg.RefundTimeout)
	defer cancel()

	notes := map[string]string{
		"booking_code": reservation.BookingCode,
		"reason":       "customer_cancellation",
	}

	refund, err := s.gateway.Refund(refundCtx, reservation.Payment.PaymentID, reservation.Payment.Amount, notes)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(refundCtx.Err(), context.DeadlineExceeded) {
			reservation.Payment.Status = model.PaymentRefundUnknown
			reservation.Payment.FailureReason = "refund request timed out"
			if updateErr := s.repo.Update(ctx, reservation.ID, reservation); updateErr != nil {
				s.cfg.Log.Error("Failed to persist unknown refund state",
					"booking_code", reservation.BookingCode,
					"error", updateErr,
				)
			}
			s.cfg.Log.Error("Refund outcome unknown, cancellation blocked",
				"booking_code", reservation.BookingCode,
				"payment_id", reservation.Payment.PaymentID,
			)
			return apperrors.RefundUnknown(
				"Refund status could not be determined; the booking remains active until reconciled",
				err,
			)
		}

		reservation.Payment.FailureReason = err.Error()
		if updateErr := s.repo.Update(ctx, reservation.ID, reservation); updateErr != nil {
			s.cfg.Log.Error("Failed to persist refund failure reason",
				"booking_code", reservation.BookingCode,
				"error", updateErr,
			)
		}
		s.cfg.Log.Error("Refund rejected by provider",
			"booking_code", reservation.BookingCode,
			"payment_id", reservation.Payment.PaymentID,
			"error", err,
		)
		return apperrors.Provider("Refund failed; the booking was not cancelled", err)
	}

	reservation.Payment.Status = model.PaymentRefunded
	reservation.Payment.RefundID = refund.ID
	reservation.Payment.IsRefunded = true
	reservation.Payment.FailureReason = ""
	return nil
}
