package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fleetbook/internal/bookings/repository"
	"fleetbook/internal/bookings/validator"
	vehiclesrepo "fleetbook/internal/vehicles/repository"
	"fleetbook/pkg/config"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
	"fleetbook/pkg/notify"
	"fleetbook/pkg/payment"

	"go.mongodb.org/mongo-driver/mongo"
)

// BookingService runs the deferred-creation booking workflow: initiation
// opens a payment order carrying the booking parameters in its notes, and
// no reservation document exists until the payment is verified.
type BookingService interface {
	InitiateOrder(ctx context.Context, req *InitiateOrderRequest) (*InitiateOrderResponse, error)
	VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*model.Reservation, error)
	CancelByCode(ctx context.Context, bookingCode string, userID string, userEmail string) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Reservation, int64, error)
}

type bookingService struct {
	repo        repository.ReservationRepository
	lockRepo    repository.BookingLockRepository
	vehicleRepo vehiclesrepo.VehicleRepository
	validator   *validator.ReservationValidator
	gateway     payment.Gateway
	dispatcher  notify.Dispatcher
	cfg         *config.Config
	now         func() time.Time
}

func NewBookingService(
	repo repository.ReservationRepository,
	lockRepo repository.BookingLockRepository,
	vehicleRepo vehiclesrepo.VehicleRepository,
	validator *validator.ReservationValidator,
	gateway payment.Gateway,
	dispatcher notify.Dispatcher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:        repo,
		lockRepo:    lockRepo,
		vehicleRepo: vehicleRepo,
		validator:   validator,
		gateway:     gateway,
		dispatcher:  dispatcher,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *bookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.Unauthorized("Caller identity is missing")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateBookingCode builds a human-quotable reservation reference,
// e.g. FLB-K4J9QX-260829153045. The random block keeps codes issued in
// the same second distinct.
func (s *bookingService) generateBookingCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate booking code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", s.cfg.BookingCodePrefix, buf, s.now().UTC().Format("060102150405")), nil
}

// acquireSlotLock serializes concurrent verifications targeting the same
// vehicle. Booking windows are arbitrary intervals, so two requests with
// different start times can still overlap; keying the lock by vehicle is
// the only granularity that makes the conflict-check-then-insert sequence
// mutually exclusive. The unique _id insert is atomic; a losing racer gets
// a duplicate key error and must retry after the winner commits.
func (s *bookingService) acquireSlotLock(ctx context.Context, vehicleID string) (string, error) {
	lockID := fmt.Sprintf("slot:%s", vehicleID)

	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: s.now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This vehicle slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		// The TTL index reaps it; a leaked lock only delays the slot.
		s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", err)
	}
}

// checkConflictWindow rejects a reservation whose window touches any
// pending or confirmed reservation on the same vehicle. An immediate
// booking is an open-ended window starting now. Boundary contact counts
// as overlap. Must run inside the booking transaction, under the
// per-vehicle lock, so the check and the insert see one snapshot.
func (s *bookingService) checkConflictWindow(ctx context.Context, vehicleID string, start time.Time, end *time.Time) error {
	existing, err := s.repo.FindActiveOverlapping(ctx, vehicleID, start, end)
	if err != nil {
		return apperrors.Internal("Failed to check existing reservations", err)
	}

	for _, r := range existing {
		if !r.Active() {
			continue
		}
		if model.Overlaps(r.StartTime, r.EndTime, start, end) {
			until := "open-ended"
			if r.EndTime != nil {
				until = r.EndTime.Format(time.RFC3339)
			}
			return apperrors.Conflict(fmt.Sprintf(
				"Vehicle is already booked for an overlapping window (%s - %s)",
				r.StartTime.Format(time.RFC3339),
				until,
			))
		}
	}
	return nil
}

// notify sends a booking event to the customer and a copy to the ops
// address. Failures are logged and swallowed; the reservation outcome is
// already committed by the time this runs.
func (s *bookingService) notify(ctx context.Context, kind model.NotificationKind, reservation *model.Reservation, userEmail string) {
	data := map[string]string{
		"booking_code":   reservation.BookingCode,
		"vehicle_id":     reservation.VehicleID,
		"origin":         reservation.Origin,
		"destination":    reservation.Destination,
		"start_time":     reservation.StartTime.Format(time.RFC3339),
		"amount":         strconv.FormatFloat(reservation.TotalPrice, 'f', 2, 64),
		"currency":       reservation.Payment.Currency,
		"payment_status": string(reservation.Payment.Status),
	}
	if reservation.EndTime != nil {
		data["end_time"] = reservation.EndTime.Format(time.RFC3339)
	}
	if reservation.Payment.RefundID != "" {
		data["refund_id"] = reservation.Payment.RefundID
	}

	recipients := []string{userEmail}
	if s.cfg.OpsEmail != "" && s.cfg.OpsEmail != userEmail {
		recipients = append(recipients, s.cfg.OpsEmail)
	}

	for _, to := range recipients {
		if to == "" {
			continue
		}
		n := model.Notification{
			To:          to,
			Kind:        kind,
			BookingCode: reservation.BookingCode,
			Data:        data,
		}
		if err := s.dispatcher.Send(ctx, n); err != nil {
			s.cfg.Log.Error("Failed to dispatch notification",
				"kind", kind,
				"booking_code", reservation.BookingCode,
				"to", to,
				"error", err,
			)
		}
	}
}
