package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "fleetbook/internal/bookings/errors"
	vehicleserrors "fleetbook/internal/vehicles/errors"
	apperrors "fleetbook/pkg/errors"
	"fleetbook/pkg/model"
	"fleetbook/pkg/payment"
)

func signedVerifyRequest(orderID, paymentID string) *VerifyPaymentRequest {
	return &VerifyPaymentRequest{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: payment.Signature(orderID, paymentID, testSecret),
		UserID:    testUserID,
	}
}

func orderWithParams(orderID string, params *bookingParams) *payment.Order {
	return &payment.Order{
		ID:      orderID,
		Notes:   params.toNotes(),
		Receipt: params.BookingCode,
		Status:  "paid",
	}
}

func immediateParams() *bookingParams {
	return &bookingParams{
		BookingCode: "FLB-TEST01-260901120000",
		VehicleID:   testVehicleID,
		UserID:      testUserID,
		UserName:    "Asha",
		UserEmail:   testUserEmail,
		Origin:      "Indiranagar",
		Destination: "Whitefield",
		BookingType: model.BookingImmediate,
		StartTime:   time.Now().UTC().Truncate(time.Second),
		Amount:      1500,
		Currency:    "INR",
	}
}

func scheduledParams() *bookingParams {
	p := immediateParams()
	p.BookingType = model.BookingScheduled
	p.StartTime = time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	end := p.StartTime.Add(4 * time.Hour)
	p.EndTime = &end
	return p
}

func TestVerifyPaymentInputChecks(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.VerifyPayment(context.Background(), &VerifyPaymentRequest{
		OrderID: "order_1", PaymentID: "", Signature: "sig", UserID: testUserID,
	})
	assertAppCode(t, err, apperrors.CodeInvalidInput)

	_, err = env.svc.VerifyPayment(context.Background(), &VerifyPaymentRequest{
		OrderID: "order_1", PaymentID: "pay_1", Signature: "sig", UserID: "",
	})
	assertAppCode(t, err, apperrors.CodeUnauthorized)
}

func TestVerifyPaymentRejectsTamperedSignature(t *testing.T) {
	env := newTestEnv()

	fetched := false
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		fetched = true
		return nil, payment.ErrOrderNotFound
	}

	req := signedVerifyRequest("order_1", "pay_1")
	req.Signature = payment.Signature("order_1", "pay_other", testSecret)

	_, err := env.svc.VerifyPayment(context.Background(), req)
	assertAppCode(t, err, apperrors.CodeUnauthorized)

	if fetched {
		t.Fatal("tampered signature must be rejected before any provider call")
	}
	if len(env.repo.created) != 0 {
		t.Fatal("tampered signature must not create a reservation")
	}
}

func TestVerifyPaymentReplayReturnsExistingReservation(t *testing.T) {
	env := newTestEnv()

	existing := &model.Reservation{
		ID:          "65f000000000000000000009",
		BookingCode: "FLB-REPLAY-260901120000",
		Status:      model.ReservationConfirmed,
		Payment:     model.Payment{OrderID: "order_replay", Status: model.PaymentPaid},
	}
	env.repo.findByOrderIDFn = func(ctx context.Context, orderID string) (*model.Reservation, error) {
		return existing, nil
	}
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		t.Fatal("replay must not re-fetch the order")
		return nil, nil
	}

	got, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_replay", "pay_1"))
	if err != nil {
		t.Fatalf("replay should succeed: %v", err)
	}
	if got.BookingCode != existing.BookingCode {
		t.Fatalf("replay returned wrong reservation: %s", got.BookingCode)
	}
	if len(env.repo.created) != 0 {
		t.Fatal("replay must not create a second reservation")
	}
	if len(env.notifier.sent) != 0 {
		t.Fatal("replay must not re-send notifications")
	}
}

func TestVerifyPaymentOrderNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_missing", "pay_1"))
	assertAppCode(t, err, apperrors.CodeNotFound)
}

func TestVerifyPaymentCorruptNotes(t *testing.T) {
	env := newTestEnv()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return &payment.Order{ID: orderID, Notes: map[string]string{"booking_code": "FLB-X"}}, nil
	}

	_, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_1", "pay_1"))
	assertAppCode(t, err, apperrors.CodeInternal)
}

func TestVerifyPaymentOwnershipEnforced(t *testing.T) {
	env := newTestEnv()
	params := immediateParams()
	params.UserID = "someone-else"
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}

	_, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_1", "pay_1"))
	assertAppCode(t, err, apperrors.CodeForbidden)
}

func TestVerifyPaymentImmediateSuccess(t *testing.T) {
	env := newTestEnv()
	params := immediateParams()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}

	reservation, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_ok", "pay_ok"))
	if err != nil {
		t.Fatalf("VerifyPayment() failed: %v", err)
	}

	if reservation.Status != model.ReservationConfirmed {
		t.Errorf("expected confirmed status, got %s", reservation.Status)
	}
	if reservation.Payment.Status != model.PaymentPaid {
		t.Errorf("expected paid payment, got %s", reservation.Payment.Status)
	}
	if reservation.Payment.OrderID != "order_ok" || reservation.Payment.PaymentID != "pay_ok" {
		t.Errorf("payment identifiers not recorded: %+v", reservation.Payment)
	}
	if reservation.EndTime != nil {
		t.Error("immediate reservation must be open-ended")
	}

	if len(env.repo.created) != 1 {
		t.Fatalf("expected one reservation row, got %d", len(env.repo.created))
	}
	if len(env.vehicles.reserved) != 1 || env.vehicles.reserved[0] != testVehicleID {
		t.Fatalf("vehicle was not flipped to reserved: %v", env.vehicles.reserved)
	}

	// Slot lock held around the transaction, then released.
	if len(env.locks.acquired) != 1 || len(env.locks.released) != 1 {
		t.Fatalf("lock lifecycle broken: acquired=%v released=%v", env.locks.acquired, env.locks.released)
	}

	// Customer and ops both notified.
	if len(env.notifier.sent) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(env.notifier.sent))
	}
	recipients := map[string]bool{}
	for _, n := range env.notifier.sent {
		recipients[n.To] = true
		if n.Kind != model.NotifyBookingConfirmed {
			t.Errorf("unexpected notification kind %s", n.Kind)
		}
	}
	if !recipients[testUserEmail] || !recipients["ops@example.com"] {
		t.Errorf("wrong recipients: %v", recipients)
	}
}

func TestVerifyPaymentScheduledSkipsVehicleFlip(t *testing.T) {
	env := newTestEnv()
	params := scheduledParams()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}

	reservation, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_sched", "pay_sched"))
	if err != nil {
		t.Fatalf("VerifyPayment() failed: %v", err)
	}

	if reservation.BookingType != model.BookingScheduled || reservation.EndTime == nil {
		t.Fatalf("scheduled reservation malformed: %+v", reservation)
	}
	if len(env.vehicles.reserved) != 0 {
		t.Fatal("scheduled booking must not flip vehicle availability")
	}
}

func TestVerifyPaymentScheduledConflictAborts(t *testing.T) {
	env := newTestEnv()
	params := scheduledParams()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}

	blockingEnd := params.StartTime.Add(time.Hour)
	env.repo.findActiveOverlappingFn = func(ctx context.Context, vehicleID string, start time.Time, end *time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{{
			Status:    model.ReservationConfirmed,
			StartTime: params.StartTime.Add(-time.Hour),
			EndTime:   &blockingEnd,
		}}, nil
	}

	_, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_conflict", "pay_1"))
	assertAppCode(t, err, apperrors.CodeConflict)

	if len(env.repo.created) != 0 {
		t.Fatal("conflicting verification must not create a reservation")
	}
	if len(env.locks.released) != 1 {
		t.Fatal("lock must be released on abort")
	}
}

func TestVerifyPaymentSlotLockContention(t *testing.T) {
	env := newTestEnv()
	params := immediateParams()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}
	env.locks.createFn = func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
		return nil, duplicateKeyError()
	}

	_, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_race", "pay_1"))
	assertAppCode(t, err, apperrors.CodeConflict)

	if len(env.repo.created) != 0 {
		t.Fatal("losing racer must not create a reservation")
	}
}

// Overlapping windows with different start times must still contend on one
// lock: the conflict check only sees committed rows, so without mutual
// exclusion per vehicle both inserts would commit as a double booking.
func TestVerifyPaymentConcurrentOverlappingWindows(t *testing.T) {
	env := newTestEnv()

	paramsA := scheduledParams()
	paramsA.BookingCode = "FLB-WINA01-260901100000"
	paramsB := scheduledParams()
	paramsB.BookingCode = "FLB-WINB01-260901110000"
	paramsB.StartTime = paramsA.StartTime.Add(time.Hour)
	endB := paramsB.StartTime.Add(4 * time.Hour)
	paramsB.EndTime = &endB

	orders := map[string]*bookingParams{
		"order_win_a": paramsA,
		"order_win_b": paramsB,
	}
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, orders[orderID]), nil
	}

	// Lock collection semantics: a second insert on a held _id fails.
	var lockMu sync.Mutex
	held := map[string]bool{}
	var requested []string
	env.locks.createFn = func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
		lockMu.Lock()
		defer lockMu.Unlock()
		requested = append(requested, lock.ID)
		if held[lock.ID] {
			return nil, duplicateKeyError()
		}
		held[lock.ID] = true
		return lock, nil
	}
	env.locks.deleteFn = func(ctx context.Context, lockID string) error {
		lockMu.Lock()
		defer lockMu.Unlock()
		delete(held, lockID)
		return nil
	}

	// The window check sees committed rows only, like a snapshot read.
	env.repo.findActiveOverlappingFn = func(ctx context.Context, vehicleID string, start time.Time, end *time.Time) ([]*model.Reservation, error) {
		env.repo.mu.Lock()
		defer env.repo.mu.Unlock()
		return append([]*model.Reservation(nil), env.repo.created...), nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, orderID := range []string{"order_win_a", "order_win_b"} {
		wg.Add(1)
		go func(i int, orderID string) {
			defer wg.Done()
			_, errs[i] = env.svc.VerifyPayment(context.Background(), signedVerifyRequest(orderID, "pay_"+orderID))
		}(i, orderID)
	}
	wg.Wait()

	var confirmed, conflicted int
	for _, err := range errs {
		if err == nil {
			confirmed++
			continue
		}
		if apperrors.AsAppError(err).Code == apperrors.CodeConflict {
			conflicted++
		}
	}
	if confirmed != 1 || conflicted != 1 {
		t.Fatalf("expected exactly one confirmation and one conflict, got errs=%v", errs)
	}
	if len(env.repo.created) != 1 {
		t.Fatalf("double booking: %d reservations committed", len(env.repo.created))
	}

	wantLock := "slot:" + testVehicleID
	for _, id := range requested {
		if id != wantLock {
			t.Fatalf("verifications with different start times took different locks: %v", requested)
		}
	}
}

// A scheduled booking never flips availability, so an immediate (open-ended)
// request on the same vehicle must be caught by the window check instead.
func TestVerifyPaymentImmediateConflictsWithFutureScheduled(t *testing.T) {
	env := newTestEnv()
	params := immediateParams()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}

	futureStart := time.Now().Add(24 * time.Hour).UTC()
	futureEnd := futureStart.Add(4 * time.Hour)
	env.repo.findActiveOverlappingFn = func(ctx context.Context, vehicleID string, start time.Time, end *time.Time) ([]*model.Reservation, error) {
		return []*model.Reservation{{
			Status:      model.ReservationConfirmed,
			BookingType: model.BookingScheduled,
			StartTime:   futureStart,
			EndTime:     &futureEnd,
		}}, nil
	}

	_, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_imm", "pay_1"))
	assertAppCode(t, err, apperrors.CodeConflict)

	if len(env.repo.created) != 0 {
		t.Fatal("conflicting immediate verification must not create a reservation")
	}
	if len(env.vehicles.reserved) != 0 {
		t.Fatal("conflicting immediate verification must not flip the vehicle")
	}
}

func TestVerifyPaymentDuplicateOrderInsideTransaction(t *testing.T) {
	env := newTestEnv()
	params := immediateParams()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}

	committed := &model.Reservation{
		ID:          "65f000000000000000000007",
		BookingCode: params.BookingCode,
		Status:      model.ReservationConfirmed,
		Payment:     model.Payment{OrderID: "order_dup", Status: model.PaymentPaid},
	}

	// First lookup misses; the insert then hits the unique order index,
	// and the post-abort lookup finds the winner's row.
	lookups := 0
	env.repo.findByOrderIDFn = func(ctx context.Context, orderID string) (*model.Reservation, error) {
		lookups++
		if lookups == 1 {
			return nil, bookingserrors.ErrNotFound
		}
		return committed, nil
	}
	env.repo.createFn = func(ctx context.Context, r *model.Reservation) error {
		return bookingserrors.ErrDuplicateOrder
	}

	got, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_dup", "pay_1"))
	if err != nil {
		t.Fatalf("duplicate verification should converge on the committed row: %v", err)
	}
	if got.ID != committed.ID {
		t.Fatalf("expected the committed reservation, got %+v", got)
	}
}

func TestVerifyPaymentVehicleVanishedMidFlight(t *testing.T) {
	env := newTestEnv()
	params := immediateParams()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}
	env.vehicles.markReservedFn = func(ctx context.Context, id, bookingID, bookedByName string) error {
		return vehicleserrors.ErrNotAvailable
	}

	_, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_gone", "pay_1"))
	assertAppCode(t, err, apperrors.CodeUnavailable)
}

func TestVerifyPaymentNotificationFailureDoesNotFailBooking(t *testing.T) {
	env := newTestEnv()
	params := immediateParams()
	env.gateway.fetchOrderFn = func(ctx context.Context, orderID string) (*payment.Order, error) {
		return orderWithParams(orderID, params), nil
	}
	env.notifier.sendFn = func(ctx context.Context, n model.Notification) error {
		return errors.New("broker down")
	}

	reservation, err := env.svc.VerifyPayment(context.Background(), signedVerifyRequest("order_nf", "pay_1"))
	if err != nil {
		t.Fatalf("notification failure must not fail the booking: %v", err)
	}
	if reservation.Status != model.ReservationConfirmed {
		t.Fatalf("reservation not confirmed: %s", reservation.Status)
	}
}
