package service

import (
	"context"
	"sync"
	"time"

	bookingserrors "fleetbook/internal/bookings/errors"
	"fleetbook/internal/bookings/repository"
	"fleetbook/internal/bookings/validator"
	vehiclesrepo "fleetbook/internal/vehicles/repository"
	"fleetbook/pkg/config"
	mongotx "fleetbook/pkg/db/mongo"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/model"
	"fleetbook/pkg/payment"

	"go.mongodb.org/mongo-driver/mongo"
)

// duplicateKeyError mimics the server response to a unique index violation.
func duplicateKeyError() error {
	return mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
}

const (
	testVehicleID = "507f1f77bcf86cd799439011"
	testUserID    = "user-42"
	testUserEmail = "rider@example.com"
	testSecret    = "test-key-secret"
)

type mockReservationRepo struct {
	createFn                func(ctx context.Context, r *model.Reservation) error
	findByIDFn              func(ctx context.Context, id string) (*model.Reservation, error)
	findByCodeFn            func(ctx context.Context, code string) (*model.Reservation, error)
	findByOrderIDFn         func(ctx context.Context, orderID string) (*model.Reservation, error)
	findActiveOverlappingFn func(ctx context.Context, vehicleID string, start time.Time, end *time.Time) ([]*model.Reservation, error)
	findByUserFn            func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Reservation, error)
	countByUserFn           func(ctx context.Context, userID string) (int64, error)
	updateFn                func(ctx context.Context, id string, r *model.Reservation) error

	mu      sync.Mutex
	created []*model.Reservation
	updated []*model.Reservation
}

var _ repository.ReservationRepository = (*mockReservationRepo)(nil)

func (m *mockReservationRepo) Create(ctx context.Context, r *model.Reservation) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, r); err != nil {
			return err
		}
	}
	if r.ID == "" {
		r.ID = "65f000000000000000000001"
	}
	r.CreatedAt = time.Now().UTC()
	m.mu.Lock()
	m.created = append(m.created, r)
	m.mu.Unlock()
	return nil
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockReservationRepo) FindByCode(ctx context.Context, code string) (*model.Reservation, error) {
	if m.findByCodeFn != nil {
		return m.findByCodeFn(ctx, code)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockReservationRepo) FindByOrderID(ctx context.Context, orderID string) (*model.Reservation, error) {
	if m.findByOrderIDFn != nil {
		return m.findByOrderIDFn(ctx, orderID)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockReservationRepo) FindActiveOverlapping(ctx context.Context, vehicleID string, start time.Time, end *time.Time) ([]*model.Reservation, error) {
	if m.findActiveOverlappingFn != nil {
		return m.findActiveOverlappingFn(ctx, vehicleID, start, end)
	}
	return nil, nil
}

func (m *mockReservationRepo) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findByUserFn != nil {
		return m.findByUserFn(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *mockReservationRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFn != nil {
		return m.countByUserFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockReservationRepo) Update(ctx context.Context, id string, r *model.Reservation) error {
	if m.updateFn != nil {
		if err := m.updateFn(ctx, id, r); err != nil {
			return err
		}
	}
	snapshot := *r
	m.mu.Lock()
	m.updated = append(m.updated, &snapshot)
	m.mu.Unlock()
	return nil
}

func (m *mockReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TxFunc) error {
	return fn(ctx)
}

type mockLockRepo struct {
	createFn func(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error)
	deleteFn func(ctx context.Context, lockID string) error

	mu       sync.Mutex
	acquired []string
	released []string
}

var _ repository.BookingLockRepository = (*mockLockRepo)(nil)

func (m *mockLockRepo) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	if m.createFn != nil {
		return m.createFn(ctx, lock)
	}
	m.mu.Lock()
	m.acquired = append(m.acquired, lock.ID)
	m.mu.Unlock()
	return lock, nil
}

func (m *mockLockRepo) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	m.released = append(m.released, lockID)
	m.mu.Unlock()
	if m.deleteFn != nil {
		return m.deleteFn(ctx, lockID)
	}
	return nil
}

type mockVehicleRepo struct {
	findByIDFn     func(ctx context.Context, id string) (*model.Vehicle, error)
	markReservedFn func(ctx context.Context, id, bookingID, bookedByName string) error
	releaseFn      func(ctx context.Context, id string) error

	mu       sync.Mutex
	reserved []string
	released []string
}

var _ vehiclesrepo.VehicleRepository = (*mockVehicleRepo)(nil)

func (m *mockVehicleRepo) Create(ctx context.Context, v *model.Vehicle) error { return nil }

func (m *mockVehicleRepo) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.Vehicle{
		ID:           id,
		Name:         "Test Hatchback",
		Availability: model.VehicleAvailable,
		RatePerKM:    12,
	}, nil
}

func (m *mockVehicleRepo) FindAll(ctx context.Context, onlyAvailable bool, limit int, offset int64) ([]*model.Vehicle, error) {
	return nil, nil
}

func (m *mockVehicleRepo) Count(ctx context.Context, onlyAvailable bool) (int64, error) {
	return 0, nil
}

func (m *mockVehicleRepo) Update(ctx context.Context, id string, v *model.Vehicle) error {
	return nil
}

func (m *mockVehicleRepo) MarkReserved(ctx context.Context, id, bookingID, bookedByName string) error {
	if m.markReservedFn != nil {
		if err := m.markReservedFn(ctx, id, bookingID, bookedByName); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.reserved = append(m.reserved, id)
	m.mu.Unlock()
	return nil
}

func (m *mockVehicleRepo) Release(ctx context.Context, id string) error {
	if m.releaseFn != nil {
		if err := m.releaseFn(ctx, id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.released = append(m.released, id)
	m.mu.Unlock()
	return nil
}

func (m *mockVehicleRepo) Delete(ctx context.Context, id string) error { return nil }

type mockGateway struct {
	createOrderFn func(ctx context.Context, in payment.CreateOrderInput) (*payment.Order, error)
	fetchOrderFn  func(ctx context.Context, orderID string) (*payment.Order, error)
	refundFn      func(ctx context.Context, paymentID string, amount float64, notes map[string]string) (*payment.Refund, error)

	mu          sync.Mutex
	refundCalls int
}

var _ payment.Gateway = (*mockGateway)(nil)

func (m *mockGateway) CreateOrder(ctx context.Context, in payment.CreateOrderInput) (*payment.Order, error) {
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, in)
	}
	return &payment.Order{
		ID:       "order_test_1",
		Amount:   in.Amount,
		Currency: in.Currency,
		Receipt:  in.Receipt,
		Notes:    in.Notes,
		Status:   "created",
	}, nil
}

func (m *mockGateway) FetchOrder(ctx context.Context, orderID string) (*payment.Order, error) {
	if m.fetchOrderFn != nil {
		return m.fetchOrderFn(ctx, orderID)
	}
	return nil, payment.ErrOrderNotFound
}

func (m *mockGateway) Refund(ctx context.Context, paymentID string, amount float64, notes map[string]string) (*payment.Refund, error) {
	m.mu.Lock()
	m.refundCalls++
	m.mu.Unlock()
	if m.refundFn != nil {
		return m.refundFn(ctx, paymentID, amount, notes)
	}
	return &payment.Refund{
		ID:        "rfnd_test_1",
		PaymentID: paymentID,
		Amount:    amount,
		Status:    "processed",
	}, nil
}

type mockDispatcher struct {
	sendFn func(ctx context.Context, n model.Notification) error

	mu   sync.Mutex
	sent []model.Notification
}

func (m *mockDispatcher) Send(ctx context.Context, n model.Notification) error {
	if m.sendFn != nil {
		if err := m.sendFn(ctx, n); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
	return nil
}

type testEnv struct {
	svc      *bookingService
	repo     *mockReservationRepo
	locks    *mockLockRepo
	vehicles *mockVehicleRepo
	gateway  *mockGateway
	notifier *mockDispatcher
	cfg      *config.Config
}

func newTestEnv() *testEnv {
	cfg := &config.Config{
		PaymentProvider:   "razorpay",
		PaymentKeySecret:  testSecret,
		Currency:          "INR",
		OpsEmail:          "ops@example.com",
		RefundWindow:      24 * time.Hour,
		RefundTimeout:     5 * time.Second,
		BookingCodePrefix: "FLB",
		SlotLockTTL:       10 * time.Second,
		Log: logger.New(logger.Config{
			Level:   logger.LevelError,
			Format:  logger.FormatText,
			Service: "bookings-test",
		}),
	}

	env := &testEnv{
		repo:     &mockReservationRepo{},
		locks:    &mockLockRepo{},
		vehicles: &mockVehicleRepo{},
		gateway:  &mockGateway{},
		notifier: &mockDispatcher{},
		cfg:      cfg,
	}

	env.svc = NewBookingService(
		env.repo,
		env.locks,
		env.vehicles,
		validator.NewReservationValidator(cfg.Log),
		env.gateway,
		env.notifier,
		cfg,
	).(*bookingService)

	return env
}
