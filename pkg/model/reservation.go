package model

import "time"

type BookingType string

const (
	BookingImmediate BookingType = "immediate"
	BookingScheduled BookingType = "scheduled"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// reservationTransitions is the explicit status transition table.
// A reservation is confirmed at most once; cancelled and completed
// are terminal.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationCancelled, ReservationCompleted},
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentNoRefund PaymentStatus = "no_refund"
	// PaymentRefundUnknown marks a refund whose provider call timed out.
	// The reservation stays un-cancelled until reconciled.
	PaymentRefundUnknown PaymentStatus = "refund_unknown"
)

// Payment is the provider-side sub-record embedded in a reservation.
// OrderID is globally unique and serves as the second idempotency key
// next to the reservation's BookingCode.
type Payment struct {
	Provider      string        `json:"provider" bson:"provider" validate:"required,oneof=razorpay stripe"`
	OrderID       string        `json:"order_id" bson:"order_id" validate:"required"`
	PaymentID     string        `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	Amount        float64       `json:"amount" bson:"amount" validate:"required,gt=0"`
	Currency      string        `json:"currency" bson:"currency" validate:"required,iso4217"`
	Status        PaymentStatus `json:"status" bson:"status" validate:"required,oneof=pending paid failed refunded no_refund refund_unknown"`
	RefundID      string        `json:"refund_id,omitempty" bson:"refund_id,omitempty"`
	IsRefunded    bool          `json:"is_refunded" bson:"is_refunded"`
	FailureReason string        `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
}

type Reservation struct {
	ID          string            `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingCode string            `json:"booking_code" bson:"booking_code" validate:"required"`
	VehicleID   string            `json:"vehicle_id" bson:"vehicle_id" validate:"required,mongodb"`
	UserID      string            `json:"user_id" bson:"user_id" validate:"required"`
	Origin      string            `json:"origin" bson:"origin" validate:"required,min=2,max=100"`
	Destination string            `json:"destination" bson:"destination" validate:"required,min=2,max=100"`
	RoundTrip   bool              `json:"round_trip" bson:"round_trip"`
	BookingType BookingType       `json:"booking_type" bson:"booking_type" validate:"required,oneof=immediate scheduled"`
	StartTime   time.Time         `json:"start_time" bson:"start_time" validate:"required"`
	EndTime     *time.Time        `json:"end_time,omitempty" bson:"end_time,omitempty"`
	TotalPrice  float64           `json:"total_price" bson:"total_price" validate:"required,gt=0"`
	Status      ReservationStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`
	Payment     Payment           `json:"payment" bson:"payment"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Active reports whether the reservation still claims its vehicle for
// conflict-window purposes.
func (r *Reservation) Active() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}

// Overlaps applies the closed-interval overlap test. Touching endpoints
// count as a conflict. A nil end means the reservation is open-ended.
func Overlaps(start1 time.Time, end1 *time.Time, start2 time.Time, end2 *time.Time) bool {
	if end1 == nil && end2 == nil {
		return true
	}
	if end1 == nil {
		return !end2.Before(start1)
	}
	if end2 == nil {
		return !end1.Before(start2)
	}
	return !start1.After(*end2) && !end1.Before(start2)
}
