package model

import "time"

type NotificationKind string

const (
	NotifyBookingConfirmed NotificationKind = "booking_confirmed"
	NotifyBookingCancelled NotificationKind = "booking_cancelled"
)

// Notification is the payload handed to the dispatcher after a booking
// transaction commits. Delivery is best-effort; a failed send never
// affects the committed reservation.
type Notification struct {
	To          string            `json:"to"`
	Kind        NotificationKind  `json:"kind"`
	BookingCode string            `json:"booking_code"`
	Data        map[string]string `json:"data,omitempty"`
	SentAt      time.Time         `json:"sent_at"`
}
