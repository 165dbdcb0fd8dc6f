package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrDuplicateOrder fires on the unique payment.order_id index when two
	// verify calls for the same order race past the pre-insert lookup.
	ErrDuplicateOrder = errors.New("reservation already exists for this payment order")

	ErrTimeConflict = errors.New("reservation window conflicts with an existing reservation")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
