package service

import (
	"fmt"
	"strconv"
	"time"

	"fleetbook/pkg/model"
)

// Order note keys. The payment order is the only durable record of the
// booking parameters between initiation and verification, so everything
// needed to materialize the reservation must fit in the provider's notes
// envelope.
const (
	noteBookingCode = "booking_code"
	noteVehicleID   = "vehicle_id"
	noteUserID      = "user_id"
	noteUserName    = "user_name"
	noteUserEmail   = "user_email"
	noteOrigin      = "origin"
	noteDestination = "destination"
	noteRoundTrip   = "round_trip"
	noteBookingType = "booking_type"
	noteStartTime   = "start_time"
	noteEndTime     = "end_time"
	noteAmount      = "amount"
	noteCurrency    = "currency"
)

// bookingParams is the full parameter set round-tripped through the order.
type bookingParams struct {
	BookingCode string
	VehicleID   string
	UserID      string
	UserName    string
	UserEmail   string
	Origin      string
	Destination string
	RoundTrip   bool
	BookingType model.BookingType
	StartTime   time.Time
	EndTime     *time.Time
	Amount      float64
	Currency    string
}

func (p *bookingParams) toNotes() map[string]string {
	notes := map[string]string{
		noteBookingCode: p.BookingCode,
		noteVehicleID:   p.VehicleID,
		noteUserID:      p.UserID,
		noteUserName:    p.UserName,
		noteUserEmail:   p.UserEmail,
		noteOrigin:      p.Origin,
		noteDestination: p.Destination,
		noteRoundTrip:   strconv.FormatBool(p.RoundTrip),
		noteBookingType: string(p.BookingType),
		noteStartTime:   p.StartTime.UTC().Format(time.RFC3339),
		noteAmount:      strconv.FormatFloat(p.Amount, 'f', 2, 64),
		noteCurrency:    p.Currency,
	}
	if p.EndTime != nil {
		notes[noteEndTime] = p.EndTime.UTC().Format(time.RFC3339)
	}
	return notes
}

// parseOrderNotes rebuilds the booking parameters from a fetched order.
// Any missing or malformed field means the order was not opened by this
// service or was tampered with provider-side.
func parseOrderNotes(notes map[string]string) (*bookingParams, error) {
	required := []string{
		noteBookingCode, noteVehicleID, noteUserID,
		noteOrigin, noteDestination, noteBookingType,
		noteStartTime, noteAmount, noteCurrency,
	}
	for _, key := range required {
		if notes[key] == "" {
			return nil, fmt.Errorf("order notes missing %q", key)
		}
	}

	bookingType := model.BookingType(notes[noteBookingType])
	if bookingType != model.BookingImmediate && bookingType != model.BookingScheduled {
		return nil, fmt.Errorf("order notes carry unknown booking type %q", notes[noteBookingType])
	}

	startTime, err := time.Parse(time.RFC3339, notes[noteStartTime])
	if err != nil {
		return nil, fmt.Errorf("order notes carry invalid start_time: %w", err)
	}

	var endTime *time.Time
	if raw := notes[noteEndTime]; raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("order notes carry invalid end_time: %w", err)
		}
		endTime = &t
	}
	if bookingType == model.BookingScheduled && endTime == nil {
		return nil, fmt.Errorf("order notes missing end_time for scheduled booking")
	}

	amount, err := strconv.ParseFloat(notes[noteAmount], 64)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("order notes carry invalid amount %q", notes[noteAmount])
	}

	roundTrip, _ := strconv.ParseBool(notes[noteRoundTrip])

	return &bookingParams{
		BookingCode: notes[noteBookingCode],
		VehicleID:   notes[noteVehicleID],
		UserID:      notes[noteUserID],
		UserName:    notes[noteUserName],
		UserEmail:   notes[noteUserEmail],
		Origin:      notes[noteOrigin],
		Destination: notes[noteDestination],
		RoundTrip:   roundTrip,
		BookingType: bookingType,
		StartTime:   startTime,
		EndTime:     endTime,
		Amount:      amount,
		Currency:    notes[noteCurrency],
	}, nil
}
