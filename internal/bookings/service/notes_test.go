package service

import (
	"testing"
	"time"

	"fleetbook/pkg/model"
)

func TestOrderNotesRoundTrip(t *testing.T) {
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)

	original := &bookingParams{
		BookingCode: "FLB-ROUND1-260910090000",
		VehicleID:   testVehicleID,
		UserID:      testUserID,
		UserName:    "Asha",
		UserEmail:   testUserEmail,
		Origin:      "Indiranagar",
		Destination: "Whitefield",
		RoundTrip:   true,
		BookingType: model.BookingScheduled,
		StartTime:   start,
		EndTime:     &end,
		Amount:      2350.75,
		Currency:    "INR",
	}

	restored, err := parseOrderNotes(original.toNotes())
	if err != nil {
		t.Fatalf("parseOrderNotes() failed: %v", err)
	}

	if restored.BookingCode != original.BookingCode ||
		restored.VehicleID != original.VehicleID ||
		restored.UserID != original.UserID ||
		restored.Origin != original.Origin ||
		restored.Destination != original.Destination ||
		restored.Currency != original.Currency {
		t.Errorf("string fields lost in round trip: %+v", restored)
	}
	if !restored.RoundTrip {
		t.Error("round_trip flag lost")
	}
	if restored.Amount != original.Amount {
		t.Errorf("amount lost: %v", restored.Amount)
	}
	if !restored.StartTime.Equal(start) {
		t.Errorf("start time lost: %v", restored.StartTime)
	}
	if restored.EndTime == nil || !restored.EndTime.Equal(end) {
		t.Errorf("end time lost: %v", restored.EndTime)
	}
}

func TestParseOrderNotesRejectsCorruption(t *testing.T) {
	base := func() map[string]string {
		start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
		end := start.Add(6 * time.Hour)
		return (&bookingParams{
			BookingCode: "FLB-BAD001-260910090000",
			VehicleID:   testVehicleID,
			UserID:      testUserID,
			Origin:      "Indiranagar",
			Destination: "Whitefield",
			BookingType: model.BookingScheduled,
			StartTime:   start,
			EndTime:     &end,
			Amount:      1500,
			Currency:    "INR",
		}).toNotes()
	}

	cases := []struct {
		name   string
		mutate func(notes map[string]string)
	}{
		{"missing vehicle", func(n map[string]string) { delete(n, noteVehicleID) }},
		{"missing user", func(n map[string]string) { delete(n, noteUserID) }},
		{"missing booking code", func(n map[string]string) { delete(n, noteBookingCode) }},
		{"unknown booking type", func(n map[string]string) { n[noteBookingType] = "weekly" }},
		{"garbled start time", func(n map[string]string) { n[noteStartTime] = "soon" }},
		{"garbled end time", func(n map[string]string) { n[noteEndTime] = "later" }},
		{"scheduled without end", func(n map[string]string) { delete(n, noteEndTime) }},
		{"zero amount", func(n map[string]string) { n[noteAmount] = "0" }},
		{"non-numeric amount", func(n map[string]string) { n[noteAmount] = "lots" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			notes := base()
			tc.mutate(notes)
			if _, err := parseOrderNotes(notes); err == nil {
				t.Fatal("expected corrupt notes to be rejected")
			}
		})
	}
}
