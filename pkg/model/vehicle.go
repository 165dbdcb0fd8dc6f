package model

import "time"

// VehicleAvailability is the single canonical availability state.
// A vehicle takes new reservations only while Available.
type VehicleAvailability string

const (
	VehicleAvailable   VehicleAvailability = "available"
	VehicleReserved    VehicleAvailability = "reserved"
	VehicleMaintenance VehicleAvailability = "maintenance"
)

type Vehicle struct {
	ID             string              `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name           string              `json:"name" bson:"name" validate:"required,min=2,max=100"`
	RegistrationNo string              `json:"registration_no" bson:"registration_no" validate:"required,min=4,max=20"`
	RatePerKM      float64             `json:"rate_per_km" bson:"rate_per_km" validate:"omitempty,gte=0"`
	RatePerHour    float64             `json:"rate_per_hour" bson:"rate_per_hour" validate:"omitempty,gte=0"`
	Availability   VehicleAvailability `json:"availability" bson:"availability" validate:"required,oneof=available reserved maintenance"`
	BookingID      string              `json:"booking_id,omitempty" bson:"booking_id,omitempty" validate:"omitempty,mongodb"`
	BookedByName   string              `json:"booked_by_name,omitempty" bson:"booked_by_name,omitempty" validate:"omitempty,max=100"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type VehicleUpdate struct {
	Name           string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	RegistrationNo string   `json:"registration_no,omitempty" validate:"omitempty,min=4,max=20"`
	RatePerKM      *float64 `json:"rate_per_km,omitempty" validate:"omitempty,gte=0"`
	RatePerHour    *float64 `json:"rate_per_hour,omitempty" validate:"omitempty,gte=0"`
	Availability   string   `json:"availability,omitempty" validate:"omitempty,oneof=available maintenance"`
}
