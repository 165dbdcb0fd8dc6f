package model

// Quote is a per-vehicle price offer for a trip. Quotes are unauthenticated
// and carry no reservation semantics.
type Quote struct {
	VehicleID       string  `json:"vehicle_id"`
	VehicleName     string  `json:"vehicle_name"`
	RatePerKM       float64 `json:"rate_per_km"`
	DistanceKM      float64 `json:"distance_km"`
	DurationSeconds int64   `json:"duration_seconds"`
	Price           float64 `json:"price"`
}
