package model

import "time"

// BookingLock is an advisory lock serializing the conflict-check-then-insert
// sequence for one vehicle slot. The unique _id makes acquisition atomic;
// ExpiresAt backs a TTL index so crashed holders cannot wedge a slot.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
