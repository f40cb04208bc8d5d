package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is a tentative hold on seats in one car. A purchase writes one
// row per car it touches, all sharing the same ID.
type Reservation struct {
	ID        uuid.UUID
	TrainID   int
	Departure time.Time
	Car       int
	HolderID  uuid.UUID
	Seats     int
	ExpiresAt time.Time
}

func (r Reservation) CarKey() CarKey {
	return CarKey{TripKey: TripKey{TrainID: r.TrainID, Departure: r.Departure}, Car: r.Car}
}

// Expired reports whether the hold lease has lapsed at now. A zero ExpiresAt
// never expires.
func (r Reservation) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}
