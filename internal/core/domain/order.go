package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is a confirmed booking. Once written it is the source of truth for
// sold seats and is never modified by the reservation protocol.
type Order struct {
	ID        uuid.UUID
	TrainID   int
	Departure time.Time
	Car       int
	HolderID  uuid.UUID
	Seats     int
	CreatedAt time.Time
}

func (o Order) CarKey() CarKey {
	return CarKey{TripKey: TripKey{TrainID: o.TrainID, Departure: o.Departure}, Car: o.Car}
}
