package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
)

// Every method is a network round trip against a replicated store and runs at
// the consistency level carried by ctx (see domain.WithConsistency).

type TripRegistry interface {
	GetTrip(ctx context.Context, key domain.TripKey) (domain.Trip, error)
	ListTrips(ctx context.Context) ([]domain.Trip, error)
}

// ReservationLedger records tentative holds. It enforces no capacity
// invariant: Place is an unconditional write.
type ReservationLedger interface {
	Place(ctx context.Context, r domain.Reservation) error
	Get(ctx context.Context, car domain.CarKey, id uuid.UUID) (*domain.Reservation, error)
	Resize(ctx context.Context, car domain.CarKey, id uuid.UUID, seats int) error
	Cancel(ctx context.Context, car domain.CarKey, id uuid.UUID) error
	// ListByCar returns the car's holds in ascending reservation id order.
	ListByCar(ctx context.Context, car domain.CarKey) ([]domain.Reservation, error)
	SumByCar(ctx context.Context, car domain.CarKey) (int, error)
	SumByTrip(ctx context.Context, trip domain.TripKey) (int, error)
}

// OrderLedger records confirmed bookings.
type OrderLedger interface {
	Insert(ctx context.Context, o domain.Order) error
	SumByCar(ctx context.Context, car domain.CarKey) (int, error)
	SumByTrip(ctx context.Context, trip domain.TripKey) (int, error)
	ListByHolder(ctx context.Context, trip domain.TripKey, holder uuid.UUID) ([]domain.Order, error)
}

// AvailabilityCache stores rendered availability snapshots for the read path.
// The purchase path never consults it.
type AvailabilityCache interface {
	Get(ctx context.Context, trip domain.TripKey) (*domain.TripAvailability, error)
	Set(ctx context.Context, trip domain.TripKey, snapshot *domain.TripAvailability) error
	Invalidate(ctx context.Context, trip domain.TripKey) error
}
