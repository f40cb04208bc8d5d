package services

import (
	"context"

	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/ports"
)

// CapacityQuery answers seat accounting questions from the two ledgers. Its
// answers are only as fresh as the read consistency in ctx allows, so a
// positive availability is an admission hint and never a guarantee.
type CapacityQuery struct {
	trips        ports.TripRegistry
	reservations ports.ReservationLedger
	orders       ports.OrderLedger
}

func NewCapacityQuery(trips ports.TripRegistry, reservations ports.ReservationLedger, orders ports.OrderLedger) *CapacityQuery {
	return &CapacityQuery{
		trips:        trips,
		reservations: reservations,
		orders:       orders,
	}
}

func (q *CapacityQuery) CommittedSeats(ctx context.Context, trip domain.TripKey) (int, error) {
	return q.orders.SumByTrip(ctx, trip)
}

func (q *CapacityQuery) CommittedSeatsByCar(ctx context.Context, car domain.CarKey) (int, error) {
	return q.orders.SumByCar(ctx, car)
}

func (q *CapacityQuery) HeldSeats(ctx context.Context, trip domain.TripKey) (int, error) {
	return q.reservations.SumByTrip(ctx, trip)
}

func (q *CapacityQuery) HeldSeatsByCar(ctx context.Context, car domain.CarKey) (int, error) {
	return q.reservations.SumByCar(ctx, car)
}

// UsedSeatsByCar is committed plus held for one car.
func (q *CapacityQuery) UsedSeatsByCar(ctx context.Context, car domain.CarKey) (committed, held int, err error) {
	committed, err = q.CommittedSeatsByCar(ctx, car)
	if err != nil {
		return 0, 0, err
	}
	held, err = q.HeldSeatsByCar(ctx, car)
	if err != nil {
		return 0, 0, err
	}
	return committed, held, nil
}

// AvailableInCar is SeatsPerCar minus committed and held seats. The result
// goes negative while a car is overbooked and is deliberately not clamped.
func (q *CapacityQuery) AvailableInCar(ctx context.Context, trip domain.Trip, car int) (int, error) {
	if !trip.HasCar(car) {
		return 0, domain.ErrInvalidCar
	}
	committed, held, err := q.UsedSeatsByCar(ctx, trip.Key().Car(car))
	if err != nil {
		return 0, err
	}
	return trip.SeatsPerCar - committed - held, nil
}

// AvailableInTrip is the trip-wide counterpart of AvailableInCar, also unclamped.
func (q *CapacityQuery) AvailableInTrip(ctx context.Context, trip domain.Trip) (int, error) {
	committed, err := q.CommittedSeats(ctx, trip.Key())
	if err != nil {
		return 0, err
	}
	held, err := q.HeldSeats(ctx, trip.Key())
	if err != nil {
		return 0, err
	}
	return trip.Capacity() - committed - held, nil
}

// Trip resolves a key through the registry.
func (q *CapacityQuery) Trip(ctx context.Context, key domain.TripKey) (domain.Trip, error) {
	return q.trips.GetTrip(ctx, key)
}
