package domain

import (
	"fmt"
	"time"
)

// TripKey identifies one scheduled run of a train.
type TripKey struct {
	TrainID   int
	Departure time.Time
}

func (k TripKey) String() string {
	return fmt.Sprintf("%d@%s", k.TrainID, k.Departure.UTC().Format(time.RFC3339))
}

// Car addresses a single car of a trip.
func (k TripKey) Car(car int) CarKey {
	return CarKey{TripKey: k, Car: car}
}

// CarKey is the partition every ledger row lives under.
type CarKey struct {
	TripKey
	Car int
}

func (k CarKey) String() string {
	return fmt.Sprintf("%s/car%d", k.TripKey, k.Car)
}

// Trip is the immutable capacity descriptor owned by the trip registry.
type Trip struct {
	TrainID     int
	Departure   time.Time
	Cars        int
	SeatsPerCar int
}

func (t Trip) Key() TripKey {
	return TripKey{TrainID: t.TrainID, Departure: t.Departure}
}

// Capacity is the total seat count over all cars.
func (t Trip) Capacity() int {
	return t.Cars * t.SeatsPerCar
}

// HasCar reports whether car is within 1..Cars.
func (t Trip) HasCar(car int) bool {
	return car >= 1 && car <= t.Cars
}
