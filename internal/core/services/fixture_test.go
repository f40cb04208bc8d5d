package services_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/adapter/repository/memory"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/services"
	"github.com/srgjo27/railseat/internal/platform/clock"
	"github.com/stretchr/testify/require"
)

var (
	departure  = time.Date(2024, 12, 28, 11, 0, 0, 0, time.UTC)
	testNow    = time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)
	quietLog   = log.NewStdLogger(io.Discard)
	firstCar   = services.WithStartCar(func(int) int { return 0 })
	quorumRead = domain.WithConsistency(context.Background(), domain.ConsistencyQuorum)
)

type fixture struct {
	store    *memory.Store
	trip     domain.Trip
	clock    *clock.Manual
	query    *services.CapacityQuery
	resolver *services.Resolver
}

func newFixture(t *testing.T, replicas, cars, seatsPerCar int) *fixture {
	t.Helper()
	store := memory.New(replicas)
	trip := domain.Trip{TrainID: 1001, Departure: departure, Cars: cars, SeatsPerCar: seatsPerCar}
	require.NoError(t, store.UpsertTrip(context.Background(), trip))

	clk := clock.NewManual(testNow)
	query := services.NewCapacityQuery(store, store.Reservations(), store.Orders())
	return &fixture{
		store:    store,
		trip:     trip,
		clock:    clk,
		query:    query,
		resolver: services.NewResolver(query, store.Reservations(), quietLog, services.WithResolverClock(clk)),
	}
}

func (f *fixture) planner(opts ...services.PlannerOption) *services.Planner {
	opts = append([]services.PlannerOption{services.WithClock(f.clock)}, opts...)
	return services.NewPlanner(f.query, f.store.Reservations(), f.store.Orders(), quietLog, opts...)
}

func (f *fixture) request(seats int) services.PurchaseRequest {
	return services.PurchaseRequest{Trip: f.trip.Key(), HolderID: uuid.New(), Seats: seats}
}

func (f *fixture) car(n int) domain.CarKey {
	return f.trip.Key().Car(n)
}

func (f *fixture) hold(t *testing.T, car, seats int) domain.Reservation {
	t.Helper()
	r := domain.Reservation{
		ID:        uuid.New(),
		TrainID:   f.trip.TrainID,
		Departure: f.trip.Departure,
		Car:       car,
		HolderID:  uuid.New(),
		Seats:     seats,
		ExpiresAt: f.clock.Now().Add(time.Hour),
	}
	require.NoError(t, f.store.Reservations().Place(domain.WithConsistency(context.Background(), domain.ConsistencyAll), r))
	return r
}

func (f *fixture) order(t *testing.T, car, seats int) {
	t.Helper()
	o := domain.Order{
		ID:        uuid.New(),
		TrainID:   f.trip.TrainID,
		Departure: f.trip.Departure,
		Car:       car,
		HolderID:  uuid.New(),
		Seats:     seats,
		CreatedAt: f.clock.Now(),
	}
	require.NoError(t, f.store.Orders().Insert(domain.WithConsistency(context.Background(), domain.ConsistencyAll), o))
}

func (f *fixture) used(t *testing.T, car int) (committed, held int) {
	t.Helper()
	committed, held, err := f.query.UsedSeatsByCar(quorumRead, f.car(car))
	require.NoError(t, err)
	return committed, held
}

func (f *fixture) heldInTrip(t *testing.T) int {
	t.Helper()
	held, err := f.query.HeldSeats(quorumRead, f.trip.Key())
	require.NoError(t, err)
	return held
}
