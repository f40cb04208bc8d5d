package services_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/ports/mocks"
	"github.com/srgjo27/railseat/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveCar_ShrinksLowestIDFirst(t *testing.T) {
	f := newFixture(t, 3, 1, 50)
	a := f.hold(t, 1, 30)
	b := f.hold(t, 1, 30)
	low, high := a, b
	if bytes.Compare(b.ID[:], a.ID[:]) < 0 {
		low, high = b, a
	}

	res, err := f.resolver.ResolveCar(context.Background(), f.car(1))
	require.NoError(t, err)

	assert.Equal(t, 60, res.Held)
	assert.Equal(t, 10, res.Excess())
	assert.Equal(t, []services.Shrink{{ID: low.ID, From: 30, To: 20}}, res.Shrunk)
	assert.Empty(t, res.Cancelled)

	row, err := f.store.Reservations().Get(quorumRead, f.car(1), high.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, row.Seats)

	_, held := f.used(t, 1)
	assert.Equal(t, 50, held)
}

func TestResolveCar_IsIdempotent(t *testing.T) {
	f := newFixture(t, 3, 1, 50)
	f.hold(t, 1, 30)
	f.hold(t, 1, 30)

	first, err := f.resolver.ResolveCar(context.Background(), f.car(1))
	require.NoError(t, err)
	require.True(t, first.Changed())

	second, err := f.resolver.ResolveCar(context.Background(), f.car(1))
	require.NoError(t, err)
	assert.False(t, second.Changed())
	assert.Zero(t, second.Excess())
}

func TestResolveCar_CancelsWholeRowsBeforeShrinking(t *testing.T) {
	f := newFixture(t, 1, 1, 10)
	f.order(t, 1, 6)
	f.hold(t, 1, 2)
	f.hold(t, 1, 2)
	f.hold(t, 1, 3)
	listed, err := f.store.Reservations().ListByCar(quorumRead, f.car(1))
	require.NoError(t, err)
	require.Len(t, listed, 3)

	res, err := f.resolver.ResolveCar(context.Background(), f.car(1))
	require.NoError(t, err)

	assert.Equal(t, 6, res.Committed)
	assert.Equal(t, 7, res.Held)
	assert.Equal(t, 3, res.Excess())

	assert.Equal(t, []uuid.UUID{listed[0].ID}, res.Cancelled)
	if listed[0].Seats == 2 {
		assert.Equal(t, []services.Shrink{{ID: listed[1].ID, From: listed[1].Seats, To: listed[1].Seats - 1}}, res.Shrunk)
	} else {
		assert.Empty(t, res.Shrunk)
	}

	committed, held := f.used(t, 1)
	assert.Equal(t, 6, committed)
	assert.Equal(t, 4, held)
}

func TestResolveCar_NeverTouchesOrders(t *testing.T) {
	f := newFixture(t, 1, 1, 10)
	f.order(t, 1, 12)
	f.hold(t, 1, 3)

	res, err := f.resolver.ResolveCar(context.Background(), f.car(1))
	require.NoError(t, err)

	assert.Len(t, res.Cancelled, 1)
	committed, held := f.used(t, 1)
	assert.Equal(t, 12, committed)
	assert.Zero(t, held)
}

func TestResolveCar_ReclaimsExpiredHolds(t *testing.T) {
	f := newFixture(t, 3, 1, 10)
	stale := f.hold(t, 1, 4)
	f.clock.Advance(2 * time.Hour)
	fresh := f.hold(t, 1, 3)

	res, err := f.resolver.ResolveCar(context.Background(), f.car(1))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{stale.ID}, res.Reclaimed)
	assert.Equal(t, 3, res.Held)
	assert.Empty(t, res.Cancelled)

	row, err := f.store.Reservations().Get(quorumRead, f.car(1), fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 3, row.Seats)
}

func TestResolveCar_TrimsWritesSpreadAcrossReplicas(t *testing.T) {
	f := newFixture(t, 3, 1, 10)
	one := domain.WithConsistency(context.Background(), domain.ConsistencyOne)
	for i := 0; i < 2; i++ {
		require.NoError(t, f.store.Reservations().Place(one, domain.Reservation{
			ID:        uuid.New(),
			TrainID:   f.trip.TrainID,
			Departure: f.trip.Departure,
			Car:       1,
			HolderID:  uuid.New(),
			Seats:     6,
			ExpiresAt: f.clock.Now().Add(time.Hour),
		}))
	}
	require.Equal(t, 4, f.store.Pending())

	resolver := services.NewResolver(f.query, f.store.Reservations(), quietLog,
		services.WithResolverClock(f.clock),
		services.WithResolverConsistency(domain.ConsistencyAll, domain.ConsistencyAll))

	res, err := resolver.ResolveCar(context.Background(), f.car(1))
	require.NoError(t, err)
	assert.Equal(t, 12, res.Held)
	require.Len(t, res.Shrunk, 1)
	assert.Equal(t, 4, res.Shrunk[0].To)

	f.store.Sync()
	_, held := f.used(t, 1)
	assert.Equal(t, 10, held)
}

func TestResolveCar_FailureIsRetryable(t *testing.T) {
	f := newFixture(t, 1, 1, 10)
	f.hold(t, 1, 4)
	f.hold(t, 1, 4)
	f.hold(t, 1, 4)

	f.store.SetFault(func(op string) error {
		if op == "update reservation" {
			return errors.New("write timeout")
		}
		return nil
	})
	_, err := f.resolver.ResolveCar(context.Background(), f.car(1))
	f.store.SetFault(nil)

	assert.ErrorIs(t, err, domain.ErrConflictResolution)
	assert.ErrorIs(t, err, domain.ErrStorage)

	_, err = f.resolver.ResolveCar(context.Background(), f.car(1))
	require.NoError(t, err)

	committed, held := f.used(t, 1)
	assert.LessOrEqual(t, committed+held, 10)
	assert.Equal(t, 10, held)
}

func TestResolveCar_InvalidCar(t *testing.T) {
	f := newFixture(t, 1, 2, 10)

	_, err := f.resolver.ResolveCar(context.Background(), f.car(3))
	assert.ErrorIs(t, err, domain.ErrInvalidCar)
}

func TestResolveTrip_UnknownTrip(t *testing.T) {
	f := newFixture(t, 1, 2, 10)

	_, err := f.resolver.ResolveTrip(context.Background(), domain.TripKey{TrainID: 9, Departure: departure})
	assert.ErrorIs(t, err, domain.ErrTripNotFound)
}

func TestResolveTrip_AllCarsAndCacheInvalidation(t *testing.T) {
	f := newFixture(t, 3, 3, 10)
	f.hold(t, 1, 8)
	f.hold(t, 1, 8)
	f.hold(t, 3, 11)

	mockCache := mocks.NewAvailabilityCache(t)
	mockCache.On("Invalidate", mock.Anything, f.trip.Key()).Return(nil).Twice()
	resolver := services.NewResolver(f.query, f.store.Reservations(), quietLog,
		services.WithResolverClock(f.clock), services.WithResolverCache(mockCache))

	results, err := resolver.ResolveTrip(context.Background(), f.trip.Key())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Changed())
	assert.False(t, results[1].Changed())
	assert.True(t, results[2].Changed())
	for car := 1; car <= 3; car++ {
		committed, held := f.used(t, car)
		assert.LessOrEqual(t, committed+held, 10, "car %d", car)
	}
}

func TestResolveTrip_JoinsCarErrors(t *testing.T) {
	f := newFixture(t, 1, 2, 10)
	f.hold(t, 1, 12)
	f.hold(t, 2, 12)

	f.store.SetFault(func(op string) error {
		if op == "update reservation" {
			return errors.New("unavailable")
		}
		return nil
	})
	results, err := f.resolver.ResolveTrip(context.Background(), f.trip.Key())
	f.store.SetFault(nil)

	assert.Empty(t, results)
	assert.ErrorIs(t, err, domain.ErrConflictResolution)
	assert.Contains(t, err.Error(), f.car(1).String())
	assert.Contains(t, err.Error(), f.car(2).String())
}
