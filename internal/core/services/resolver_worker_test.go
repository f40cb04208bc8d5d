package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/services"
	"github.com/stretchr/testify/assert"
)

func TestResolverWorker_RunOnceResolvesEveryTrip(t *testing.T) {
	f := newFixture(t, 1, 1, 10)
	other := domain.Trip{TrainID: 2002, Departure: departure, Cars: 1, SeatsPerCar: 4}
	assert.NoError(t, f.store.UpsertTrip(context.Background(), other))

	f.hold(t, 1, 14)
	all := domain.WithConsistency(context.Background(), domain.ConsistencyAll)
	assert.NoError(t, f.store.Reservations().Place(all, domain.Reservation{
		ID: uuid.New(), TrainID: other.TrainID, Departure: other.Departure, Car: 1,
		HolderID: uuid.New(), Seats: 6, ExpiresAt: testNow.Add(time.Hour),
	}))

	worker := services.NewResolverWorker(f.resolver, f.store, time.Hour, quietLog)
	worker.RunOnce(context.Background())

	_, held := f.used(t, 1)
	assert.Equal(t, 10, held)
	otherHeld, err := f.query.HeldSeatsByCar(quorumRead, other.Key().Car(1))
	assert.NoError(t, err)
	assert.Equal(t, 4, otherHeld)
}

func TestResolverWorker_RunHandlesNotifications(t *testing.T) {
	f := newFixture(t, 1, 1, 10)
	f.hold(t, 1, 13)

	worker := services.NewResolverWorker(f.resolver, f.store, time.Hour, quietLog)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	worker.Notify(f.trip.Key())

	assert.Eventually(t, func() bool {
		held, err := f.query.HeldSeatsByCar(quorumRead, f.car(1))
		return err == nil && held == 10
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestResolverWorker_ListFailureIsLogged(t *testing.T) {
	f := newFixture(t, 1, 1, 10)
	f.store.SetFault(func(op string) error {
		if op == "list trips" {
			return errors.New("unavailable")
		}
		return nil
	})
	defer f.store.SetFault(nil)

	worker := services.NewResolverWorker(f.resolver, f.store, 0, quietLog)
	assert.NotPanics(t, func() { worker.RunOnce(context.Background()) })
}
