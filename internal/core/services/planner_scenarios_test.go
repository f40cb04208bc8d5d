package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	resp *domain.Purchase
	err  error
}

func purchaseConcurrently(planner *services.Planner, requests []services.PurchaseRequest) []outcome {
	out := make([]outcome, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req services.PurchaseRequest) {
			defer wg.Done()
			resp, err := planner.Purchase(context.Background(), req)
			out[i] = outcome{resp: resp, err: err}
		}(i, req)
	}
	wg.Wait()
	return out
}

func purchaseSequentially(planner *services.Planner, requests []services.PurchaseRequest) []outcome {
	out := make([]outcome, len(requests))
	for i, req := range requests {
		resp, err := planner.Purchase(context.Background(), req)
		out[i] = outcome{resp: resp, err: err}
	}
	return out
}

func assertWithinCapacity(t *testing.T, f *fixture) {
	t.Helper()
	_, err := f.resolver.ResolveTrip(context.Background(), f.trip.Key())
	require.NoError(t, err)
	for car := 1; car <= f.trip.Cars; car++ {
		committed, held := f.used(t, car)
		assert.LessOrEqual(t, committed+held, f.trip.SeatsPerCar, "car %d", car)
	}
}

func TestScenario_TwoBuyersOneCar(t *testing.T) {
	f := newFixture(t, 3, 1, 50)

	results := purchaseConcurrently(f.planner(), []services.PurchaseRequest{f.request(30), f.request(30)})

	succeeded := 0
	for _, r := range results {
		if r.err == nil {
			succeeded++
			assert.Equal(t, 30, r.resp.SeatsConfirmed())
			continue
		}
		assert.True(t, errors.Is(r.err, domain.ErrCapacityExceeded) || errors.Is(r.err, domain.ErrAllocationExhausted), r.err)
	}
	assert.LessOrEqual(t, succeeded, 1)
	assert.Zero(t, f.heldInTrip(t))
	assertWithinCapacity(t, f)
}

func TestScenario_ManySingleSeatBuyers(t *testing.T) {
	f := newFixture(t, 3, 1, 50)
	requests := make([]services.PurchaseRequest, 100)
	for i := range requests {
		requests[i] = f.request(1)
	}

	results := purchaseConcurrently(f.planner(), requests)

	succeeded := 0
	for _, r := range results {
		if r.err == nil {
			succeeded++
			continue
		}
		var perr *domain.PurchaseError
		require.ErrorAs(t, r.err, &perr)
		assert.Empty(t, perr.Confirmed)
		assert.True(t, errors.Is(r.err, domain.ErrCapacityExceeded) || errors.Is(r.err, domain.ErrAllocationExhausted), r.err)
	}
	assert.LessOrEqual(t, succeeded, 50)

	committed, err := f.query.CommittedSeats(quorumRead, f.trip.Key())
	require.NoError(t, err)
	assert.Equal(t, succeeded, committed)
	assert.Zero(t, f.heldInTrip(t))
	assertWithinCapacity(t, f)
}

func TestScenario_SequentialBuyersFillTrip(t *testing.T) {
	f := newFixture(t, 3, 4, 5)
	planner := f.planner()

	total := 0
	for total < f.trip.Capacity() {
		resp, err := planner.Purchase(context.Background(), f.request(3))
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
			break
		}
		total += resp.SeatsConfirmed()
	}
	assert.Equal(t, 18, total)

	resp, err := planner.Purchase(context.Background(), f.request(2))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.SeatsConfirmed())

	_, err = planner.Purchase(context.Background(), f.request(1))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assertWithinCapacity(t, f)
}

// Below a read/write quorum overlap confirmed orders may oversell a car, and
// the resolver only trims holds, so capacity is checked only where the levels
// overlap. Residual holds must be gone at every level.
func TestScenarios_ConsistencyLevels(t *testing.T) {
	const replicas = 3
	levels := []struct {
		name        string
		read, write domain.Consistency
	}{
		{"one/one", domain.ConsistencyOne, domain.ConsistencyOne},
		{"one/quorum", domain.ConsistencyOne, domain.ConsistencyQuorum},
		{"quorum/quorum", domain.ConsistencyQuorum, domain.ConsistencyQuorum},
	}
	scenarios := []struct {
		name        string
		cars, seats int
		run         func(*services.Planner, *fixture) []outcome
	}{
		{"two buyers one car", 1, 50, func(p *services.Planner, f *fixture) []outcome {
			return purchaseConcurrently(p, []services.PurchaseRequest{f.request(30), f.request(30)})
		}},
		{"many single seat buyers", 1, 50, func(p *services.Planner, f *fixture) []outcome {
			requests := make([]services.PurchaseRequest, 100)
			for i := range requests {
				requests[i] = f.request(1)
			}
			return purchaseConcurrently(p, requests)
		}},
		{"sequential buyers", 4, 5, func(p *services.Planner, f *fixture) []outcome {
			requests := make([]services.PurchaseRequest, 10)
			for i := range requests {
				requests[i] = f.request(3)
			}
			return purchaseSequentially(p, requests)
		}},
	}

	for _, lv := range levels {
		for _, sc := range scenarios {
			t.Run(lv.name+"/"+sc.name, func(t *testing.T) {
				f := newFixture(t, replicas, sc.cars, sc.seats)
				planner := f.planner(services.WithReadConsistency(lv.read), services.WithWriteConsistency(lv.write))

				sold := 0
				for _, r := range sc.run(planner, f) {
					if r.err == nil {
						assert.Equal(t, domain.StateDone, r.resp.State)
						assert.Equal(t, r.resp.Requested, r.resp.SeatsConfirmed())
						sold += r.resp.SeatsConfirmed()
						continue
					}
					var perr *domain.PurchaseError
					require.ErrorAs(t, r.err, &perr)
					assert.Empty(t, perr.Confirmed)
					assert.True(t, errors.Is(r.err, domain.ErrCapacityExceeded) || errors.Is(r.err, domain.ErrAllocationExhausted), r.err)
				}

				f.store.Sync()
				assert.Zero(t, f.heldInTrip(t))
				committed, err := f.query.CommittedSeats(quorumRead, f.trip.Key())
				require.NoError(t, err)
				assert.Equal(t, sold, committed)

				if lv.read.Required(replicas)+lv.write.Required(replicas) > replicas {
					assertWithinCapacity(t, f)
				}
			})
		}
	}
}
