package services

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/ports"
)

// AvailabilityService serves the read-only views: per-car occupancy and a
// holder's orders. Snapshots may be cached and are for display only.
type AvailabilityService struct {
	query     *CapacityQuery
	orders    ports.OrderLedger
	cache     ports.AvailabilityCache
	readLevel domain.Consistency
	log       *log.Helper
}

func NewAvailabilityService(query *CapacityQuery, orders ports.OrderLedger, cache ports.AvailabilityCache, readLevel domain.Consistency, logger log.Logger) *AvailabilityService {
	return &AvailabilityService{
		query:     query,
		orders:    orders,
		cache:     cache,
		readLevel: readLevel,
		log:       log.NewHelper(log.With(logger, "module", "services/availability")),
	}
}

func (s *AvailabilityService) Snapshot(ctx context.Context, key domain.TripKey) (*domain.TripAvailability, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warnw("msg", "availability cache read failed", "trip", key.String(), "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	ctx = domain.WithConsistency(ctx, s.readLevel)
	trip, err := s.query.Trip(ctx, key)
	if err != nil {
		return nil, storageErr("get trip", err)
	}

	snap := &domain.TripAvailability{
		TrainID:   trip.TrainID,
		Departure: trip.Departure.UTC().Format(time.RFC3339),
		Cars:      make([]domain.CarAvailability, 0, trip.Cars),
	}
	for car := 1; car <= trip.Cars; car++ {
		committed, held, err := s.query.UsedSeatsByCar(ctx, key.Car(car))
		if err != nil {
			return nil, storageErr("car occupancy", err)
		}
		ca := domain.CarAvailability{
			Car:       car,
			Capacity:  trip.SeatsPerCar,
			Committed: committed,
			Held:      held,
			Free:      max(0, trip.SeatsPerCar-committed-held),
		}
		snap.Free += ca.Free
		snap.Cars = append(snap.Cars, ca)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, snap); err != nil {
			s.log.Warnw("msg", "availability cache write failed", "trip", key.String(), "error", err)
		}
	}
	return snap, nil
}

func (s *AvailabilityService) HolderOrders(ctx context.Context, key domain.TripKey, holder uuid.UUID) ([]domain.Order, error) {
	if holder == uuid.Nil {
		return nil, domain.ErrInvalidHolder
	}
	orders, err := s.orders.ListByHolder(domain.WithConsistency(ctx, s.readLevel), key, holder)
	if err != nil {
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}
