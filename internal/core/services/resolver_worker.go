package services

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/ports"
)

const dirtyQueueSize = 256

// ResolverWorker runs the resolver on trips that just saw purchase activity
// and, on every tick, on all known trips.
type ResolverWorker struct {
	resolver *Resolver
	trips    ports.TripRegistry
	interval time.Duration
	dirty    chan domain.TripKey
	log      *log.Helper
}

func NewResolverWorker(resolver *Resolver, trips ports.TripRegistry, interval time.Duration, logger log.Logger) *ResolverWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ResolverWorker{
		resolver: resolver,
		trips:    trips,
		interval: interval,
		dirty:    make(chan domain.TripKey, dirtyQueueSize),
		log:      log.NewHelper(log.With(logger, "module", "services/resolver_worker")),
	}
}

// Notify queues a trip for resolution without blocking. When the queue is
// full the trip waits for the next periodic pass.
func (w *ResolverWorker) Notify(key domain.TripKey) {
	select {
	case w.dirty <- key:
	default:
	}
}

func (w *ResolverWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Infow("msg", "resolver worker started", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("resolver worker stopped")
			return
		case key := <-w.dirty:
			w.resolveTrip(ctx, key)
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce resolves every trip the registry knows about.
func (w *ResolverWorker) RunOnce(ctx context.Context) {
	trips, err := w.trips.ListTrips(ctx)
	if err != nil {
		w.log.Errorw("msg", "listing trips for resolution failed", "error", err)
		return
	}
	for _, trip := range trips {
		if ctx.Err() != nil {
			return
		}
		w.resolveTrip(ctx, trip.Key())
	}
}

func (w *ResolverWorker) resolveTrip(ctx context.Context, key domain.TripKey) {
	results, err := w.resolver.ResolveTrip(ctx, key)
	if err != nil {
		w.log.Errorw("msg", "trip resolution incomplete", "trip", key.String(), "error", err)
	}
	for _, res := range results {
		if res.Changed() {
			w.log.Debugw("msg", "trip resolved", "car", res.Car.String(), "excess", res.Excess())
		}
	}
}
