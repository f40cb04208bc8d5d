package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/ports"
	"github.com/srgjo27/railseat/internal/platform/clock"
)

type Shrink struct {
	ID   uuid.UUID
	From int
	To   int
}

// Resolution reports what one pass over a car found and changed.
type Resolution struct {
	Car       domain.CarKey
	Capacity  int
	Committed int
	Held      int
	Reclaimed []uuid.UUID
	Cancelled []uuid.UUID
	Shrunk    []Shrink
}

func (r Resolution) Changed() bool {
	return len(r.Reclaimed) > 0 || len(r.Cancelled) > 0 || len(r.Shrunk) > 0
}

// Excess is how far the car was over capacity before trimming.
func (r Resolution) Excess() int {
	return max(0, r.Committed+r.Held-r.Capacity)
}

// Resolver is the compensating pass that restores committed+held <= capacity
// per car by trimming holds. Orders are never touched. Every step is
// idempotent given the same data, so a failed pass is simply rerun.
type Resolver struct {
	query        *CapacityQuery
	reservations ports.ReservationLedger
	cache        ports.AvailabilityCache
	clock        clock.Clock
	log          *log.Helper

	readLevel  domain.Consistency
	writeLevel domain.Consistency
	opTimeout  time.Duration
}

type ResolverOption func(*Resolver)

func WithResolverConsistency(read, write domain.Consistency) ResolverOption {
	return func(r *Resolver) {
		r.readLevel = read
		r.writeLevel = write
	}
}

func WithResolverClock(c clock.Clock) ResolverOption {
	return func(r *Resolver) { r.clock = c }
}

func WithResolverCache(c ports.AvailabilityCache) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

func WithResolverOpTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.opTimeout = d
		}
	}
}

func NewResolver(query *CapacityQuery, reservations ports.ReservationLedger, logger log.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		query:        query,
		reservations: reservations,
		clock:        clock.NewSystem(),
		log:          log.NewHelper(log.With(logger, "module", "services/resolver")),
		readLevel:    domain.ConsistencyQuorum,
		writeLevel:   domain.ConsistencyQuorum,
		opTimeout:    defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) call(ctx context.Context, level domain.Consistency, op string, fn func(context.Context) error) error {
	if r.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opTimeout)
		defer cancel()
	}
	return storageErr(op, fn(domain.WithConsistency(ctx, level)))
}

// ResolveTrip resolves every car of the trip. A failing car does not stop the
// others; their errors are joined.
func (r *Resolver) ResolveTrip(ctx context.Context, key domain.TripKey) ([]Resolution, error) {
	trip, err := r.trip(ctx, key)
	if err != nil {
		return nil, err
	}

	var (
		out  []Resolution
		errs []error
	)
	for car := 1; car <= trip.Cars; car++ {
		res, err := r.resolve(ctx, trip, car)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, res)
	}
	return out, errors.Join(errs...)
}

func (r *Resolver) ResolveCar(ctx context.Context, key domain.CarKey) (Resolution, error) {
	trip, err := r.trip(ctx, key.TripKey)
	if err != nil {
		return Resolution{}, err
	}
	if !trip.HasCar(key.Car) {
		return Resolution{}, domain.ErrInvalidCar
	}
	return r.resolve(ctx, trip, key.Car)
}

func (r *Resolver) trip(ctx context.Context, key domain.TripKey) (domain.Trip, error) {
	var trip domain.Trip
	err := r.call(ctx, r.readLevel, "get trip", func(ctx context.Context) error {
		var err error
		trip, err = r.query.Trip(ctx, key)
		return err
	})
	if err != nil && !errors.Is(err, domain.ErrTripNotFound) {
		err = fmt.Errorf("%w: %w", domain.ErrConflictResolution, err)
	}
	return trip, err
}

func (r *Resolver) resolve(ctx context.Context, trip domain.Trip, car int) (Resolution, error) {
	key := trip.Key().Car(car)
	res := Resolution{Car: key, Capacity: trip.SeatsPerCar}

	res, err := r.trim(ctx, res)
	if res.Changed() {
		r.invalidate(ctx, trip.Key())
	}
	if err != nil {
		r.log.Errorw("msg", "conflict resolution failed, will retry", "car", key.String(), "error", err)
		return res, fmt.Errorf("%w: %s: %w", domain.ErrConflictResolution, key, err)
	}
	if res.Changed() {
		r.log.Infow("msg", "car trimmed", "car", key.String(), "excess", res.Excess(),
			"reclaimed", len(res.Reclaimed), "cancelled", len(res.Cancelled), "shrunk", len(res.Shrunk))
	}
	return res, nil
}

func (r *Resolver) trim(ctx context.Context, res Resolution) (Resolution, error) {
	key := res.Car

	var rows []domain.Reservation
	err := r.call(ctx, r.readLevel, "list holds", func(ctx context.Context) error {
		var err error
		rows, err = r.reservations.ListByCar(ctx, key)
		return err
	})
	if err != nil {
		return res, err
	}

	now := r.clock.Now()
	live := rows[:0]
	for _, row := range rows {
		if !row.Expired(now) {
			live = append(live, row)
			continue
		}
		if err := r.cancel(ctx, key, row.ID); err != nil {
			return res, err
		}
		res.Reclaimed = append(res.Reclaimed, row.ID)
	}

	err = r.call(ctx, r.readLevel, "sum orders", func(ctx context.Context) error {
		var err error
		res.Committed, err = r.query.CommittedSeatsByCar(ctx, key)
		return err
	})
	if err != nil {
		return res, err
	}
	for _, row := range live {
		res.Held += row.Seats
	}

	excess := res.Committed + res.Held - res.Capacity
	if excess <= 0 {
		return res, nil
	}

	// live keeps ListByCar's ascending id order, which pins who absorbs the cut.
	for _, row := range live {
		if excess == 0 {
			break
		}
		if row.Seats <= excess {
			if err := r.cancel(ctx, key, row.ID); err != nil {
				return res, err
			}
			res.Cancelled = append(res.Cancelled, row.ID)
			excess -= row.Seats
			continue
		}
		to := row.Seats - excess
		err := r.call(ctx, r.writeLevel, "shrink hold", func(ctx context.Context) error {
			return r.reservations.Resize(ctx, key, row.ID, to)
		})
		if err != nil {
			return res, err
		}
		res.Shrunk = append(res.Shrunk, Shrink{ID: row.ID, From: row.Seats, To: to})
		excess = 0
	}
	if excess > 0 {
		r.log.Warnw("msg", "orders alone exceed car capacity", "car", key.String(),
			"committed", res.Committed, "capacity", res.Capacity)
	}
	return res, nil
}

func (r *Resolver) cancel(ctx context.Context, key domain.CarKey, id uuid.UUID) error {
	return r.call(ctx, r.writeLevel, "cancel hold", func(ctx context.Context) error {
		return r.reservations.Cancel(ctx, key, id)
	})
}

func (r *Resolver) invalidate(ctx context.Context, key domain.TripKey) {
	if r.cache == nil {
		return
	}
	err := r.call(ctx, domain.ConsistencyDefault, "invalidate availability", func(ctx context.Context) error {
		return r.cache.Invalidate(ctx, key)
	})
	if err != nil {
		r.log.Warnw("msg", "availability cache invalidation failed", "trip", key.String(), "error", err)
	}
}
