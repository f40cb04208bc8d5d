package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/ports"
	"github.com/srgjo27/railseat/internal/platform/clock"
)

const (
	defaultHoldTTL        = 10 * time.Minute
	defaultOpTimeout      = 5 * time.Second
	defaultAttemptsPerCar = 3
)

type PurchaseRequest struct {
	Trip     domain.TripKey
	HolderID uuid.UUID
	Seats    int
}

// Planner runs the hold/confirm protocol for one purchase at a time per call.
// Planners share no in-process state; concurrent purchases coordinate only
// through the store.
type Planner struct {
	query        *CapacityQuery
	reservations ports.ReservationLedger
	orders       ports.OrderLedger
	cache        ports.AvailabilityCache
	notify       func(domain.TripKey)
	clock        clock.Clock
	log          *log.Helper

	readLevel      domain.Consistency
	writeLevel     domain.Consistency
	holdTTL        time.Duration
	opTimeout      time.Duration
	attemptsPerCar int
	startCar       func(cars int) int
}

type PlannerOption func(*Planner)

func WithReadConsistency(c domain.Consistency) PlannerOption {
	return func(p *Planner) { p.readLevel = c }
}

func WithWriteConsistency(c domain.Consistency) PlannerOption {
	return func(p *Planner) { p.writeLevel = c }
}

// WithHoldTTL sets the lease written on every hold.
func WithHoldTTL(d time.Duration) PlannerOption {
	return func(p *Planner) {
		if d > 0 {
			p.holdTTL = d
		}
	}
}

// WithOpTimeout bounds every individual store call.
func WithOpTimeout(d time.Duration) PlannerOption {
	return func(p *Planner) {
		if d > 0 {
			p.opTimeout = d
		}
	}
}

// WithAttemptsPerCar sets K in the Cars*K probe budget.
func WithAttemptsPerCar(k int) PlannerOption {
	return func(p *Planner) {
		if k > 0 {
			p.attemptsPerCar = k
		}
	}
}

// WithStartCar overrides the random choice of the first car probed. fn
// returns a zero-based offset.
func WithStartCar(fn func(cars int) int) PlannerOption {
	return func(p *Planner) { p.startCar = fn }
}

func WithClock(c clock.Clock) PlannerOption {
	return func(p *Planner) { p.clock = c }
}

// WithAvailabilityCache makes the planner drop cached snapshots of trips it writes to.
func WithAvailabilityCache(c ports.AvailabilityCache) PlannerOption {
	return func(p *Planner) { p.cache = c }
}

// WithTripNotifier is called after every purchase that wrote to a trip,
// successful or not. The resolver worker uses it to find busy trips.
func WithTripNotifier(fn func(domain.TripKey)) PlannerOption {
	return func(p *Planner) { p.notify = fn }
}

func NewPlanner(query *CapacityQuery, reservations ports.ReservationLedger, orders ports.OrderLedger, logger log.Logger, opts ...PlannerOption) *Planner {
	p := &Planner{
		query:          query,
		reservations:   reservations,
		orders:         orders,
		clock:          clock.NewSystem(),
		log:            log.NewHelper(log.With(logger, "module", "services/planner")),
		readLevel:      domain.ConsistencyQuorum,
		writeLevel:     domain.ConsistencyQuorum,
		holdTTL:        defaultHoldTTL,
		opTimeout:      defaultOpTimeout,
		attemptsPerCar: defaultAttemptsPerCar,
		startCar:       func(cars int) int { return rand.IntN(cars) },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Purchase places and confirms req.Seats seats across the trip's cars. It
// either confirms every requested seat or fails with a *domain.PurchaseError
// wrapping ErrCapacityExceeded, ErrAllocationExhausted or ErrStorage, after
// removing every hold it placed.
func (p *Planner) Purchase(ctx context.Context, req PurchaseRequest) (*domain.Purchase, error) {
	run := &purchaseRun{
		p: p,
		purchase: &domain.Purchase{
			ReservationID: uuid.New(),
			Trip:          req.Trip,
			HolderID:      req.HolderID,
			Requested:     req.Seats,
			State:         domain.StateInit,
			CreatedAt:     p.clock.Now(),
		},
		remaining: req.Seats,
		held:      make(map[int]int),
		touched:   make(map[int]bool),
		full:      make(map[int]bool),
	}
	return run.execute(ctx)
}

// call runs one store round trip at level, under the per-operation timeout.
func (p *Planner) call(ctx context.Context, level domain.Consistency, op string, fn func(context.Context) error) error {
	if p.opTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opTimeout)
		defer cancel()
	}
	return storageErr(op, fn(domain.WithConsistency(ctx, level)))
}

type purchaseRun struct {
	p        *Planner
	purchase *domain.Purchase
	trip     domain.Trip

	remaining int
	budget    int
	cursor    int
	held      map[int]int
	touched   map[int]bool
	full      map[int]bool
	confirmed []domain.Allocation
}

func (r *purchaseRun) execute(ctx context.Context) (*domain.Purchase, error) {
	if err := r.init(ctx); err != nil {
		return nil, r.fail(err)
	}

	r.transition(domain.StateCheckGlobal)
	if err := r.checkGlobal(ctx); err != nil {
		return nil, r.fail(err)
	}

	r.transition(domain.StateAllocating)
	for {
		if err := r.allocate(ctx); err != nil {
			return nil, r.rollback(ctx, err)
		}
		lost, err := r.verifyHolds(ctx)
		if err != nil {
			return nil, r.rollback(ctx, err)
		}
		if lost == 0 {
			break
		}
		r.p.log.Warnw("msg", "holds trimmed before confirmation, reallocating",
			"reservation_id", r.purchase.ReservationID, "lost", lost)
		r.remaining += lost
	}

	r.transition(domain.StateConfirming)
	if err := r.confirm(ctx); err != nil {
		return nil, r.rollback(ctx, err)
	}

	r.releaseUnconfirmed(ctx)

	r.transition(domain.StateDone)
	r.purchase.Allocations = r.confirmed
	r.afterWrite(ctx)
	r.p.log.Infow("msg", "purchase confirmed",
		"reservation_id", r.purchase.ReservationID, "trip", r.trip.Key().String(),
		"seats", r.purchase.Requested, "cars", len(r.confirmed),
		"attempts", r.purchase.Attempts, "races", r.purchase.Races)
	return r.purchase, nil
}

func (r *purchaseRun) transition(s domain.PurchaseState) {
	r.p.log.Debugw("msg", "purchase state", "reservation_id", r.purchase.ReservationID,
		"from", r.purchase.State, "to", s)
	r.purchase.State = s
}

func (r *purchaseRun) init(ctx context.Context) error {
	if r.purchase.Requested <= 0 {
		return domain.ErrInvalidSeatCount
	}
	if r.purchase.HolderID == uuid.Nil {
		return domain.ErrInvalidHolder
	}
	err := r.p.call(ctx, r.p.readLevel, "get trip", func(ctx context.Context) error {
		trip, err := r.p.query.Trip(ctx, r.purchase.Trip)
		r.trip = trip
		return err
	})
	if err != nil {
		return err
	}
	r.budget = r.trip.Cars * r.p.attemptsPerCar
	if r.trip.Cars > 0 {
		r.cursor = r.p.startCar(r.trip.Cars)
	}
	return nil
}

func (r *purchaseRun) availableInTrip(ctx context.Context) (int, error) {
	var free int
	err := r.p.call(ctx, r.p.readLevel, "sum trip", func(ctx context.Context) error {
		var err error
		free, err = r.p.query.AvailableInTrip(ctx, r.trip)
		return err
	})
	return free, err
}

func (r *purchaseRun) checkGlobal(ctx context.Context) error {
	free, err := r.availableInTrip(ctx)
	if err != nil {
		return err
	}
	if free < r.remaining {
		r.p.log.Infow("msg", "capacity exceeded", "trip", r.trip.Key().String(),
			"requested", r.remaining, "free", free)
		return domain.ErrCapacityExceeded
	}
	return nil
}

func (r *purchaseRun) allocate(ctx context.Context) error {
	for r.remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.purchase.Attempts >= r.budget {
			return domain.ErrAllocationExhausted
		}
		r.purchase.Attempts++

		placed, err := r.tryCar(ctx, r.nextCar())
		if err != nil {
			return err
		}
		if placed {
			continue
		}
		// Room is shrinking under us; give up early if the trip as a whole
		// cannot cover the rest.
		if r.remaining > 0 {
			if err := r.checkGlobal(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// nextCar walks the cars round-robin, skipping cars last seen without room.
// When every car looks full the skip set is reset, since that view may be stale.
func (r *purchaseRun) nextCar() int {
	for i := 0; i < r.trip.Cars; i++ {
		car := r.cursor%r.trip.Cars + 1
		r.cursor++
		if !r.full[car] {
			return car
		}
	}
	clear(r.full)
	car := r.cursor%r.trip.Cars + 1
	r.cursor++
	return car
}

// tryCar makes one probe: read the car's room, place a chunk, then re-read
// to catch writers that passed the same check concurrently.
func (r *purchaseRun) tryCar(ctx context.Context, car int) (bool, error) {
	key := r.trip.Key().Car(car)

	var available int
	err := r.p.call(ctx, r.p.readLevel, "available in car", func(ctx context.Context) error {
		var err error
		available, err = r.p.query.AvailableInCar(ctx, r.trip, car)
		return err
	})
	if err != nil {
		return false, err
	}

	chunk := min(r.remaining, available)
	ok, err := r.placeHold(ctx, car, chunk, available)
	if err != nil || !ok {
		return false, err
	}

	var used int
	err = r.p.call(ctx, r.p.readLevel, "used in car", func(ctx context.Context) error {
		committed, held, err := r.p.query.UsedSeatsByCar(ctx, key)
		used = committed + held
		return err
	})
	if err != nil {
		return false, err
	}
	if used > r.trip.SeatsPerCar {
		r.purchase.Races++
		r.p.log.Warnw("msg", domain.ErrAllocationRace.Error(), "reservation_id", r.purchase.ReservationID,
			"car", key.String(), "used", used, "capacity", r.trip.SeatsPerCar, "chunk", chunk)
		if err := r.revertChunk(ctx, car, chunk); err != nil {
			return false, err
		}
		r.full[car] = true
		return false, nil
	}

	r.remaining -= chunk
	return true, nil
}

// placeHold writes the car's cumulative hold for this purchase. The store
// write carries no condition; the bool reports whether the local read judged
// there to be room, and nothing is written when it did not.
func (r *purchaseRun) placeHold(ctx context.Context, car, seats, available int) (bool, error) {
	if seats <= 0 || available <= 0 {
		r.full[car] = true
		return false, nil
	}
	hold := domain.Reservation{
		ID:        r.purchase.ReservationID,
		TrainID:   r.trip.TrainID,
		Departure: r.trip.Departure,
		Car:       car,
		HolderID:  r.purchase.HolderID,
		Seats:     r.held[car] + seats,
		ExpiresAt: r.p.clock.Now().Add(r.p.holdTTL),
	}
	r.touched[car] = true
	err := r.p.call(ctx, r.p.writeLevel, "place hold", func(ctx context.Context) error {
		return r.p.reservations.Place(ctx, hold)
	})
	if err != nil {
		return false, err
	}
	r.held[car] = hold.Seats
	return seats <= available, nil
}

func (r *purchaseRun) revertChunk(ctx context.Context, car, chunk int) error {
	key := r.trip.Key().Car(car)
	prev := r.held[car] - chunk
	err := r.p.call(ctx, r.p.writeLevel, "revert hold", func(ctx context.Context) error {
		if prev > 0 {
			return r.p.reservations.Resize(ctx, key, r.purchase.ReservationID, prev)
		}
		return r.p.reservations.Cancel(ctx, key, r.purchase.ReservationID)
	})
	if err != nil {
		return err
	}
	r.held[car] = prev
	return nil
}

// verifyHolds re-reads this purchase's rows and returns how many seats were
// taken away by the conflict resolver or by an expired lease.
func (r *purchaseRun) verifyHolds(ctx context.Context) (int, error) {
	now := r.p.clock.Now()
	lost := 0
	for _, car := range sortedCars(r.held) {
		want := r.held[car]
		if want == 0 {
			continue
		}
		key := r.trip.Key().Car(car)

		var row *domain.Reservation
		err := r.p.call(ctx, r.p.readLevel, "get hold", func(ctx context.Context) error {
			var err error
			row, err = r.p.reservations.Get(ctx, key, r.purchase.ReservationID)
			return err
		})
		if err != nil {
			return 0, err
		}

		switch {
		case row == nil:
			// A weak read may miss a row other replicas still carry; the
			// tombstone keeps it from resurfacing after repair.
			err := r.p.call(ctx, r.p.writeLevel, "cancel missing hold", func(ctx context.Context) error {
				return r.p.reservations.Cancel(ctx, key, r.purchase.ReservationID)
			})
			if err != nil {
				return 0, err
			}
			lost += want
			r.held[car] = 0
		case row.Expired(now):
			err := r.p.call(ctx, r.p.writeLevel, "cancel expired hold", func(ctx context.Context) error {
				return r.p.reservations.Cancel(ctx, key, r.purchase.ReservationID)
			})
			if err != nil {
				return 0, err
			}
			lost += want
			r.held[car] = 0
		case row.Seats < want:
			lost += want - row.Seats
			r.held[car] = row.Seats
		}
	}
	return lost, nil
}

// confirm promotes every held car to an order. A car whose order is written
// is final and leaves the held set so nothing retries it.
func (r *purchaseRun) confirm(ctx context.Context) error {
	for _, car := range sortedCars(r.held) {
		seats := r.held[car]
		if seats == 0 {
			continue
		}
		key := r.trip.Key().Car(car)
		order := domain.Order{
			ID:        uuid.New(),
			TrainID:   r.trip.TrainID,
			Departure: r.trip.Departure,
			Car:       car,
			HolderID:  r.purchase.HolderID,
			Seats:     seats,
			CreatedAt: r.p.clock.Now(),
		}
		err := r.p.call(ctx, r.p.writeLevel, "insert order", func(ctx context.Context) error {
			return r.p.orders.Insert(ctx, order)
		})
		if err != nil {
			return err
		}
		delete(r.held, car)
		r.confirmed = append(r.confirmed, domain.Allocation{Car: car, Seats: seats, OrderID: order.ID})

		err = r.p.call(ctx, r.p.writeLevel, "delete confirmed hold", func(ctx context.Context) error {
			return r.p.reservations.Cancel(ctx, key, r.purchase.ReservationID)
		})
		if err != nil {
			return err
		}
		delete(r.touched, car)
	}
	return nil
}

// releaseUnconfirmed cancels holds on cars that were touched but ended with
// nothing to confirm. Every requested seat is already sold, so a failed
// cancel is left to the lease.
func (r *purchaseRun) releaseUnconfirmed(ctx context.Context) {
	cleanup := context.WithoutCancel(ctx)
	for _, car := range sortedCars(r.touched) {
		key := r.trip.Key().Car(car)
		err := r.p.call(cleanup, r.p.writeLevel, "release hold", func(ctx context.Context) error {
			return r.p.reservations.Cancel(ctx, key, r.purchase.ReservationID)
		})
		if err != nil {
			r.p.log.Errorw("msg", "release left a hold behind", "reservation_id", r.purchase.ReservationID,
				"car", key.String(), "error", err)
			continue
		}
		delete(r.touched, car)
	}
}

// rollback removes every hold row this purchase may have written. It runs on
// a context detached from the caller's so that a cancelled request still
// cleans up.
func (r *purchaseRun) rollback(ctx context.Context, cause error) error {
	failedIn := r.purchase.State
	r.transition(domain.StateRollback)

	cleanup := context.WithoutCancel(ctx)
	for _, car := range sortedCars(r.touched) {
		key := r.trip.Key().Car(car)
		err := r.p.call(cleanup, r.p.writeLevel, "rollback hold", func(ctx context.Context) error {
			return r.p.reservations.Cancel(ctx, key, r.purchase.ReservationID)
		})
		if err != nil {
			// The lease lets the resolver reclaim it later.
			r.p.log.Errorw("msg", "rollback left a hold behind", "reservation_id", r.purchase.ReservationID,
				"car", key.String(), "error", err)
		}
	}
	r.held = map[int]int{}

	r.p.log.Warnw("msg", "purchase rolled back", "reservation_id", r.purchase.ReservationID,
		"trip", r.trip.Key().String(), "state", failedIn, "confirmed_cars", len(r.confirmed), "error", cause)
	r.afterWrite(cleanup)
	return r.failAt(failedIn, cause)
}

func (r *purchaseRun) fail(cause error) error {
	return r.failAt(r.purchase.State, cause)
}

func (r *purchaseRun) failAt(state domain.PurchaseState, cause error) error {
	r.transition(domain.StateFailed)
	return &domain.PurchaseError{State: state, Confirmed: r.confirmed, Err: cause}
}

func (r *purchaseRun) afterWrite(ctx context.Context) {
	key := r.trip.Key()
	if r.p.cache != nil {
		err := r.p.call(ctx, domain.ConsistencyDefault, "invalidate availability", func(ctx context.Context) error {
			return r.p.cache.Invalidate(ctx, key)
		})
		if err != nil {
			r.p.log.Warnw("msg", "availability cache invalidation failed", "trip", key.String(), "error", err)
		}
	}
	if r.p.notify != nil {
		r.p.notify(key)
	}
}

func sortedCars[V any](m map[int]V) []int {
	cars := make([]int, 0, len(m))
	for car := range m {
		cars = append(cars, car)
	}
	sort.Ints(cars)
	return cars
}

// storageErr tags raw adapter failures; domain outcomes pass through.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{domain.ErrTripNotFound, domain.ErrInvalidCar, domain.ErrStorage} {
		if errors.Is(err, known) {
			return err
		}
	}
	return domain.StorageError(op, err)
}
