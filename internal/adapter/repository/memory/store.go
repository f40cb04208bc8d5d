// Package memory is an in-process stand-in for a replicated, eventually
// consistent store. Writes reach as many replicas as the call's consistency
// level requires and are queued for the rest; reads merge as many replicas as
// their level requires using last-write-wins. Sync drains the queue.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
)

type table int

const (
	tableReservations table = iota
	tableOrders
)

type rowKey struct {
	trainID   int
	departure int64
	car       int
	id        uuid.UUID
}

func keyOf(car domain.CarKey, id uuid.UUID) rowKey {
	return rowKey{trainID: car.TrainID, departure: car.Departure.UnixNano(), car: car.Car, id: id}
}

func (k rowKey) inCar(car domain.CarKey) bool {
	return k.trainID == car.TrainID && k.departure == car.Departure.UnixNano() && k.car == car.Car
}

func (k rowKey) inTrip(trip domain.TripKey) bool {
	return k.trainID == trip.TrainID && k.departure == trip.Departure.UnixNano()
}

type entry struct {
	seq     uint64
	deleted bool
	value   any
}

type mutation struct {
	table table
	key   rowKey
	entry entry
}

type replica struct {
	rows map[table]map[rowKey]entry
}

func newReplica() *replica {
	return &replica{rows: map[table]map[rowKey]entry{
		tableReservations: {},
		tableOrders:       {},
	}}
}

func (r *replica) apply(m mutation) {
	if cur, ok := r.rows[m.table][m.key]; ok && cur.seq >= m.entry.seq {
		return
	}
	r.rows[m.table][m.key] = m.entry
}

type tripKey struct {
	trainID   int
	departure int64
}

// Store holds every replica plus the trip registry. Trips are not replicated:
// they are written once before any allocation happens.
type Store struct {
	mu        sync.Mutex
	replicas  []*replica
	pending   map[int][]mutation
	seq       uint64
	readNext  int
	writeNext int
	trips     map[tripKey]domain.Trip
	fault     func(op string) error
}

type Option func(*Store)

// WithFault makes every store call consult fn first and fail with its error.
func WithFault(fn func(op string) error) Option {
	return func(s *Store) {
		s.fault = fn
	}
}

// New builds a store with the given replica count (at least one).
func New(replicas int, opts ...Option) *Store {
	if replicas < 1 {
		replicas = 1
	}
	s := &Store{
		pending: make(map[int][]mutation),
		trips:   make(map[tripKey]domain.Trip),
	}
	for i := 0; i < replicas; i++ {
		s.replicas = append(s.replicas, newReplica())
	}
	// Reads rotate from the far end so that ONE/ONE traffic regularly lands
	// on a replica the last write skipped.
	s.readNext = replicas - 1
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Reservations() *ReservationLedger {
	return &ReservationLedger{s: s}
}

func (s *Store) Orders() *OrderLedger {
	return &OrderLedger{s: s}
}

// SetFault replaces the fault hook; nil disables it.
func (s *Store) SetFault(fn func(op string) error) {
	s.mu.Lock()
	s.fault = fn
	s.mu.Unlock()
}

// Sync delivers every queued replica write.
func (s *Store) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx, muts := range s.pending {
		for _, m := range muts {
			s.replicas[idx].apply(m)
		}
	}
	s.pending = make(map[int][]mutation)
}

// Pending reports how many replica writes are still queued.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, muts := range s.pending {
		n += len(muts)
	}
	return n
}

func (s *Store) check(op string) error {
	if s.fault == nil {
		return nil
	}
	return domain.StorageError(op, s.fault(op))
}

// write must be called with s.mu held.
func (s *Store) write(ctx context.Context, t table, key rowKey, value any, deleted bool) {
	s.seq++
	m := mutation{table: t, key: key, entry: entry{seq: s.seq, deleted: deleted, value: value}}

	n := len(s.replicas)
	acks := domain.ConsistencyFrom(ctx).Required(n)
	start := s.writeNext % n
	s.writeNext++
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if i < acks {
			s.replicas[idx].apply(m)
			continue
		}
		s.pending[idx] = append(s.pending[idx], m)
	}
}

// read merges the rows of as many replicas as ctx requires; keep filters
// keys. Must be called with s.mu held.
func (s *Store) read(ctx context.Context, t table, keep func(rowKey) bool) map[rowKey]entry {
	n := len(s.replicas)
	want := domain.ConsistencyFrom(ctx).Required(n)
	start := s.readNext % n
	s.readNext++

	merged := make(map[rowKey]entry)
	for i := 0; i < want; i++ {
		for k, e := range s.replicas[(start+i)%n].rows[t] {
			if !keep(k) {
				continue
			}
			if cur, ok := merged[k]; ok && cur.seq >= e.seq {
				continue
			}
			merged[k] = e
		}
	}
	for k, e := range merged {
		if e.deleted {
			delete(merged, k)
		}
	}
	return merged
}

func (s *Store) UpsertTrip(_ context.Context, trip domain.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("upsert trip"); err != nil {
		return err
	}
	s.trips[tripKey{trainID: trip.TrainID, departure: trip.Departure.UnixNano()}] = trip
	return nil
}

func (s *Store) GetTrip(_ context.Context, key domain.TripKey) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("get trip"); err != nil {
		return domain.Trip{}, err
	}
	trip, ok := s.trips[tripKey{trainID: key.TrainID, departure: key.Departure.UnixNano()}]
	if !ok {
		return domain.Trip{}, domain.ErrTripNotFound
	}
	return trip, nil
}

func (s *Store) ListTrips(_ context.Context) ([]domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("list trips"); err != nil {
		return nil, err
	}
	trips := make([]domain.Trip, 0, len(s.trips))
	for _, t := range s.trips {
		trips = append(trips, t)
	}
	sort.Slice(trips, func(i, j int) bool {
		if trips[i].TrainID != trips[j].TrainID {
			return trips[i].TrainID < trips[j].TrainID
		}
		return trips[i].Departure.Before(trips[j].Departure)
	})
	return trips, nil
}

func lessID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
