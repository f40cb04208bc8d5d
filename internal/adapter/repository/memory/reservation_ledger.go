package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
)

type ReservationLedger struct {
	s *Store
}

func (l *ReservationLedger) Place(ctx context.Context, r domain.Reservation) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("insert reservation"); err != nil {
		return err
	}
	l.s.write(ctx, tableReservations, keyOf(r.CarKey(), r.ID), r, false)
	return nil
}

func (l *ReservationLedger) Get(ctx context.Context, car domain.CarKey, id uuid.UUID) (*domain.Reservation, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("get reservation"); err != nil {
		return nil, err
	}
	key := keyOf(car, id)
	rows := l.s.read(ctx, tableReservations, func(k rowKey) bool { return k == key })
	e, ok := rows[key]
	if !ok {
		return nil, nil
	}
	r := e.value.(domain.Reservation)
	return &r, nil
}

// Resize rewrites the seat count of an existing hold. A hold the coordinating
// replicas do not know about is left alone.
func (l *ReservationLedger) Resize(ctx context.Context, car domain.CarKey, id uuid.UUID, seats int) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("update reservation"); err != nil {
		return err
	}
	key := keyOf(car, id)
	rows := l.s.read(ctx, tableReservations, func(k rowKey) bool { return k == key })
	e, ok := rows[key]
	if !ok {
		return nil
	}
	r := e.value.(domain.Reservation)
	r.Seats = seats
	l.s.write(ctx, tableReservations, key, r, false)
	return nil
}

func (l *ReservationLedger) Cancel(ctx context.Context, car domain.CarKey, id uuid.UUID) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("delete reservation"); err != nil {
		return err
	}
	l.s.write(ctx, tableReservations, keyOf(car, id), nil, true)
	return nil
}

func (l *ReservationLedger) ListByCar(ctx context.Context, car domain.CarKey) ([]domain.Reservation, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("list reservations"); err != nil {
		return nil, err
	}
	rows := l.s.read(ctx, tableReservations, func(k rowKey) bool { return k.inCar(car) })
	out := make([]domain.Reservation, 0, len(rows))
	for _, e := range rows {
		out = append(out, e.value.(domain.Reservation))
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

func (l *ReservationLedger) SumByCar(ctx context.Context, car domain.CarKey) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("sum reservations by car"); err != nil {
		return 0, err
	}
	return sumReservations(l.s.read(ctx, tableReservations, func(k rowKey) bool { return k.inCar(car) })), nil
}

func (l *ReservationLedger) SumByTrip(ctx context.Context, trip domain.TripKey) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("sum reservations by trip"); err != nil {
		return 0, err
	}
	return sumReservations(l.s.read(ctx, tableReservations, func(k rowKey) bool { return k.inTrip(trip) })), nil
}

func sumReservations(rows map[rowKey]entry) int {
	total := 0
	for _, e := range rows {
		total += e.value.(domain.Reservation).Seats
	}
	return total
}
