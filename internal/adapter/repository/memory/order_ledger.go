package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
)

type OrderLedger struct {
	s *Store
}

func (l *OrderLedger) Insert(ctx context.Context, o domain.Order) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("insert order"); err != nil {
		return err
	}
	l.s.write(ctx, tableOrders, keyOf(o.CarKey(), o.ID), o, false)
	return nil
}

func (l *OrderLedger) SumByCar(ctx context.Context, car domain.CarKey) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("sum orders by car"); err != nil {
		return 0, err
	}
	return sumOrders(l.s.read(ctx, tableOrders, func(k rowKey) bool { return k.inCar(car) })), nil
}

func (l *OrderLedger) SumByTrip(ctx context.Context, trip domain.TripKey) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("sum orders by trip"); err != nil {
		return 0, err
	}
	return sumOrders(l.s.read(ctx, tableOrders, func(k rowKey) bool { return k.inTrip(trip) })), nil
}

func (l *OrderLedger) ListByHolder(ctx context.Context, trip domain.TripKey, holder uuid.UUID) ([]domain.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.s.check("list orders by holder"); err != nil {
		return nil, err
	}
	rows := l.s.read(ctx, tableOrders, func(k rowKey) bool { return k.inTrip(trip) })
	out := make([]domain.Order, 0)
	for _, e := range rows {
		o := e.value.(domain.Order)
		if o.HolderID == holder {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Car != out[j].Car {
			return out[i].Car < out[j].Car
		}
		return lessID(out[i].ID, out[j].ID)
	})
	return out, nil
}

func sumOrders(rows map[rowKey]entry) int {
	total := 0
	for _, e := range rows {
		total += e.value.(domain.Order).Seats
	}
	return total
}
