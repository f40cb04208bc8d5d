package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/platform/database"
)

type OrderRepository struct {
	cluster *database.Cluster
}

func NewOrderRepository(cluster *database.Cluster) *OrderRepository {
	return &OrderRepository{cluster: cluster}
}

// Insert is idempotent on the order id, so a retried confirmation never
// sells the same seats twice.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	return write(ctx, r.cluster, "insert order", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO orders (train_id, departure, car, order_id, holder_id, seats, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (train_id, departure, car, order_id) DO NOTHING
		`, order.TrainID, order.Departure, order.Car, order.ID, order.HolderID, order.Seats, order.CreatedAt)
		return err
	})
}

func (r *OrderRepository) SumByCar(ctx context.Context, car domain.CarKey) (int, error) {
	var total int
	err := reader(ctx, r.cluster).QueryRowContext(ctx, `
	SELECT COALESCE(SUM(seats), 0)
	FROM orders
	WHERE train_id = $1 AND departure = $2 AND car = $3
	`, car.TrainID, car.Departure, car.Car).Scan(&total)
	if err != nil {
		return 0, storageErr("sum orders by car", err)
	}
	return total, nil
}

func (r *OrderRepository) SumByTrip(ctx context.Context, trip domain.TripKey) (int, error) {
	var total int
	err := reader(ctx, r.cluster).QueryRowContext(ctx, `
	SELECT COALESCE(SUM(seats), 0)
	FROM orders
	WHERE train_id = $1 AND departure = $2
	`, trip.TrainID, trip.Departure).Scan(&total)
	if err != nil {
		return 0, storageErr("sum orders by trip", err)
	}
	return total, nil
}

func (r *OrderRepository) ListByHolder(ctx context.Context, trip domain.TripKey, holder uuid.UUID) ([]domain.Order, error) {
	query := `
	SELECT car, order_id, seats, created_at
	FROM orders
	WHERE train_id = $1 AND departure = $2 AND holder_id = $3
	ORDER BY car, order_id
	`
	rows, err := reader(ctx, r.cluster).QueryContext(ctx, query, trip.TrainID, trip.Departure, holder)
	if err != nil {
		return nil, storageErr("list orders", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order := domain.Order{TrainID: trip.TrainID, Departure: trip.Departure, HolderID: holder}
		if err := rows.Scan(&order.Car, &order.ID, &order.Seats, &order.CreatedAt); err != nil {
			return nil, storageErr("list orders", err)
		}
		order.CreatedAt = order.CreatedAt.UTC()
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list orders", err)
	}
	return orders, nil
}
