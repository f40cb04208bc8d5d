package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/platform/database"
)

// ReservationRepository stores holds keyed by (train, departure, car, res_id).
// Writes are blind upserts or deletes with no read condition.
type ReservationRepository struct {
	cluster *database.Cluster
}

func NewReservationRepository(cluster *database.Cluster) *ReservationRepository {
	return &ReservationRepository{cluster: cluster}
}

func (r *ReservationRepository) Place(ctx context.Context, res domain.Reservation) error {
	return write(ctx, r.cluster, "insert reservation", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO reservations (train_id, departure, car, res_id, holder_id, seats, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (train_id, departure, car, res_id)
		DO UPDATE SET holder_id = EXCLUDED.holder_id, seats = EXCLUDED.seats, expires_at = EXCLUDED.expires_at
		`, res.TrainID, res.Departure, res.Car, res.ID, res.HolderID, res.Seats, nullTime(res.ExpiresAt))
		return err
	})
}

func (r *ReservationRepository) Get(ctx context.Context, car domain.CarKey, id uuid.UUID) (*domain.Reservation, error) {
	query := `
	SELECT res_id, holder_id, seats, expires_at
	FROM reservations
	WHERE train_id = $1 AND departure = $2 AND car = $3 AND res_id = $4
	`

	res := domain.Reservation{TrainID: car.TrainID, Departure: car.Departure, Car: car.Car}
	var expiresAt sql.NullTime
	err := reader(ctx, r.cluster).QueryRowContext(ctx, query, car.TrainID, car.Departure, car.Car, id).Scan(
		&res.ID,
		&res.HolderID,
		&res.Seats,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get reservation", err)
	}
	if expiresAt.Valid {
		res.ExpiresAt = expiresAt.Time.UTC()
	}
	return &res, nil
}

// Resize is a no-op for a hold that no longer exists.
func (r *ReservationRepository) Resize(ctx context.Context, car domain.CarKey, id uuid.UUID, seats int) error {
	return write(ctx, r.cluster, "update reservation", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		UPDATE reservations
		SET seats = $5
		WHERE train_id = $1 AND departure = $2 AND car = $3 AND res_id = $4
		`, car.TrainID, car.Departure, car.Car, id, seats)
		return err
	})
}

func (r *ReservationRepository) Cancel(ctx context.Context, car domain.CarKey, id uuid.UUID) error {
	return write(ctx, r.cluster, "delete reservation", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		DELETE FROM reservations
		WHERE train_id = $1 AND departure = $2 AND car = $3 AND res_id = $4
		`, car.TrainID, car.Departure, car.Car, id)
		return err
	})
}

func (r *ReservationRepository) ListByCar(ctx context.Context, car domain.CarKey) ([]domain.Reservation, error) {
	query := `
	SELECT res_id, holder_id, seats, expires_at
	FROM reservations
	WHERE train_id = $1 AND departure = $2 AND car = $3
	ORDER BY res_id
	`
	rows, err := reader(ctx, r.cluster).QueryContext(ctx, query, car.TrainID, car.Departure, car.Car)
	if err != nil {
		return nil, storageErr("list reservations", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res := domain.Reservation{TrainID: car.TrainID, Departure: car.Departure, Car: car.Car}
		var expiresAt sql.NullTime
		if err := rows.Scan(&res.ID, &res.HolderID, &res.Seats, &expiresAt); err != nil {
			return nil, storageErr("list reservations", err)
		}
		if expiresAt.Valid {
			res.ExpiresAt = expiresAt.Time.UTC()
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list reservations", err)
	}
	return out, nil
}

func (r *ReservationRepository) SumByCar(ctx context.Context, car domain.CarKey) (int, error) {
	var total int
	err := reader(ctx, r.cluster).QueryRowContext(ctx, `
	SELECT COALESCE(SUM(seats), 0)
	FROM reservations
	WHERE train_id = $1 AND departure = $2 AND car = $3
	`, car.TrainID, car.Departure, car.Car).Scan(&total)
	if err != nil {
		return 0, storageErr("sum reservations by car", err)
	}
	return total, nil
}

func (r *ReservationRepository) SumByTrip(ctx context.Context, trip domain.TripKey) (int, error) {
	var total int
	err := reader(ctx, r.cluster).QueryRowContext(ctx, `
	SELECT COALESCE(SUM(seats), 0)
	FROM reservations
	WHERE train_id = $1 AND departure = $2
	`, trip.TrainID, trip.Departure).Scan(&total)
	if err != nil {
		return 0, storageErr("sum reservations by trip", err)
	}
	return total, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
