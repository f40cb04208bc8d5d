package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/platform/database"
)

type TripRepository struct {
	cluster *database.Cluster
}

func NewTripRepository(cluster *database.Cluster) *TripRepository {
	return &TripRepository{cluster: cluster}
}

func (r *TripRepository) GetTrip(ctx context.Context, key domain.TripKey) (domain.Trip, error) {
	query := `
	SELECT train_id, departure, cars, seats_per_car
	FROM trips
	WHERE train_id = $1 AND departure = $2
	`

	var trip domain.Trip
	err := reader(ctx, r.cluster).QueryRowContext(ctx, query, key.TrainID, key.Departure).Scan(
		&trip.TrainID,
		&trip.Departure,
		&trip.Cars,
		&trip.SeatsPerCar,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Trip{}, domain.ErrTripNotFound
		}
		return domain.Trip{}, storageErr("get trip", err)
	}
	trip.Departure = trip.Departure.UTC()
	return trip, nil
}

func (r *TripRepository) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	query := `
	SELECT train_id, departure, cars, seats_per_car
	FROM trips
	ORDER BY train_id, departure
	`
	rows, err := reader(ctx, r.cluster).QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("list trips", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		var trip domain.Trip
		if err := rows.Scan(&trip.TrainID, &trip.Departure, &trip.Cars, &trip.SeatsPerCar); err != nil {
			return nil, storageErr("list trips", err)
		}
		trip.Departure = trip.Departure.UTC()
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list trips", err)
	}
	return trips, nil
}

// UpsertTrip registers a trip or updates its layout.
func (r *TripRepository) UpsertTrip(ctx context.Context, trip domain.Trip) error {
	return write(ctx, r.cluster, "upsert trip", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO trips (train_id, departure, cars, seats_per_car)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (train_id, departure)
		DO UPDATE SET cars = EXCLUDED.cars, seats_per_car = EXCLUDED.seats_per_car
		`, trip.TrainID, trip.Departure, trip.Cars, trip.SeatsPerCar)
		return err
	})
}
