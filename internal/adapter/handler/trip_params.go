package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/srgjo27/railseat/internal/core/domain"
)

type tripRequest struct {
	TrainID   int    `json:"train_id"`
	Departure string `json:"departure"`
}

func (r tripRequest) key() (domain.TripKey, error) {
	if r.TrainID <= 0 {
		return domain.TripKey{}, fmt.Errorf("invalid train_id")
	}
	departure, err := time.Parse(time.RFC3339, r.Departure)
	if err != nil {
		return domain.TripKey{}, fmt.Errorf("invalid departure: expected RFC3339")
	}
	return domain.TripKey{TrainID: r.TrainID, Departure: departure.UTC()}, nil
}

func tripFromQuery(q url.Values) (domain.TripKey, error) {
	trainID, err := strconv.Atoi(q.Get("train_id"))
	if err != nil {
		return domain.TripKey{}, fmt.Errorf("invalid train_id")
	}
	return tripRequest{TrainID: trainID, Departure: q.Get("departure")}.key()
}
