package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/srgjo27/railseat/internal/core/services"
)

type TripResolver interface {
	ResolveTrip(ctx context.Context, key domain.TripKey) ([]services.Resolution, error)
}

type AvailabilityReader interface {
	Snapshot(ctx context.Context, key domain.TripKey) (*domain.TripAvailability, error)
	HolderOrders(ctx context.Context, key domain.TripKey, holder uuid.UUID) ([]domain.Order, error)
}

type TripHandler struct {
	resolver     TripResolver
	availability AvailabilityReader
}

func NewTripHandler(resolver TripResolver, availability AvailabilityReader) *TripHandler {
	return &TripHandler{resolver: resolver, availability: availability}
}

type shrinkView struct {
	ID   string `json:"id"`
	From int    `json:"from"`
	To   int    `json:"to"`
}

type resolutionView struct {
	Car       int          `json:"car"`
	Capacity  int          `json:"capacity"`
	Committed int          `json:"committed"`
	Held      int          `json:"held"`
	Excess    int          `json:"excess"`
	Reclaimed []string     `json:"reclaimed"`
	Cancelled []string     `json:"cancelled"`
	Shrunk    []shrinkView `json:"shrunk"`
}

func ids(in []uuid.UUID) []string {
	out := make([]string, 0, len(in))
	for _, id := range in {
		out = append(out, id.String())
	}
	return out
}

func (h *TripHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	var req tripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	key, err := req.key()
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	results, err := h.resolver.ResolveTrip(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]resolutionView, 0, len(results))
	for _, res := range results {
		v := resolutionView{
			Car:       res.Car.Car,
			Capacity:  res.Capacity,
			Committed: res.Committed,
			Held:      res.Held,
			Excess:    res.Excess(),
			Reclaimed: ids(res.Reclaimed),
			Cancelled: ids(res.Cancelled),
			Shrunk:    make([]shrinkView, 0, len(res.Shrunk)),
		}
		for _, s := range res.Shrunk {
			v.Shrunk = append(v.Shrunk, shrinkView{ID: s.ID.String(), From: s.From, To: s.To})
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": views})
}

func (h *TripHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	key, err := tripFromQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	snap, err := h.availability.Snapshot(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type orderView struct {
	OrderID   string `json:"order_id"`
	Car       int    `json:"car"`
	Seats     int    `json:"seats"`
	CreatedAt string `json:"created_at"`
}

func (h *TripHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	key, err := tripFromQuery(r.URL.Query())
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	holder, err := uuid.Parse(r.URL.Query().Get("holder_id"))
	if err != nil {
		badRequest(w, domain.ErrInvalidHolder.Error())
		return
	}

	orders, err := h.availability.HolderOrders(r.Context(), key, holder)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView{
			OrderID:   o.ID.String(),
			Car:       o.Car,
			Seats:     o.Seats,
			CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"holder_id": holder.String(), "orders": views})
}
