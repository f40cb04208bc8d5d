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

type Purchaser interface {
	Purchase(ctx context.Context, req services.PurchaseRequest) (*domain.Purchase, error)
}

type PurchaseHandler struct {
	svc Purchaser
}

func NewPurchaseHandler(svc Purchaser) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

type purchaseRequest struct {
	tripRequest
	HolderID string `json:"holder_id"`
	Seats    int    `json:"seats"`
}

type purchaseResponse struct {
	ReservationID string              `json:"reservation_id"`
	TrainID       int                 `json:"train_id"`
	Departure     string              `json:"departure"`
	HolderID      string              `json:"holder_id"`
	Seats         int                 `json:"seats"`
	State         string              `json:"state"`
	Allocations   []domain.Allocation `json:"allocations"`
	Attempts      int                 `json:"attempts"`
	Races         int                 `json:"races"`
}

func (h *PurchaseHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json body")
		return
	}
	key, err := req.key()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	holder, err := uuid.Parse(req.HolderID)
	if err != nil {
		badRequest(w, domain.ErrInvalidHolder.Error())
		return
	}

	resp, err := h.svc.Purchase(r.Context(), services.PurchaseRequest{Trip: key, HolderID: holder, Seats: req.Seats})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, purchaseResponse{
		ReservationID: resp.ReservationID.String(),
		TrainID:       resp.Trip.TrainID,
		Departure:     resp.Trip.Departure.UTC().Format(time.RFC3339),
		HolderID:      resp.HolderID.String(),
		Seats:         resp.SeatsConfirmed(),
		State:         string(resp.State),
		Allocations:   resp.Allocations,
		Attempts:      resp.Attempts,
		Races:         resp.Races,
	})
}
