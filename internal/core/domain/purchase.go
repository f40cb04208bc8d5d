package domain

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseState string

const (
	StateInit        PurchaseState = "INIT"
	StateCheckGlobal PurchaseState = "CHECK_GLOBAL"
	StateAllocating  PurchaseState = "ALLOCATING"
	StateConfirming  PurchaseState = "CONFIRMING"
	StateDone        PurchaseState = "DONE"
	StateRollback    PurchaseState = "ROLLBACK"
	StateFailed      PurchaseState = "FAILED"
)

// Allocation is the share of a purchase placed in one car.
type Allocation struct {
	Car     int       `json:"car"`
	Seats   int       `json:"seats"`
	OrderID uuid.UUID `json:"order_id,omitempty"`
}

// Purchase describes a completed purchase run.
type Purchase struct {
	ReservationID uuid.UUID
	Trip          TripKey
	HolderID      uuid.UUID
	Requested     int
	State         PurchaseState
	Allocations   []Allocation
	Attempts      int
	Races         int
	CreatedAt     time.Time
}

// SeatsConfirmed sums the confirmed allocations.
func (p *Purchase) SeatsConfirmed() int {
	total := 0
	for _, a := range p.Allocations {
		total += a.Seats
	}
	return total
}
