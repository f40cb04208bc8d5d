package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTripNotFound        = errors.New("trip not found")
	ErrInvalidSeatCount    = errors.New("invalid seat count")
	ErrInvalidHolder       = errors.New("invalid holder id")
	ErrInvalidCar          = errors.New("invalid car")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrAllocationExhausted = errors.New("allocation attempts exhausted")
	// ErrAllocationRace is recorded when a car's hold was outrun by concurrent
	// writers. The planner retries elsewhere and never returns it.
	ErrAllocationRace     = errors.New("allocation race")
	ErrStorage            = errors.New("storage error")
	ErrConflictResolution = errors.New("conflict resolution failed")
)

// StorageError tags a store failure so callers can match it with
// errors.Is(err, ErrStorage) while keeping the driver error reachable.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return &storageError{op: op, err: err}
}

type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.op, e.err)
}

func (e *storageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *storageError) Unwrap() error {
	return e.err
}

// PurchaseError reports a failed purchase together with whatever was already
// confirmed before the failure. Confirmed orders are genuine sales and are not
// rolled back.
type PurchaseError struct {
	State     PurchaseState
	Confirmed []Allocation
	Err       error
}

func (e *PurchaseError) Error() string {
	if len(e.Confirmed) > 0 {
		return fmt.Sprintf("purchase failed in %s after confirming %d car(s): %v", e.State, len(e.Confirmed), e.Err)
	}
	return fmt.Sprintf("purchase failed in %s: %v", e.State, e.Err)
}

func (e *PurchaseError) Unwrap() error {
	return e.Err
}
