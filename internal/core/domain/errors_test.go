package domain_test

import (
	"errors"
	"testing"

	"github.com/srgjo27/railseat/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestStorageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := domain.StorageError("insert reservation", cause)

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "insert reservation")

	assert.Same(t, err, domain.StorageError("outer", err), "already tagged errors are not wrapped twice")
	assert.NoError(t, domain.StorageError("noop", nil))
}

func TestPurchaseError(t *testing.T) {
	err := error(&domain.PurchaseError{
		State:     domain.StateConfirming,
		Confirmed: []domain.Allocation{{Car: 1, Seats: 2}},
		Err:       domain.StorageError("insert order", errors.New("timeout")),
	})

	assert.ErrorIs(t, err, domain.ErrStorage)

	var perr *domain.PurchaseError
	if assert.ErrorAs(t, err, &perr) {
		assert.Len(t, perr.Confirmed, 1)
	}
	assert.Contains(t, err.Error(), "CONFIRMING")
}
