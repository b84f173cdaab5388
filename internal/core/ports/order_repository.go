package ports

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// ErrBookingIDTaken is wrapped into the conflict returned by OrderRepository.Add when the
// booking id collides with an existing order. Callers retry with a fresh id.
var ErrBookingIDTaken = errors.New("booking id already taken")

// OrderRepository persists Order aggregates.
//
// Writes are conditional: Update applies only while the stored row still has the status and
// version returned by Order.ExpectedState, and reports errs.ConflictError otherwise. On
// success the repository calls Order.MarkPersisted.
type OrderRepository interface {
	// Add inserts a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes the aggregate if the stored row is unchanged since it was loaded.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ObjectNotFoundError when the order does not exist.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// Delete hard-deletes the order.
	Delete(ctx context.Context, id kernel.UUID) error

	// HasActiveForDriver reports whether the driver holds an order in a driver-bearing status.
	HasActiveForDriver(ctx context.Context, driverID kernel.UUID) (bool, error)
}
