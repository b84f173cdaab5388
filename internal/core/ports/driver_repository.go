package ports

import (
	"context"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// DriverRepository persists Driver aggregates.
type DriverRepository interface {
	// Get returns errs.ObjectNotFoundError when the driver does not exist.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetForUpdate is Get plus a row lock held until the unit of work ends. Presence and
	// toggle commands use it so their read-modify-write cycles serialize per driver.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// Update writes the driver and bumps its version.
	Update(ctx context.Context, aggregate *driver.Driver) error

	// Reserve persists a driver taken by Driver.Reserve. The write applies only while the
	// stored row is still available and at the loaded version; otherwise errs.ConflictError.
	Reserve(ctx context.Context, aggregate *driver.Driver) error

	// FindAssignableInCells returns assignable drivers whose geohash starts with one of cells.
	FindAssignableInCells(ctx context.Context, cells []string) ([]*driver.Driver, error)
}
