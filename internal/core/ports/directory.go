package ports

import (
	"context"

	"dispatch/internal/core/domain/model/customer"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"
)

// CustomerRepository is the read-only customer directory.
type CustomerRepository interface {
	Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error)
}

// VehicleRepository is the read-only vehicle type catalogue.
type VehicleRepository interface {
	// GetActiveByType returns errs.ObjectNotFoundError for unknown or inactive types.
	GetActiveByType(ctx context.Context, vehicleType string) (*vehicle.VehicleType, error)
}
