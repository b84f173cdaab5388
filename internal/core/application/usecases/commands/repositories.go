// Package commands contains the business operations that modify system state.
// Every command follows the same pattern: validation, one transaction through a unit of
// work, domain checks against the persisted state, conditional writes, commit, and only
// then the notifications.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces narrow ports.UnitOfWork to what each family of commands touches.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	// DirectoryRepoFactory exposes the read-only customer and vehicle lookups.
	DirectoryRepoFactory interface {
		CustomerRepository() ports.CustomerRepository
		VehicleRepository() ports.VehicleRepository
	}

	// UoW spans the order lifecycle commands. They write orders and drivers and resolve
	// customers and vehicle types for validation and for the returned views.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().Get(ctx, id)
	//   // ... mutate, then write order before driver
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		DriverRepoFactory
		DirectoryRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}

	// DriverUoW spans the driver availability commands. Orders are only read, to learn
	// whether the driver is busy.
	DriverUoW interface {
		TxManager
		DriverRepoFactory
		OrderRepoFactory
	}

	DriverUoWFactory interface {
		Create() DriverUoW
	}
)
