package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var (
	ErrSetDriverAvailabilityCommandIsNotConstructed = errors.New(
		"SetDriverAvailabilityCommand must be created via NewSetDriverAvailabilityCommand constructor",
	)
	ErrSetDriverBlockedCommandIsNotConstructed = errors.New(
		"SetDriverBlockedCommand must be created via NewSetDriverBlockedCommand constructor",
	)
)

// SetDriverAvailabilityCommand is the availability toggle used by drivers and admins.
type SetDriverAvailabilityCommand struct {
	driverID  kernel.UUID
	available bool

	guard guard.ConstructorGuard
}

// NewSetDriverAvailabilityCommand creates a command to toggle whether the driver takes new orders.
func NewSetDriverAvailabilityCommand(driverID kernel.UUID, available bool) (SetDriverAvailabilityCommand, error) {
	if err := requireID("driverId", driverID); err != nil {
		return SetDriverAvailabilityCommand{}, err
	}

	return SetDriverAvailabilityCommand{
		driverID:  driverID,
		available: available,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SetDriverAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetDriverAvailabilityCommandIsNotConstructed)
}

func (c SetDriverAvailabilityCommand) DriverID() kernel.UUID { return c.driverID }
func (c SetDriverAvailabilityCommand) Available() bool       { return c.available }

// SetDriverBlockedCommand blocks or unblocks a driver. Admin only.
type SetDriverBlockedCommand struct {
	driverID kernel.UUID
	blocked  bool

	guard guard.ConstructorGuard
}

// NewSetDriverBlockedCommand creates an admin command to block or unblock a driver.
func NewSetDriverBlockedCommand(driverID kernel.UUID, blocked bool) (SetDriverBlockedCommand, error) {
	if err := requireID("driverId", driverID); err != nil {
		return SetDriverBlockedCommand{}, err
	}

	return SetDriverBlockedCommand{
		driverID: driverID,
		blocked:  blocked,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c SetDriverBlockedCommand) Validate() error {
	return c.guard.Validate(ErrSetDriverBlockedCommandIsNotConstructed)
}

func (c SetDriverBlockedCommand) DriverID() kernel.UUID { return c.driverID }
func (c SetDriverBlockedCommand) Blocked() bool         { return c.blocked }
