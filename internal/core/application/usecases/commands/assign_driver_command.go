package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand binds a driver to a pending order. assignedBy is the admin issuing
// the assignment and may be nil.
type AssignDriverCommand struct {
	orderID    kernel.UUID
	driverID   kernel.UUID
	assignedBy *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignDriverCommand creates a command to put driverID on orderID.
// assignedBy is the admin who made the call and may be nil for automatic assignment.
func NewAssignDriverCommand(orderID, driverID kernel.UUID, assignedBy *kernel.UUID) (AssignDriverCommand, error) {
	var assignedByErr error
	if assignedBy != nil {
		if err := assignedBy.Validate(); err != nil {
			assignedByErr = errs.NewValueIsInvalidErrorWithCause("assignedBy", err)
		}
	}

	if err := errors.Join(
		requireID("orderId", orderID),
		requireID("driverId", driverID),
		assignedByErr,
	); err != nil {
		return AssignDriverCommand{}, err
	}

	return AssignDriverCommand{
		orderID:    orderID,
		driverID:   driverID,
		assignedBy: assignedBy,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}

func (c AssignDriverCommand) OrderID() kernel.UUID     { return c.orderID }
func (c AssignDriverCommand) DriverID() kernel.UUID    { return c.driverID }
func (c AssignDriverCommand) AssignedBy() *kernel.UUID { return c.assignedBy }

func requireID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}
