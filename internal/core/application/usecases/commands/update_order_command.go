package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrUpdateOrderCommandIsNotConstructed = errors.New(
		"UpdateOrderCommand must be created via NewUpdateOrderCommand constructor",
	)
	ErrPatchIsEmpty = errs.NewValueIsRequiredError("patch")
)

// UpdateOrderCommand edits the locations, fare, distance, vehicle type or notes of an
// order that is still in progress. Fare components missing from the patch keep their value.
type UpdateOrderCommand struct {
	orderID kernel.UUID
	patch   order.Patch

	guard guard.ConstructorGuard
}

// NewUpdateOrderCommand creates a command that applies patch to an order.
// Only the fields set in patch change. An empty patch is rejected.
func NewUpdateOrderCommand(orderID kernel.UUID, patch order.Patch) (UpdateOrderCommand, error) {
	var patchErr error
	if patch == (order.Patch{}) {
		patchErr = ErrPatchIsEmpty
	} else if patch.Locations != nil {
		patchErr = patch.Locations.Validate()
	}

	if err := errors.Join(requireID("orderId", orderID), patchErr); err != nil {
		return UpdateOrderCommand{}, err
	}

	return UpdateOrderCommand{
		orderID: orderID,
		patch:   patch,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateOrderCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderCommandIsNotConstructed)
}

func (c UpdateOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c UpdateOrderCommand) Patch() order.Patch   { return c.patch }
