package commands

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/ports"
)

// UpdateOrderCommandHandler applies an order patch. A changed vehicle type must name an
// active type.
type UpdateOrderCommandHandler struct {
	runtime
	uowFactory UoWFactory
}

// NewUpdateOrderCommandHandler creates a handler for order edits.
func NewUpdateOrderCommandHandler(uowFactory UoWFactory, bus ports.NotificationBus, opts ...Option) UpdateOrderCommandHandler {
	return UpdateOrderCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle applies the patch and publishes order.updated. Status, driver and cancellation
// fields are never touched here; use the status, assign and cancel commands for those.
func (h UpdateOrderCommandHandler) Handle(ctx context.Context, cmd UpdateOrderCommand) (views.OrderView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("update_order", err)
	return view, err
}

func (h UpdateOrderCommandHandler) handle(ctx context.Context, cmd UpdateOrderCommand) (views.OrderView, error) {
	if err := cmd.Validate(); err != nil {
		return views.OrderView{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return views.OrderView{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ordersRepo := uow.OrderRepository()

	o, err := ordersRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return views.OrderView{}, err
	}

	patch := cmd.Patch()
	if patch.VehicleType != nil && *patch.VehicleType != o.VehicleType() && !o.Status().IsTerminal() {
		if _, err = uow.VehicleRepository().GetActiveByType(ctx, *patch.VehicleType); err != nil {
			return views.OrderView{}, err
		}
	}

	now := h.clock()
	if err = o.Update(patch, now); err != nil {
		return views.OrderView{}, err
	}

	if err = ordersRepo.Update(ctx, o); err != nil {
		return views.OrderView{}, err
	}

	owner, err := lookupCustomer(ctx, uow.CustomerRepository(), o.CustomerID())
	if err != nil {
		return views.OrderView{}, err
	}

	assigned, err := lookupDriver(ctx, uow.DriverRepository(), o.DriverID())
	if err != nil {
		return views.OrderView{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return views.OrderView{}, err
	}

	view := views.NewOrderView(o, owner, assigned)
	h.publish(ctx, events.OrderUpdated, events.OrderPayload{Order: view}, now, events.OrderTopics(o)...)
	return view, nil
}
