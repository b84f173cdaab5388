package commands

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/ports"
)

// UpdateOrderStatusCommandHandler applies driver or admin status updates.
//
// Completing or cancelling an order, and moving it back to pending, releases its driver in
// the same transaction. The order row is written before the driver row is locked.
type UpdateOrderStatusCommandHandler struct {
	runtime
	uowFactory UoWFactory
}

// NewUpdateOrderStatusCommandHandler creates the handler for explicit status changes.
//
// It serves admins, drivers over REST, and the accept and reject messages of the driver
// socket. Moving an order back to pending unassigns its driver; completing or cancelling
// it releases the driver, who becomes available again unless blocked.
//
// Example:
//
//	cmd, _ := commands.NewUpdateOrderStatusCommand(orderID, "picked_up")
//	view, err := handler.Handle(ctx, cmd)
func NewUpdateOrderStatusCommandHandler(uowFactory UoWFactory, bus ports.NotificationBus, opts ...Option) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle applies the change and publishes order.status_changed with the previous and new
// status. Terminal orders, and driver-bound statuses on an unassigned order, are conflicts.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) (views.OrderView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("update_order_status", err)
	return view, err
}

func (h UpdateOrderStatusCommandHandler) handle(ctx context.Context, cmd UpdateOrderStatusCommand) (views.OrderView, error) {
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
	driversRepo := uow.DriverRepository()

	o, err := ordersRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return views.OrderView{}, err
	}

	now := h.clock()
	change, err := o.ChangeStatus(cmd.Status(), now)
	if err != nil {
		return views.OrderView{}, err
	}

	if err = ordersRepo.Update(ctx, o); err != nil {
		return views.OrderView{}, err
	}

	released, availability, err := h.releaseDriver(ctx, driversRepo, change.ReleasedDriver, now)
	if err != nil {
		return views.OrderView{}, err
	}

	owner, err := lookupCustomer(ctx, uow.CustomerRepository(), o.CustomerID())
	if err != nil {
		return views.OrderView{}, err
	}

	assigned := released
	if assigned == nil {
		if assigned, err = lookupDriver(ctx, driversRepo, o.DriverID()); err != nil {
			return views.OrderView{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return views.OrderView{}, err
	}

	view := views.NewOrderView(o, owner, assigned)
	h.publish(ctx, events.OrderStatusChanged, events.OrderStatusChangedPayload{
		Order:          view,
		PreviousStatus: change.Previous.String(),
		NewStatus:      change.Current.String(),
	}, now, orderTopics(o, change.ReleasedDriver)...)

	if released != nil && availability.Changed() {
		h.publishAvailability(ctx, released, now)
	}

	return view, nil
}
