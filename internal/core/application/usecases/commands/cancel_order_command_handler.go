package commands

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/ports"
)

// CancelOrderCommandHandler cancels non-terminal orders and frees their driver.
type CancelOrderCommandHandler struct {
	runtime
	uowFactory UoWFactory
}

// NewCancelOrderCommandHandler creates the handler for order cancellation.
//
// Example:
//
//	cmd, _ := commands.NewCancelOrderCommand(orderID, "customer no-show")
//	view, err := handler.Handle(ctx, cmd)
//	if errs.KindOf(err) == errs.KindConflict {
//	    // the order was already completed or cancelled
//	}
func NewCancelOrderCommandHandler(uowFactory UoWFactory, bus ports.NotificationBus, opts ...Option) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle cancels the order and publishes order.cancelled to the order's channels.
// A driver holding the order becomes available again in the same transaction.
// Completed and cancelled orders are rejected with a conflict.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (views.OrderView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("cancel_order", err)
	return view, err
}

func (h CancelOrderCommandHandler) handle(ctx context.Context, cmd CancelOrderCommand) (views.OrderView, error) {
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
	change, err := o.Cancel(cmd.Reason(), now)
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

	if err = uow.Commit(ctx); err != nil {
		return views.OrderView{}, err
	}

	view := views.NewOrderView(o, owner, released)
	h.publish(ctx, events.OrderCancelled, events.OrderCancelledPayload{
		Order:          view,
		PreviousStatus: change.Previous.String(),
		Reason:         o.CancellationReason(),
	}, now, events.OrderTopics(o)...)

	if released != nil && availability.Changed() {
		h.publishAvailability(ctx, released, now)
	}

	return view, nil
}
