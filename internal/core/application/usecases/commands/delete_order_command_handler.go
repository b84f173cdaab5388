package commands

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/ports"
)

// DeleteOrderCommandHandler removes an order outright.
//
// The assigned driver, if any, is not released: deleting an in-flight order leaves the
// driver unavailable until an admin or the driver toggles availability.
type DeleteOrderCommandHandler struct {
	runtime
	uowFactory UoWFactory
}

// NewDeleteOrderCommandHandler creates the admin-only order removal handler.
func NewDeleteOrderCommandHandler(uowFactory UoWFactory, bus ports.NotificationBus, opts ...Option) DeleteOrderCommandHandler {
	return DeleteOrderCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle deletes the order in any status and publishes order.deleted to the order's
// channels. Unknown ids return errs.ObjectNotFoundError.
func (h DeleteOrderCommandHandler) Handle(ctx context.Context, cmd DeleteOrderCommand) error {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	err := h.handle(ctx, cmd)
	h.observe("delete_order", err)
	return err
}

func (h DeleteOrderCommandHandler) handle(ctx context.Context, cmd DeleteOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ordersRepo := uow.OrderRepository()

	o, err := ordersRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	if err = ordersRepo.Delete(ctx, o.ID()); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.publish(ctx, events.OrderDeleted, events.OrderDeletedPayload{
		OrderID:   o.ID().String(),
		BookingID: o.BookingID().String(),
	}, h.clock(), events.OrderTopics(o)...)
	return nil
}
