package commands

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// AssignDriverCommandHandler orchestrates the assignment of a driver to a pending order.
//
// Both writes happen in one transaction and both are conditional: the order only while it
// is still pending at the version read, the driver only while still available at the version
// read. When two assignments race for the same order or the same driver, exactly one commits
// and the other gets a conflict with nothing written.
//
// Example:
//
//	cmd, _ := NewAssignDriverCommand(orderID, driverID, &adminID)
//	view, err := handler.Handle(ctx, cmd)
//	switch errs.KindOf(err) {
//	case errs.KindNotFound:
//	    // unknown order or driver
//	case errs.KindConflict:
//	    // order no longer pending, or driver not assignable
//	}
type AssignDriverCommandHandler struct {
	runtime
	uowFactory UoWFactory
	dispatcher services.OrderDispatcher
}

// NewAssignDriverCommandHandler creates a handler for driver assignment.
// Requires a UoWFactory so the order and driver writes commit together.
func NewAssignDriverCommandHandler(uowFactory UoWFactory, bus ports.NotificationBus, opts ...Option) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
		dispatcher: services.NewOrderDispatcher(),
	}
}

// Handle assigns the driver and publishes order.assigned to admins, broadcast, the driver
// and the booking channel.
func (h AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) (views.OrderView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("assign_driver", err)
	return view, err
}

func (h AssignDriverCommandHandler) handle(ctx context.Context, cmd AssignDriverCommand) (views.OrderView, error) {
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

	// Order state is reported before the driver is even looked up.
	if err = o.CanAssignDriver(); err != nil {
		return views.OrderView{}, err
	}

	d, err := driversRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return views.OrderView{}, err
	}

	now := h.clock()
	if err = h.dispatcher.Dispatch(o, d, cmd.AssignedBy(), now); err != nil {
		return views.OrderView{}, err
	}

	if err = ordersRepo.Update(ctx, o); err != nil {
		return views.OrderView{}, err
	}

	if err = driversRepo.Reserve(ctx, d); err != nil {
		return views.OrderView{}, err
	}

	owner, err := lookupCustomer(ctx, uow.CustomerRepository(), o.CustomerID())
	if err != nil {
		return views.OrderView{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return views.OrderView{}, err
	}

	view := views.NewOrderView(o, owner, d)
	h.publish(ctx, events.OrderAssigned, events.OrderPayload{Order: view}, now, events.OrderTopics(o)...)
	return view, nil
}
