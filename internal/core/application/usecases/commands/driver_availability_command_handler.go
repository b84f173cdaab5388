package commands

import (
	"context"

	"dispatch/internal/core/application/views"
	"dispatch/internal/core/ports"
)

// SetDriverAvailabilityCommandHandler toggles availability. Setting the current value again
// is a no-op: nothing is written and nothing is published.
type SetDriverAvailabilityCommandHandler struct {
	runtime
	uowFactory DriverUoWFactory
}

// NewSetDriverAvailabilityCommandHandler creates the handler behind the availability
// toggle, used by both the REST route and the driver socket.
func NewSetDriverAvailabilityCommandHandler(
	uowFactory DriverUoWFactory,
	bus ports.NotificationBus,
	opts ...Option,
) SetDriverAvailabilityCommandHandler {
	return SetDriverAvailabilityCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle applies the toggle. Becoming available fails with a conflict while the driver
// holds an active order or is blocked.
func (h SetDriverAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetDriverAvailabilityCommand) (views.DriverView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("set_driver_availability", err)
	return view, err
}

func (h SetDriverAvailabilityCommandHandler) handle(ctx context.Context, cmd SetDriverAvailabilityCommand) (views.DriverView, error) {
	if err := cmd.Validate(); err != nil {
		return views.DriverView{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return views.DriverView{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driversRepo := uow.DriverRepository()

	d, err := driversRepo.GetForUpdate(ctx, cmd.DriverID())
	if err != nil {
		return views.DriverView{}, err
	}

	if d.IsAvailable() == cmd.Available() {
		return views.NewDriverView(d), nil
	}

	busy := false
	if cmd.Available() {
		if busy, err = uow.OrderRepository().HasActiveForDriver(ctx, d.ID()); err != nil {
			return views.DriverView{}, err
		}
	}

	now := h.clock()
	if _, err = d.SetAvailability(cmd.Available(), busy, now); err != nil {
		return views.DriverView{}, err
	}

	if err = driversRepo.Update(ctx, d); err != nil {
		return views.DriverView{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return views.DriverView{}, err
	}

	h.publishAvailability(ctx, d, now)
	return views.NewDriverView(d), nil
}

// SetDriverBlockedCommandHandler blocks or unblocks a driver. Blocking also takes the
// driver off the market.
type SetDriverBlockedCommandHandler struct {
	runtime
	uowFactory DriverUoWFactory
}

// NewSetDriverBlockedCommandHandler creates the handler.
func NewSetDriverBlockedCommandHandler(
	uowFactory DriverUoWFactory,
	bus ports.NotificationBus,
	opts ...Option,
) SetDriverBlockedCommandHandler {
	return SetDriverBlockedCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle is a no-op when the driver is already in the requested state.
func (h SetDriverBlockedCommandHandler) Handle(ctx context.Context, cmd SetDriverBlockedCommand) (views.DriverView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("set_driver_blocked", err)
	return view, err
}

func (h SetDriverBlockedCommandHandler) handle(ctx context.Context, cmd SetDriverBlockedCommand) (views.DriverView, error) {
	if err := cmd.Validate(); err != nil {
		return views.DriverView{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return views.DriverView{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driversRepo := uow.DriverRepository()

	d, err := driversRepo.GetForUpdate(ctx, cmd.DriverID())
	if err != nil {
		return views.DriverView{}, err
	}

	now := h.clock()
	if changed, _ := d.SetBlocked(cmd.Blocked(), now); !changed {
		return views.NewDriverView(d), nil
	}

	if err = driversRepo.Update(ctx, d); err != nil {
		return views.DriverView{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return views.DriverView{}, err
	}

	h.publishAvailability(ctx, d, now)
	return views.NewDriverView(d), nil
}
