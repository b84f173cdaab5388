package commands

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"
)

// ConnectDriverCommandHandler and DisconnectDriverCommandHandler track driver presence.
//
// Both lock the driver row for the read-modify-write, so presence changes for one driver
// serialize, and bump its version, so an assignment that read the driver before the change
// loses with a conflict.
type ConnectDriverCommandHandler struct {
	runtime
	uowFactory DriverUoWFactory
}

// NewConnectDriverCommandHandler creates the handler run when a driver socket opens.
func NewConnectDriverCommandHandler(uowFactory DriverUoWFactory, bus ports.NotificationBus, opts ...Option) ConnectDriverCommandHandler {
	return ConnectDriverCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle marks the driver online. The driver becomes available unless they hold an active
// order or are blocked.
func (h ConnectDriverCommandHandler) Handle(ctx context.Context, cmd ConnectDriverCommand) (views.DriverView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("connect_driver", err)
	return view, err
}

func (h ConnectDriverCommandHandler) handle(ctx context.Context, cmd ConnectDriverCommand) (views.DriverView, error) {
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

	busy, err := uow.OrderRepository().HasActiveForDriver(ctx, d.ID())
	if err != nil {
		return views.DriverView{}, err
	}

	now := h.clock()
	if _, err = d.Connect(cmd.ConnectionID(), busy, now); err != nil {
		return views.DriverView{}, err
	}

	if err = driversRepo.Update(ctx, d); err != nil {
		return views.DriverView{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return views.DriverView{}, err
	}

	view := views.NewDriverView(d)
	h.publish(ctx, events.DriverOnline, events.DriverPayload{Driver: view}, now, events.Admins(), events.Broadcast())
	h.publishAvailability(ctx, d, now)
	return view, nil
}

type DisconnectDriverCommandHandler struct {
	runtime
	uowFactory DriverUoWFactory
}

// NewDisconnectDriverCommandHandler creates the handler run when a driver socket closes.
// A disconnect for a connection that has since been replaced is ignored.
func NewDisconnectDriverCommandHandler(
	uowFactory DriverUoWFactory,
	bus ports.NotificationBus,
	opts ...Option,
) DisconnectDriverCommandHandler {
	return DisconnectDriverCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle marks the driver offline and unavailable. In-flight orders are left alone.
// It reports false when the connection was stale and nothing changed.
func (h DisconnectDriverCommandHandler) Handle(ctx context.Context, cmd DisconnectDriverCommand) (bool, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	applied, err := h.handle(ctx, cmd)
	h.observe("disconnect_driver", err)
	return applied, err
}

func (h DisconnectDriverCommandHandler) handle(ctx context.Context, cmd DisconnectDriverCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driversRepo := uow.DriverRepository()

	d, err := driversRepo.GetForUpdate(ctx, cmd.DriverID())
	if err != nil {
		return false, err
	}

	now := h.clock()
	if _, ok := d.Disconnect(cmd.ConnectionID(), now); !ok {
		h.log.Debug("stale disconnect ignored",
			logger.String("driverId", d.ID().String()),
			logger.String("connectionId", cmd.ConnectionID()))
		return false, nil
	}

	if err = driversRepo.Update(ctx, d); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	view := views.NewDriverView(d)
	h.publish(ctx, events.DriverOffline, events.DriverPayload{Driver: view}, now, events.Admins(), events.Broadcast())
	h.publishAvailability(ctx, d, now)
	return true, nil
}
