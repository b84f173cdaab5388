package commands

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// UpdateDriverLocationCommandHandler stores a position report and fans it out to admins,
// everyone and the driver's own channel.
type UpdateDriverLocationCommandHandler struct {
	runtime
	uowFactory DriverUoWFactory
}

// NewUpdateDriverLocationCommandHandler creates a new location handler.
func NewUpdateDriverLocationCommandHandler(
	uowFactory DriverUoWFactory,
	bus ports.NotificationBus,
	opts ...Option,
) UpdateDriverLocationCommandHandler {
	return UpdateDriverLocationCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle stores the position together with its geohash and publishes
// driver.location_update.
func (h UpdateDriverLocationCommandHandler) Handle(ctx context.Context, cmd UpdateDriverLocationCommand) (views.DriverView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("update_driver_location", err)
	return view, err
}

func (h UpdateDriverLocationCommandHandler) handle(ctx context.Context, cmd UpdateDriverLocationCommand) (views.DriverView, error) {
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
	if err = d.MoveTo(cmd.Point(), now); err != nil {
		return views.DriverView{}, err
	}

	if err = driversRepo.Update(ctx, d); err != nil {
		return views.DriverView{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return views.DriverView{}, err
	}

	point := cmd.Point()
	h.publish(ctx, events.DriverLocationUpdate, events.DriverLocationPayload{
		DriverID:    d.ID().String(),
		Coordinates: point.Coordinates(),
		Geohash:     point.Geohash(kernel.GeohashPrecision),
		UpdatedAt:   now,
	}, now, events.Admins(), events.Broadcast(), events.Driver(d.ID()))

	return views.NewDriverView(d), nil
}
