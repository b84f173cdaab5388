package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/model/customer"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/logger"
)

// lookupCustomer resolves the customer shown in order views. A customer that vanished is
// not an error for commands that only display it.
func lookupCustomer(ctx context.Context, customers ports.CustomerRepository, id kernel.UUID) (*customer.Customer, error) {
	c, err := customers.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	return c, err
}

// lookupDriver is lookupCustomer for the assigned driver.
func lookupDriver(ctx context.Context, drivers ports.DriverRepository, id *kernel.UUID) (*driver.Driver, error) {
	if id == nil {
		return nil, nil
	}
	d, err := drivers.Get(ctx, *id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	return d, err
}

// releaseDriver frees the driver an order let go of. It must run after the order write so
// that rows are locked order first, driver second.
func (r runtime) releaseDriver(
	ctx context.Context,
	drivers ports.DriverRepository,
	id *kernel.UUID,
	now time.Time,
) (*driver.Driver, driver.AvailabilityChange, error) {
	if id == nil {
		return nil, driver.AvailabilityChange{}, nil
	}

	d, err := drivers.GetForUpdate(ctx, *id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		r.log.Warn("released driver no longer exists", logger.String("driverId", id.String()))
		return nil, driver.AvailabilityChange{}, nil
	}
	if err != nil {
		return nil, driver.AvailabilityChange{}, err
	}

	change := d.Release(now)
	if err = drivers.Update(ctx, d); err != nil {
		return nil, driver.AvailabilityChange{}, err
	}

	return d, change, nil
}

// orderTopics is events.OrderTopics plus the channel of a driver the change detached.
func orderTopics(o *order.Order, released *kernel.UUID) []events.Topic {
	topics := events.OrderTopics(o)
	if released != nil && !o.HasDriver(*released) {
		topics = append(topics, events.Driver(*released))
	}
	return topics
}

// publishAvailability announces a driver's availability flag to admins, everyone and the driver.
func (r runtime) publishAvailability(ctx context.Context, d *driver.Driver, at time.Time) {
	r.publish(ctx, events.DriverAvailabilityChanged, events.DriverPayload{Driver: views.NewDriverView(d)}, at,
		events.Admins(), events.Broadcast(), events.Driver(d.ID()))
}
