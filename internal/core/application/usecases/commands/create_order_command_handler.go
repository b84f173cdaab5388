package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/model/customer"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"
)

// createOrderAttempts bounds the retries on booking id collisions.
const createOrderAttempts = 3

// CreateOrderCommandHandler places new orders in the pending state.
//
// Each attempt runs in its own transaction. When the store reports that the generated
// booking id is already taken, the handler retries with a fresh id; any other failure is
// returned immediately.
type CreateOrderCommandHandler struct {
	runtime
	uowFactory UoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order placement.
// The customer must exist and not be blocked, and the vehicle type must be active.
func NewCreateOrderCommandHandler(uowFactory UoWFactory, bus ports.NotificationBus, opts ...Option) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		runtime:    newRuntime(bus, opts...),
		uowFactory: uowFactory,
	}
}

// Handle creates the order and publishes order.created to admins, broadcast and the booking
// channel. It returns the order resolved with its customer.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (views.OrderView, error) {
	ctx, cancel := h.bound(ctx)
	defer cancel()

	view, err := h.handle(ctx, cmd)
	h.observe("create_order", err)
	return view, err
}

func (h CreateOrderCommandHandler) handle(ctx context.Context, cmd CreateOrderCommand) (views.OrderView, error) {
	if err := cmd.Validate(); err != nil {
		return views.OrderView{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= createOrderAttempts; attempt++ {
		created, owner, err := h.attempt(ctx, cmd)
		if errors.Is(err, ports.ErrBookingIDTaken) {
			h.log.Warn("booking id collision", logger.Int("attempt", attempt), logger.Error(err))
			lastErr = err
			continue
		}
		if err != nil {
			return views.OrderView{}, err
		}

		view := views.NewOrderView(created, owner, nil)
		h.publish(ctx, events.OrderCreated, events.OrderPayload{Order: view}, created.CreatedAt(),
			events.OrderTopics(created)...)
		return view, nil
	}

	return views.OrderView{}, lastErr
}

func (h CreateOrderCommandHandler) attempt(ctx context.Context, cmd CreateOrderCommand) (*order.Order, *customer.Customer, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	owner, err := uow.CustomerRepository().Get(ctx, cmd.CustomerID())
	if err != nil {
		return nil, nil, err
	}
	if err = owner.CanPlaceOrders(); err != nil {
		return nil, nil, err
	}

	if _, err = uow.VehicleRepository().GetActiveByType(ctx, cmd.VehicleType()); err != nil {
		return nil, nil, err
	}

	created, err := h.newOrder(cmd, h.clock())
	if err != nil {
		return nil, nil, err
	}

	if err = uow.OrderRepository().Add(ctx, created); err != nil {
		return nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return created, owner, nil
}

func (h CreateOrderCommandHandler) newOrder(cmd CreateOrderCommand, now time.Time) (*order.Order, error) {
	bookingID, err := order.NewBookingID(now)
	if err != nil {
		return nil, err
	}

	return order.NewOrder(
		kernel.NewUUID(),
		bookingID,
		cmd.CustomerID(),
		cmd.VehicleType(),
		cmd.Locations(),
		cmd.Fare(),
		cmd.DistanceKm(),
		cmd.Notes(),
		now,
	)
}
