package commands_test

import (
	"errors"
	"testing"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewAssignDriverCommand(t *testing.T) {
	t.Run("accepts a nil admin", func(t *testing.T) {
		cmd, err := commands.NewAssignDriverCommand(kernel.NewUUID(), kernel.NewUUID(), nil)

		require.NoError(t, err)
		assert.Nil(t, cmd.AssignedBy())
	})

	t.Run("rejects missing ids", func(t *testing.T) {
		_, err := commands.NewAssignDriverCommand(kernel.UUID{}, kernel.UUID{}, &kernel.UUID{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "orderId")
		assert.Contains(t, err.Error(), "driverId")
		assert.Contains(t, err.Error(), "assignedBy")
	})
}

func TestAssignDriverCommandHandler_Handle_Success(t *testing.T) {
	o := pendingOrder(t)
	d := testDriver(t, connected("sock-1"))
	adminID := kernel.NewUUID()

	uow := newMockUoW()
	uow.expectTx(true)
	uow.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	uow.drivers.On("Get", mock.Anything, d.ID()).Return(d, nil).Once()
	uow.orders.On("Update", mock.Anything, o).Return(nil).Once()
	uow.drivers.On("Reserve", mock.Anything, d).Return(nil).Once()
	uow.customers.On("Get", mock.Anything, o.CustomerID()).
		Return(testCustomer(t, o.CustomerID(), false), nil).Once()

	bus := &recordingBus{}
	h := commands.NewAssignDriverCommandHandler(factoryOf(uow), bus, fixedClock())
	cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(), &adminID)
	require.NoError(t, err)

	view, err := h.Handle(t.Context(), cmd)

	require.NoError(t, err)
	uow.assertAll(t)

	assert.Equal(t, "assigned", view.Status)
	require.NotNil(t, view.DriverID)
	assert.Equal(t, d.ID().String(), *view.DriverID)
	require.NotNil(t, view.AssignedBy)
	assert.Equal(t, adminID.String(), *view.AssignedBy)
	require.NotNil(t, view.AssignedAt)
	assert.Equal(t, testNow, *view.AssignedAt)
	require.NotNil(t, view.Driver)
	assert.Equal(t, "Suresh Babu", view.Driver.Name)
	assert.False(t, d.IsAvailable())

	p, ok := bus.first(events.OrderAssigned)
	require.True(t, ok)
	assert.Contains(t, p.topics, events.Driver(d.ID()))
	assert.Contains(t, p.topics, events.Admins())
	assert.Contains(t, p.topics, events.Broadcast())
	assert.Contains(t, p.topics, events.Booking(o.BookingID()))
}

func TestAssignDriverCommandHandler_Handle_OrderNotPending(t *testing.T) {
	o := assignedOrder(t, kernel.NewUUID())
	otherDriver := kernel.NewUUID()

	uow := newMockUoW()
	uow.expectTx(false)
	uow.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()

	bus := &recordingBus{}
	h := commands.NewAssignDriverCommandHandler(factoryOf(uow), bus)
	cmd, err := commands.NewAssignDriverCommand(o.ID(), otherDriver, nil)
	require.NoError(t, err)

	_, err = h.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	assert.EqualError(t, err, "Cannot assign driver. Order status is assigned")
	uow.assertAll(t)
	uow.drivers.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	assert.Empty(t, bus.names())
}

func TestAssignDriverCommandHandler_Handle_OrderNotFound(t *testing.T) {
	orderID := kernel.NewUUID()

	uow := newMockUoW()
	uow.expectTx(false)
	uow.orders.On("Get", mock.Anything, orderID).Return(nil, errs.NewObjectNotFoundError("order", orderID)).Once()

	h := commands.NewAssignDriverCommandHandler(factoryOf(uow), nil)
	cmd, err := commands.NewAssignDriverCommand(orderID, kernel.NewUUID(), nil)
	require.NoError(t, err)

	_, err = h.Handle(t.Context(), cmd)

	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	uow.assertAll(t)
}

func TestAssignDriverCommandHandler_Handle_DriverNotFound(t *testing.T) {
	o := pendingOrder(t)
	driverID := kernel.NewUUID()

	uow := newMockUoW()
	uow.expectTx(false)
	uow.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	uow.drivers.On("Get", mock.Anything, driverID).Return(nil, errs.NewObjectNotFoundError("driver", driverID)).Once()

	h := commands.NewAssignDriverCommandHandler(factoryOf(uow), nil)
	cmd, err := commands.NewAssignDriverCommand(o.ID(), driverID, nil)
	require.NoError(t, err)

	_, err = h.Handle(t.Context(), cmd)

	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.Equal(t, order.Pending, o.Status())
	uow.assertAll(t)
}

func TestAssignDriverCommandHandler_Handle_DriverNotAssignable(t *testing.T) {
	testCases := []struct {
		name    string
		opts    []driverOption
		message string
	}{
		{"unavailable", []driverOption{unavailable()}, "Driver is not available"},
		{"unverified", []driverOption{unverified()}, "Driver is not verified"},
		{"blocked", []driverOption{blocked()}, "Driver is blocked"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o := pendingOrder(t)
			d := testDriver(t, tc.opts...)

			uow := newMockUoW()
			uow.expectTx(false)
			uow.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
			uow.drivers.On("Get", mock.Anything, d.ID()).Return(d, nil).Once()

			bus := &recordingBus{}
			h := commands.NewAssignDriverCommandHandler(factoryOf(uow), bus)
			cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(), nil)
			require.NoError(t, err)

			_, err = h.Handle(t.Context(), cmd)

			require.ErrorIs(t, err, errs.ErrConflict)
			assert.EqualError(t, err, tc.message)
			assert.Equal(t, order.Pending, o.Status())
			assert.Nil(t, o.DriverID())
			uow.assertAll(t)
			uow.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			assert.Empty(t, bus.names())
		})
	}
}

func TestAssignDriverCommandHandler_Handle_LostRaceOnDriverRollsBack(t *testing.T) {
	o := pendingOrder(t)
	d := testDriver(t)

	uow := newMockUoW()
	uow.expectTx(false)
	uow.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	uow.drivers.On("Get", mock.Anything, d.ID()).Return(d, nil).Once()
	uow.orders.On("Update", mock.Anything, o).Return(nil).Once()
	uow.drivers.On("Reserve", mock.Anything, d).Return(errs.NewConflictError("Driver is not available")).Once()

	bus := &recordingBus{}
	h := commands.NewAssignDriverCommandHandler(factoryOf(uow), bus)
	cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(), nil)
	require.NoError(t, err)

	_, err = h.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	uow.assertAll(t)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	uow.AssertCalled(t, "Rollback", mock.Anything)
	assert.Empty(t, bus.names())
}

func TestAssignDriverCommandHandler_Handle_StoreTimeoutIsRetryable(t *testing.T) {
	o := pendingOrder(t)
	d := testDriver(t)

	uow := newMockUoW()
	uow.expectTx(false)
	uow.orders.On("Get", mock.Anything, o.ID()).Return(o, nil).Once()
	uow.drivers.On("Get", mock.Anything, d.ID()).Return(d, nil).Once()
	uow.orders.On("Update", mock.Anything, o).
		Return(errs.NewUnavailableError("update order", errors.New("context deadline exceeded"))).Once()

	h := commands.NewAssignDriverCommandHandler(factoryOf(uow), nil)
	cmd, err := commands.NewAssignDriverCommand(o.ID(), d.ID(), nil)
	require.NoError(t, err)

	_, err = h.Handle(t.Context(), cmd)

	assert.True(t, errs.IsRetryable(err))
	uow.assertAll(t)
	uow.drivers.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}
