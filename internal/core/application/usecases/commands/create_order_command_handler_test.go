package commands_test

import (
	"errors"
	"fmt"
	"testing"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreateCommand(t *testing.T, customerID kernel.UUID) commands.CreateOrderCommand {
	t.Helper()

	cmd, err := commands.NewCreateOrderCommand(customerID, "sedan", testLocations(t),
		order.FareInput{Total: ptr(640.0)}, "call on arrival", ptr(34.5))
	require.NoError(t, err)
	return cmd
}

func TestCreateOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	customerID := kernel.NewUUID()
	cmd := newCreateCommand(t, customerID)

	uow := newMockUoW()
	uow.expectTx(true)
	uow.customers.On("Get", mock.Anything, customerID).Return(testCustomer(t, customerID, false), nil).Once()
	uow.vehicles.On("GetActiveByType", mock.Anything, "sedan").Return(testVehicleType(t, "sedan"), nil).Once()
	uow.orders.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once()

	bus := &recordingBus{}
	h := commands.NewCreateOrderCommandHandler(factoryOf(uow), bus, fixedClock())

	view, err := h.Handle(ctx, cmd)

	require.NoError(t, err)
	uow.assertAll(t)

	assert.Equal(t, "pending", view.Status)
	assert.Nil(t, view.DriverID)
	assert.Nil(t, view.AssignedBy)
	assert.Nil(t, view.AssignedAt)
	require.NotNil(t, view.Customer)
	assert.Equal(t, "Anita Rao", view.Customer.Name)
	assert.Equal(t, testNow, view.CreatedAt)
	_, err = order.ParseBookingID(view.BookingID)
	require.NoError(t, err)

	require.Equal(t, []events.Name{events.OrderCreated}, bus.names())
	p, _ := bus.first(events.OrderCreated)
	assert.Contains(t, p.topics, events.Admins())
	assert.Contains(t, p.topics, events.Broadcast())
	assert.Len(t, p.topics, 3)
}

func TestCreateOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	h := commands.NewCreateOrderCommandHandler(factoryOf(newMockUoW()), nil)

	_, err := h.Handle(t.Context(), commands.CreateOrderCommand{})

	require.ErrorIs(t, err, commands.ErrCreateOrderCommandIsNotConstructed)
}

func TestCreateOrderCommandHandler_Handle_CustomerNotFound(t *testing.T) {
	customerID := kernel.NewUUID()
	uow := newMockUoW()
	uow.expectTx(false)
	uow.customers.On("Get", mock.Anything, customerID).
		Return(nil, errs.NewObjectNotFoundError("customer", customerID)).Once()

	bus := &recordingBus{}
	h := commands.NewCreateOrderCommandHandler(factoryOf(uow), bus)

	_, err := h.Handle(t.Context(), newCreateCommand(t, customerID))

	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	uow.assertAll(t)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	assert.Empty(t, bus.names())
}

func TestCreateOrderCommandHandler_Handle_BlockedCustomer(t *testing.T) {
	customerID := kernel.NewUUID()
	uow := newMockUoW()
	uow.expectTx(false)
	uow.customers.On("Get", mock.Anything, customerID).Return(testCustomer(t, customerID, true), nil).Once()

	h := commands.NewCreateOrderCommandHandler(factoryOf(uow), nil)

	_, err := h.Handle(t.Context(), newCreateCommand(t, customerID))

	require.ErrorIs(t, err, errs.ErrConflict)
	uow.assertAll(t)
}

func TestCreateOrderCommandHandler_Handle_InactiveVehicleType(t *testing.T) {
	customerID := kernel.NewUUID()
	uow := newMockUoW()
	uow.expectTx(false)
	uow.customers.On("Get", mock.Anything, customerID).Return(testCustomer(t, customerID, false), nil).Once()
	uow.vehicles.On("GetActiveByType", mock.Anything, "sedan").
		Return(nil, errs.NewObjectNotFoundError("vehicleType", "sedan")).Once()

	h := commands.NewCreateOrderCommandHandler(factoryOf(uow), nil)

	_, err := h.Handle(t.Context(), newCreateCommand(t, customerID))

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.assertAll(t)
	uow.orders.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestCreateOrderCommandHandler_Handle_BeginError(t *testing.T) {
	uow := newMockUoW()
	uow.On("Begin", mock.Anything).Return(errs.NewUnavailableError("begin", errors.New("dial tcp: timeout"))).Once()

	h := commands.NewCreateOrderCommandHandler(factoryOf(uow), nil)

	_, err := h.Handle(t.Context(), newCreateCommand(t, kernel.NewUUID()))

	require.Error(t, err)
	assert.True(t, errs.IsRetryable(err))
	uow.assertAll(t)
}

func TestCreateOrderCommandHandler_Handle_RetriesBookingIDCollision(t *testing.T) {
	customerID := kernel.NewUUID()
	taken := errs.NewConflictErrorWithCause("booking id already exists", ports.ErrBookingIDTaken)

	first := newMockUoW()
	first.expectTx(false)
	first.customers.On("Get", mock.Anything, customerID).Return(testCustomer(t, customerID, false), nil).Once()
	first.vehicles.On("GetActiveByType", mock.Anything, "sedan").Return(testVehicleType(t, "sedan"), nil).Once()
	first.orders.On("Add", mock.Anything, mock.Anything).Return(taken).Once()

	second := newMockUoW()
	second.expectTx(true)
	second.customers.On("Get", mock.Anything, customerID).Return(testCustomer(t, customerID, false), nil).Once()
	second.vehicles.On("GetActiveByType", mock.Anything, "sedan").Return(testVehicleType(t, "sedan"), nil).Once()
	second.orders.On("Add", mock.Anything, mock.Anything).Return(nil).Once()

	bus := &recordingBus{}
	h := commands.NewCreateOrderCommandHandler(factoryOf(first, second), bus)

	view, err := h.Handle(t.Context(), newCreateCommand(t, customerID))

	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)
	first.assertAll(t)
	second.assertAll(t)
	assert.Equal(t, []events.Name{events.OrderCreated}, bus.names())
}

func TestCreateOrderCommandHandler_Handle_GivesUpAfterRepeatedCollisions(t *testing.T) {
	customerID := kernel.NewUUID()
	taken := fmt.Errorf("insert order: %w", errs.NewConflictErrorWithCause("booking id already exists", ports.ErrBookingIDTaken))

	uow := newMockUoW()
	uow.expectTx(false)
	uow.customers.On("Get", mock.Anything, customerID).Return(testCustomer(t, customerID, false), nil).Times(3)
	uow.vehicles.On("GetActiveByType", mock.Anything, "sedan").Return(testVehicleType(t, "sedan"), nil).Times(3)
	uow.orders.On("Add", mock.Anything, mock.Anything).Return(taken).Times(3)

	bus := &recordingBus{}
	h := commands.NewCreateOrderCommandHandler(factoryOf(uow), bus)

	_, err := h.Handle(t.Context(), newCreateCommand(t, customerID))

	require.ErrorIs(t, err, ports.ErrBookingIDTaken)
	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	uow.assertAll(t)
	assert.Empty(t, bus.names())
}

func TestCreateOrderCommandHandler_Handle_CommitError(t *testing.T) {
	customerID := kernel.NewUUID()
	uow := newMockUoW()
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit", mock.Anything).Return(errors.New("commit error")).Once()
	uow.On("Rollback", mock.Anything).Return()
	uow.customers.On("Get", mock.Anything, customerID).Return(testCustomer(t, customerID, false), nil).Once()
	uow.vehicles.On("GetActiveByType", mock.Anything, "sedan").Return(testVehicleType(t, "sedan"), nil).Once()
	uow.orders.On("Add", mock.Anything, mock.Anything).Return(nil).Once()

	bus := &recordingBus{}
	h := commands.NewCreateOrderCommandHandler(factoryOf(uow), bus)

	_, err := h.Handle(t.Context(), newCreateCommand(t, customerID))

	require.Error(t, err)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
	uow.assertAll(t)
	assert.Empty(t, bus.names())
}
