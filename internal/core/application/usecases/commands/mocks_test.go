package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/customer"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() commands.Option {
	return commands.WithClock(func() time.Time { return testNow })
}

func ptr[T any](v T) *T {
	return &v
}

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) HasActiveForDriver(ctx context.Context, driverID kernel.UUID) (bool, error) {
	args := m.Called(ctx, driverID)
	return args.Bool(0), args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*driver.Driver)
	return d, args.Error(1)
}

func (m *MockDriverRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*driver.Driver)
	return d, args.Error(1)
}

func (m *MockDriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Reserve(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) FindAssignableInCells(ctx context.Context, cells []string) ([]*driver.Driver, error) {
	args := m.Called(ctx, cells)
	ds, _ := args.Get(0).([]*driver.Driver)
	return ds, args.Error(1)
}

type MockCustomerRepository struct{ mock.Mock }

func (m *MockCustomerRepository) Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*customer.Customer)
	return c, args.Error(1)
}

type MockVehicleRepository struct{ mock.Mock }

func (m *MockVehicleRepository) GetActiveByType(ctx context.Context, vehicleType string) (*vehicle.VehicleType, error) {
	args := m.Called(ctx, vehicleType)
	v, _ := args.Get(0).(*vehicle.VehicleType)
	return v, args.Error(1)
}

// MockUoW implements both commands.UoW and commands.DriverUoW.
type MockUoW struct {
	mock.Mock
	orders    *MockOrderRepository
	drivers   *MockDriverRepository
	customers *MockCustomerRepository
	vehicles  *MockVehicleRepository
}

func newMockUoW() *MockUoW {
	return &MockUoW{
		orders:    new(MockOrderRepository),
		drivers:   new(MockDriverRepository),
		customers: new(MockCustomerRepository),
		vehicles:  new(MockVehicleRepository),
	}
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	m.Called(ctx)
	return nil
}

func (m *MockUoW) OrderRepository() ports.OrderRepository       { return m.orders }
func (m *MockUoW) DriverRepository() ports.DriverRepository     { return m.drivers }
func (m *MockUoW) CustomerRepository() ports.CustomerRepository { return m.customers }
func (m *MockUoW) VehicleRepository() ports.VehicleRepository   { return m.vehicles }

// expectTx registers Begin, Rollback and, when commit is true, a successful Commit.
func (m *MockUoW) expectTx(commit bool) {
	m.On("Begin", mock.Anything).Return(nil)
	if commit {
		m.On("Commit", mock.Anything).Return(nil).Once()
	}
	m.On("Rollback", mock.Anything).Return()
}

func (m *MockUoW) assertAll(t *testing.T) {
	t.Helper()
	m.AssertExpectations(t)
	m.orders.AssertExpectations(t)
	m.drivers.AssertExpectations(t)
	m.customers.AssertExpectations(t)
	m.vehicles.AssertExpectations(t)
}

type MockUoWFactory struct {
	uows []*MockUoW
	next int
}

func factoryOf(uows ...*MockUoW) *MockUoWFactory {
	return &MockUoWFactory{uows: uows}
}

func (f *MockUoWFactory) Create() commands.UoW {
	u := f.uows[f.next]
	if f.next < len(f.uows)-1 {
		f.next++
	}
	return u
}

type MockDriverUoWFactory struct{ uow *MockUoW }

func (f MockDriverUoWFactory) Create() commands.DriverUoW {
	return f.uow
}

type published struct {
	event  events.Event
	topics []events.Topic
}

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []published
}

func (b *recordingBus) Publish(_ context.Context, event events.Event, topics ...events.Topic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{event: event, topics: topics})
}

func (b *recordingBus) names() []events.Name {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]events.Name, 0, len(b.events))
	for _, p := range b.events {
		names = append(names, p.event.Name)
	}
	return names
}

func (b *recordingBus) first(name events.Name) (published, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.events {
		if p.event.Name == name {
			return p, true
		}
	}
	return published{}, false
}

func testLocations(t *testing.T) order.Locations {
	t.Helper()

	pickupPoint, err := kernel.NewGeoPoint(12.9716, 77.5946)
	require.NoError(t, err)
	dropoffPoint, err := kernel.NewGeoPoint(13.1986, 77.7066)
	require.NoError(t, err)

	pickup, err := order.NewStop(order.PickupStop, "MG Road", pickupPoint)
	require.NoError(t, err)
	dropoff, err := order.NewStop(order.DropoffStop, "Kempegowda Airport", dropoffPoint)
	require.NoError(t, err)

	return order.Locations{Pickup: pickup, Dropoff: dropoff}
}

func pendingOrder(t *testing.T) *order.Order {
	t.Helper()

	bookingID, err := order.NewBookingID(testNow.Add(-time.Hour))
	require.NoError(t, err)
	fare, err := order.NewFare(order.FareInput{Total: ptr(640.0), Base: ptr(80.0), DistanceCharge: ptr(500.0)})
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), bookingID, kernel.NewUUID(), "sedan",
		testLocations(t), fare, 34.5, "", testNow.Add(-time.Hour))
	require.NoError(t, err)
	return o
}

func assignedOrder(t *testing.T, driverID kernel.UUID) *order.Order {
	t.Helper()

	o := pendingOrder(t)
	require.NoError(t, o.AssignDriver(driverID, nil, testNow.Add(-30*time.Minute)))
	o.MarkPersisted()
	return o
}

type driverOption func(*driver.Snapshot)

func unavailable() driverOption {
	return func(s *driver.Snapshot) { s.Available = false }
}

func blocked() driverOption {
	return func(s *driver.Snapshot) { s.Blocked = true }
}

func unverified() driverOption {
	return func(s *driver.Snapshot) { s.Verification = driver.VerificationUnderReview }
}

func connected(id string) driverOption {
	return func(s *driver.Snapshot) { s.ConnectionID = &id }
}

func testDriver(t *testing.T, opts ...driverOption) *driver.Driver {
	t.Helper()

	s := driver.Snapshot{
		ID:           kernel.NewUUID(),
		Name:         "Suresh Babu",
		Phone:        "+919845000111",
		VehicleType:  "sedan",
		Available:    true,
		Verification: driver.VerificationVerified,
		Active:       true,
		CreatedAt:    testNow.Add(-24 * time.Hour),
		UpdatedAt:    testNow.Add(-time.Hour),
		Version:      3,
	}
	for _, opt := range opts {
		opt(&s)
	}

	d, err := driver.RestoreDriver(s)
	require.NoError(t, err)
	return d
}

func testCustomer(t *testing.T, id kernel.UUID, isBlocked bool) *customer.Customer {
	t.Helper()

	c, err := customer.RestoreCustomer(id, "Anita Rao", "+919900001234", isBlocked)
	require.NoError(t, err)
	return c
}

func testVehicleType(t *testing.T, key string) *vehicle.VehicleType {
	t.Helper()

	v, err := vehicle.RestoreVehicleType(key, "Sedan", 80, 14, 4, true)
	require.NoError(t, err)
	return v
}
