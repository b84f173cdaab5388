package cmd

import (
	"dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/in/ws"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	bus        ports.NotificationBus
	log        logger.Logger
	metrics    *metrics.Metrics
}

func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	bus ports.NotificationBus,
	log logger.Logger,
	m *metrics.Metrics,
) CompositionRoot {
	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		bus:        bus,
		log:        log,
		metrics:    m,
	}
}

func (c *CompositionRoot) commandOptions() []commands.Option {
	return []commands.Option{
		commands.WithLogger(c.log),
		commands.WithMetrics(c.metrics),
		commands.WithStoreTimeout(c.cfg.StoreTimeout),
	}
}

func (c *CompositionRoot) queryOptions() []queries.Option {
	return []queries.Option{queries.WithStoreTimeout(c.cfg.StoreTimeout)}
}

func (c *CompositionRoot) orderUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) driverUoWFactory() commands.DriverUoWFactory {
	return FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateUpdateOrderCommandHandler() commands.UpdateOrderCommandHandler {
	return commands.NewUpdateOrderCommandHandler(c.orderUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(c.orderUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateAssignDriverCommandHandler() commands.AssignDriverCommandHandler {
	return commands.NewAssignDriverCommandHandler(c.orderUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateDeleteOrderCommandHandler() commands.DeleteOrderCommandHandler {
	return commands.NewDeleteOrderCommandHandler(c.orderUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateConnectDriverCommandHandler() commands.ConnectDriverCommandHandler {
	return commands.NewConnectDriverCommandHandler(c.driverUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateDisconnectDriverCommandHandler() commands.DisconnectDriverCommandHandler {
	return commands.NewDisconnectDriverCommandHandler(c.driverUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateSetDriverAvailabilityCommandHandler() commands.SetDriverAvailabilityCommandHandler {
	return commands.NewSetDriverAvailabilityCommandHandler(c.driverUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateSetDriverBlockedCommandHandler() commands.SetDriverBlockedCommandHandler {
	return commands.NewSetDriverBlockedCommandHandler(c.driverUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	return commands.NewUpdateDriverLocationCommandHandler(c.driverUoWFactory(), c.bus, c.commandOptions()...)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB, c.queryOptions()...)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB, c.queryOptions()...)
}

func (c *CompositionRoot) CreateListDriverOrdersQueryHandler() queries.ListDriverOrdersQueryHandler {
	return queries.NewListDriverOrdersQueryHandler(c.gormDB, c.queryOptions()...)
}

func (c *CompositionRoot) CreateListCustomerOrdersQueryHandler() queries.ListCustomerOrdersQueryHandler {
	return queries.NewListCustomerOrdersQueryHandler(c.gormDB, c.queryOptions()...)
}

func (c *CompositionRoot) CreateNearbyDriversQueryHandler() queries.NearbyDriversQueryHandler {
	return queries.NewNearbyDriversQueryHandler(driverrepo.NewGormDriverRepository(c.gormDB), c.queryOptions()...)
}

func (c *CompositionRoot) CreateDashboardStatsQueryHandler() queries.DashboardStatsQueryHandler {
	return queries.NewDashboardStatsQueryHandler(c.gormDB, c.queryOptions()...)
}

// HTTPHandlers collects the use cases served over REST.
func (c *CompositionRoot) HTTPHandlers() http.Handlers {
	return http.Handlers{
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		UpdateOrder:       c.CreateUpdateOrderCommandHandler(),
		UpdateOrderStatus: c.CreateUpdateOrderStatusCommandHandler(),
		CancelOrder:       c.CreateCancelOrderCommandHandler(),
		AssignDriver:      c.CreateAssignDriverCommandHandler(),
		DeleteOrder:       c.CreateDeleteOrderCommandHandler(),

		SetDriverAvailability: c.CreateSetDriverAvailabilityCommandHandler(),
		SetDriverBlocked:      c.CreateSetDriverBlockedCommandHandler(),
		UpdateDriverLocation:  c.CreateUpdateDriverLocationCommandHandler(),

		ListOrders:         c.CreateListOrdersQueryHandler(),
		GetOrder:           c.CreateGetOrderQueryHandler(),
		ListDriverOrders:   c.CreateListDriverOrdersQueryHandler(),
		ListCustomerOrders: c.CreateListCustomerOrdersQueryHandler(),
		NearbyDrivers:      c.CreateNearbyDriversQueryHandler(),
		DashboardStats:     c.CreateDashboardStatsQueryHandler(),
	}
}

// DriverPresence collects the use cases driven by driver sockets.
func (c *CompositionRoot) DriverPresence() ws.DriverPresence {
	return ws.DriverPresence{
		Connect:           c.CreateConnectDriverCommandHandler(),
		Disconnect:        c.CreateDisconnectDriverCommandHandler(),
		UpdateLocation:    c.CreateUpdateDriverLocationCommandHandler(),
		SetAvailability:   c.CreateSetDriverAvailabilityCommandHandler(),
		GetOrder:          c.CreateGetOrderQueryHandler(),
		UpdateOrderStatus: c.CreateUpdateOrderStatusCommandHandler(),
	}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		jobs.NewDashboardStatsJob(c.CreateDashboardStatsQueryHandler(), c.bus, c.cfg.DashboardStatsSchedule, c.log),
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}
