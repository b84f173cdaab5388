package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/application/views"
	"dispatch/internal/pkg/logger"
	"dispatch/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler is the shape shared by command and query handlers.
type Handler[Q any, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[Q any, R any] func(ctx context.Context, q Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, q Q) (R, error) {
	return f(ctx, q)
}

// DeleteOrderHandler is the one use case without a result.
type DeleteOrderHandler interface {
	Handle(ctx context.Context, cmd commands.DeleteOrderCommand) error
}

// Handlers are the use cases served over REST.
type Handlers struct {
	CreateOrder       Handler[commands.CreateOrderCommand, views.OrderView]
	UpdateOrder       Handler[commands.UpdateOrderCommand, views.OrderView]
	UpdateOrderStatus Handler[commands.UpdateOrderStatusCommand, views.OrderView]
	CancelOrder       Handler[commands.CancelOrderCommand, views.OrderView]
	AssignDriver      Handler[commands.AssignDriverCommand, views.OrderView]
	DeleteOrder       DeleteOrderHandler

	SetDriverAvailability Handler[commands.SetDriverAvailabilityCommand, views.DriverView]
	SetDriverBlocked      Handler[commands.SetDriverBlockedCommand, views.DriverView]
	UpdateDriverLocation  Handler[commands.UpdateDriverLocationCommand, views.DriverView]

	ListOrders         Handler[queries.ListOrdersQuery, queries.ListOrdersQueryResponse]
	GetOrder           Handler[queries.GetOrderQuery, views.OrderView]
	ListDriverOrders   Handler[queries.ListDriverOrdersQuery, []views.OrderView]
	ListCustomerOrders Handler[queries.ListCustomerOrdersQuery, []views.OrderView]
	NearbyDrivers      Handler[queries.NearbyDriversQuery, []queries.NearbyDriver]
	DashboardStats     Handler[queries.DashboardStatsQuery, events.DashboardStats]
}

// Server serves the REST API. It translates requests into commands and queries and their
// results into the response envelope.
type Server struct {
	handlers Handlers
	auth     Authenticator
	log      logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	now      func() time.Time
}

type Option func(*Server)

func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records request metrics into m and exposes gatherer on /metrics.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

func NewServer(handlers Handlers, auth Authenticator, opts ...Option) *Server {
	s := &Server{
		handlers: handlers,
		auth:     auth,
		log:      logger.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("http"))
	return s
}

// NewEcho returns an echo instance configured with the envelope error handler, request
// validation and panic recovery.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(s.log)

	e.Use(middleware.Recover())
	e.Use(s.requestMetrics())
	return e
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if s.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	admin := RequireRole(RoleAdmin)
	api := e.Group("/api/v1", s.auth.Middleware())

	api.POST("/orders", s.CreateOrder, RequireRole(RoleAdmin, RoleCustomer))
	api.GET("/orders", s.ListOrders, admin)
	api.GET("/orders/:id", s.GetOrder)
	api.PUT("/orders/:id", s.UpdateOrder, admin)
	api.DELETE("/orders/:id", s.DeleteOrder, admin)
	api.POST("/orders/:id/assign", s.AssignDriver, admin)
	api.PATCH("/orders/:id/status", s.UpdateOrderStatus, RequireRole(RoleAdmin, RoleDriver))
	api.POST("/orders/:id/cancel", s.CancelOrder)

	api.GET("/drivers/nearby", s.NearbyDrivers, admin)
	api.GET("/drivers/:id/orders", s.DriverOrders)
	api.PATCH("/drivers/:id/availability", s.SetDriverAvailability, RequireRole(RoleAdmin, RoleDriver))
	api.PATCH("/drivers/:id/block", s.SetDriverBlocked, admin)
	api.PUT("/drivers/:id/location", s.UpdateDriverLocation, RequireRole(RoleAdmin, RoleDriver))

	api.GET("/customers/:id/orders", s.CustomerOrders)

	api.GET("/dashboard/stats", s.DashboardStats, admin)
}

func (s *Server) requestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status, _ = describe(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			s.metrics.HTTPRequest(c.Request().Method, route, strconv.Itoa(status), time.Since(start).Seconds())
			return err
		}
	}
}

func forbidden() error {
	return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
}
