package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// CreateOrder handles POST /api/v1/orders. Customers may only order for themselves.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return err
	}
	if identity, _ := IdentityFrom(c); !identity.CanActAs(customerID) {
		return forbidden()
	}

	locations, err := req.Locations.toLocations()
	if err != nil {
		return err
	}
	cmd, err := commands.NewCreateOrderCommand(customerID, req.VehicleType, locations, req.Fare.toInput(), req.Notes, req.Distance)
	if err != nil {
		return err
	}

	view, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, view)
}

// ListOrders handles GET /api/v1/orders?status=&driverId=&customerId=&page=&limit=.
func (s *Server) ListOrders(c echo.Context) error {
	var (
		page, limit                  int
		status, driverID, customerID string
	)
	if err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		String("status", &status).
		String("driverId", &driverID).
		String("customerId", &customerID).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var filter queries.OrderFilter
	if status != "" {
		st, err := order.ParseStatus(status)
		if err != nil {
			return err
		}
		filter.Status = &st
	}
	if driverID != "" {
		id, err := kernel.UUIDFromString(driverID)
		if err != nil {
			return err
		}
		filter.DriverID = &id
	}
	if customerID != "" {
		id, err := kernel.UUIDFromString(customerID)
		if err != nil {
			return err
		}
		filter.CustomerID = &id
	}

	query, err := queries.NewListOrdersQuery(filter, page, limit)
	if err != nil {
		return err
	}
	res, err := s.handlers.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, Response{Success: true, Data: res.Orders, Pagination: &res.Pagination})
}

// GetOrder handles GET /api/v1/orders/:id. Non-admins only see their own orders.
func (s *Server) GetOrder(c echo.Context) error {
	view, err := s.authorizedOrder(c)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, view)
}

// UpdateOrder handles PUT /api/v1/orders/:id.
func (s *Server) UpdateOrder(c echo.Context) error {
	orderID, err := pathID(c)
	if err != nil {
		return err
	}
	var req UpdateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	patch, err := req.toPatch()
	if err != nil {
		return err
	}
	cmd, err := commands.NewUpdateOrderCommand(orderID, patch)
	if err != nil {
		return err
	}

	view, err := s.handlers.UpdateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, view)
}

// DeleteOrder handles DELETE /api/v1/orders/:id.
func (s *Server) DeleteOrder(c echo.Context) error {
	orderID, err := pathID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewDeleteOrderCommand(orderID)
	if err != nil {
		return err
	}
	if err := s.handlers.DeleteOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return okMessage(c, "Order deleted")
}

// AssignDriver handles POST /api/v1/orders/:id/assign. The calling admin is recorded as
// the assigner.
func (s *Server) AssignDriver(c echo.Context) error {
	orderID, err := pathID(c)
	if err != nil {
		return err
	}
	var req AssignDriverRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	driverID, err := kernel.UUIDFromString(req.DriverID)
	if err != nil {
		return err
	}

	identity, _ := IdentityFrom(c)
	cmd, err := commands.NewAssignDriverCommand(orderID, driverID, &identity.ID)
	if err != nil {
		return err
	}

	view, err := s.handlers.AssignDriver.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, view)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:id/status. Drivers may only move orders
// assigned to them.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	current, err := s.authorizedOrder(c)
	if err != nil {
		return err
	}
	orderID, err := kernel.UUIDFromString(current.ID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, req.Status)
	if err != nil {
		return err
	}
	view, err := s.handlers.UpdateOrderStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, view)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	var req CancelOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	current, err := s.authorizedOrder(c)
	if err != nil {
		return err
	}
	orderID, err := kernel.UUIDFromString(current.ID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, req.Reason)
	if err != nil {
		return err
	}
	view, err := s.handlers.CancelOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, view)
}

// CustomerOrders handles GET /api/v1/customers/:id/orders.
func (s *Server) CustomerOrders(c echo.Context) error {
	customerID, err := pathID(c)
	if err != nil {
		return err
	}
	if identity, _ := IdentityFrom(c); !identity.CanActAs(customerID) {
		return forbidden()
	}

	query, err := queries.NewListCustomerOrdersQuery(customerID)
	if err != nil {
		return err
	}
	orders, err := s.handlers.ListCustomerOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, orders)
}

// DashboardStats handles GET /api/v1/dashboard/stats.
func (s *Server) DashboardStats(c echo.Context) error {
	stats, err := s.handlers.DashboardStats.Handle(c.Request().Context(), queries.NewDashboardStatsQuery(s.now()))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, stats)
}

// authorizedOrder loads the order named by the path and checks the caller is an admin or
// one of its parties.
func (s *Server) authorizedOrder(c echo.Context) (views.OrderView, error) {
	orderID, err := pathID(c)
	if err != nil {
		return views.OrderView{}, err
	}
	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return views.OrderView{}, err
	}
	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return views.OrderView{}, err
	}

	identity, _ := IdentityFrom(c)
	if identity.IsAdmin() || isParty(view, identity) {
		return view, nil
	}
	return views.OrderView{}, forbidden()
}

func isParty(view views.OrderView, identity Identity) bool {
	id := identity.ID.String()
	switch identity.Role {
	case RoleCustomer:
		return view.CustomerID == id
	case RoleDriver:
		return view.DriverID != nil && *view.DriverID == id
	default:
		return false
	}
}

func pathID(c echo.Context) (kernel.UUID, error) {
	return kernel.UUIDFromString(c.Param("id"))
}
