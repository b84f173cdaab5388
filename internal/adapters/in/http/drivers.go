package http

import (
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// DriverOrders handles GET /api/v1/drivers/:id/orders?status=.
func (s *Server) DriverOrders(c echo.Context) error {
	driverID, err := pathID(c)
	if err != nil {
		return err
	}
	if identity, _ := IdentityFrom(c); !identity.CanActAs(driverID) {
		return forbidden()
	}

	var status *order.Status
	if raw := c.QueryParam("status"); raw != "" {
		st, err := order.ParseStatus(raw)
		if err != nil {
			return err
		}
		status = &st
	}

	query, err := queries.NewListDriverOrdersQuery(driverID, status)
	if err != nil {
		return err
	}
	orders, err := s.handlers.ListDriverOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, orders)
}

// SetDriverAvailability handles PATCH /api/v1/drivers/:id/availability.
func (s *Server) SetDriverAvailability(c echo.Context) error {
	driverID, err := pathID(c)
	if err != nil {
		return err
	}
	if identity, _ := IdentityFrom(c); !identity.CanActAs(driverID) {
		return forbidden()
	}
	var req AvailabilityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewSetDriverAvailabilityCommand(driverID, *req.IsAvailable)
	if err != nil {
		return err
	}
	view, err := s.handlers.SetDriverAvailability.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, view)
}

// SetDriverBlocked handles PATCH /api/v1/drivers/:id/block.
func (s *Server) SetDriverBlocked(c echo.Context) error {
	driverID, err := pathID(c)
	if err != nil {
		return err
	}
	var req BlockRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewSetDriverBlockedCommand(driverID, *req.IsBlocked)
	if err != nil {
		return err
	}
	view, err := s.handlers.SetDriverBlocked.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, view)
}

// UpdateDriverLocation handles PUT /api/v1/drivers/:id/location.
func (s *Server) UpdateDriverLocation(c echo.Context) error {
	driverID, err := pathID(c)
	if err != nil {
		return err
	}
	if identity, _ := IdentityFrom(c); !identity.CanActAs(driverID) {
		return forbidden()
	}
	var req LocationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(driverID, *req.Latitude, *req.Longitude)
	if err != nil {
		return err
	}
	view, err := s.handlers.UpdateDriverLocation.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, view)
}

// NearbyDrivers handles GET /api/v1/drivers/nearby?lat=&lng=&radius=&limit=.
func (s *Server) NearbyDrivers(c echo.Context) error {
	var (
		lat, lng, radius float64
		limit            int
	)
	if err := echo.QueryParamsBinder(c).
		MustFloat64("lat", &lat).
		MustFloat64("lng", &lng).
		Float64("radius", &radius).
		Int("limit", &limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	query, err := queries.NewNearbyDriversQuery(lat, lng, radius, limit)
	if err != nil {
		return err
	}
	drivers, err := s.handlers.NearbyDrivers.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, drivers)
}
