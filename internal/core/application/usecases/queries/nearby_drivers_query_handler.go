package queries

import (
	"context"
	"errors"

	"dispatch/internal/core/application/views"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
)

// AssignableDriverFinder is the slice of ports.DriverRepository the nearby lookup needs.
type AssignableDriverFinder interface {
	FindAssignableInCells(ctx context.Context, cells []string) ([]*driver.Driver, error)
}

// NearbyDriver is a driver with its distance from the query point.
type NearbyDriver struct {
	views.DriverView
	DistanceKm float64 `json:"distanceKm"`
}

// NearbyDriversQueryHandler narrows the candidates with geohash cells in the store, then
// ranks them by exact distance.
type NearbyDriversQueryHandler struct {
	runtime
	finder     AssignableDriverFinder
	dispatcher services.OrderDispatcher
}

// NewNearbyDriversQueryHandler creates the handler admins use to pick a driver for manual
// assignment.
//
// The finder only needs to return assignable drivers in the given geohash cells; distance
// filtering and ranking happen here through services.OrderDispatcher.
//
// Example:
//
//	handler := queries.NewNearbyDriversQueryHandler(driverrepo.NewGormDriverRepository(db))
//	query, _ := queries.NewNearbyDriversQuery(12.93, 77.62, 5, 10)
//	drivers, err := handler.Handle(ctx, query)
func NewNearbyDriversQueryHandler(finder AssignableDriverFinder, opts ...Option) NearbyDriversQueryHandler {
	return NearbyDriversQueryHandler{
		runtime:    newRuntime(opts...),
		finder:     finder,
		dispatcher: services.NewOrderDispatcher(),
	}
}

// Handle returns assignable drivers within the radius, nearest first. No match is an
// empty list, not an error.
func (h NearbyDriversQueryHandler) Handle(ctx context.Context, query NearbyDriversQuery) ([]NearbyDriver, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()

	cells := query.Point().SearchCells(kernel.PrecisionForRadius(query.RadiusKm()))
	drivers, err := h.finder.FindAssignableInCells(ctx, cells)
	if err != nil {
		return nil, h.settle(ctx, "find nearby drivers", err)
	}

	candidates, err := h.dispatcher.Nearest(query.Point(), drivers, query.RadiusKm(), query.Limit())
	if errors.Is(err, services.ErrDriverNotFound) {
		return []NearbyDriver{}, nil
	}
	if err != nil {
		return nil, err
	}

	result := make([]NearbyDriver, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, NearbyDriver{DriverView: views.NewDriverView(c.Driver), DistanceKm: c.DistanceKm})
	}
	return result, nil
}
