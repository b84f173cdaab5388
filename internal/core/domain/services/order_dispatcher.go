package services

import (
	"errors"
	"sort"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// ErrDriverNotFound is returned by Nearest when no candidate qualifies.
var ErrDriverNotFound = errors.New("driver not found")

// OrderDispatcher binds orders to drivers.
//
// Business rules:
//   - The order must be pending
//   - The driver must be available, verified, active and not blocked
//   - Either both aggregates change or neither does
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher()
//	if err := dispatcher.Dispatch(o, d, &adminID, time.Now()); err != nil {
//	    return err // errs.ConflictError describing the violated precondition
//	}
//	// persist o and d in the same transaction
type OrderDispatcher struct{}

func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// Dispatch assigns d to o. Preconditions are checked in the order the caller sees them:
// order status first, then driver state.
func (OrderDispatcher) Dispatch(o *order.Order, d *driver.Driver, assignedBy *kernel.UUID, now time.Time) error {
	if err := errors.Join(o.Validate(), d.Validate()); err != nil {
		return err
	}

	if err := o.CanAssignDriver(); err != nil {
		return err
	}

	if err := d.CanBeAssigned(); err != nil {
		return err
	}

	if err := o.AssignDriver(d.ID(), assignedBy, now); err != nil {
		return err
	}

	// Cannot fail after CanBeAssigned succeeded on the same instance.
	return d.Reserve(now)
}

// Candidate is a driver with its distance to a point.
type Candidate struct {
	Driver     *driver.Driver
	DistanceKm float64
}

// Nearest filters assignable drivers that reported a position within radiusKm of point and
// returns them closest first, at most limit entries (limit <= 0 means no limit).
func (OrderDispatcher) Nearest(point kernel.GeoPoint, drivers []*driver.Driver, radiusKm float64, limit int) ([]Candidate, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(drivers))
	for _, d := range drivers {
		if err := d.Validate(); err != nil {
			return nil, err
		}

		if d.CanBeAssigned() != nil || d.Location() == nil {
			continue
		}

		distance, err := point.DistanceKm(*d.Location())
		if err != nil {
			return nil, err
		}

		if distance <= radiusKm {
			candidates = append(candidates, Candidate{Driver: d, DistanceKm: distance})
		}
	}

	if len(candidates) == 0 {
		return nil, ErrDriverNotFound
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DistanceKm < candidates[j].DistanceKm
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}
