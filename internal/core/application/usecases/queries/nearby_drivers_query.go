package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultNearbyRadiusKm = 5.0
	MaxNearbyRadiusKm     = 50.0
	DefaultNearbyLimit    = 10
	MaxNearbyLimit        = 50
)

var ErrNearbyDriversQueryIsNotConstructed = errors.New(
	"NearbyDriversQuery must be created via NewNearbyDriversQuery constructor",
)

// NearbyDriversQuery finds assignable drivers around a point, closest first. Admins use it
// to pick a driver for manual assignment.
type NearbyDriversQuery struct {
	point    kernel.GeoPoint
	radiusKm float64
	limit    int
	guard    guard.ConstructorGuard
}

// NewNearbyDriversQuery applies defaults for a zero radius or limit.
func NewNearbyDriversQuery(lat, lng, radiusKm float64, limit int) (NearbyDriversQuery, error) {
	if radiusKm == 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if limit == 0 {
		limit = DefaultNearbyLimit
	}

	point, pointErr := kernel.NewGeoPoint(lat, lng)

	var radiusErr, limitErr error
	if radiusKm < 0 || radiusKm > MaxNearbyRadiusKm {
		radiusErr = errs.NewValueIsOutOfRangeError("radius", radiusKm, 0, MaxNearbyRadiusKm)
	}
	if limit < 1 || limit > MaxNearbyLimit {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxNearbyLimit)
	}
	if err := errors.Join(pointErr, radiusErr, limitErr); err != nil {
		return NearbyDriversQuery{}, err
	}

	return NearbyDriversQuery{point: point, radiusKm: radiusKm, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q NearbyDriversQuery) Validate() error {
	return q.guard.Validate(ErrNearbyDriversQueryIsNotConstructed)
}

func (q NearbyDriversQuery) Point() kernel.GeoPoint { return q.point }
func (q NearbyDriversQuery) RadiusKm() float64      { return q.radiusKm }
func (q NearbyDriversQuery) Limit() int             { return q.limit }
