package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/mmcloughlin/geohash"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0

	// GeohashPrecision is the stored cell size for driver positions (about 1.2km x 0.6km).
	GeohashPrecision uint = 6

	earthRadiusKm = 6371.0
)

var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")

// GeoPoint is a WGS84 coordinate. Persisted and published as [lng, lat] like a GeoJSON point.
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates latitude in [-90, 90] and longitude in [-180, 180].
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}

	return p, nil
}

func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

func (p GeoPoint) Lat() float64 {
	return p.lat
}

func (p GeoPoint) Lng() float64 {
	return p.lng
}

// Coordinates returns [lng, lat].
func (p GeoPoint) Coordinates() [2]float64 {
	return [2]float64{p.lng, p.lat}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lng)
}

func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lng == other.lng
}

// Geohash encodes the point with the given precision.
func (p GeoPoint) Geohash(precision uint) string {
	return geohash.EncodeWithPrecision(p.lat, p.lng, precision)
}

// SearchCells returns the cell of the point at precision plus its eight neighbours.
// Matching stored geohashes by prefix against these cells finds candidates around the point.
func (p GeoPoint) SearchCells(precision uint) []string {
	cell := p.Geohash(precision)
	return append([]string{cell}, geohash.Neighbors(cell)...)
}

// DistanceKm is the haversine distance between two points.
func (p GeoPoint) DistanceKm(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - p.lat) * math.Pi / 180
	dLng := (other.lng - p.lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a))), nil
}

func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", lat, LatitudeMin, LatitudeMax)
	}
	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < LongitudeMin || lng > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", lng, LongitudeMin, LongitudeMax)
	}
	p.lng = lng
	return nil
}

// PrecisionForRadius picks the coarsest geohash precision whose cell still covers radiusKm
// when combined with its neighbours.
func PrecisionForRadius(radiusKm float64) uint {
	// Approximate cell heights in km for precisions 1..6.
	heights := []float64{4992, 624, 156, 19.5, 4.9, 0.61}
	precision := uint(1)
	for i, h := range heights {
		if h >= radiusKm {
			precision = uint(i + 1)
		}
	}
	return precision
}
