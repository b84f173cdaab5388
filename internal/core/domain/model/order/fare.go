package order

import (
	"errors"
	"math"

	"dispatch/internal/pkg/errs"
)

// Fare is the price breakdown of an order. Only Total is mandatory; the other
// components default to zero.
type Fare struct {
	base           float64
	distanceCharge float64
	timeCharge     float64
	total          float64
	commission     float64
}

// FareInput carries optional fare components. A nil field means "not provided".
type FareInput struct {
	Base           *float64
	DistanceCharge *float64
	TimeCharge     *float64
	Total          *float64
	Commission     *float64
}

// NewFare builds a fare from input; Total is required.
func NewFare(in FareInput) (Fare, error) {
	if in.Total == nil {
		return Fare{}, errs.NewValueIsRequiredError("fare.total")
	}
	return Fare{}.Merge(in)
}

// RestoreFare rebuilds a persisted fare without re-checking the required total.
func RestoreFare(base, distanceCharge, timeCharge, total, commission float64) Fare {
	return Fare{
		base:           base,
		distanceCharge: distanceCharge,
		timeCharge:     timeCharge,
		total:          total,
		commission:     commission,
	}
}

// Merge overlays the provided components onto f and keeps the rest.
func (f Fare) Merge(in FareInput) (Fare, error) {
	merged := f
	if err := errors.Join(
		overlay(&merged.base, in.Base, "fare.baseFare"),
		overlay(&merged.distanceCharge, in.DistanceCharge, "fare.distanceCharge"),
		overlay(&merged.timeCharge, in.TimeCharge, "fare.timeCharge"),
		overlay(&merged.total, in.Total, "fare.total"),
		overlay(&merged.commission, in.Commission, "fare.commission"),
	); err != nil {
		return Fare{}, err
	}
	return merged, nil
}

func (f Fare) Base() float64 { return f.base }
func (f Fare) DistanceCharge() float64 { return f.distanceCharge }
func (f Fare) TimeCharge() float64 { return f.timeCharge }
func (f Fare) Total() float64 { return f.total }
func (f Fare) Commission() float64 { return f.commission }

func overlay(dst *float64, v *float64, name string) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return errs.NewValueIsOutOfRangeError(name, *v, 0, math.MaxFloat64)
	}
	*dst = *v
	return nil
}
