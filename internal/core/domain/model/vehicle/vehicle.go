// Package vehicle provides the vehicle type catalogue entry referenced by orders.
package vehicle

import (
	"errors"
	"strings"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrVehicleTypeIsNotConstructed = errors.New("VehicleType must be created via RestoreVehicleType")

// VehicleType is a bookable class of vehicle, keyed by Key (e.g. "sedan", "bike").
type VehicleType struct {
	key        string
	name       string
	baseFare   float64
	pricePerKm float64
	capacity   int
	active     bool
	guard      guard.ConstructorGuard
}

func RestoreVehicleType(key, name string, baseFare, pricePerKm float64, capacity int, active bool) (*VehicleType, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errs.NewValueIsRequiredError("vehicleType")
	}
	return &VehicleType{
		key:        key,
		name:       name,
		baseFare:   baseFare,
		pricePerKm: pricePerKm,
		capacity:   capacity,
		active:     active,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (v *VehicleType) Validate() error {
	if v == nil {
		return ErrVehicleTypeIsNotConstructed
	}
	return v.guard.Validate(ErrVehicleTypeIsNotConstructed)
}

func (v *VehicleType) Key() string         { return v.key }
func (v *VehicleType) Name() string        { return v.name }
func (v *VehicleType) BaseFare() float64   { return v.baseFare }
func (v *VehicleType) PricePerKm() float64 { return v.pricePerKm }
func (v *VehicleType) Capacity() int       { return v.capacity }
func (v *VehicleType) IsActive() bool      { return v.active }
