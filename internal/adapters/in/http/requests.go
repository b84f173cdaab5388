package http

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// StopRequest is an address with [lng, lat] coordinates.
type StopRequest struct {
	Address     string    `json:"address" validate:"required"`
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
}

type LocationsRequest struct {
	Pickup  StopRequest `json:"pickup" validate:"required"`
	Dropoff StopRequest `json:"dropoff" validate:"required"`
}

type FareRequest struct {
	BaseFare       *float64 `json:"baseFare" validate:"omitempty,gte=0"`
	DistanceCharge *float64 `json:"distanceCharge" validate:"omitempty,gte=0"`
	TimeCharge     *float64 `json:"timeCharge" validate:"omitempty,gte=0"`
	Total          *float64 `json:"total" validate:"omitempty,gte=0"`
	Commission     *float64 `json:"commission" validate:"omitempty,gte=0"`
}

type CreateOrderRequest struct {
	CustomerID  string           `json:"customerId" validate:"required,uuid"`
	VehicleType string           `json:"vehicleType" validate:"required"`
	Locations   LocationsRequest `json:"locations" validate:"required"`
	Fare        FareRequest      `json:"fare"`
	Distance    *float64         `json:"distance" validate:"omitempty,gte=0"`
	Notes       string           `json:"notes" validate:"max=1000"`
}

type UpdateOrderRequest struct {
	VehicleType *string           `json:"vehicleType" validate:"omitempty,min=1"`
	Locations   *LocationsRequest `json:"locations"`
	Fare        *FareRequest      `json:"fare"`
	Distance    *float64          `json:"distance" validate:"omitempty,gte=0"`
	Notes       *string           `json:"notes" validate:"omitempty,max=1000"`
}

type AssignDriverRequest struct {
	DriverID string `json:"driverId" validate:"required,uuid"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

type BlockRequest struct {
	IsBlocked *bool `json:"isBlocked" validate:"required"`
}

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

func (r StopRequest) toStop(kind order.StopKind) (order.Stop, error) {
	// Coordinates arrive as [lng, lat].
	point, err := kernel.NewGeoPoint(r.Coordinates[1], r.Coordinates[0])
	if err != nil {
		return order.Stop{}, err
	}
	return order.NewStop(kind, r.Address, point)
}

func (r LocationsRequest) toLocations() (order.Locations, error) {
	pickup, pickupErr := r.Pickup.toStop(order.PickupStop)
	dropoff, dropoffErr := r.Dropoff.toStop(order.DropoffStop)
	if err := errors.Join(pickupErr, dropoffErr); err != nil {
		return order.Locations{}, err
	}
	return order.Locations{Pickup: pickup, Dropoff: dropoff}, nil
}

func (r FareRequest) toInput() order.FareInput {
	return order.FareInput{
		Base:           r.BaseFare,
		DistanceCharge: r.DistanceCharge,
		TimeCharge:     r.TimeCharge,
		Total:          r.Total,
		Commission:     r.Commission,
	}
}

func (r UpdateOrderRequest) toPatch() (order.Patch, error) {
	patch := order.Patch{
		DistanceKm:  r.Distance,
		VehicleType: r.VehicleType,
		Notes:       r.Notes,
	}
	if r.Locations != nil {
		locations, err := r.Locations.toLocations()
		if err != nil {
			return order.Patch{}, err
		}
		patch.Locations = &locations
	}
	if r.Fare != nil {
		in := r.Fare.toInput()
		patch.Fare = &in
	}
	return patch, nil
}
