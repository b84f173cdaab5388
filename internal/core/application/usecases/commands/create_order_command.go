package commands

import (
	"errors"
	"math"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrVehicleTypeIsRequired = errs.NewValueIsRequiredError("vehicleType")
)

// CreateOrderCommand represents a customer's request for a new delivery or ride.
//
// Example:
//
//	pickup, _ := order.NewStop(order.PickupStop, "MG Road", pickupPoint)
//	dropoff, _ := order.NewStop(order.DropoffStop, "Airport", dropoffPoint)
//	total := 420.0
//	cmd, err := NewCreateOrderCommand(customerID, "sedan",
//	    order.Locations{Pickup: pickup, Dropoff: dropoff},
//	    order.FareInput{Total: &total}, "", nil)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	view, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	customerID  kernel.UUID
	vehicleType string
	locations   order.Locations
	fare        order.Fare
	notes       string
	distanceKm  float64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request. distanceKm is optional and defaults to zero.
func NewCreateOrderCommand(
	customerID kernel.UUID,
	vehicleType string,
	locations order.Locations,
	fare order.FareInput,
	notes string,
	distanceKm *float64,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		notes: strings.TrimSpace(notes),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setCustomerID(customerID),
		cmd.setVehicleType(vehicleType),
		cmd.setLocations(locations),
		cmd.setFare(fare),
		cmd.setDistance(distanceKm),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

func (c CreateOrderCommand) VehicleType() string {
	return c.vehicleType
}

func (c CreateOrderCommand) Locations() order.Locations {
	return c.locations
}

func (c CreateOrderCommand) Fare() order.Fare {
	return c.fare
}

func (c CreateOrderCommand) Notes() string {
	return c.notes
}

func (c CreateOrderCommand) DistanceKm() float64 {
	return c.distanceKm
}

func (c *CreateOrderCommand) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}

	c.customerID = id
	return nil
}

func (c *CreateOrderCommand) setVehicleType(vehicleType string) error {
	vehicleType = strings.TrimSpace(vehicleType)
	if vehicleType == "" {
		return ErrVehicleTypeIsRequired
	}

	c.vehicleType = vehicleType
	return nil
}

func (c *CreateOrderCommand) setLocations(locations order.Locations) error {
	if err := locations.Validate(); err != nil {
		return err
	}

	c.locations = locations
	return nil
}

func (c *CreateOrderCommand) setFare(in order.FareInput) error {
	fare, err := order.NewFare(in)
	if err != nil {
		return err
	}

	c.fare = fare
	return nil
}

func (c *CreateOrderCommand) setDistance(km *float64) error {
	if km == nil {
		return nil
	}
	if math.IsNaN(*km) || math.IsInf(*km, 0) || *km < 0 {
		return errs.NewValueIsOutOfRangeError("distance", *km, 0, math.MaxFloat64)
	}

	c.distanceKm = *km
	return nil
}
