package order

import (
	"errors"
	"fmt"
	"strings"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// StopKind tags a stop as the pickup or the dropoff point.
type StopKind string

const (
	PickupStop  StopKind = "pickup"
	DropoffStop StopKind = "dropoff"
)

var ErrStopIsNotConstructed = errs.NewValueIsRequiredError("stop must be created via NewStop")

// Stop is an address with coordinates.
type Stop struct {
	address string
	point   kernel.GeoPoint
	kind    StopKind
	guard   guard.ConstructorGuard
}

func NewStop(kind StopKind, address string, point kernel.GeoPoint) (Stop, error) {
	s := Stop{guard: guard.NewConstructorGuard()}

	var kindErr error
	if kind != PickupStop && kind != DropoffStop {
		kindErr = errs.NewValueIsInvalidErrorWithCause("location.type", fmt.Errorf("%q is not pickup or dropoff", kind))
	}

	var addressErr error
	address = strings.TrimSpace(address)
	if address == "" {
		addressErr = errs.NewValueIsRequiredError(string(kind) + ".address")
	}

	if err := errors.Join(kindErr, addressErr, point.Validate()); err != nil {
		return Stop{}, err
	}

	s.kind = kind
	s.address = address
	s.point = point
	return s, nil
}

func (s Stop) Validate() error {
	return s.guard.Validate(ErrStopIsNotConstructed)
}

func (s Stop) Address() string { return s.address }
func (s Stop) Point() kernel.GeoPoint { return s.point }
func (s Stop) Kind() StopKind { return s.kind }

// Locations holds the two stops of an order.
type Locations struct {
	Pickup  Stop
	Dropoff Stop
}

// Validate checks both stops and that each carries the right kind.
func (l Locations) Validate() error {
	if err := errors.Join(l.Pickup.Validate(), l.Dropoff.Validate()); err != nil {
		return err
	}
	if l.Pickup.Kind() != PickupStop {
		return errs.NewValueIsInvalidErrorWithCause("locations.pickup", errors.New("stop is not a pickup"))
	}
	if l.Dropoff.Kind() != DropoffStop {
		return errs.NewValueIsInvalidErrorWithCause("locations.dropoff", errors.New("stop is not a dropoff"))
	}
	return nil
}
