package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// DefaultCancellationReason is recorded when a cancel request carries no reason.
	DefaultCancellationReason = "No reason provided"

	// StatusUpdateCancellationReason is recorded when an order is cancelled through a status update.
	StatusUpdateCancellationReason = "Cancelled by status update"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrVehicleTypeIsRequired = errs.NewValueIsRequiredError("vehicleType")
)

// Order is the aggregate root of the dispatch lifecycle.
//
// Order follows these invariants:
//   - Must have a valid id, booking id and customer
//   - Must have a pickup and a dropoff stop
//   - Fare total is present and non-negative, distance is non-negative
//   - A driver is attached exactly while the status requires one, and stays attached
//     after a terminal status was reached from an assigned state
//   - Status transitions are applied only through AssignDriver, ChangeStatus and Cancel
type Order struct {
	id         kernel.UUID
	bookingID  BookingID
	customerID kernel.UUID

	// driverID is nil until a driver is assigned
	driverID *kernel.UUID

	vehicleType string
	locations   Locations
	distanceKm  float64
	fare        Fare
	status      Status
	notes       string

	// assignedBy is the admin who assigned the driver, nil for self-service assignment
	assignedBy *kernel.UUID

	assignedAt         *time.Time
	startedAt          *time.Time
	completedAt        *time.Time
	cancelledAt        *time.Time
	cancellationReason string

	createdAt time.Time
	updatedAt time.Time

	// persistedStatus and version describe the row this aggregate was loaded from
	persistedStatus Status
	version         int64

	guard guard.ConstructorGuard
}

// StatusChange describes the outcome of a status mutation.
type StatusChange struct {
	Previous Status
	Current  Status

	// ReleasedDriver is the driver that became free because of the change, if any.
	ReleasedDriver *kernel.UUID
}

// Patch is a partial update of the editable order fields. Nil fields are left untouched.
type Patch struct {
	Locations   *Locations
	Fare        *FareInput
	DistanceKm  *float64
	VehicleType *string
	Notes       *string
}

// NewOrder creates a pending order without a driver.
//
// Example:
//
//	bookingID, _ := order.NewBookingID(now)
//	o, err := order.NewOrder(kernel.NewUUID(), bookingID, customerID, "sedan", locations, fare, 12.5, "", now)
func NewOrder(
	id kernel.UUID,
	bookingID BookingID,
	customerID kernel.UUID,
	vehicleType string,
	locations Locations,
	fare Fare,
	distanceKm float64,
	notes string,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:          Pending,
		persistedStatus: Pending,
		createdAt:       now,
		updatedAt:       now,
		notes:           strings.TrimSpace(notes),
		fare:            fare,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBookingID(bookingID),
		o.setCustomerID(customerID),
		o.setVehicleType(vehicleType),
		o.setLocations(locations),
		o.setDistance(distanceKm),
		o.setFare(fare),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot is the full persisted state used by RestoreOrder.
type Snapshot struct {
	ID                 kernel.UUID
	BookingID          BookingID
	CustomerID         kernel.UUID
	DriverID           *kernel.UUID
	VehicleType        string
	Locations          Locations
	DistanceKm         float64
	Fare               Fare
	Status             Status
	Notes              string
	AssignedBy         *kernel.UUID
	AssignedAt         *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int64
}

// RestoreOrder rebuilds an order from storage. It validates the same invariants as NewOrder
// plus the driver/status relation, so corrupted rows surface as errors instead of aggregates.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		driverID:           s.DriverID,
		notes:              s.Notes,
		assignedBy:         s.AssignedBy,
		assignedAt:         s.AssignedAt,
		startedAt:          s.StartedAt,
		completedAt:        s.CompletedAt,
		cancelledAt:        s.CancelledAt,
		cancellationReason: s.CancellationReason,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
		status:             s.Status,
		persistedStatus:    s.Status,
		version:            s.Version,
		guard:              guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setBookingID(s.BookingID),
		o.setCustomerID(s.CustomerID),
		o.setVehicleType(s.VehicleType),
		o.setLocations(s.Locations),
		o.setDistance(s.DistanceKm),
		o.setFare(s.Fare),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}

	if s.Status.RequiresDriver() && s.DriverID == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("driverId",
			fmt.Errorf("%s is not a valid status to have no driver", s.Status))
	}

	return o, nil
}

// Validate reports whether the order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }
func (o *Order) BookingID() BookingID { return o.bookingID }
func (o *Order) CustomerID() kernel.UUID { return o.customerID }
func (o *Order) DriverID() *kernel.UUID { return o.driverID }
func (o *Order) VehicleType() string { return o.vehicleType }
func (o *Order) Locations() Locations { return o.locations }
func (o *Order) DistanceKm() float64 { return o.distanceKm }
func (o *Order) Fare() Fare { return o.fare }
func (o *Order) Status() Status { return o.status }
func (o *Order) Notes() string { return o.notes }
func (o *Order) AssignedBy() *kernel.UUID { return o.assignedBy }
func (o *Order) AssignedAt() *time.Time { return o.assignedAt }
func (o *Order) StartedAt() *time.Time { return o.startedAt }
func (o *Order) CompletedAt() *time.Time { return o.completedAt }
func (o *Order) CancelledAt() *time.Time { return o.cancelledAt }
func (o *Order) CancellationReason() string { return o.cancellationReason }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }
func (o *Order) Version() int64 { return o.version }
func (o *Order) HasDriver(id kernel.UUID) bool { return o.driverID != nil && o.driverID.IsEqual(id) }

// ExpectedState returns the status and version the stored row must still have for a
// write of this aggregate to apply.
func (o *Order) ExpectedState() (Status, int64) {
	return o.persistedStatus, o.version
}

// MarkPersisted records a successful write: the stored row now carries the current
// status and the next version.
func (o *Order) MarkPersisted() {
	o.persistedStatus = o.status
	o.version++
}

// CanAssignDriver reports whether the order is waiting for a driver.
func (o *Order) CanAssignDriver() error {
	if o.status != Pending {
		return errs.NewConflictError(fmt.Sprintf("Cannot assign driver. Order status is %s", o.status))
	}
	return nil
}

// AssignDriver attaches driverID to a pending order.
func (o *Order) AssignDriver(driverID kernel.UUID, assignedBy *kernel.UUID, now time.Time) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	if err := o.CanAssignDriver(); err != nil {
		return err
	}

	o.driverID = &driverID
	o.assignedBy = assignedBy
	o.status = Assigned
	stampOnce(&o.assignedAt, now)
	o.updatedAt = now
	return nil
}

// ChangeStatus moves the order to newStatus. Any non-terminal to any other status is allowed
// as long as the driver/status invariant holds:
//   - a status that needs a driver requires one to be attached
//   - moving back to pending detaches and releases the driver
//   - completed and cancelled release the driver but keep the reference
func (o *Order) ChangeStatus(newStatus Status, now time.Time) (StatusChange, error) {
	if err := newStatus.Validate(); err != nil {
		return StatusChange{}, err
	}

	if o.status.IsTerminal() {
		return StatusChange{}, errs.NewConflictError("Cannot update a completed or cancelled order")
	}

	if newStatus.RequiresDriver() && o.driverID == nil {
		return StatusChange{}, errs.NewConflictError(
			fmt.Sprintf("Cannot set status to %s. Order has no assigned driver", newStatus))
	}

	change := StatusChange{Previous: o.status, Current: newStatus}

	switch newStatus {
	case Pending:
		change.ReleasedDriver = o.driverID
		o.driverID = nil
		o.assignedBy = nil
	case Accepted:
		stampOnce(&o.startedAt, now)
	case Completed:
		stampOnce(&o.completedAt, now)
		change.ReleasedDriver = o.driverID
	case Cancelled:
		stampOnce(&o.cancelledAt, now)
		o.cancellationReason = StatusUpdateCancellationReason
		change.ReleasedDriver = o.driverID
	case Assigned, PickedUp, InProgress, Unknown:
	}

	o.status = newStatus
	o.updatedAt = now
	return change, nil
}

// Cancel moves a non-terminal order to cancelled with reason.
func (o *Order) Cancel(reason string, now time.Time) (StatusChange, error) {
	if o.status.IsTerminal() {
		return StatusChange{}, errs.NewConflictError("Cannot cancel a completed or already cancelled order")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultCancellationReason
	}

	change := StatusChange{Previous: o.status, Current: Cancelled, ReleasedDriver: o.driverID}

	o.status = Cancelled
	o.cancellationReason = reason
	stampOnce(&o.cancelledAt, now)
	o.updatedAt = now
	return change, nil
}

// Update applies patch to a non-terminal order. Fare components are merged field by field.
// The whole patch is validated before anything changes.
func (o *Order) Update(patch Patch, now time.Time) error {
	if o.status.IsTerminal() {
		return errs.NewConflictError("Cannot update a completed or cancelled order")
	}

	next := *o

	var fareErr error
	if patch.Fare != nil {
		merged, err := o.fare.Merge(*patch.Fare)
		fareErr = err
		next.fare = merged
	}

	var locationsErr, distanceErr, vehicleErr error
	if patch.Locations != nil {
		locationsErr = next.setLocations(*patch.Locations)
	}
	if patch.DistanceKm != nil {
		distanceErr = next.setDistance(*patch.DistanceKm)
	}
	if patch.VehicleType != nil {
		vehicleErr = next.setVehicleType(*patch.VehicleType)
	}

	if err := errors.Join(fareErr, locationsErr, distanceErr, vehicleErr); err != nil {
		return err
	}

	if patch.Notes != nil {
		next.notes = strings.TrimSpace(*patch.Notes)
	}
	next.updatedAt = now

	*o = next
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBookingID(id BookingID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.bookingID = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setVehicleType(vehicleType string) error {
	vehicleType = strings.TrimSpace(vehicleType)
	if vehicleType == "" {
		return ErrVehicleTypeIsRequired
	}
	o.vehicleType = vehicleType
	return nil
}

func (o *Order) setLocations(locations Locations) error {
	if err := locations.Validate(); err != nil {
		return err
	}
	o.locations = locations
	return nil
}

func (o *Order) setDistance(km float64) error {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return errs.NewValueIsOutOfRangeError("distance", km, 0, math.MaxFloat64)
	}
	o.distanceKm = km
	return nil
}

func (o *Order) setFare(fare Fare) error {
	if fare.Total() < 0 {
		return errs.NewValueIsOutOfRangeError("fare.total", fare.Total(), 0, math.MaxFloat64)
	}
	o.fare = fare
	return nil
}

func stampOnce(field **time.Time, now time.Time) {
	if *field != nil {
		return
	}
	t := now
	*field = &t
}
