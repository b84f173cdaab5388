package driver

import (
	"errors"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")

	ErrNameIsRequired       = errs.NewValueIsRequiredError("name")
	ErrPhoneIsRequired      = errs.NewValueIsRequiredError("phone")
	ErrConnectionIsRequired = errs.NewValueIsRequiredError("connectionId")
)

// Driver is the aggregate root for a driver's dispatch-relevant state.
type Driver struct {
	id            kernel.UUID
	name          string
	phone         string
	vehicleType   string
	vehicleNumber string

	available    bool
	verification VerificationStatus
	active       bool
	blocked      bool

	// location is nil until the first position report
	location          *kernel.GeoPoint
	locationUpdatedAt *time.Time

	// connectionID identifies the live socket; nil while offline
	connectionID *string

	createdAt time.Time
	updatedAt time.Time
	version   int64

	guard guard.ConstructorGuard
}

// AvailabilityChange reports the availability flag before and after a mutation.
type AvailabilityChange struct {
	Previous bool
	Current  bool
}

// Changed reports whether the flag flipped.
func (c AvailabilityChange) Changed() bool {
	return c.Previous != c.Current
}

// NewDriver registers an offline, unavailable, active driver awaiting verification.
func NewDriver(id kernel.UUID, name, phone, vehicleType, vehicleNumber string, now time.Time) (*Driver, error) {
	d := &Driver{
		verification:  VerificationPending,
		active:        true,
		vehicleType:   strings.TrimSpace(vehicleType),
		vehicleNumber: strings.TrimSpace(vehicleNumber),
		createdAt:     now,
		updatedAt:     now,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(d.setID(id), d.setName(name), d.setPhone(phone)); err != nil {
		return nil, err
	}

	return d, nil
}

// Snapshot is the full persisted state used by RestoreDriver.
type Snapshot struct {
	ID                kernel.UUID
	Name              string
	Phone             string
	VehicleType       string
	VehicleNumber     string
	Available         bool
	Verification      VerificationStatus
	Active            bool
	Blocked           bool
	Location          *kernel.GeoPoint
	LocationUpdatedAt *time.Time
	ConnectionID      *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
}

func RestoreDriver(s Snapshot) (*Driver, error) {
	d := &Driver{
		vehicleType:       s.VehicleType,
		vehicleNumber:     s.VehicleNumber,
		available:         s.Available,
		active:            s.Active,
		blocked:           s.Blocked,
		location:          s.Location,
		locationUpdatedAt: s.LocationUpdatedAt,
		connectionID:      s.ConnectionID,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		version:           s.Version,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(s.ID),
		d.setName(s.Name),
		d.setPhone(s.Phone),
		s.Verification.Validate(),
	); err != nil {
		return nil, err
	}
	d.verification = s.Verification

	return d, nil
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) ID() kernel.UUID { return d.id }
func (d *Driver) Name() string { return d.name }
func (d *Driver) Phone() string { return d.phone }
func (d *Driver) VehicleType() string { return d.vehicleType }
func (d *Driver) VehicleNumber() string { return d.vehicleNumber }
func (d *Driver) IsAvailable() bool { return d.available }
func (d *Driver) Verification() VerificationStatus { return d.verification }
func (d *Driver) IsVerified() bool { return d.verification == VerificationVerified }
func (d *Driver) IsActive() bool { return d.active }
func (d *Driver) IsBlocked() bool { return d.blocked }
func (d *Driver) Location() *kernel.GeoPoint { return d.location }
func (d *Driver) LocationUpdatedAt() *time.Time { return d.locationUpdatedAt }
func (d *Driver) ConnectionID() *string { return d.connectionID }
func (d *Driver) IsOnline() bool { return d.connectionID != nil }
func (d *Driver) CreatedAt() time.Time { return d.createdAt }
func (d *Driver) UpdatedAt() time.Time { return d.updatedAt }
func (d *Driver) Version() int64 { return d.version }

// MarkPersisted records that the stored row now carries the next version.
func (d *Driver) MarkPersisted() {
	d.version++
}

// CanBeAssigned checks the assignability rule. Failures are conflicts whose message
// names the first violated condition.
func (d *Driver) CanBeAssigned() error {
	switch {
	case !d.available:
		return errs.NewConflictError("Driver is not available")
	case !d.IsVerified():
		return errs.NewConflictError("Driver is not verified")
	case d.blocked:
		return errs.NewConflictError("Driver is blocked")
	case !d.active:
		return errs.NewConflictError("Driver is not active")
	default:
		return nil
	}
}

// Reserve takes the driver off the market for a new order.
func (d *Driver) Reserve(now time.Time) error {
	if err := d.CanBeAssigned(); err != nil {
		return err
	}
	d.available = false
	d.updatedAt = now
	return nil
}

// Release makes the driver available again after their order ended.
// Blocked drivers stay unavailable.
func (d *Driver) Release(now time.Time) AvailabilityChange {
	change := AvailabilityChange{Previous: d.available, Current: !d.blocked}
	d.available = change.Current
	d.updatedAt = now
	return change
}

// Connect records a new live connection. The driver becomes available unless they are
// busy with an active order or blocked.
func (d *Driver) Connect(connectionID string, hasActiveOrder bool, now time.Time) (AvailabilityChange, error) {
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return AvailabilityChange{}, ErrConnectionIsRequired
	}

	change := AvailabilityChange{Previous: d.available, Current: !hasActiveOrder && !d.blocked}
	d.connectionID = &connectionID
	d.available = change.Current
	d.updatedAt = now
	return change, nil
}

// Disconnect clears the connection and takes the driver offline, but only if connectionID
// is the one currently recorded. A stale socket closing after a reconnect is ignored and
// reported with ok=false.
func (d *Driver) Disconnect(connectionID string, now time.Time) (change AvailabilityChange, ok bool) {
	if d.connectionID == nil || *d.connectionID != connectionID {
		return AvailabilityChange{Previous: d.available, Current: d.available}, false
	}

	change = AvailabilityChange{Previous: d.available, Current: false}
	d.connectionID = nil
	d.available = false
	d.updatedAt = now
	return change, true
}

// SetAvailability is the explicit toggle used by drivers and admins.
func (d *Driver) SetAvailability(available, hasActiveOrder bool, now time.Time) (AvailabilityChange, error) {
	change := AvailabilityChange{Previous: d.available, Current: available}
	if !change.Changed() {
		return change, nil
	}

	if available {
		if hasActiveOrder {
			return AvailabilityChange{}, errs.NewConflictError("Driver has an active order")
		}
		if d.blocked {
			return AvailabilityChange{}, errs.NewConflictError("Driver is blocked")
		}
	}

	d.available = available
	d.updatedAt = now
	return change, nil
}

// SetBlocked changes the block flag. Blocking also makes the driver unavailable;
// unblocking leaves availability to the driver.
func (d *Driver) SetBlocked(blocked bool, now time.Time) (changed bool, availability AvailabilityChange) {
	availability = AvailabilityChange{Previous: d.available, Current: d.available}
	if d.blocked == blocked {
		return false, availability
	}

	d.blocked = blocked
	if blocked {
		d.available = false
		availability.Current = false
	}
	d.updatedAt = now
	return true, availability
}

// MoveTo records a position report.
func (d *Driver) MoveTo(point kernel.GeoPoint, now time.Time) error {
	if err := point.Validate(); err != nil {
		return err
	}
	d.location = &point
	t := now
	d.locationUpdatedAt = &t
	d.updatedAt = now
	return nil
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}

func (d *Driver) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneIsRequired
	}
	d.phone = phone
	return nil
}
