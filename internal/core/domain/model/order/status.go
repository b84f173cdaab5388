package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
type Status int

const (
	// Unknown is the zero value and never valid for a persisted order.
	Unknown Status = iota

	// Pending orders wait for a driver.
	Pending

	// Assigned orders have a driver who has not accepted yet.
	Assigned

	// Accepted orders were confirmed by the driver.
	Accepted

	// PickedUp orders have the goods or passenger on board.
	PickedUp

	// InProgress orders are on the way to the dropoff.
	InProgress

	// Completed is terminal.
	Completed

	// Cancelled is terminal.
	Cancelled
)

var statusNames = map[Status]string{
	Pending:    "pending",
	Assigned:   "assigned",
	Accepted:   "accepted",
	PickedUp:   "picked_up",
	InProgress: "in_progress",
	Completed:  "completed",
	Cancelled:  "cancelled",
}

// AllStatuses lists valid statuses in lifecycle order.
func AllStatuses() []Status {
	return []Status{Pending, Assigned, Accepted, PickedUp, InProgress, Completed, Cancelled}
}

// ParseStatus converts the wire name of a status. Unknown names are a validation error.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// RequiresDriver reports whether an order in this status must have a driver attached.
func (s Status) RequiresDriver() bool {
	switch s {
	case Assigned, Accepted, PickedUp, InProgress:
		return true
	default:
		return false
	}
}

// IsActive reports whether a driver attached to an order in this status is busy with it.
func (s Status) IsActive() bool {
	return s.RequiresDriver()
}
