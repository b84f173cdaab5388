package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard detects zero-value structs that bypassed their constructor.
// Aggregates, value objects, commands and queries embed it and call Validate before
// any operation that relies on their invariants.
//
// Example usage:
//
//	type Fare struct {
//	    total float64
//	    guard guard.ConstructorGuard
//	}
//
//	func NewFare(total float64) (Fare, error) {
//	    if total < 0 {
//	        return Fare{}, errors.New("total cannot be negative")
//	    }
//	    return Fare{total: total, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (f Fare) Validate() error {
//	    return f.guard.Validate(ErrFareIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a guard made by NewConstructorGuard, otherwise validationError
// (or ErrDefaultConstructorGuard when validationError is nil).
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
