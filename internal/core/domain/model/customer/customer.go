// Package customer provides the read-only customer entity consulted when orders are placed.
package customer

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCustomerIsNotConstructed = errors.New("Customer must be created via RestoreCustomer")

type Customer struct {
	id      kernel.UUID
	name    string
	phone   string
	blocked bool
	guard   guard.ConstructorGuard
}

func RestoreCustomer(id kernel.UUID, name, phone string, blocked bool) (*Customer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Customer{
		id:      id,
		name:    name,
		phone:   phone,
		blocked: blocked,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c *Customer) Validate() error {
	if c == nil {
		return ErrCustomerIsNotConstructed
	}
	return c.guard.Validate(ErrCustomerIsNotConstructed)
}

func (c *Customer) ID() kernel.UUID { return c.id }
func (c *Customer) Name() string    { return c.name }
func (c *Customer) Phone() string   { return c.phone }
func (c *Customer) IsBlocked() bool { return c.blocked }

// CanPlaceOrders rejects blocked customers.
func (c *Customer) CanPlaceOrders() error {
	if c.blocked {
		return errs.NewConflictError("Customer is blocked")
	}
	return nil
}
