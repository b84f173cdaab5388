package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrListDriverOrdersQueryIsNotConstructed = errors.New(
		"ListDriverOrdersQuery must be created via NewListDriverOrdersQuery constructor",
	)
	ErrListCustomerOrdersQueryIsNotConstructed = errors.New(
		"ListCustomerOrdersQuery must be created via NewListCustomerOrdersQuery constructor",
	)
)

// ListDriverOrdersQuery lists every order ever attached to a driver, optionally by status.
type ListDriverOrdersQuery struct {
	driverID kernel.UUID
	status   *order.Status
	guard    guard.ConstructorGuard
}

// NewListDriverOrdersQuery lists the driver's orders. A nil status means every status.
func NewListDriverOrdersQuery(driverID kernel.UUID, status *order.Status) (ListDriverOrdersQuery, error) {
	if err := driverID.Validate(); err != nil {
		return ListDriverOrdersQuery{}, errs.NewValueIsRequiredErrorWithCause("driverId", err)
	}
	if status != nil {
		if err := status.Validate(); err != nil {
			return ListDriverOrdersQuery{}, err
		}
	}
	return ListDriverOrdersQuery{driverID: driverID, status: status, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDriverOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListDriverOrdersQueryIsNotConstructed)
}

func (q ListDriverOrdersQuery) DriverID() kernel.UUID { return q.driverID }
func (q ListDriverOrdersQuery) Status() *order.Status { return q.status }

// ListCustomerOrdersQuery lists a customer's orders.
type ListCustomerOrdersQuery struct {
	customerID kernel.UUID
	guard      guard.ConstructorGuard
}

// NewListCustomerOrdersQuery lists every order the customer placed.
func NewListCustomerOrdersQuery(customerID kernel.UUID) (ListCustomerOrdersQuery, error) {
	if err := customerID.Validate(); err != nil {
		return ListCustomerOrdersQuery{}, errs.NewValueIsRequiredErrorWithCause("customerId", err)
	}
	return ListCustomerOrdersQuery{customerID: customerID, guard: guard.NewConstructorGuard()}, nil
}

func (q ListCustomerOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListCustomerOrdersQueryIsNotConstructed)
}

func (q ListCustomerOrdersQuery) CustomerID() kernel.UUID { return q.customerID }
