package queries

import (
	"context"

	"dispatch/internal/core/application/views"

	"gorm.io/gorm"
)

// ListDriverOrdersQueryHandler returns a driver's orders, newest first. Unknown drivers
// simply have none.
type ListDriverOrdersQueryHandler struct {
	runtime
	db *gorm.DB
}

// NewListDriverOrdersQueryHandler creates the handler behind GET /api/v1/drivers/:id/orders.
func NewListDriverOrdersQueryHandler(db *gorm.DB, opts ...Option) ListDriverOrdersQueryHandler {
	return ListDriverOrdersQueryHandler{runtime: newRuntime(opts...), db: db}
}

// Handle lists every order ever assigned to the driver, optionally narrowed to one status.
func (h ListDriverOrdersQueryHandler) Handle(ctx context.Context, query ListDriverOrdersQuery) ([]views.OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()

	id := query.DriverID()
	where, args := filterClause(OrderFilter{DriverID: &id, Status: query.Status()})
	orders, err := scanOrders(ctx, h.db, where+" ORDER BY o.created_at DESC, o.id", args...)
	return orders, h.settle(ctx, "list driver orders", err)
}

// ListCustomerOrdersQueryHandler returns a customer's orders, newest first.
type ListCustomerOrdersQueryHandler struct {
	runtime
	db *gorm.DB
}

func NewListCustomerOrdersQueryHandler(db *gorm.DB, opts ...Option) ListCustomerOrdersQueryHandler {
	return ListCustomerOrdersQueryHandler{runtime: newRuntime(opts...), db: db}
}

// Handle returns the customer's orders, newest first.
func (h ListCustomerOrdersQueryHandler) Handle(ctx context.Context, query ListCustomerOrdersQuery) ([]views.OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()

	id := query.CustomerID()
	where, args := filterClause(OrderFilter{CustomerID: &id})
	orders, err := scanOrders(ctx, h.db, where+" ORDER BY o.created_at DESC, o.id", args...)
	return orders, h.settle(ctx, "list customer orders", err)
}
