package queries

import (
	"context"

	"dispatch/internal/core/application/views"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler resolves a single order with its parties.
type GetOrderQueryHandler struct {
	runtime
	db *gorm.DB
}

// NewGetOrderQueryHandler creates the handler. The REST adapter also uses it to decide
// whether a caller is a party of the order before acting on it.
func NewGetOrderQueryHandler(db *gorm.DB, opts ...Option) GetOrderQueryHandler {
	return GetOrderQueryHandler{runtime: newRuntime(opts...), db: db}
}

// Handle returns errs.ObjectNotFoundError for unknown ids.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (views.OrderView, error) {
	if err := query.Validate(); err != nil {
		return views.OrderView{}, err
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()

	orders, err := scanOrders(ctx, h.db, "WHERE o.id = ?", query.OrderID().Google())
	if err != nil {
		return views.OrderView{}, h.settle(ctx, "get order", err)
	}
	if len(orders) == 0 {
		return views.OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID())
	}
	return orders[0], nil
}
