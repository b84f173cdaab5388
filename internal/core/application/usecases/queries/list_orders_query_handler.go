package queries

import (
	"context"
	"strings"

	"dispatch/internal/core/application/views"
	"dispatch/internal/pkg/pgerr"

	"gorm.io/gorm"
)

// ListOrdersQueryHandler answers ListOrdersQuery with one page and the total match count.
type ListOrdersQueryHandler struct {
	runtime
	db *gorm.DB
}

// NewListOrdersQueryHandler creates the handler behind the admin order list.
//
// Orders are resolved together with their customer and driver in a single query, so a
// page costs two round trips: the count and the page itself.
//
// Example:
//
//	handler := queries.NewListOrdersQueryHandler(db, queries.WithStoreTimeout(5*time.Second))
//	query, _ := queries.NewListOrdersQuery(queries.OrderFilter{Status: &pending}, 1, 20)
//	page, err := handler.Handle(ctx, query)
func NewListOrdersQueryHandler(db *gorm.DB, opts ...Option) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{runtime: newRuntime(opts...), db: db}
}

// ListOrdersQueryResponse is one page of resolved orders.
type ListOrdersQueryResponse struct {
	Orders     []views.OrderView
	Pagination Pagination
}

// Handle returns the requested page, newest orders first, with the total number of matches.
// A page past the end is empty but still reports the total.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) (ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return ListOrdersQueryResponse{}, err
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()

	where, args := filterClause(query.Filter())

	var total int64
	if err := h.db.WithContext(ctx).Raw("SELECT count(*) FROM orders o "+where, args...).Scan(&total).Error; err != nil {
		return ListOrdersQueryResponse{}, h.settle(ctx, "count orders", pgerr.Translate("count orders", err))
	}

	orders, err := scanOrders(ctx, h.db, where+" ORDER BY o.created_at DESC, o.id LIMIT ? OFFSET ?",
		append(args, query.PageSize(), query.offset())...)
	if err != nil {
		return ListOrdersQueryResponse{}, h.settle(ctx, "list orders", err)
	}

	return ListOrdersQueryResponse{
		Orders:     orders,
		Pagination: newPagination(query.Page(), query.PageSize(), total),
	}, nil
}

func filterClause(f OrderFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Status != nil {
		conds = append(conds, "o.status = ?")
		args = append(args, f.Status.String())
	}
	if f.DriverID != nil {
		conds = append(conds, "o.driver_id = ?")
		args = append(args, f.DriverID.Google())
	}
	if f.CustomerID != nil {
		conds = append(conds, "o.customer_id = ?")
		args = append(args, f.CustomerID.Google())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
