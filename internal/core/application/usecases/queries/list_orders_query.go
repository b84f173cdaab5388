package queries

import (
	"errors"
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// OrderFilter narrows a listing. Nil fields do not filter.
type OrderFilter struct {
	Status     *order.Status
	DriverID   *kernel.UUID
	CustomerID *kernel.UUID
}

// ListOrdersQuery pages through orders, newest first.
//
// Example:
//
//	pending := order.Pending
//	query, err := NewListOrdersQuery(OrderFilter{Status: &pending}, 1, 20)
//	page, err := handler.Handle(ctx, query)
//	fmt.Println(page.Pagination.Total)
type ListOrdersQuery struct {
	filter   OrderFilter
	page     int
	pageSize int
	guard    guard.ConstructorGuard
}

// NewListOrdersQuery validates paging. A zero page or page size picks the default.
func NewListOrdersQuery(filter OrderFilter, page, pageSize int) (ListOrdersQuery, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	var pageErr, sizeErr, statusErr error
	if page < 1 {
		pageErr = errs.NewValueIsOutOfRangeError("page", page, 1, math.MaxInt)
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		sizeErr = errs.NewValueIsOutOfRangeError("pageSize", pageSize, 1, MaxPageSize)
	}
	if filter.Status != nil {
		statusErr = filter.Status.Validate()
	}
	if err := errors.Join(pageErr, sizeErr, statusErr); err != nil {
		return ListOrdersQuery{}, err
	}

	return ListOrdersQuery{
		filter:   filter,
		page:     page,
		pageSize: pageSize,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Filter() OrderFilter { return q.filter }
func (q ListOrdersQuery) Page() int           { return q.page }
func (q ListOrdersQuery) PageSize() int       { return q.pageSize }

func (q ListOrdersQuery) offset() int {
	return (q.page - 1) * q.pageSize
}

// Pagination describes the page returned by ListOrdersQueryHandler.
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	Pages    int64 `json:"pages"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return Pagination{Page: page, PageSize: pageSize, Total: total, Pages: pages}
}
