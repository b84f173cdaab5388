package queries_test

import (
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListOrdersQuery_Defaults(t *testing.T) {
	query, err := queries.NewListOrdersQuery(queries.OrderFilter{}, 0, 0)

	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, 1, query.Page())
	assert.Equal(t, queries.DefaultPageSize, query.PageSize())
}

func TestNewListOrdersQuery_Invalid(t *testing.T) {
	unknown := order.Status(42)

	testCases := []struct {
		name     string
		filter   queries.OrderFilter
		page     int
		pageSize int
	}{
		{"negative page", queries.OrderFilter{}, -1, 10},
		{"page size too large", queries.OrderFilter{}, 1, queries.MaxPageSize + 1},
		{"negative page size", queries.OrderFilter{}, 1, -5},
		{"unknown status", queries.OrderFilter{Status: &unknown}, 1, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := queries.NewListOrdersQuery(tc.filter, tc.page, tc.pageSize)

			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}
}

func TestQueries_NotConstructedViaConstructor(t *testing.T) {
	require.ErrorIs(t, queries.ListOrdersQuery{}.Validate(), queries.ErrListOrdersQueryIsNotConstructed)
	require.ErrorIs(t, queries.GetOrderQuery{}.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
	require.ErrorIs(t, queries.ListDriverOrdersQuery{}.Validate(), queries.ErrListDriverOrdersQueryIsNotConstructed)
	require.ErrorIs(t, queries.ListCustomerOrdersQuery{}.Validate(), queries.ErrListCustomerOrdersQueryIsNotConstructed)
	require.ErrorIs(t, queries.NearbyDriversQuery{}.Validate(), queries.ErrNearbyDriversQueryIsNotConstructed)
	require.ErrorIs(t, queries.DashboardStatsQuery{}.Validate(), queries.ErrDashboardStatsQueryIsNotConstructed)
}

func TestNewGetOrderQuery_ZeroID(t *testing.T) {
	_, err := queries.NewGetOrderQuery(kernel.UUID{})

	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestNewNearbyDriversQuery(t *testing.T) {
	query, err := queries.NewNearbyDriversQuery(12.97, 77.59, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, queries.DefaultNearbyRadiusKm, query.RadiusKm(), 1e-9)
	assert.Equal(t, queries.DefaultNearbyLimit, query.Limit())

	_, err = queries.NewNearbyDriversQuery(95, 77.59, 5, 10)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = queries.NewNearbyDriversQuery(12.97, 77.59, queries.MaxNearbyRadiusKm+1, 10)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestNewDashboardStatsQuery_Since(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	query := queries.NewDashboardStatsQuery(now)

	assert.Equal(t, now.Add(-24*time.Hour), query.Since())
}
