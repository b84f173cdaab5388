package queries

import (
	"errors"
	"time"

	"dispatch/internal/pkg/guard"
)

var ErrDashboardStatsQueryIsNotConstructed = errors.New(
	"DashboardStatsQuery must be created via NewDashboardStatsQuery constructor",
)

// DashboardStatsQuery aggregates fleet and order counters. Orders created after since count
// as today's orders.
type DashboardStatsQuery struct {
	since time.Time
	guard guard.ConstructorGuard
}

// NewDashboardStatsQuery treats the 24 hours before now as today.
func NewDashboardStatsQuery(now time.Time) DashboardStatsQuery {
	return DashboardStatsQuery{since: now.Add(-24 * time.Hour), guard: guard.NewConstructorGuard()}
}

func (q DashboardStatsQuery) Validate() error {
	return q.guard.Validate(ErrDashboardStatsQueryIsNotConstructed)
}

func (q DashboardStatsQuery) Since() time.Time {
	return q.since
}
