package queries

import (
	"context"

	"dispatch/internal/core/application/events"
	"dispatch/internal/pkg/pgerr"

	"gorm.io/gorm"
)

// DashboardStatsQueryHandler computes the admin dashboard counters.
type DashboardStatsQueryHandler struct {
	runtime
	db *gorm.DB
}

// NewDashboardStatsQueryHandler creates the handler shared by GET /dashboard/stats and the
// periodic broadcast job.
func NewDashboardStatsQueryHandler(db *gorm.DB, opts ...Option) DashboardStatsQueryHandler {
	return DashboardStatsQueryHandler{runtime: newRuntime(opts...), db: db}
}

// Handle counts everything in one round trip.
func (h DashboardStatsQueryHandler) Handle(ctx context.Context, query DashboardStatsQuery) (events.DashboardStats, error) {
	if err := query.Validate(); err != nil {
		return events.DashboardStats{}, err
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()

	var stats events.DashboardStats
	err := h.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT count(*) FROM orders)                                   AS total_orders,
			(SELECT count(*) FROM orders WHERE status = 'pending')          AS pending_orders,
			(SELECT count(*) FROM orders
			  WHERE status IN ('assigned', 'accepted', 'picked_up', 'in_progress')) AS active_orders,
			(SELECT count(*) FROM orders WHERE status = 'completed')        AS completed_orders,
			(SELECT count(*) FROM drivers)                                  AS total_drivers,
			(SELECT count(*) FROM drivers WHERE connection_id IS NOT NULL)  AS online_drivers,
			(SELECT count(*) FROM customers)                                AS total_customers,
			(SELECT count(*) FROM orders WHERE created_at >= ?)             AS today_orders
	`, query.Since()).Scan(&stats).Error
	if err != nil {
		return events.DashboardStats{}, h.settle(ctx, "dashboard stats", pgerr.Translate("dashboard stats", err))
	}

	return stats, nil
}
