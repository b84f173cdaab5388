package jobs

import (
	"context"
	"time"

	"dispatch/internal/core/application/events"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// DefaultDashboardStatsSchedule runs the broadcast every 30 seconds.
const DefaultDashboardStatsSchedule = "*/30 * * * * *"

const statsTimeout = 10 * time.Second

// DashboardStatsHandler computes the admin dashboard counters.
type DashboardStatsHandler interface {
	Handle(ctx context.Context, query queries.DashboardStatsQuery) (events.DashboardStats, error)
}

// DashboardStatsJob pushes fresh dashboard counters to the admins topic on a schedule.
type DashboardStatsJob struct {
	handler  DashboardStatsHandler
	bus      ports.NotificationBus
	schedule string
	cron     *cron.Cron
	logger   logger.Logger
	now      func() time.Time
}

// NewDashboardStatsJob creates the job. An empty schedule falls back to
// DefaultDashboardStatsSchedule. Schedules use the six-field format with seconds.
func NewDashboardStatsJob(
	handler DashboardStatsHandler,
	bus ports.NotificationBus,
	schedule string,
	log logger.Logger,
) *DashboardStatsJob {
	if schedule == "" {
		schedule = DefaultDashboardStatsSchedule
	}
	return &DashboardStatsJob{
		handler:  handler,
		bus:      bus,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   log.With(logger.Component("dashboard_stats_job")),
		now:      time.Now,
	}
}

func (j *DashboardStatsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("Dashboard stats job started", logger.String("schedule", j.schedule))
	return nil
}

// Run computes the counters once and publishes them. Failures are logged and the next
// tick tries again.
func (j *DashboardStatsJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, statsTimeout)
	defer cancel()

	now := j.now()
	stats, err := j.handler.Handle(ctx, queries.NewDashboardStatsQuery(now))
	if err != nil {
		j.logger.Error("Dashboard stats job failed", logger.Error(err))
		return
	}
	j.bus.Publish(ctx, events.New(events.DashboardStatsUpdate, stats, now), events.Admins())
}

// Stop waits for a running broadcast to finish.
func (j *DashboardStatsJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("Dashboard stats job stopped")
}
