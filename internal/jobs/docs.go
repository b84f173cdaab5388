// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs are built on github.com/robfig/cron/v3 with the seconds field enabled.
//
// # Available Jobs
//
// DashboardStatsJob recomputes the admin dashboard counters and publishes them as
// dashboard.stats_update on the admins topic. The schedule comes from
// DASHBOARD_STATS_SCHEDULE and defaults to every 30 seconds.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewDashboardStatsJob(statsHandler, bus, cfg.DashboardStatsSchedule, log),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// A failed tick is logged and retried on the next one. A job that fails to start stops the
// jobs already started.
package jobs
