// Package jobs provides scheduled background tasks for the consolidation engine.
//
// Jobs are cron-based, built on github.com/robfig/cron/v3. Schedules accept
// five-field specs, six-field specs with a leading seconds field, and
// descriptors such as "@every 5m". A run that is still in progress when the
// next tick fires is skipped.
//
// # Available Jobs
//
// 1. AutoBatchJob - consolidates the unbatched pool of every office pair using
// the default batch weight. Enabled by AUTO_BATCH_CRON.
// 2. PoolScanJob - refreshes the unbatched pool gauges every thirty seconds.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(autoBatchHandler, cfg.AutoBatchCron, destinationsHandler, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Busy destinations are logged at WARN and retried on the next tick
// - Destinations committed before a failure stay committed
// - Failed job starts stop any already running jobs
package jobs
