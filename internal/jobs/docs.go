// Package jobs provides the background machinery of the dispatch service.
//
// # Matching executor
//
// MatchingExecutor implements ports.TaskScheduler with a fixed worker pool
// and a bounded queue. Lifecycle transitions into finding_driver schedule one
// matching run on it; each run gets its own timeout. NewSyncExecutor runs
// tasks inline for tests.
//
// # Scheduled sweeps
//
// Both sweeps use github.com/robfig/cron/v3 with a seconds field and skip a
// tick while the previous run is still going:
//
//  1. MatchingRetryJob (every 15 s) sends no_driver_found jobs back to the
//     search after an exponential backoff and cancels the ones that used up
//     their attempts.
//  2. SearchExpiryJob (every 10 s) moves finding_driver jobs older than the
//     offer timeout to no_driver_found.
//
// # Usage
//
//	executor := jobs.NewMatchingExecutor(cfg.Workers, cfg.QueueSize, cfg.MatchTimeout, logger)
//	executor.Start()
//
//	manager := jobs.NewJobManager(
//	    jobs.NewMatchingRetryJob(retryHandler, retryCmd, "", time.Minute, logger),
//	    jobs.NewSearchExpiryJob(expiryHandler, expiryCmd, "", time.Minute, logger),
//	)
//	if err := manager.StartAll(); err != nil {
//	    log.Fatal(err)
//	}
//	defer manager.StopAll()
package jobs
