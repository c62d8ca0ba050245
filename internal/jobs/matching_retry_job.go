package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultMatchingRetrySchedule runs the retry sweep every 15 seconds.
const DefaultMatchingRetrySchedule = "*/15 * * * * *"

// RetryHandler runs one retry sweep.
type RetryHandler interface {
	Handle(ctx context.Context, cmd commands.RetryUnmatchedJobsCommand) error
}

// MatchingRetryJob periodically sends no_driver_found jobs back to the search,
// or cancels them once they used up their attempts.
type MatchingRetryJob struct {
	handler  RetryHandler
	cmd      commands.RetryUnmatchedJobsCommand
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewMatchingRetryJob creates the job. An empty schedule means
// DefaultMatchingRetrySchedule; each run is bounded by timeout.
func NewMatchingRetryJob(
	handler RetryHandler,
	cmd commands.RetryUnmatchedJobsCommand,
	schedule string,
	timeout time.Duration,
	logger *slog.Logger,
) *MatchingRetryJob {
	if schedule == "" {
		schedule = DefaultMatchingRetrySchedule
	}
	return &MatchingRetryJob{
		handler:  handler,
		cmd:      cmd,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "matching_retry_job"),
	}
}

func (j *MatchingRetryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Matching retry job started", "schedule", j.schedule)
	return nil
}

// Run performs one sweep. Start calls it on every tick.
func (j *MatchingRetryJob) Run() {
	ctx, cancel := withOptionalTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.handler.Handle(ctx, j.cmd); err != nil {
		j.logger.ErrorContext(ctx, "Matching retry job failed", "error", err)
	}
}

// Stop stops scheduling and waits for a running sweep to finish.
func (j *MatchingRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Matching retry job stopped")
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
