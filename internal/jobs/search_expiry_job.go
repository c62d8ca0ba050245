package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultSearchExpirySchedule runs the expiry sweep every 10 seconds.
const DefaultSearchExpirySchedule = "*/10 * * * * *"

// ExpiryHandler runs one expiry sweep.
type ExpiryHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireStaleSearchesCommand) error
}

// SearchExpiryJob periodically moves searches nobody accepted in time to
// no_driver_found. It also recovers jobs whose matching task was lost.
type SearchExpiryJob struct {
	handler  ExpiryHandler
	cmd      commands.ExpireStaleSearchesCommand
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewSearchExpiryJob(
	handler ExpiryHandler,
	cmd commands.ExpireStaleSearchesCommand,
	schedule string,
	timeout time.Duration,
	logger *slog.Logger,
) *SearchExpiryJob {
	if schedule == "" {
		schedule = DefaultSearchExpirySchedule
	}
	return &SearchExpiryJob{
		handler:  handler,
		cmd:      cmd,
		schedule: schedule,
		timeout:  timeout,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "search_expiry_job"),
	}
}

func (j *SearchExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Search expiry job started", "schedule", j.schedule)
	return nil
}

// Run performs one sweep.
func (j *SearchExpiryJob) Run() {
	ctx, cancel := withOptionalTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.handler.Handle(ctx, j.cmd); err != nil {
		j.logger.ErrorContext(ctx, "Search expiry job failed", "error", err)
	}
}

func (j *SearchExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Search expiry job stopped")
}
