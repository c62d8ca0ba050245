package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/ports"
)

// RetryUnmatchedJobsCommandHandler gives jobs in no_driver_found another
// search once their backoff has elapsed, and cancels them as the system once
// they used up their attempts. Every move goes through the lifecycle.
type RetryUnmatchedJobsCommandHandler struct {
	uowFactory  JobUoWFactory
	transitions Transitioner
	clock       ports.Clock
	logger      *slog.Logger
}

func NewRetryUnmatchedJobsCommandHandler(
	uowFactory JobUoWFactory,
	transitions Transitioner,
	clock ports.Clock,
	logger *slog.Logger,
) RetryUnmatchedJobsCommandHandler {
	return RetryUnmatchedJobsCommandHandler{
		uowFactory:  uowFactory,
		transitions: transitions,
		clock:       clock,
		logger:      logger.With("component", "RetryUnmatchedJobsCommandHandler"),
	}
}

// Handle processes one batch and returns the joined per-job failures.
func (h RetryUnmatchedJobsCommandHandler) Handle(ctx context.Context, cmd RetryUnmatchedJobsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock.Now()
	waiting, err := h.uowFactory.Create().JobRepository().
		FindByStatusChangedBefore(ctx, job.NoDriverFound, now.Add(-cmd.MinBackoff()), cmd.Batch())
	if err != nil {
		return err
	}

	var failures error
	for _, j := range waiting {
		attempts := j.MatchAttempts()
		switch {
		case attempts >= cmd.MaxAttempts():
			reason := fmt.Sprintf("no courier found after %d attempts", attempts)
			err = moveAsSystem(ctx, h.transitions, j, job.Cancelled, reason)
			if err == nil {
				h.logger.InfoContext(ctx, "job cancelled after exhausting retries",
					"job_id", j.ID().String(), "attempts", attempts)
			}
		case now.Sub(j.StatusChangedAt()) >= cmd.BackoffAfter(attempts):
			err = moveAsSystem(ctx, h.transitions, j, job.FindingDriver, "")
			if err == nil {
				h.logger.InfoContext(ctx, "retrying search", "job_id", j.ID().String(), "attempt", attempts+1)
			}
		default:
			continue
		}

		if err != nil {
			h.logger.ErrorContext(ctx, "failed to retry job", "job_id", j.ID().String(), "error", err)
			failures = errors.Join(failures, err)
		}
	}
	return failures
}
