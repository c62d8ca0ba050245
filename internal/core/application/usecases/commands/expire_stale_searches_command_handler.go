package commands

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/ports"
)

// ExpireStaleSearchesCommandHandler moves jobs stuck in finding_driver past
// the offer timeout to no_driver_found, as the system.
type ExpireStaleSearchesCommandHandler struct {
	uowFactory  JobUoWFactory
	transitions Transitioner
	clock       ports.Clock
	logger      *slog.Logger
}

func NewExpireStaleSearchesCommandHandler(
	uowFactory JobUoWFactory,
	transitions Transitioner,
	clock ports.Clock,
	logger *slog.Logger,
) ExpireStaleSearchesCommandHandler {
	return ExpireStaleSearchesCommandHandler{
		uowFactory:  uowFactory,
		transitions: transitions,
		clock:       clock,
		logger:      logger.With("component", "ExpireStaleSearchesCommandHandler"),
	}
}

// Handle expires one batch. A job that moved on meanwhile is skipped; other
// per-job failures are collected and returned after the batch.
func (h ExpireStaleSearchesCommandHandler) Handle(ctx context.Context, cmd ExpireStaleSearchesCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	cutoff := h.clock.Now().Add(-cmd.OfferTimeout())
	stale, err := h.uowFactory.Create().JobRepository().
		FindByStatusChangedBefore(ctx, job.FindingDriver, cutoff, cmd.Batch())
	if err != nil {
		return err
	}

	var failures error
	for _, j := range stale {
		if err = moveAsSystem(ctx, h.transitions, j, job.NoDriverFound, ""); err != nil {
			h.logger.ErrorContext(ctx, "failed to expire search", "job_id", j.ID().String(), "error", err)
			failures = errors.Join(failures, err)
			continue
		}
		h.logger.InfoContext(ctx, "search expired", "job_id", j.ID().String())
	}
	return failures
}

// moveAsSystem requests a system-initiated transition and treats a job that
// already left its status as done.
func moveAsSystem(ctx context.Context, transitions Transitioner, j *job.Job, target job.Status, reason string) error {
	opts := job.TransitionOptions{}
	if target == job.Cancelled {
		opts.CancelledBy = job.InitiatorSystem
		opts.Reason = reason
	}

	cmd, err := NewTransitionJobCommand(j.ID(), target, opts)
	if err != nil {
		return err
	}
	if _, err = transitions.Handle(ctx, cmd); err != nil && !errors.Is(err, job.ErrIllegalTransition) {
		return err
	}
	return nil
}
