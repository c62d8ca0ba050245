package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/matching"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/observability"
	"dispatch/internal/pkg/errs"
)

const DefaultCommissionRate = 0.15

// Matcher runs one matching pass for a job.
type Matcher interface {
	Run(ctx context.Context, jobID kernel.UUID) (matching.Outcome, error)
}

// TransitionJobDeps are the collaborators of TransitionJobCommandHandler.
type TransitionJobDeps struct {
	UoWFactory     UoWFactory
	Policy         services.CancellationPolicy
	Matcher        Matcher
	Scheduler      ports.TaskScheduler
	Notifier       ports.Notifier
	Events         ports.EventPublisher
	Clock          ports.Clock
	CommissionRate float64
	Logger         *slog.Logger
	// Index is optional. Couriers leave it when they accept a job and come
	// back when the job releases them.
	Index ports.LocationIndex
}

// TransitionJobCommandHandler is the only way a job changes state.
//
// Inside one transaction it locks the job row, plans the move with
// job.StateMachine, applies it, runs the in-transaction effects (courier
// assignment, delivery count, payout, cancellation charges) and stores the
// job under an optimistic version check. After commit it runs the
// best-effort effects: scheduling a matching run, notifying the status change
// and publishing domain events. Their failures are logged and never undo the
// committed transition.
//
// Example:
//
//	cmd, _ := NewTransitionJobCommand(jobID, job.Paid, job.TransitionOptions{})
//	j, err := handler.Handle(ctx, cmd)
//	var illegal *job.IllegalTransitionError
//	if errors.As(err, &illegal) {
//	    // illegal.Allowed lists the reachable states
//	}
type TransitionJobCommandHandler struct {
	uowFactory     UoWFactory
	machine        job.StateMachine
	policy         services.CancellationPolicy
	matcher        Matcher
	scheduler      ports.TaskScheduler
	notifier       ports.Notifier
	events         ports.EventPublisher
	clock          ports.Clock
	index          ports.LocationIndex
	commissionRate float64
	logger         *slog.Logger
}

// NewTransitionJobCommandHandler checks that every collaborator is present.
func NewTransitionJobCommandHandler(deps TransitionJobDeps) (*TransitionJobCommandHandler, error) {
	if err := errors.Join(
		required("uow factory", deps.UoWFactory == nil),
		required("cancellation policy", deps.Policy == nil),
		required("matcher", deps.Matcher == nil),
		required("scheduler", deps.Scheduler == nil),
		required("notifier", deps.Notifier == nil),
		required("event publisher", deps.Events == nil),
		required("clock", deps.Clock == nil),
		required("logger", deps.Logger == nil),
	); err != nil {
		return nil, err
	}
	if deps.CommissionRate < 0 || deps.CommissionRate >= 1 {
		return nil, errs.NewValueIsOutOfRangeError("commission rate", deps.CommissionRate, 0.0, 1.0)
	}

	return &TransitionJobCommandHandler{
		uowFactory:     deps.UoWFactory,
		machine:        job.NewStateMachine(),
		policy:         deps.Policy,
		matcher:        deps.Matcher,
		scheduler:      deps.Scheduler,
		notifier:       deps.Notifier,
		events:         deps.Events,
		clock:          deps.Clock,
		index:          deps.Index,
		commissionRate: deps.CommissionRate,
		logger:         deps.Logger.With("component", "TransitionJobCommandHandler"),
	}, nil
}

// Handle moves the job and returns its committed state.
//
// Returns:
//   - *job.IllegalTransitionError when the target is not reachable; nothing changes
//   - *job.MissingOptionError when accepting without a courier; nothing changes
//   - errs.ErrConcurrentModification when another writer changed or locked the job
//   - errs.ErrObjectNotFound for an unknown job or courier
func (h *TransitionJobCommandHandler) Handle(ctx context.Context, cmd TransitionJobCommand) (*job.Job, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	courierRepo := uow.CourierRepository()

	j, err := jobRepo.GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return nil, h.reject(err)
	}

	opts := cmd.Options()
	tr, err := h.machine.Plan(j.Status(), cmd.Target(), opts)
	if err != nil {
		return nil, h.reject(err)
	}

	now := h.clock.Now()
	if err = j.Apply(tr, opts, now); err != nil {
		return nil, h.reject(err)
	}

	var touched *courier.Courier
	for _, effect := range tr.TransactionalEffects() {
		var c *courier.Courier
		if c, err = h.runTransactional(ctx, courierRepo, j, tr, effect); err != nil {
			return nil, h.reject(fmt.Errorf("%s: %w", effect, err))
		}
		if c != nil {
			touched = c
		}
	}

	if err = jobRepo.Update(ctx, j); err != nil {
		return nil, h.reject(err)
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, h.reject(err)
	}

	observability.TransitionsTotal.WithLabelValues(tr.From.String(), tr.To.String()).Inc()
	h.logger.InfoContext(ctx, "job transitioned",
		"job_id", j.ID().String(), "from", tr.From.String(), "to", tr.To.String())

	syncCourierIndex(ctx, h.index, h.logger, touched)
	h.runPostCommit(ctx, j, tr, now)

	return j, nil
}

// runTransactional applies one in-transaction effect and returns the courier
// it changed, if any.
func (h *TransitionJobCommandHandler) runTransactional(
	ctx context.Context,
	couriers ports.CourierRepository,
	j *job.Job,
	tr job.Transition,
	effect job.Effect,
) (*courier.Courier, error) {
	//nolint:exhaustive // only transactional effects reach here
	switch effect {
	case job.EffectAssignCourier:
		return h.withCourier(ctx, couriers, j, (*courier.Courier).AssignJob)

	case job.EffectCompleteDelivery:
		return h.withCourier(ctx, couriers, j, func(c *courier.Courier) error {
			c.CompleteDelivery()
			return nil
		})

	case job.EffectPayout:
		return h.withCourier(ctx, couriers, j, func(c *courier.Courier) error {
			return c.Credit(j.Payout(h.commissionRate))
		})

	case job.EffectApplyCancellationPolicy:
		cancellation := j.Cancellation()
		charge := h.policy.Evaluate(tr.From, cancellation.By)
		if err := j.ChargeCancellation(charge.ClientFee, charge.CourierPenalty); err != nil {
			return nil, err
		}
		if tr.From.IsBeforeAcceptance() || j.CourierID() == nil {
			return nil, nil
		}
		return h.withCourier(ctx, couriers, j, func(c *courier.Courier) error {
			c.ReleaseFromJob()
			if charge.CourierPenalty > 0 {
				return c.Debit(charge.CourierPenalty)
			}
			return nil
		})
	}
	return nil, nil
}

// withCourier locks the job's courier row, applies fn and stores the courier.
func (h *TransitionJobCommandHandler) withCourier(
	ctx context.Context,
	couriers ports.CourierRepository,
	j *job.Job,
	fn func(c *courier.Courier) error,
) (*courier.Courier, error) {
	courierID := j.CourierID()
	if courierID == nil {
		return nil, errs.NewValueIsRequiredError("courier id")
	}

	c, err := couriers.GetForUpdate(ctx, *courierID)
	if err != nil {
		return nil, err
	}
	if err = fn(c); err != nil {
		return nil, err
	}
	if err = couriers.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (h *TransitionJobCommandHandler) runPostCommit(ctx context.Context, j *job.Job, tr job.Transition, now time.Time) {
	for _, effect := range tr.PostCommitEffects() {
		//nolint:exhaustive // event effects are published together below
		switch effect {
		case job.EffectStartMatching:
			h.scheduleMatching(ctx, j.ID())
		case job.EffectNotifyStatusChange:
			if err := h.notifier.NotifyStatusChange(ctx, j.ID(), tr.From, tr.To); err != nil {
				observability.NotificationFailuresTotal.WithLabelValues("status_change").Inc()
				h.logger.WarnContext(ctx, "failed to notify status change",
					"job_id", j.ID().String(), "to", tr.To.String(), "error", err)
			}
		}
	}

	if events := tr.Events(j, now); len(events) > 0 {
		if err := h.events.Publish(ctx, events...); err != nil {
			observability.EventPublishFailuresTotal.Inc()
			h.logger.WarnContext(ctx, "failed to publish job events",
				"job_id", j.ID().String(), "to", tr.To.String(), "error", err)
		}
	}
}

// scheduleMatching queues one matching run before Handle returns. When the
// run finds nobody, the task moves the job to no_driver_found; that
// transition never schedules matching, so the loop is bounded.
func (h *TransitionJobCommandHandler) scheduleMatching(ctx context.Context, jobID kernel.UUID) {
	task := func(taskCtx context.Context) {
		outcome, err := h.matcher.Run(taskCtx, jobID)
		if err != nil {
			h.logger.ErrorContext(taskCtx, "matching run failed", "job_id", jobID.String(), "error", err)
			return
		}
		if outcome.Kind != matching.OutcomeNoCandidates {
			return
		}

		cmd, err := NewTransitionJobCommand(jobID, job.NoDriverFound, job.TransitionOptions{})
		if err != nil {
			h.logger.ErrorContext(taskCtx, "failed to build no driver found command", "job_id", jobID.String(), "error", err)
			return
		}
		if _, err = h.Handle(taskCtx, cmd); err != nil {
			if errors.Is(err, job.ErrIllegalTransition) {
				h.logger.InfoContext(taskCtx, "job left finding_driver before the search ended",
					"job_id", jobID.String())
				return
			}
			h.logger.ErrorContext(taskCtx, "failed to mark job as no driver found", "job_id", jobID.String(), "error", err)
		}
	}

	if err := h.scheduler.Schedule(ctx, "match:"+jobID.String(), task); err != nil {
		h.logger.ErrorContext(ctx, "failed to schedule matching, search expiry will recover the job",
			"job_id", jobID.String(), "error", err)
	}
}

func (h *TransitionJobCommandHandler) reject(err error) error {
	reason := "error"
	switch {
	case errors.Is(err, job.ErrIllegalTransition):
		reason = "illegal_transition"
	case errors.Is(err, job.ErrMissingRequiredOption):
		reason = "missing_option"
	case errors.Is(err, errs.ErrConcurrentModification):
		reason = "concurrent_modification"
	case errors.Is(err, errs.ErrObjectNotFound):
		reason = "not_found"
	}
	observability.TransitionRejectionsTotal.WithLabelValues(reason).Inc()
	return err
}

func required(name string, missing bool) error {
	if missing {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
