package matching

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/observability"
	"dispatch/internal/pkg/errs"
)

const DefaultMaxNotify = 3

// OutcomeKind classifies the result of a matching run.
type OutcomeKind int

const (
	// OutcomeSkipped means the job was no longer searching; nothing was done.
	OutcomeSkipped OutcomeKind = iota
	// OutcomeNoCandidates means no courier was eligible.
	OutcomeNoCandidates
	// OutcomeMatched means at least one courier was offered the job.
	OutcomeMatched
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return observability.OutcomeSkipped
	case OutcomeNoCandidates:
		return observability.OutcomeNoCandidates
	case OutcomeMatched:
		return observability.OutcomeMatched
	default:
		return "unknown"
	}
}

// Outcome is the result of Engine.Run.
type Outcome struct {
	Kind  OutcomeKind
	JobID kernel.UUID
	// Status is the job status observed at the start of the run.
	Status job.Status
	// Candidates holds the notified couriers, best first. Empty unless Matched.
	Candidates []services.Candidate
}

// JobReader loads the current state of a job.
type JobReader interface {
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)
}

// Eligibility selects the couriers a job may be offered to.
type Eligibility interface {
	EligibleFor(ctx context.Context, j *job.Job) ([]*courier.Courier, error)
}

// Ranker orders eligible couriers for a job.
type Ranker interface {
	Rank(couriers []*courier.Courier, j *job.Job, limit int) []services.Candidate
}

// Engine runs one matching pass for a job.
type Engine struct {
	jobs      JobReader
	registry  Eligibility
	ranker    Ranker
	notifier  ports.Notifier
	maxNotify int
	logger    *slog.Logger
}

// NewEngine wires an engine. maxNotify values below 1 fall back to DefaultMaxNotify.
func NewEngine(
	jobs JobReader,
	registry Eligibility,
	ranker Ranker,
	notifier ports.Notifier,
	maxNotify int,
	logger *slog.Logger,
) (*Engine, error) {
	if jobs == nil {
		return nil, errs.NewValueIsRequiredError("jobs")
	}
	if registry == nil {
		return nil, errs.NewValueIsRequiredError("registry")
	}
	if ranker == nil {
		return nil, errs.NewValueIsRequiredError("ranker")
	}
	if notifier == nil {
		return nil, errs.NewValueIsRequiredError("notifier")
	}
	if maxNotify < 1 {
		maxNotify = DefaultMaxNotify
	}
	return &Engine{
		jobs:      jobs,
		registry:  registry,
		ranker:    ranker,
		notifier:  notifier,
		maxNotify: maxNotify,
		logger:    logger.With("component", "MatchingEngine"),
	}, nil
}

// Run matches the job identified by jobID.
//
// The job is re-read first; unless it is in finding_driver the run returns
// OutcomeSkipped without touching anything else. Otherwise eligible couriers
// are ranked and the best maxNotify are offered the job. Notification errors
// are logged and counted, never returned. Storage errors are returned.
//
// Repeated runs against unchanged data rank identically, but every run
// notifies again.
func (e *Engine) Run(ctx context.Context, jobID kernel.UUID) (Outcome, error) {
	started := time.Now()
	outcome, err := e.run(ctx, jobID)
	observability.MatchLatency.Observe(time.Since(started).Seconds())

	if err != nil {
		observability.MatchRunsTotal.WithLabelValues(observability.OutcomeFailed).Inc()
		return Outcome{}, err
	}
	observability.MatchRunsTotal.WithLabelValues(outcome.Kind.String()).Inc()
	return outcome, nil
}

func (e *Engine) run(ctx context.Context, jobID kernel.UUID) (Outcome, error) {
	j, err := e.jobs.Get(ctx, jobID)
	if err != nil {
		return Outcome{}, err
	}

	if j.Status() != job.FindingDriver {
		e.logger.InfoContext(ctx, "job is not searching, skipping",
			"job_id", jobID.String(), "status", j.Status().String())
		return Outcome{Kind: OutcomeSkipped, JobID: jobID, Status: j.Status()}, nil
	}

	eligible, err := e.registry.EligibleFor(ctx, j)
	if err != nil {
		return Outcome{}, err
	}
	if len(eligible) == 0 {
		e.logger.InfoContext(ctx, "no eligible couriers", "job_id", jobID.String())
		return Outcome{Kind: OutcomeNoCandidates, JobID: jobID, Status: j.Status()}, nil
	}

	candidates := e.ranker.Rank(eligible, j, e.maxNotify)
	for i, c := range candidates {
		e.offer(ctx, j, c, i+1)
	}

	e.logger.InfoContext(ctx, "job offered",
		"job_id", jobID.String(), "eligible", len(eligible), "notified", len(candidates))
	return Outcome{Kind: OutcomeMatched, JobID: jobID, Status: j.Status(), Candidates: candidates}, nil
}

func (e *Engine) offer(ctx context.Context, j *job.Job, c services.Candidate, rank int) {
	courierID := c.Courier.ID()
	err := e.notifier.NotifyCourier(ctx, courierID, ports.Offer{
		JobID:   j.ID(),
		Pickup:  j.Pickup(),
		Dropoff: j.Dropoff(),
		Price:   j.Price(),
		Urgency: j.Urgency(),
		Score:   c.Total,
		Rank:    rank,
	})
	if err != nil {
		observability.NotificationFailuresTotal.WithLabelValues("offer").Inc()
		e.logger.WarnContext(ctx, "failed to notify courier",
			"job_id", j.ID().String(), "courier_id", courierID.String(), "error", err)
		return
	}
	observability.CouriersNotifiedTotal.Inc()
}
