package queries

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
)

// JobReader loads a job without locking it.
type JobReader interface {
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)
}

// GetJobQueryHandler builds the job read model from the stored aggregate.
type GetJobQueryHandler struct {
	jobs JobReader
}

func NewGetJobQueryHandler(jobs JobReader) GetJobQueryHandler {
	return GetJobQueryHandler{jobs: jobs}
}

// Handle returns the job, or errs.ErrObjectNotFound when it does not exist.
func (h GetJobQueryHandler) Handle(ctx context.Context, query GetJobQuery) (GetJobQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetJobQueryResponse{}, err
	}

	j, err := h.jobs.Get(ctx, query.JobID())
	if err != nil {
		return GetJobQueryResponse{}, err
	}

	return NewGetJobQueryResponse(j), nil
}

// NewGetJobQueryResponse builds the read model from an aggregate, for
// callers that already hold the job after changing it.
func NewGetJobQueryResponse(j *job.Job) GetJobQueryResponse {
	return GetJobQueryResponse{
		ID:                 j.ID(),
		Status:             j.Status(),
		IsTerminal:         j.Status().IsTerminal(),
		AllowedTransitions: j.Status().AllowedTransitions(),
		CourierID:          j.CourierID(),
		Pickup:             j.Pickup(),
		Dropoff:            j.Dropoff(),
		Price:              j.Price(),
		Weight:             j.Weight(),
		Urgency:            j.Urgency(),
		MatchAttempts:      j.MatchAttempts(),
		Version:            j.Version(),
		CreatedAt:          j.CreatedAt(),
		StatusChangedAt:    j.StatusChangedAt(),
		Timeline:           j.Timeline(),
		Cancellation:       j.Cancellation(),

		SecurityCodeValidated: j.SecurityCodeValidated(),
	}
}
