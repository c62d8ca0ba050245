package queries

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultActiveJobsLimit = 100
	MaxActiveJobsLimit     = 1000
)

var ErrListActiveJobsQueryIsNotConstructed = errors.New(
	"ListActiveJobsQuery must be created via NewListActiveJobsQuery constructor",
)

// ListActiveJobsQuery retrieves jobs that have not reached a terminal state,
// oldest first. Status narrows the list to one non-terminal state.
type ListActiveJobsQuery struct {
	status job.Status
	limit  int
	guard  guard.ConstructorGuard
}

// NewListActiveJobsQuery validates the filter. job.Unknown means any active
// status and a zero limit means DefaultActiveJobsLimit.
//
// Example:
//
//	query, err := NewListActiveJobsQuery(job.NoDriverFound, 50)
func NewListActiveJobsQuery(status job.Status, limit int) (ListActiveJobsQuery, error) {
	if status != job.Unknown {
		if err := status.Validate(); err != nil {
			return ListActiveJobsQuery{}, err
		}
		if status.IsTerminal() {
			return ListActiveJobsQuery{}, errs.NewValueIsInvalidErrorWithCause(
				"status", fmt.Errorf("%s is terminal", status))
		}
	}
	if limit == 0 {
		limit = DefaultActiveJobsLimit
	}
	if limit < 0 || limit > MaxActiveJobsLimit {
		return ListActiveJobsQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxActiveJobsLimit)
	}

	return ListActiveJobsQuery{status: status, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q ListActiveJobsQuery) Validate() error {
	return q.guard.Validate(ErrListActiveJobsQueryIsNotConstructed)
}

func (q ListActiveJobsQuery) Status() job.Status {
	return q.status
}

func (q ListActiveJobsQuery) Limit() int {
	return q.limit
}

// ListActiveJobsQueryResponse is the summary row of an active job.
type ListActiveJobsQueryResponse struct {
	ID              kernel.UUID
	Status          job.Status
	CourierID       *kernel.UUID
	Price           float64
	Urgency         job.Urgency
	MatchAttempts   int
	CreatedAt       time.Time
	StatusChangedAt time.Time
}
