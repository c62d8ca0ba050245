// Package queries contains read operations for retrieving system state.
// Queries return read models shaped for the HTTP surface and never change
// aggregates.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetJobQueryIsNotConstructed = errors.New("GetJobQuery must be created via NewGetJobQuery constructor")

// GetJobQuery retrieves one job with its lifecycle introspection.
//
// Example:
//
//	query, err := NewGetJobQuery(jobID)
//	view, err := handler.Handle(ctx, query)
//	if !view.IsTerminal {
//	    fmt.Println("next:", view.AllowedTransitions)
//	}
type GetJobQuery struct {
	jobID kernel.UUID
	guard guard.ConstructorGuard
}

func NewGetJobQuery(jobID kernel.UUID) (GetJobQuery, error) {
	if err := jobID.Validate(); err != nil {
		return GetJobQuery{}, err
	}
	return GetJobQuery{jobID: jobID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetJobQuery) Validate() error {
	return q.guard.Validate(ErrGetJobQueryIsNotConstructed)
}

func (q GetJobQuery) JobID() kernel.UUID {
	return q.jobID
}

// GetJobQueryResponse is the job read model. Timeline holds the first entry
// into every state the job has visited.
type GetJobQueryResponse struct {
	ID                 kernel.UUID
	Status             job.Status
	IsTerminal         bool
	AllowedTransitions []job.Status
	CourierID          *kernel.UUID
	Pickup             kernel.Location
	Dropoff            kernel.Location
	Price              float64
	Weight             float64
	Urgency            job.Urgency
	MatchAttempts      int
	Version            int64
	CreatedAt          time.Time
	StatusChangedAt    time.Time
	Timeline           map[job.Status]time.Time
	Cancellation       *job.Cancellation
	// SecurityCodeValidated is set once the courier presented the code. The
	// code itself is not part of the read model.
	SecurityCodeValidated bool
}
