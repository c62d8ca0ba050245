package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
)

// JobRepository defines the persistence contract for job aggregates.
type JobRepository interface {
	// Add persists a new job at version 0.
	Add(ctx context.Context, aggregate *job.Job) error

	// Update persists a changed job if its stored version still equals
	// aggregate.Version(), then advances the version.
	// Returns errs.ConcurrentModificationError when another writer got there first.
	Update(ctx context.Context, aggregate *job.Job) error

	// Get retrieves a job by id without locking.
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// GetForUpdate retrieves a job under an exclusive row lock held until the
	// surrounding transaction ends. Transitions load jobs through it.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// FindByStatusChangedBefore returns up to limit jobs currently in status
	// whose status last changed before the given time, oldest first.
	FindByStatusChangedBefore(ctx context.Context, status job.Status, before time.Time, limit int) ([]*job.Job, error)

	// SecurityCodeInUseSince reports whether a job created at or after since
	// holds code.
	SecurityCodeInUseSince(ctx context.Context, code job.SecurityCode, since time.Time) (bool, error)
}
