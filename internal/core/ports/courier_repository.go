// Package ports defines the contracts between the core and the infrastructure:
// repositories, the unit of work and the outbound collaborators (notifier,
// event publisher, location index, geocoder, scheduler, clock).
package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/kernel"
)

// CourierFilter narrows the courier pre-selection done by storage. It is a
// coarse filter: callers re-apply courier.IsMatchable and the exact radius.
type CourierFilter struct {
	// MinRating is the lowest average rating returned.
	MinRating float64
	// LocatedSince drops couriers whose last position is older.
	LocatedSince time.Time
	// Near and RadiusKm restrict results to a bounding box around Near.
	Near     kernel.Location
	RadiusKm float64
	// Limit caps the result size; zero means no limit.
	Limit int
}

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists changes to an existing courier.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier by id.
	// Returns errs.ObjectNotFoundError when it does not exist.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetForUpdate retrieves a courier and holds an exclusive row lock until
	// the surrounding transaction ends. Balance changes go through it.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// FindMatchable returns approved, online, available couriers passing filter.
	// An empty result is not an error.
	//
	// Example:
	//   couriers, err := repo.FindMatchable(ctx, ports.CourierFilter{
	//       MinRating:    4.0,
	//       LocatedSince: now.Add(-10 * time.Minute),
	//       Near:         job.Pickup(),
	//       RadiusKm:     5,
	//   })
	FindMatchable(ctx context.Context, filter CourierFilter) ([]*courier.Courier, error)

	// FindByIDs loads the given couriers, silently skipping unknown ids.
	FindByIDs(ctx context.Context, ids []kernel.UUID) ([]*courier.Courier, error)
}
