package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// LocationIndex is a fast geospatial index of courier positions. It only
// speeds up candidate lookup; the courier store stays authoritative.
type LocationIndex interface {
	Upsert(ctx context.Context, courierID kernel.UUID, location kernel.Location) error
	Remove(ctx context.Context, courierID kernel.UUID) error
	// Nearby returns courier ids within radiusKm of center, closest first.
	Nearby(ctx context.Context, center kernel.Location, radiusKm float64, limit int) ([]kernel.UUID, error)
}
