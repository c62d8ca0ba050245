package matching

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

const (
	DefaultSearchRadiusKm    = 5.0
	DefaultMinRating         = 4.0
	DefaultLocationFreshness = 10 * time.Minute
	defaultPrefetchLimit     = 200
)

// CourierFinder is the read side of the courier store used by the registry.
type CourierFinder interface {
	FindMatchable(ctx context.Context, filter ports.CourierFilter) ([]*courier.Courier, error)
	FindByIDs(ctx context.Context, ids []kernel.UUID) ([]*courier.Courier, error)
}

// RegistryConfig holds the eligibility thresholds.
type RegistryConfig struct {
	SearchRadiusKm    float64
	MinRating         float64
	LocationFreshness time.Duration
	// PrefetchLimit caps how many ids are read from the location index. A
	// full page may be truncated, so the store is queried instead.
	PrefetchLimit int
}

// DefaultRegistryConfig returns a 5 km radius, a 4.0 rating floor and a
// 10 minute position freshness window.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		SearchRadiusKm:    DefaultSearchRadiusKm,
		MinRating:         DefaultMinRating,
		LocationFreshness: DefaultLocationFreshness,
		PrefetchLimit:     defaultPrefetchLimit,
	}
}

// CourierRegistry answers which couriers may be offered a given job.
type CourierRegistry struct {
	couriers CourierFinder
	index    ports.LocationIndex
	clock    ports.Clock
	cfg      RegistryConfig
	logger   *slog.Logger
}

// NewCourierRegistry builds a registry. index may be nil, in which case the
// candidate pool always comes from the courier store.
func NewCourierRegistry(
	couriers CourierFinder,
	index ports.LocationIndex,
	clock ports.Clock,
	cfg RegistryConfig,
	logger *slog.Logger,
) *CourierRegistry {
	if cfg.PrefetchLimit <= 0 {
		cfg.PrefetchLimit = defaultPrefetchLimit
	}
	return &CourierRegistry{
		couriers: couriers,
		index:    index,
		clock:    clock,
		cfg:      cfg,
		logger:   logger.With("component", "CourierRegistry"),
	}
}

// SearchRadiusKm returns the configured search radius.
func (r *CourierRegistry) SearchRadiusKm() float64 {
	return r.cfg.SearchRadiusKm
}

// EligibleFor returns the couriers that are approved, online, available,
// rated at least MinRating, located within LocationFreshness and no further
// than SearchRadiusKm from the job's pickup point. Couriers without a
// position are left out. No match yields an empty slice and a nil error.
func (r *CourierRegistry) EligibleFor(ctx context.Context, j *job.Job) ([]*courier.Courier, error) {
	now := r.clock.Now()

	pool, err := r.candidatePool(ctx, j, now)
	if err != nil {
		return nil, err
	}

	policy := courier.EligibilityPolicy{
		MinRating:         r.cfg.MinRating,
		LocationFreshness: r.cfg.LocationFreshness,
	}
	eligible := make([]*courier.Courier, 0, len(pool))
	for _, c := range pool {
		if !c.IsMatchable(policy, now) {
			continue
		}
		d, ok := c.DistanceKm(j.Pickup())
		if !ok || d > r.cfg.SearchRadiusKm {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible, nil
}

// candidatePool reads the nearby ids from the location index when one is
// configured. An index error, an empty answer or a full page sends the
// lookup to the store, which filters availability and rating itself and
// returns every courier inside the search box.
func (r *CourierRegistry) candidatePool(ctx context.Context, j *job.Job, now time.Time) ([]*courier.Courier, error) {
	if r.index != nil {
		ids, err := r.index.Nearby(ctx, j.Pickup(), r.cfg.SearchRadiusKm, r.cfg.PrefetchLimit)
		switch {
		case err != nil:
			r.logger.WarnContext(ctx, "location index lookup failed, falling back to store",
				"job_id", j.ID().String(), "error", err)
		case len(ids) == 0:
			r.logger.DebugContext(ctx, "location index has no couriers nearby, checking store",
				"job_id", j.ID().String())
		case len(ids) >= r.cfg.PrefetchLimit:
			r.logger.DebugContext(ctx, "location index page is full, checking store",
				"job_id", j.ID().String(), "limit", r.cfg.PrefetchLimit)
		default:
			return r.couriers.FindByIDs(ctx, ids)
		}
	}

	return r.couriers.FindMatchable(ctx, ports.CourierFilter{
		MinRating:    r.cfg.MinRating,
		LocatedSince: now.Add(-r.cfg.LocationFreshness),
		Near:         j.Pickup(),
		RadiusKm:     r.cfg.SearchRadiusKm,
	})
}
