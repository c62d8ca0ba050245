package services

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"

	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultSearchRadiusKm        = 5.0
	DefaultResponsiveness        = 0.7
	NeutralAcceptance            = 0.5
	defaultMaxScoringConcurrency = 8
)

// Weights are the coefficients of the four sub-scores in the total score.
type Weights struct {
	Rating         float64
	Proximity      float64
	Acceptance     float64
	Responsiveness float64
}

// DefaultWeights returns 0.35 rating, 0.30 proximity, 0.20 acceptance and
// 0.15 responsiveness.
func DefaultWeights() Weights {
	return Weights{
		Rating:         0.35,
		Proximity:      0.30,
		Acceptance:     0.20,
		Responsiveness: 0.15,
	}
}

// Validate rejects negative and non-finite weights.
func (w Weights) Validate() error {
	check := func(name string, v float64) error {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.NewValueIsInvalidErrorWithCause(name+" weight", fmt.Errorf("%v is not a non-negative number", v))
		}
		return nil
	}
	return errors.Join(
		check("rating", w.Rating),
		check("proximity", w.Proximity),
		check("acceptance", w.Acceptance),
		check("responsiveness", w.Responsiveness),
	)
}

// Breakdown holds the sub-scores of a candidate, each in [0, 1].
type Breakdown struct {
	Rating         float64
	Proximity      float64
	Acceptance     float64
	Responsiveness float64
}

// Candidate is one courier scored for one job. It lives for a single matching
// run and is never stored.
type Candidate struct {
	Courier   *courier.Courier
	Total     float64
	RawTotal  float64
	Breakdown Breakdown
}

// ResponsivenessFunc scores how quickly a courier tends to answer offers.
type ResponsivenessFunc func(c *courier.Courier) float64

// ConstantResponsiveness returns a ResponsivenessFunc that ignores the courier.
func ConstantResponsiveness(v float64) ResponsivenessFunc {
	return func(*courier.Courier) float64 { return v }
}

// AcceptanceSource reports how many offers a courier accepted out of how many
// deliveries it was counted against.
type AcceptanceSource interface {
	AcceptanceHistory(c *courier.Courier) (accepted, total int)
}

// AcceptanceFunc adapts a function to AcceptanceSource.
type AcceptanceFunc func(c *courier.Courier) (accepted, total int)

func (f AcceptanceFunc) AcceptanceHistory(c *courier.Courier) (int, int) {
	return f(c)
}

// DeliveryCountAcceptance is used when no offer history is recorded: every
// completed delivery counts as an accepted offer.
var DeliveryCountAcceptance AcceptanceSource = AcceptanceFunc(func(c *courier.Courier) (int, int) {
	return c.TotalDeliveries(), c.TotalDeliveries()
})

// ScoringConfig configures a ScoringEngine. Zero values fall back to defaults
// except Weights, which must be set explicitly.
type ScoringConfig struct {
	Weights        Weights
	SearchRadiusKm float64
	Responsiveness ResponsivenessFunc
	Acceptance     AcceptanceSource
	// MaxConcurrency bounds parallel scoring in Rank.
	MaxConcurrency int
}

// ScoringEngine computes how well a courier fits a job.
//
// Scoring:
//   - rating = average rating / 5
//   - proximity = 1 at the pickup point, falling linearly to 0 at the search radius
//   - acceptance = accepted / total, or 0.5 without history
//   - responsiveness = pluggable, 0.7 by default
//
// The total is the weighted sum rounded half-up to two decimals. The engine is
// safe for concurrent use and has no side effects.
type ScoringEngine struct {
	weights        Weights
	radiusKm       float64
	responsiveness ResponsivenessFunc
	acceptance     AcceptanceSource
	maxConcurrency int
}

// NewScoringEngine validates cfg and builds an engine.
//
// Example:
//
//	engine, err := services.NewScoringEngine(services.ScoringConfig{
//	    Weights:        services.DefaultWeights(),
//	    SearchRadiusKm: 5,
//	})
func NewScoringEngine(cfg ScoringConfig) (*ScoringEngine, error) {
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.SearchRadiusKm < 0 || math.IsNaN(cfg.SearchRadiusKm) {
		return nil, errs.NewValueIsInvalidErrorWithCause("search radius",
			fmt.Errorf("%v km is negative", cfg.SearchRadiusKm))
	}

	e := &ScoringEngine{
		weights:        cfg.Weights,
		radiusKm:       cfg.SearchRadiusKm,
		responsiveness: cfg.Responsiveness,
		acceptance:     cfg.Acceptance,
		maxConcurrency: cfg.MaxConcurrency,
	}
	if e.radiusKm == 0 {
		e.radiusKm = DefaultSearchRadiusKm
	}
	if e.responsiveness == nil {
		e.responsiveness = ConstantResponsiveness(DefaultResponsiveness)
	}
	if e.acceptance == nil {
		e.acceptance = DeliveryCountAcceptance
	}
	if e.maxConcurrency <= 0 {
		e.maxConcurrency = min(runtime.GOMAXPROCS(0), defaultMaxScoringConcurrency)
	}
	return e, nil
}

// Score computes the candidate record of c for j. A courier without a
// position gets a proximity of 0.
func (e *ScoringEngine) Score(c *courier.Courier, j *job.Job) Candidate {
	b := Breakdown{
		Rating:         clamp01(c.Rating() / courier.MaxRating),
		Acceptance:     e.acceptanceScore(c),
		Responsiveness: clamp01(e.responsiveness(c)),
	}
	if d, ok := c.DistanceKm(j.Pickup()); ok {
		b.Proximity = kernel.NormalizeProximity(d, e.radiusKm)
	}

	raw := e.weights.Rating*b.Rating +
		e.weights.Proximity*b.Proximity +
		e.weights.Acceptance*b.Acceptance +
		e.weights.Responsiveness*b.Responsiveness

	return Candidate{
		Courier:   c,
		Total:     roundScore(raw),
		RawTotal:  raw,
		Breakdown: b,
	}
}

// Rank scores every courier in parallel, then orders the candidates by total
// descending with ties broken by courier id ascending, and keeps the first
// limit. A non-positive limit keeps all of them.
func (e *ScoringEngine) Rank(couriers []*courier.Courier, j *job.Job, limit int) []Candidate {
	candidates := make([]Candidate, len(couriers))

	var g errgroup.Group
	g.SetLimit(e.maxConcurrency)
	for i, c := range couriers {
		g.Go(func() error {
			candidates[i] = e.Score(c, j)
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if byTotal := cmp.Compare(b.Total, a.Total); byTotal != 0 {
			return byTotal
		}
		return a.Courier.ID().Compare(b.Courier.ID())
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func (e *ScoringEngine) acceptanceScore(c *courier.Courier) float64 {
	accepted, total := e.acceptance.AcceptanceHistory(c)
	if total <= 0 {
		return NeutralAcceptance
	}
	return clamp01(float64(accepted) / float64(total))
}

// roundScore rounds half-up to two decimals after dropping binary
// representation noise below 1e-9, so 0.955 becomes 0.96.
func roundScore(v float64) float64 {
	return math.Round(math.Round(v*1e9)/1e7) / 100
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
