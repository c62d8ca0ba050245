// Package services holds domain services that work across the courier and job
// aggregates without belonging to either of them.
//
// The package includes:
//   - ScoringEngine: weighted fitness score of a courier for a job, and ranking
//   - CancellationPolicy: what a cancellation costs the client or the courier
//
// Both are pure: they read aggregates and return values, and never persist,
// notify or consult the clock.
package services
