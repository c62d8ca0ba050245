// Package matching finds, ranks and notifies couriers for a job that is
// searching for one.
//
// CourierRegistry narrows the courier pool to the eligible set. Engine runs
// one matching pass: it re-checks that the job is still in finding_driver,
// scores the eligible couriers with services.ScoringEngine, keeps the best
// few and offers them the job. Engine never changes job state; reacting to
// an empty result is the caller's decision.
package matching
