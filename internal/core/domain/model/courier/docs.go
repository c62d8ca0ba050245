// Package courier provides the Courier aggregate: a person who can be offered
// delivery jobs, accept them and get paid for them.
//
// The package includes:
//   - Courier: the aggregate root holding approval, presence, rating, last known
//     position and the earnings ledger
//   - EligibilityPolicy: the thresholds a courier must meet to be offered a job
//
// Key business rules:
//   - Only approved couriers can go online or accept jobs
//   - Rating stays within [MinRating, MaxRating]
//   - A courier working on a job is unavailable until the job is delivered or cancelled
//   - Payouts increase both the balance and the lifetime earnings; penalties only
//     decrease the balance
package courier
