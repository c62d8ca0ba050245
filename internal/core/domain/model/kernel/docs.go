// Package kernel holds the shared value objects of the dispatch domain.
//
// The package includes:
//   - UUID: identifier for couriers and jobs
//   - Location: a validated latitude/longitude pair
//   - DistanceKm and NormalizeProximity: haversine distance and the linear
//     proximity score used by courier ranking
//
// Value objects are immutable and safe for concurrent use.
package kernel
