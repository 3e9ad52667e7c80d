// Package services provides domain services that work across several aggregates
// of the consolidation domain and do not belong to a single aggregate root.
//
// The package includes:
//   - ConsolidationPlanner: splits a pool of eligible orders into FIFO packed batch plans
//
// Services here are pure: they never touch storage, locks or clocks. The
// application layer feeds them a snapshot read under the destination lock and
// turns their output into aggregates.
package services
