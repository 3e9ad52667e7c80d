// Package batch provides the Batch aggregate: a weight-bounded group of orders
// travelling together from one office to another.
//
// The package includes:
//   - Batch: the aggregate root owning membership, aggregates and lifecycle
//   - Status: the lifecycle state machine
//   - Code: the human-readable batch code
//   - domain events raised by lifecycle transitions
//
// Key business rules:
//   - totalWeight always equals the sum of member weights and never exceeds maxWeight
//   - every member shares the batch's origin and destination office
//   - membership changes only while the batch is OPEN
//   - an empty batch cannot be sealed
//   - DISTRIBUTED and CANCELLED are terminal; batches are never deleted
package batch
