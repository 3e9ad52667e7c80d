// Package order models the engine's reference to a parcel order owned by the
// upstream order subsystem.
//
// The engine reads weight, origin, destination and pipeline status, and writes
// exactly one field: the batch the order currently belongs to.
//
// Key business rules:
//   - weight is strictly positive, origin and destination are valid office ids
//   - an order is eligible for batching while it is Created and unbatched
//   - an order belongs to at most one batch at a time
package order
