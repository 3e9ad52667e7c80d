// Package kernel provides the value objects shared by every aggregate of the
// consolidation engine.
//
// The package includes:
//   - UUID: identifier for batches, orders and offices
//   - Weight: a non-negative mass held in whole grams so that sums are exact
//
// Both are immutable and safe for concurrent use.
package kernel
