// Package errs provides the typed validation and lookup errors shared by the
// consolidation engine.
//
// Each error type follows the same shape:
//   - a sentinel value (e.g. ErrValueIsRequired) for errors.Is checks
//   - a struct carrying the offending parameter and an optional cause
//   - New*/New*WithCause constructors
//   - Unwrap returning the sentinel
//
// Domain rule violations (capacity, lifecycle) are not declared here; they live
// next to the aggregate that enforces them.
package errs
