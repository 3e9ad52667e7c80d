// Package ports defines the contracts between the consolidation core and its
// infrastructure: repositories, the unit of work, destination locks, event
// publishing, the office directory and the batch read model.
package ports

import (
	"context"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
)

// BatchRepository defines the persistence contract for batch aggregates,
// including their member list.
type BatchRepository interface {
	// Add persists a new batch. The batch code must be unused.
	Add(ctx context.Context, aggregate *batch.Batch) error

	// Update persists status, totals and the full member list of an existing batch.
	Update(ctx context.Context, aggregate *batch.Batch) error

	// Get returns the batch or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*batch.Batch, error)

	// GetByCode looks a batch up by its human-readable code.
	GetByCode(ctx context.Context, code batch.Code) (*batch.Batch, error)

	// CodeExists reports whether a code is already taken.
	CodeExists(ctx context.Context, code batch.Code) (bool, error)
}
