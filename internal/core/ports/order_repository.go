package ports

import (
	"context"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
)

// EligibleOrdersFilter narrows the unbatched pool. A nil field matches any office.
type EligibleOrdersFilter struct {
	OriginOfficeID      *kernel.UUID
	DestinationOfficeID *kernel.UUID
}

// OrderRepository is the order ledger index: the engine's view of upstream
// orders plus the batch each one belongs to.
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status and batch membership of an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns the order or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetMany returns the orders in the order of ids. The first missing id
	// is reported as an errs.ObjectNotFoundError.
	GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)

	// GetByBatch returns the members of a batch, oldest first.
	GetByBatch(ctx context.Context, batchID kernel.UUID) ([]*order.Order, error)

	// GetEligible returns CREATED unbatched orders matching the filter,
	// sorted by createdAt then id.
	GetEligible(ctx context.Context, filter EligibleOrdersFilter) ([]*order.Order, error)
}
