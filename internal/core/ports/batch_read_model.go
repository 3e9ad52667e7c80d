package ports

import (
	"context"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// OrderView is the read model of a batch member.
type OrderView struct {
	ID                  kernel.UUID
	TrackingNumber      string
	Weight              kernel.Weight
	OriginOfficeID      kernel.UUID
	DestinationOfficeID kernel.UUID
	Status              order.Status
	CreatedAt           time.Time
}

// BatchView is the read model of a batch. Orders is filled only on request.
type BatchView struct {
	ID                  kernel.UUID
	Code                batch.Code
	Status              batch.Status
	OriginOfficeID      kernel.UUID
	DestinationOfficeID kernel.UUID
	MaxWeight           kernel.Weight
	TotalWeight         kernel.Weight
	OrderCount          int
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Orders              []OrderView
}

// DestinationSummary describes the unbatched pool for one destination.
type DestinationSummary struct {
	DestinationOfficeID kernel.UUID
	OrderCount          int
	TotalWeight         kernel.Weight
	OpenBatchCount      int
	OldestCreatedAt     time.Time
}

// BatchListFilter selects batches for listing. Page is zero based.
type BatchListFilter struct {
	OriginOfficeID      *kernel.UUID
	DestinationOfficeID *kernel.UUID
	Status              *batch.Status
	Page                int
	Size                int
	IncludeOrders       bool
}

// Page is one slice of a sorted listing.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
}

// NewPage fills in TotalPages from the item count and page size.
func NewPage[T any](items []T, page, size int, totalItems int64) Page[T] {
	totalPages := 0
	if size > 0 {
		totalPages = int((totalItems + int64(size) - 1) / int64(size))
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: page, Size: size, TotalItems: totalItems, TotalPages: totalPages}
}

// BatchReadModel serves listings and detail views without loading aggregates.
// Listings are sorted by createdAt descending, then id.
type BatchReadModel interface {
	GetBatch(ctx context.Context, id kernel.UUID, includeOrders bool) (BatchView, error)
	GetBatchByCode(ctx context.Context, code batch.Code, includeOrders bool) (BatchView, error)
	ListBatches(ctx context.Context, filter BatchListFilter) (Page[BatchView], error)

	// UnbatchedOrders lists the eligible pool oldest first, ties by id.
	// An unknown office yields an empty slice.
	UnbatchedOrders(ctx context.Context, filter EligibleOrdersFilter) ([]OrderView, error)

	// DestinationsWithUnbatchedOrders groups the eligible pool by destination,
	// optionally restricted to one origin office. OpenBatchCount counts OPEN
	// batches to that destination within the same origin scope.
	DestinationsWithUnbatchedOrders(ctx context.Context, originOfficeID *kernel.UUID) ([]DestinationSummary, error)
}
