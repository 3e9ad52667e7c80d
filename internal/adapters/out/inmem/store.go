// Package inmem is a transactional in-process store for batches and orders.
// It backs STORAGE_DRIVER=memory and the concurrency tests; writes made in a
// unit of work are staged and become visible to others only on Commit.
package inmem

import (
	"errors"
	"slices"
	"sync"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
)

var (
	ErrDuplicateKey       = errors.New("inmem: duplicate key")
	ErrInvalidTransaction = errors.New("inmem: no transaction in progress")
)

type orderRecord struct {
	id             kernel.UUID
	trackingNumber string
	weight         kernel.Weight
	origin         kernel.UUID
	destination    kernel.UUID
	status         order.Status
	batchID        *kernel.UUID
	createdAt      time.Time
}

type batchRecord struct {
	id          kernel.UUID
	code        batch.Code
	status      batch.Status
	origin      kernel.UUID
	destination kernel.UUID
	maxWeight   kernel.Weight
	totalWeight kernel.Weight
	members     []batch.Member
	createdAt   time.Time
	updatedAt   time.Time
}

// Store holds committed state. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	batches map[kernel.UUID]batchRecord
	orders  map[kernel.UUID]orderRecord
}

func NewStore() *Store {
	return &Store{
		batches: make(map[kernel.UUID]batchRecord),
		orders:  make(map[kernel.UUID]orderRecord),
	}
}

func orderToRecord(o *order.Order) orderRecord {
	return orderRecord{
		id:             o.ID(),
		trackingNumber: o.TrackingNumber(),
		weight:         o.Weight(),
		origin:         o.OriginOfficeID(),
		destination:    o.DestinationOfficeID(),
		status:         o.Status(),
		batchID:        o.BatchID(),
		createdAt:      o.CreatedAt(),
	}
}

func (r orderRecord) toDomain() (*order.Order, error) {
	return order.RestoreOrder(r.id, r.trackingNumber, r.weight, r.origin, r.destination, r.status, r.batchID, r.createdAt)
}

func batchToRecord(b *batch.Batch) batchRecord {
	return batchRecord{
		id:          b.ID(),
		code:        b.Code(),
		status:      b.Status(),
		origin:      b.OriginOfficeID(),
		destination: b.DestinationOfficeID(),
		maxWeight:   b.MaxWeight(),
		totalWeight: b.TotalWeight(),
		members:     b.Members(),
		createdAt:   b.CreatedAt(),
		updatedAt:   b.UpdatedAt(),
	}
}

func (r batchRecord) toDomain() (*batch.Batch, error) {
	return batch.RestoreBatch(r.id, r.code, r.status, r.origin, r.destination,
		r.maxWeight, r.totalWeight, slices.Clone(r.members), r.createdAt, r.updatedAt)
}

// fifo orders records by createdAt then id.
func fifo(a, b orderRecord) int {
	if c := a.createdAt.Compare(b.createdAt); c != 0 {
		return c
	}
	return a.id.Compare(b.id)
}

// newestFirst orders batches by createdAt descending then id.
func newestFirst(a, b batchRecord) int {
	if c := b.createdAt.Compare(a.createdAt); c != 0 {
		return c
	}
	return a.id.Compare(b.id)
}
