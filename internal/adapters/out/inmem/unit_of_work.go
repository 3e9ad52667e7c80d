package inmem

import (
	"context"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"
)

// UnitOfWorkFactory creates units of work over one Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type staged struct {
	batches map[kernel.UUID]batchRecord
	orders  map[kernel.UUID]orderRecord
}

type eventSource interface {
	DomainEvents() []batch.DomainEvent
	ClearDomainEvents()
}

// UnitOfWork stages writes until Commit. Without Begin every write is
// applied immediately.
type UnitOfWork struct {
	store   *Store
	tx      *staged
	tracked []any
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.tx != nil {
		return nil
	}
	uow.tx = &staged{
		batches: make(map[kernel.UUID]batchRecord),
		orders:  make(map[kernel.UUID]orderRecord),
	}
	return nil
}

// Commit publishes staged writes atomically. Batch codes are re-checked
// for uniqueness against committed state.
func (uow *UnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return ErrInvalidTransaction
	}

	s := uow.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range uow.tx.batches {
		for otherID, other := range s.batches {
			if other.code == rec.code && !otherID.IsEqual(id) {
				uow.tx = nil
				return ErrDuplicateKey
			}
		}
	}
	for id, rec := range uow.tx.batches {
		s.batches[id] = rec
	}
	for id, rec := range uow.tx.orders {
		s.orders[id] = rec
	}

	uow.tx = nil
	return nil
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return ErrInvalidTransaction
	}
	uow.tx = nil
	uow.tracked = nil
	return nil
}

func (uow *UnitOfWork) BatchRepository() ports.BatchRepository {
	return &batchRepository{uow: uow}
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: uow}
}

func (uow *UnitOfWork) TrackAggregate(_ kernel.UUID, aggregate any) {
	uow.tracked = append(uow.tracked, aggregate)
}

// PendingEvents drains events from every tracked aggregate once.
func (uow *UnitOfWork) PendingEvents() []batch.DomainEvent {
	var events []batch.DomainEvent
	seen := make(map[any]struct{}, len(uow.tracked))
	for _, a := range uow.tracked {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		if src, ok := a.(eventSource); ok {
			events = append(events, src.DomainEvents()...)
			src.ClearDomainEvents()
		}
	}
	uow.tracked = nil
	return events
}

// lookupBatch reads staged state first, then committed.
func (uow *UnitOfWork) lookupBatch(id kernel.UUID) (batchRecord, bool) {
	if uow.tx != nil {
		if rec, ok := uow.tx.batches[id]; ok {
			return rec, true
		}
	}
	uow.store.mu.RLock()
	defer uow.store.mu.RUnlock()
	rec, ok := uow.store.batches[id]
	return rec, ok
}

func (uow *UnitOfWork) lookupOrder(id kernel.UUID) (orderRecord, bool) {
	if uow.tx != nil {
		if rec, ok := uow.tx.orders[id]; ok {
			return rec, true
		}
	}
	uow.store.mu.RLock()
	defer uow.store.mu.RUnlock()
	rec, ok := uow.store.orders[id]
	return rec, ok
}

// allOrders is the merged view of committed and staged orders.
func (uow *UnitOfWork) allOrders() []orderRecord {
	uow.store.mu.RLock()
	merged := make(map[kernel.UUID]orderRecord, len(uow.store.orders))
	for id, rec := range uow.store.orders {
		merged[id] = rec
	}
	uow.store.mu.RUnlock()

	if uow.tx != nil {
		for id, rec := range uow.tx.orders {
			merged[id] = rec
		}
	}

	out := make([]orderRecord, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	return out
}

func (uow *UnitOfWork) allBatches() []batchRecord {
	uow.store.mu.RLock()
	merged := make(map[kernel.UUID]batchRecord, len(uow.store.batches))
	for id, rec := range uow.store.batches {
		merged[id] = rec
	}
	uow.store.mu.RUnlock()

	if uow.tx != nil {
		for id, rec := range uow.tx.batches {
			merged[id] = rec
		}
	}

	out := make([]batchRecord, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	return out
}

func (uow *UnitOfWork) putBatch(rec batchRecord) {
	if uow.tx != nil {
		uow.tx.batches[rec.id] = rec
		return
	}
	uow.store.mu.Lock()
	uow.store.batches[rec.id] = rec
	uow.store.mu.Unlock()
}

func (uow *UnitOfWork) putOrder(rec orderRecord) {
	if uow.tx != nil {
		uow.tx.orders[rec.id] = rec
		return
	}
	uow.store.mu.Lock()
	uow.store.orders[rec.id] = rec
	uow.store.mu.Unlock()
}
