// Package postgres provides the GORM-backed batch store.
//
// A GormUnitOfWork wraps one database transaction. Repositories obtained from
// it run inside that transaction and register every aggregate they write, so
// the events those aggregates raised can be drained after commit:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	if err := uow.BatchRepository().Update(ctx, b); err != nil {
//	    return err
//	}
//	if err := uow.Commit(ctx); err != nil {
//	    return err
//	}
//	publisher.Publish(ctx, uow.PendingEvents()...)
//
// Each UnitOfWork belongs to one goroutine.
package postgres

import (
	"context"

	"consolidation/internal/adapters/out/postgres/batchrepo"
	"consolidation/internal/adapters/out/postgres/orderrepo"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

type eventSource interface {
	DomainEvents() []batch.DomainEvent
	ClearDomainEvents()
}

// GormUnitOfWorkFactory hands out a fresh unit of work per operation.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin is a no-op when a transaction is already open.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback returns gorm.ErrInvalidTransaction after a commit, which makes
// the usual deferred Rollback harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// BatchRepository runs inside the open transaction, or autocommits when
// none is open.
func (uow *GormUnitOfWork) BatchRepository() ports.BatchRepository {
	return batchrepo.NewGormBatchRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// PendingEvents drains events from every tracked aggregate once, in the
// order the aggregates were first written.
func (uow *GormUnitOfWork) PendingEvents() []batch.DomainEvent {
	var events []batch.DomainEvent
	seen := make(map[any]struct{}, len(uow.trackedAggregates))
	for _, t := range uow.trackedAggregates {
		if _, ok := seen[t.Aggregate]; ok {
			continue
		}
		seen[t.Aggregate] = struct{}{}
		if src, ok := t.Aggregate.(eventSource); ok {
			events = append(events, src.DomainEvents()...)
			src.ClearDomainEvents()
		}
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return events
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
