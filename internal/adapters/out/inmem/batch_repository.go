package inmem

import (
	"context"
	"fmt"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
)

type batchRepository struct {
	uow *UnitOfWork
}

func (r *batchRepository) Add(_ context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, ok := r.uow.lookupBatch(aggregate.ID()); ok {
		return fmt.Errorf("%w: batch %s", ErrDuplicateKey, aggregate.ID())
	}
	if r.codeTaken(aggregate.Code()) {
		return fmt.Errorf("%w: batch code %s", ErrDuplicateKey, aggregate.Code())
	}

	r.uow.putBatch(batchToRecord(aggregate))
	r.uow.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *batchRepository) Update(_ context.Context, aggregate *batch.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, ok := r.uow.lookupBatch(aggregate.ID()); !ok {
		return errs.NewObjectNotFoundError("batch", aggregate.ID().String())
	}

	r.uow.putBatch(batchToRecord(aggregate))
	r.uow.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *batchRepository) Get(_ context.Context, id kernel.UUID) (*batch.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	rec, ok := r.uow.lookupBatch(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("batch", id.String())
	}
	return rec.toDomain()
}

func (r *batchRepository) GetByCode(_ context.Context, code batch.Code) (*batch.Batch, error) {
	for _, rec := range r.uow.allBatches() {
		if rec.code == code {
			return rec.toDomain()
		}
	}
	return nil, errs.NewObjectNotFoundError("batchCode", code.String())
}

func (r *batchRepository) CodeExists(_ context.Context, code batch.Code) (bool, error) {
	return r.codeTaken(code), nil
}

func (r *batchRepository) codeTaken(code batch.Code) bool {
	for _, rec := range r.uow.allBatches() {
		if rec.code == code {
			return true
		}
	}
	return false
}
