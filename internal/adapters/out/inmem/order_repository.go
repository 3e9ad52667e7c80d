package inmem

import (
	"context"
	"fmt"
	"slices"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/errs"
)

type orderRepository struct {
	uow *UnitOfWork
}

func (r *orderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, ok := r.uow.lookupOrder(aggregate.ID()); ok {
		return fmt.Errorf("%w: order %s", ErrDuplicateKey, aggregate.ID())
	}

	r.uow.putOrder(orderToRecord(aggregate))
	r.uow.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *orderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if _, ok := r.uow.lookupOrder(aggregate.ID()); !ok {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	r.uow.putOrder(orderToRecord(aggregate))
	r.uow.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *orderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	rec, ok := r.uow.lookupOrder(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return rec.toDomain()
}

func (r *orderRepository) GetMany(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error) {
	out := make([]*order.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *orderRepository) GetByBatch(_ context.Context, batchID kernel.UUID) ([]*order.Order, error) {
	return r.collect(func(rec orderRecord) bool {
		return rec.batchID != nil && rec.batchID.IsEqual(batchID)
	})
}

func (r *orderRepository) GetEligible(_ context.Context, filter ports.EligibleOrdersFilter) ([]*order.Order, error) {
	return r.collect(func(rec orderRecord) bool {
		return eligible(rec, filter)
	})
}

func (r *orderRepository) collect(keep func(orderRecord) bool) ([]*order.Order, error) {
	var recs []orderRecord
	for _, rec := range r.uow.allOrders() {
		if keep(rec) {
			recs = append(recs, rec)
		}
	}
	slices.SortFunc(recs, fifo)

	out := make([]*order.Order, 0, len(recs))
	for _, rec := range recs {
		o, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func eligible(rec orderRecord, filter ports.EligibleOrdersFilter) bool {
	if rec.status != order.Created || rec.batchID != nil {
		return false
	}
	if filter.OriginOfficeID != nil && !rec.origin.IsEqual(*filter.OriginOfficeID) {
		return false
	}
	if filter.DestinationOfficeID != nil && !rec.destination.IsEqual(*filter.DestinationOfficeID) {
		return false
	}
	return true
}
