package commands

import (
	"context"

	"consolidation/internal/core/domain/model/batch"
)

// AddOrdersToBatchCommandHandler attaches orders to an OPEN batch.
//
// The destination is resolved from an unlocked read; the batch is then read
// again inside the locked unit of work before any guard is evaluated.
type AddOrdersToBatchCommandHandler struct {
	coordinator *DestinationCoordinator
}

func NewAddOrdersToBatchCommandHandler(coordinator *DestinationCoordinator) AddOrdersToBatchCommandHandler {
	return AddOrdersToBatchCommandHandler{coordinator: coordinator}
}

func (h AddOrdersToBatchCommandHandler) Handle(ctx context.Context, cmd AddOrdersToBatchCommand) (*batch.Batch, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	destination, err := h.coordinator.DestinationOfBatch(ctx, cmd.BatchID())
	if err != nil {
		return nil, err
	}

	var updated *batch.Batch
	err = h.coordinator.Execute(ctx, "add_orders", destination, func(ctx context.Context, uow UoW) error {
		b, err := uow.BatchRepository().Get(ctx, cmd.BatchID())
		if err != nil {
			return err
		}

		orders, err := uow.OrderRepository().GetMany(ctx, cmd.OrderIDs())
		if err != nil {
			return err
		}

		if err = b.AddOrders(orders, h.coordinator.Now()); err != nil {
			return err
		}

		if err = persistBatch(ctx, uow, b, orders, false); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
