package commands

import (
	"context"
	"errors"
	"fmt"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/errs"
)

// RemoveOrderFromBatchCommandHandler releases an order back to the unbatched pool.
type RemoveOrderFromBatchCommandHandler struct {
	coordinator *DestinationCoordinator
}

func NewRemoveOrderFromBatchCommandHandler(coordinator *DestinationCoordinator) RemoveOrderFromBatchCommandHandler {
	return RemoveOrderFromBatchCommandHandler{coordinator: coordinator}
}

func (h RemoveOrderFromBatchCommandHandler) Handle(
	ctx context.Context,
	cmd RemoveOrderFromBatchCommand,
) (*batch.Batch, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	destination, err := h.coordinator.DestinationOfBatch(ctx, cmd.BatchID())
	if err != nil {
		return nil, err
	}

	var updated *batch.Batch
	err = h.coordinator.Execute(ctx, "remove_order", destination, func(ctx context.Context, uow UoW) error {
		b, err := uow.BatchRepository().Get(ctx, cmd.BatchID())
		if err != nil {
			return err
		}

		o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
		if errors.Is(err, errs.ErrObjectNotFound) {
			return fmt.Errorf("%w: %w", batch.ErrOrderNotInBatch, err)
		}
		if err != nil {
			return err
		}

		if err = b.RemoveOrder(o, h.coordinator.Now()); err != nil {
			return err
		}

		if err = persistBatch(ctx, uow, b, []*order.Order{o}, false); err != nil {
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
