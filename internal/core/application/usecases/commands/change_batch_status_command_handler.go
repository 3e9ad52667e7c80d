package commands

import (
	"context"
	"fmt"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/metrics"
)

// ChangeBatchStatusCommandHandler applies seal, dispatch, arrive, distribute
// and cancel under the destination lock.
//
// Cancel releases every member order back to the unbatched pool within the
// same transaction. Distribute leaves membership intact and raises one
// OrderArrivedAtOffice event per member, published after commit.
type ChangeBatchStatusCommandHandler struct {
	coordinator *DestinationCoordinator
}

func NewChangeBatchStatusCommandHandler(coordinator *DestinationCoordinator) ChangeBatchStatusCommandHandler {
	return ChangeBatchStatusCommandHandler{coordinator: coordinator}
}

func (h ChangeBatchStatusCommandHandler) Handle(ctx context.Context, cmd ChangeBatchStatusCommand) (*batch.Batch, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	destination, err := h.coordinator.DestinationOfBatch(ctx, cmd.BatchID())
	if err != nil {
		return nil, err
	}

	var updated *batch.Batch
	err = h.coordinator.Execute(ctx, string(cmd.Action()), destination, func(ctx context.Context, uow UoW) error {
		b, err := uow.BatchRepository().Get(ctx, cmd.BatchID())
		if err != nil {
			return err
		}

		now := h.coordinator.Now()
		var released []*order.Order
		switch cmd.Action() {
		case ActionSeal:
			err = b.Seal(now)
		case ActionDispatch:
			err = b.Dispatch(now)
		case ActionArrive:
			err = b.MarkArrived(now)
		case ActionDistribute:
			err = b.Distribute(now)
		case ActionCancel:
			if released, err = uow.OrderRepository().GetByBatch(ctx, b.ID()); err != nil {
				return err
			}
			err = b.Cancel(released, now)
		default:
			err = fmt.Errorf("%w: unsupported action %q", batch.ErrInvalidTransition, cmd.Action())
		}
		if err != nil {
			return err
		}

		if err = persistBatch(ctx, uow, b, released, false); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Transition(updated.Status().String())
	return updated, nil
}
