package commands

import (
	"context"

	"consolidation/internal/core/domain/model/order"
)

// ChangeOrderStatusCommandHandler applies an upstream status move. Batch
// membership is left alone: a batched order that moves on stays in its batch.
type ChangeOrderStatusCommandHandler struct {
	coordinator *DestinationCoordinator
}

func NewChangeOrderStatusCommandHandler(coordinator *DestinationCoordinator) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{coordinator: coordinator}
}

func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	current, err := h.coordinator.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	var updated *order.Order
	err = h.coordinator.Execute(ctx, "change_order_status", current.DestinationOfficeID(), func(ctx context.Context, uow UoW) error {
		repo := uow.OrderRepository()
		o, err := repo.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}
		if o.Status() == cmd.Status() {
			updated = o
			return nil
		}
		if err = o.ChangeStatus(cmd.Status()); err != nil {
			return err
		}
		if err = repo.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}
