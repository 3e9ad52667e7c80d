package commands

import (
	"context"
	"errors"
	"fmt"

	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/errs"
)

var ErrOrderConflict = errors.New("order already registered with different details")

// RegisterOrderCommandHandler upserts an order reference. Registering the
// same order twice with identical details is a no-op returning the stored
// order. Orders are written under their destination lock so intake never
// races a batch mutation on the same row.
type RegisterOrderCommandHandler struct {
	coordinator *DestinationCoordinator
}

func NewRegisterOrderCommandHandler(coordinator *DestinationCoordinator) RegisterOrderCommandHandler {
	return RegisterOrderCommandHandler{coordinator: coordinator}
}

func (h RegisterOrderCommandHandler) Handle(ctx context.Context, cmd RegisterOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var result *order.Order
	err := h.coordinator.Execute(ctx, "register_order", cmd.DestinationOfficeID(), func(ctx context.Context, uow UoW) error {
		repo := uow.OrderRepository()

		existing, err := repo.Get(ctx, cmd.OrderID())
		switch {
		case err == nil:
			if !sameOrder(existing, cmd) {
				return fmt.Errorf("%w: %s", ErrOrderConflict, cmd.OrderID())
			}
			result = existing
			return nil
		case !errors.Is(err, errs.ErrObjectNotFound):
			return err
		}

		createdAt := cmd.CreatedAt()
		if createdAt.IsZero() {
			createdAt = h.coordinator.Now()
		}

		o, err := order.NewOrder(
			cmd.OrderID(),
			cmd.TrackingNumber(),
			cmd.Weight(),
			cmd.OriginOfficeID(),
			cmd.DestinationOfficeID(),
			createdAt,
		)
		if err != nil {
			return err
		}

		if err = repo.Add(ctx, o); err != nil {
			return err
		}
		result = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func sameOrder(o *order.Order, cmd RegisterOrderCommand) bool {
	return o.TrackingNumber() == cmd.TrackingNumber() &&
		o.Weight().IsEqual(cmd.Weight()) &&
		o.OriginOfficeID().IsEqual(cmd.OriginOfficeID()) &&
		o.DestinationOfficeID().IsEqual(cmd.DestinationOfficeID())
}
