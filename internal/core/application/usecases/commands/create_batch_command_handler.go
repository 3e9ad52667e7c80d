package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/metrics"
)

// maxCodeAttempts bounds batch code regeneration on collision.
const maxCodeAttempts = 5

var ErrBatchCodeExhausted = errors.New("could not allocate a unique batch code")

// CreateBatchCommandHandler creates an OPEN batch under the destination lock.
// When order ids are given they are attached atomically: either every order
// joins the new batch or the batch is not created at all.
type CreateBatchCommandHandler struct {
	coordinator *DestinationCoordinator
	offices     ports.OfficeDirectory
}

func NewCreateBatchCommandHandler(
	coordinator *DestinationCoordinator,
	offices ports.OfficeDirectory,
) CreateBatchCommandHandler {
	return CreateBatchCommandHandler{
		coordinator: coordinator,
		offices:     offices,
	}
}

func (h CreateBatchCommandHandler) Handle(ctx context.Context, cmd CreateBatchCommand) (*batch.Batch, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	destination := cmd.DestinationOfficeID()
	known, err := h.offices.Exists(ctx, destination)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, fmt.Errorf("%w: office %s is unknown", ErrInvalidDestination, destination)
	}

	var created *batch.Batch
	err = h.coordinator.Execute(ctx, "create_batch", destination, func(ctx context.Context, uow UoW) error {
		now := h.coordinator.Now()

		b, err := newBatchWithUniqueCode(ctx, uow.BatchRepository(),
			cmd.OriginOfficeID(), destination, cmd.MaxWeight(), now)
		if err != nil {
			return err
		}

		var members []*order.Order
		if ids := cmd.OrderIDs(); len(ids) > 0 {
			if members, err = uow.OrderRepository().GetMany(ctx, ids); err != nil {
				return err
			}
			if err = b.AddOrders(members, now); err != nil {
				return err
			}
		}

		if err = persistBatch(ctx, uow, b, members, true); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BatchesCreated("manual", 1)
	return created, nil
}

// newBatchWithUniqueCode draws fresh ids until the derived code is unused.
// The unique index on batches.code backs this check up.
func newBatchWithUniqueCode(
	ctx context.Context,
	repo ports.BatchRepository,
	origin, destination kernel.UUID,
	maxWeight kernel.Weight,
	now time.Time,
) (*batch.Batch, error) {
	for range maxCodeAttempts {
		b, err := batch.NewBatch(kernel.NewUUID(), origin, destination, maxWeight, now)
		if err != nil {
			return nil, err
		}

		taken, err := repo.CodeExists(ctx, b.Code())
		if err != nil {
			return nil, err
		}
		if !taken {
			return b, nil
		}
	}
	return nil, ErrBatchCodeExhausted
}

// persistBatch writes the batch and then every touched order.
func persistBatch(ctx context.Context, uow UoW, b *batch.Batch, touched []*order.Order, isNew bool) error {
	var err error
	if isNew {
		err = uow.BatchRepository().Add(ctx, b)
	} else {
		err = uow.BatchRepository().Update(ctx, b)
	}
	if err != nil {
		return err
	}

	orders := uow.OrderRepository()
	for _, o := range touched {
		if err = orders.Update(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
