package commands

import (
	"errors"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var ErrRemoveOrderFromBatchCommandIsNotConstructed = errors.New(
	"RemoveOrderFromBatchCommand must be created via NewRemoveOrderFromBatchCommand constructor",
)

// RemoveOrderFromBatchCommand releases one member of an OPEN batch.
type RemoveOrderFromBatchCommand struct { //nolint:recvcheck //using for validation
	batchID kernel.UUID
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRemoveOrderFromBatchCommand(batchID, orderID kernel.UUID) (RemoveOrderFromBatchCommand, error) {
	cmd := RemoveOrderFromBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	var batchErr, orderErr error
	if err := batchID.Validate(); err != nil {
		batchErr = errs.NewValueIsRequiredErrorWithCause("batchId", err)
	}
	if err := orderID.Validate(); err != nil {
		orderErr = errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	if err := errors.Join(batchErr, orderErr); err != nil {
		return RemoveOrderFromBatchCommand{}, err
	}

	cmd.batchID = batchID
	cmd.orderID = orderID
	return cmd, nil
}

func (c RemoveOrderFromBatchCommand) Validate() error {
	return c.guard.Validate(ErrRemoveOrderFromBatchCommandIsNotConstructed)
}

func (c RemoveOrderFromBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}

func (c RemoveOrderFromBatchCommand) OrderID() kernel.UUID {
	return c.orderID
}
