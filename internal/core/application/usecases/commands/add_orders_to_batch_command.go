package commands

import (
	"errors"
	"slices"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var ErrAddOrdersToBatchCommandIsNotConstructed = errors.New(
	"AddOrdersToBatchCommand must be created via NewAddOrdersToBatchCommand constructor",
)

// AddOrdersToBatchCommand attaches one or more orders to an OPEN batch.
// The call is all-or-nothing.
type AddOrdersToBatchCommand struct { //nolint:recvcheck //using for validation
	batchID  kernel.UUID
	orderIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewAddOrdersToBatchCommand(batchID kernel.UUID, orderIDs []kernel.UUID) (AddOrdersToBatchCommand, error) {
	cmd := AddOrdersToBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setBatchID(batchID),
		cmd.setOrderIDs(orderIDs),
	); err != nil {
		return AddOrdersToBatchCommand{}, err
	}

	return cmd, nil
}

func (c AddOrdersToBatchCommand) Validate() error {
	return c.guard.Validate(ErrAddOrdersToBatchCommandIsNotConstructed)
}

func (c AddOrdersToBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}

func (c AddOrdersToBatchCommand) OrderIDs() []kernel.UUID {
	return slices.Clone(c.orderIDs)
}

func (c *AddOrdersToBatchCommand) setBatchID(batchID kernel.UUID) error {
	if err := batchID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("batchId", err)
	}

	c.batchID = batchID
	return nil
}

func (c *AddOrdersToBatchCommand) setOrderIDs(orderIDs []kernel.UUID) error {
	ids, err := uniqueIDs(orderIDs, true)
	if err != nil {
		return err
	}

	c.orderIDs = ids
	return nil
}
