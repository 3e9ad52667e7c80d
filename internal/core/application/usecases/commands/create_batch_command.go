package commands

import (
	"errors"
	"fmt"
	"slices"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var (
	ErrCreateBatchCommandIsNotConstructed = errors.New(
		"CreateBatchCommand must be created via NewCreateBatchCommand constructor",
	)
	ErrInvalidDestination = errors.New("invalid destination office")
)

// CreateBatchCommand asks for a new OPEN batch between two offices,
// optionally pre-populated with orders.
//
// Example:
//
//	cmd, err := NewCreateBatchCommand(callerOffice, destination, 500, orderIDs)
//	if err != nil {
//	    return fmt.Errorf("invalid batch request: %w", err)
//	}
//	b, err := handler.Handle(ctx, cmd)
type CreateBatchCommand struct { //nolint:recvcheck //using for validation
	originOfficeID      kernel.UUID
	destinationOfficeID kernel.UUID
	maxWeight           kernel.Weight
	orderIDs            []kernel.UUID

	guard guard.ConstructorGuard
}

// NewCreateBatchCommand validates the request shape. Office existence and
// order eligibility are checked by the handler.
func NewCreateBatchCommand(
	originOfficeID kernel.UUID,
	destinationOfficeID kernel.UUID,
	maxWeightKg float64,
	orderIDs []kernel.UUID,
) (CreateBatchCommand, error) {
	cmd := CreateBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOffices(originOfficeID, destinationOfficeID),
		cmd.setMaxWeight(maxWeightKg),
		cmd.setOrderIDs(orderIDs),
	); err != nil {
		return CreateBatchCommand{}, err
	}

	return cmd, nil
}

func (c CreateBatchCommand) Validate() error {
	return c.guard.Validate(ErrCreateBatchCommandIsNotConstructed)
}

func (c CreateBatchCommand) OriginOfficeID() kernel.UUID {
	return c.originOfficeID
}

func (c CreateBatchCommand) DestinationOfficeID() kernel.UUID {
	return c.destinationOfficeID
}

func (c CreateBatchCommand) MaxWeight() kernel.Weight {
	return c.maxWeight
}

func (c CreateBatchCommand) OrderIDs() []kernel.UUID {
	return slices.Clone(c.orderIDs)
}

func (c *CreateBatchCommand) setOffices(origin, destination kernel.UUID) error {
	if err := origin.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("originOfficeId", err)
	}
	if err := destination.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("destinationOfficeId", err)
	}
	if origin.IsEqual(destination) {
		return fmt.Errorf("%w: destination %s is the origin office", ErrInvalidDestination, destination)
	}

	c.originOfficeID = origin
	c.destinationOfficeID = destination
	return nil
}

func (c *CreateBatchCommand) setMaxWeight(maxWeightKg float64) error {
	w, err := kernel.NewWeightFromKg(maxWeightKg)
	if err != nil {
		return err
	}

	c.maxWeight = w
	return nil
}

func (c *CreateBatchCommand) setOrderIDs(orderIDs []kernel.UUID) error {
	ids, err := uniqueIDs(orderIDs, false)
	if err != nil {
		return err
	}

	c.orderIDs = ids
	return nil
}

// uniqueIDs rejects zero or repeated ids. required demands at least one.
func uniqueIDs(ids []kernel.UUID, required bool) ([]kernel.UUID, error) {
	if required && len(ids) == 0 {
		return nil, errs.NewValueIsRequiredError("orderIds")
	}

	seen := make(map[kernel.UUID]struct{}, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("orderIds", err)
		}
		if _, dup := seen[id]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("orderIds", fmt.Errorf("order %s is listed twice", id))
		}
		seen[id] = struct{}{}
	}
	return slices.Clone(ids), nil
}
