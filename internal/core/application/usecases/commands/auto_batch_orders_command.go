package commands

import (
	"errors"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var ErrAutoBatchOrdersCommandIsNotConstructed = errors.New(
	"AutoBatchOrdersCommand must be created via NewAutoBatchOrdersCommand constructor",
)

// AutoBatchOrdersCommand consolidates the unbatched pool into OPEN batches.
// Every field is optional: a zero maxWeightKg means the configured default,
// nil offices mean every office with eligible orders.
type AutoBatchOrdersCommand struct {
	maxWeight           kernel.Weight
	originOfficeID      *kernel.UUID
	destinationOfficeID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewAutoBatchOrdersCommand(
	maxWeightKg float64,
	originOfficeID *kernel.UUID,
	destinationOfficeID *kernel.UUID,
) (AutoBatchOrdersCommand, error) {
	cmd := AutoBatchOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}

	var weightErr, originErr, destinationErr error
	if maxWeightKg != 0 {
		if cmd.maxWeight, weightErr = kernel.NewWeightFromKg(maxWeightKg); weightErr != nil {
			weightErr = errs.NewValueIsInvalidErrorWithCause("maxWeightPerBatch", weightErr)
		}
	}
	if originOfficeID != nil {
		if err := originOfficeID.Validate(); err != nil {
			originErr = errs.NewValueIsInvalidErrorWithCause("originOfficeId", err)
		}
		id := *originOfficeID
		cmd.originOfficeID = &id
	}
	if destinationOfficeID != nil {
		if err := destinationOfficeID.Validate(); err != nil {
			destinationErr = errs.NewValueIsInvalidErrorWithCause("destinationOfficeId", err)
		}
		id := *destinationOfficeID
		cmd.destinationOfficeID = &id
	}

	if err := errors.Join(weightErr, originErr, destinationErr); err != nil {
		return AutoBatchOrdersCommand{}, err
	}
	return cmd, nil
}

func (c AutoBatchOrdersCommand) Validate() error {
	return c.guard.Validate(ErrAutoBatchOrdersCommandIsNotConstructed)
}

// MaxWeight is zero when the caller left it to the default.
func (c AutoBatchOrdersCommand) MaxWeight() kernel.Weight {
	return c.maxWeight
}

func (c AutoBatchOrdersCommand) OriginOfficeID() *kernel.UUID {
	return c.originOfficeID
}

func (c AutoBatchOrdersCommand) DestinationOfficeID() *kernel.UUID {
	return c.destinationOfficeID
}
