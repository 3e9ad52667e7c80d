package commands

import (
	"errors"
	"fmt"
	"strings"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var ErrChangeBatchStatusCommandIsNotConstructed = errors.New(
	"ChangeBatchStatusCommand must be created via NewChangeBatchStatusCommand constructor",
)

// BatchAction names a lifecycle transition requested by staff.
type BatchAction string

const (
	ActionSeal       BatchAction = "seal"
	ActionDispatch   BatchAction = "dispatch"
	ActionArrive     BatchAction = "arrive"
	ActionDistribute BatchAction = "distribute"
	ActionCancel     BatchAction = "cancel"
)

// ParseBatchAction accepts the action names case-insensitively.
func ParseBatchAction(s string) (BatchAction, error) {
	a := BatchAction(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionSeal, ActionDispatch, ActionArrive, ActionDistribute, ActionCancel:
		return a, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("unknown batch action %q", s))
	}
}

// ChangeBatchStatusCommand moves a batch one step along its lifecycle.
//
// Example:
//
//	cmd, _ := NewChangeBatchStatusCommand(batchID, ActionSeal)
//	b, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, batch.ErrInvalidTransition) {
//	    // empty batch or wrong state
//	}
type ChangeBatchStatusCommand struct {
	batchID kernel.UUID
	action  BatchAction

	guard guard.ConstructorGuard
}

func NewChangeBatchStatusCommand(batchID kernel.UUID, action BatchAction) (ChangeBatchStatusCommand, error) {
	if err := batchID.Validate(); err != nil {
		return ChangeBatchStatusCommand{}, errs.NewValueIsRequiredErrorWithCause("batchId", err)
	}
	parsed, err := ParseBatchAction(string(action))
	if err != nil {
		return ChangeBatchStatusCommand{}, err
	}

	return ChangeBatchStatusCommand{
		batchID: batchID,
		action:  parsed,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeBatchStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeBatchStatusCommandIsNotConstructed)
}

func (c ChangeBatchStatusCommand) BatchID() kernel.UUID {
	return c.batchID
}

func (c ChangeBatchStatusCommand) Action() BatchAction {
	return c.action
}
