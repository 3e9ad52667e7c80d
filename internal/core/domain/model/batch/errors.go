package batch

import (
	"errors"
	"fmt"

	"consolidation/internal/core/domain/model/order"
)

var (
	ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch constructor")

	ErrBatchNotOpen        = errors.New("batch is not open")
	ErrCapacityExceeded    = errors.New("batch capacity exceeded")
	ErrDestinationMismatch = errors.New("order destination does not match batch")
	ErrInvalidTransition   = errors.New("invalid batch status transition")

	// ErrOriginMismatch is a route mismatch on the origin side; errors.Is
	// reports it as ErrDestinationMismatch too.
	ErrOriginMismatch = fmt.Errorf("%w: origin office differs", ErrDestinationMismatch)

	ErrOrderAlreadyBatched = order.ErrAlreadyBatched
	ErrOrderNotEligible    = order.ErrNotEligible
	ErrOrderNotInBatch     = order.ErrNotInBatch

	// ErrInvariantViolated signals a defect: a guard let through a state that
	// breaks the aggregate's invariants.
	ErrInvariantViolated = errors.New("batch invariant violated")
)
