// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries never take destination locks and may observe a slightly stale snapshot.
package queries

import (
	"errors"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/guard"
)

var ErrGetBatchQueryIsNotConstructed = errors.New(
	"GetBatchQuery must be created via NewGetBatchByIDQuery or NewGetBatchByCodeQuery",
)

// GetBatchQuery looks a batch up by id or by code.
//
// Example:
//
//	query, err := NewGetBatchByCodeQuery("KIEN-20261018-3F9A1C2B", true)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetBatchQuery struct {
	id            *kernel.UUID
	code          batch.Code
	includeOrders bool

	guard guard.ConstructorGuard
}

func NewGetBatchByIDQuery(id kernel.UUID, includeOrders bool) (GetBatchQuery, error) {
	if err := id.Validate(); err != nil {
		return GetBatchQuery{}, err
	}
	return GetBatchQuery{id: &id, includeOrders: includeOrders, guard: guard.NewConstructorGuard()}, nil
}

func NewGetBatchByCodeQuery(code string, includeOrders bool) (GetBatchQuery, error) {
	parsed, err := batch.ParseCode(code)
	if err != nil {
		return GetBatchQuery{}, err
	}
	return GetBatchQuery{code: parsed, includeOrders: includeOrders, guard: guard.NewConstructorGuard()}, nil
}

func (q GetBatchQuery) Validate() error {
	return q.guard.Validate(ErrGetBatchQueryIsNotConstructed)
}

// ID is nil for a lookup by code.
func (q GetBatchQuery) ID() *kernel.UUID {
	return q.id
}

func (q GetBatchQuery) Code() batch.Code {
	return q.code
}

func (q GetBatchQuery) IncludeOrders() bool {
	return q.includeOrders
}
