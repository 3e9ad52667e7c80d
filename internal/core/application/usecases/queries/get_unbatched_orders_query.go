package queries

import (
	"errors"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var (
	ErrGetUnbatchedOrdersQueryIsNotConstructed = errors.New(
		"GetUnbatchedOrdersQuery must be created via NewGetUnbatchedOrdersQuery constructor",
	)
	ErrGetDestinationsQueryIsNotConstructed = errors.New(
		"GetDestinationsWithUnbatchedOrdersQuery must be created via NewGetDestinationsWithUnbatchedOrdersQuery constructor",
	)
)

// GetUnbatchedOrdersQuery lists the eligible pool, oldest first. Either
// office may be nil.
type GetUnbatchedOrdersQuery struct {
	filter ports.EligibleOrdersFilter
	guard  guard.ConstructorGuard
}

func NewGetUnbatchedOrdersQuery(origin, destination *kernel.UUID) (GetUnbatchedOrdersQuery, error) {
	filter, err := officeFilter(origin, destination)
	if err != nil {
		return GetUnbatchedOrdersQuery{}, err
	}
	return GetUnbatchedOrdersQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

func (q GetUnbatchedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetUnbatchedOrdersQueryIsNotConstructed)
}

func (q GetUnbatchedOrdersQuery) Filter() ports.EligibleOrdersFilter {
	return q.filter
}

// GetDestinationsWithUnbatchedOrdersQuery summarizes the pool per destination.
// A nil origin covers every office.
type GetDestinationsWithUnbatchedOrdersQuery struct {
	origin *kernel.UUID
	guard  guard.ConstructorGuard
}

func NewGetDestinationsWithUnbatchedOrdersQuery(origin *kernel.UUID) (GetDestinationsWithUnbatchedOrdersQuery, error) {
	filter, err := officeFilter(origin, nil)
	if err != nil {
		return GetDestinationsWithUnbatchedOrdersQuery{}, err
	}
	return GetDestinationsWithUnbatchedOrdersQuery{origin: filter.OriginOfficeID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDestinationsWithUnbatchedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetDestinationsQueryIsNotConstructed)
}

func (q GetDestinationsWithUnbatchedOrdersQuery) OriginOfficeID() *kernel.UUID {
	return q.origin
}

func officeFilter(origin, destination *kernel.UUID) (ports.EligibleOrdersFilter, error) {
	var f ports.EligibleOrdersFilter
	var originErr, destinationErr error
	if origin != nil {
		if err := origin.Validate(); err != nil {
			originErr = errs.NewValueIsInvalidErrorWithCause("originOfficeId", err)
		} else {
			id := *origin
			f.OriginOfficeID = &id
		}
	}
	if destination != nil {
		if err := destination.Validate(); err != nil {
			destinationErr = errs.NewValueIsInvalidErrorWithCause("destinationOfficeId", err)
		} else {
			id := *destination
			f.DestinationOfficeID = &id
		}
	}
	return f, errors.Join(originErr, destinationErr)
}
