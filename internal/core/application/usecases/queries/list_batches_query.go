package queries

import (
	"errors"
	"fmt"
	"math"

	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var ErrListBatchesQueryIsNotConstructed = errors.New(
	"ListBatchesQuery must be created via NewListBatchesQuery constructor",
)

// Direction picks which side of a batch the caller's office is on.
type Direction int

const (
	// Outgoing lists batches leaving the office.
	Outgoing Direction = iota + 1
	// Incoming lists batches addressed to the office.
	Incoming
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "outgoing"
	case Incoming:
		return "incoming"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ListBatchesQuery pages through one office's outgoing or incoming batches,
// newest first.
type ListBatchesQuery struct {
	direction     Direction
	officeID      kernel.UUID
	status        *batch.Status
	page          int
	size          int
	includeOrders bool

	guard guard.ConstructorGuard
}

// NewListBatchesQuery validates paging. A zero size means ports.DefaultPageSize;
// status may be nil to list every status.
func NewListBatchesQuery(
	direction Direction,
	officeID kernel.UUID,
	status *batch.Status,
	page int,
	size int,
	includeOrders bool,
) (ListBatchesQuery, error) {
	q := ListBatchesQuery{
		direction:     direction,
		officeID:      officeID,
		page:          page,
		size:          size,
		includeOrders: includeOrders,
		guard:         guard.NewConstructorGuard(),
	}
	if q.size == 0 {
		q.size = ports.DefaultPageSize
	}

	var directionErr, officeErr, statusErr, pageErr, sizeErr error
	if direction != Outgoing && direction != Incoming {
		directionErr = errs.NewValueIsInvalidErrorWithCause("direction", fmt.Errorf("%s is not supported", direction))
	}
	if err := officeID.Validate(); err != nil {
		officeErr = errs.NewValueIsRequiredErrorWithCause("officeId", err)
	}
	if status != nil {
		if err := status.Validate(); err != nil {
			statusErr = err
		} else {
			s := *status
			q.status = &s
		}
	}
	if page < 0 {
		pageErr = errs.NewValueIsInvalidErrorWithCause("page", fmt.Errorf("%d is negative", page))
	}
	if q.size < 1 || q.size > ports.MaxPageSize {
		sizeErr = errs.NewValueIsOutOfRangeError("size", size, 1, ports.MaxPageSize)
	} else if maxPage := math.MaxInt / q.size; page > maxPage {
		// page*size is the read offset and must not overflow
		pageErr = errs.NewValueIsOutOfRangeError("page", page, 0, maxPage)
	}
	if err := errors.Join(directionErr, officeErr, statusErr, pageErr, sizeErr); err != nil {
		return ListBatchesQuery{}, err
	}

	return q, nil
}

func (q ListBatchesQuery) Validate() error {
	return q.guard.Validate(ErrListBatchesQueryIsNotConstructed)
}

// Filter translates the query into a read model filter.
func (q ListBatchesQuery) Filter() ports.BatchListFilter {
	office := q.officeID
	f := ports.BatchListFilter{
		Status:        q.status,
		Page:          q.page,
		Size:          q.size,
		IncludeOrders: q.includeOrders,
	}
	if q.direction == Incoming {
		f.DestinationOfficeID = &office
	} else {
		f.OriginOfficeID = &office
	}
	return f
}

func (q ListBatchesQuery) Direction() Direction { return q.direction }
func (q ListBatchesQuery) Page() int            { return q.page }
func (q ListBatchesQuery) Size() int            { return q.size }
