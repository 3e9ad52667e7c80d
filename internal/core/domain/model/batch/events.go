package batch

import (
	"time"

	"consolidation/internal/core/domain/model/kernel"
)

// DomainEvent is raised by the aggregate and published after commit.
type DomainEvent interface {
	EventName() string
	AggregateID() kernel.UUID
	OccurredAt() time.Time
}

// StatusChanged is raised on every lifecycle transition.
type StatusChanged struct {
	BatchID   kernel.UUID
	BatchCode Code
	From      Status
	To        Status
	At        time.Time
}

func (e StatusChanged) EventName() string        { return "batch.status_changed" }
func (e StatusChanged) AggregateID() kernel.UUID { return e.BatchID }
func (e StatusChanged) OccurredAt() time.Time    { return e.At }

// OrderArrivedAtOffice asks the order subsystem to mark an order as delivered
// to its destination office. One is raised per member when a batch is distributed.
type OrderArrivedAtOffice struct {
	OrderID   kernel.UUID
	BatchID   kernel.UUID
	BatchCode Code
	OfficeID  kernel.UUID
	At        time.Time
}

func (e OrderArrivedAtOffice) EventName() string        { return "order.arrived_at_office" }
func (e OrderArrivedAtOffice) AggregateID() kernel.UUID { return e.OrderID }
func (e OrderArrivedAtOffice) OccurredAt() time.Time    { return e.At }
