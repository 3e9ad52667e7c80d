package batch

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

// Member is a weak reference to an order inside a batch together with the
// weight it contributed when it was added.
type Member struct {
	OrderID kernel.UUID
	Weight  kernel.Weight
}

// Batch is the aggregate root for a consolidated shipment between two offices.
//
// The batch owns the set of member order ids; each order in turn points back
// with a single nullable batch id that only the batch writes. Aggregates
// (totalWeight, orderCount) are recomputed from members on restore and kept
// in step on every mutation.
type Batch struct {
	id          kernel.UUID
	code        Code
	status      Status
	origin      kernel.UUID
	destination kernel.UUID
	maxWeight   kernel.Weight
	totalWeight kernel.Weight
	members     []Member
	createdAt   time.Time
	updatedAt   time.Time

	events []DomainEvent

	guard guard.ConstructorGuard
}

// NewBatch allocates an empty OPEN batch.
func NewBatch(
	id kernel.UUID,
	origin kernel.UUID,
	destination kernel.UUID,
	maxWeight kernel.Weight,
	now time.Time,
) (*Batch, error) {
	b := &Batch{
		status: Open,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		b.setID(id),
		b.setOffices(origin, destination),
		b.setMaxWeight(maxWeight),
	); err != nil {
		return nil, err
	}

	b.code = NewCode(id, now)
	b.createdAt = now.UTC()
	b.updatedAt = b.createdAt
	return b, nil
}

// RestoreBatch rebuilds a batch from persistence and re-checks its invariants.
func RestoreBatch(
	id kernel.UUID,
	code Code,
	status Status,
	origin kernel.UUID,
	destination kernel.UUID,
	maxWeight kernel.Weight,
	totalWeight kernel.Weight,
	members []Member,
	createdAt time.Time,
	updatedAt time.Time,
) (*Batch, error) {
	b := &Batch{
		code:        code,
		totalWeight: totalWeight,
		members:     slices.Clone(members),
		createdAt:   createdAt.UTC(),
		updatedAt:   updatedAt.UTC(),
		guard:       guard.NewConstructorGuard(),
	}

	var codeErr error
	if _, err := ParseCode(string(code)); err != nil {
		codeErr = err
	}

	if err := errors.Join(
		b.setID(id),
		codeErr,
		b.setStatus(status),
		b.setOffices(origin, destination),
		b.setMaxWeight(maxWeight),
	); err != nil {
		return nil, err
	}

	if err := b.checkInvariants(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Batch) Validate() error {
	if b == nil {
		return ErrBatchIsNotConstructed
	}
	return b.guard.Validate(ErrBatchIsNotConstructed)
}

func (b *Batch) IsEqual(other *Batch) bool {
	return other != nil && b.id.IsEqual(other.id)
}

func (b *Batch) ID() kernel.UUID                  { return b.id }
func (b *Batch) Code() Code                       { return b.code }
func (b *Batch) Status() Status                   { return b.status }
func (b *Batch) OriginOfficeID() kernel.UUID      { return b.origin }
func (b *Batch) DestinationOfficeID() kernel.UUID { return b.destination }
func (b *Batch) MaxWeight() kernel.Weight         { return b.maxWeight }
func (b *Batch) TotalWeight() kernel.Weight       { return b.totalWeight }
func (b *Batch) OrderCount() int                  { return len(b.members) }
func (b *Batch) CreatedAt() time.Time             { return b.createdAt }
func (b *Batch) UpdatedAt() time.Time             { return b.updatedAt }

// RemainingCapacity is maxWeight minus totalWeight.
func (b *Batch) RemainingCapacity() kernel.Weight {
	return b.maxWeight.Sub(b.totalWeight)
}

func (b *Batch) Members() []Member {
	return slices.Clone(b.members)
}

func (b *Batch) MemberIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(b.members))
	for _, m := range b.members {
		ids = append(ids, m.OrderID)
	}
	return ids
}

func (b *Batch) Contains(orderID kernel.UUID) bool {
	return b.memberIndex(orderID) >= 0
}

// AddOrders attaches every order or none. All guards are evaluated before the
// first order is touched, so a rejected call leaves batch and orders unchanged.
func (b *Batch) AddOrders(orders []*order.Order, now time.Time) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if !b.status.AllowsMembershipChange() {
		return fmt.Errorf("%w: batch %s is %s", ErrBatchNotOpen, b.code, b.status)
	}
	if len(orders) == 0 {
		return errs.NewValueIsRequiredError("orders")
	}

	running := b.totalWeight
	seen := make(map[kernel.UUID]struct{}, len(orders))
	for _, o := range orders {
		if err := o.ValidateAttach(); err != nil {
			return err
		}
		if _, dup := seen[o.ID()]; dup {
			return errs.NewValueIsInvalidErrorWithCause("orderIds", fmt.Errorf("order %s is listed twice", o.ID()))
		}
		seen[o.ID()] = struct{}{}

		if !o.DestinationOfficeID().IsEqual(b.destination) {
			return fmt.Errorf("%w: order %s goes to %s, batch %s goes to %s",
				ErrDestinationMismatch, o.ID(), o.DestinationOfficeID(), b.code, b.destination)
		}
		if !o.OriginOfficeID().IsEqual(b.origin) {
			return fmt.Errorf("%w: order %s leaves from %s, batch %s from %s",
				ErrOriginMismatch, o.ID(), o.OriginOfficeID(), b.code, b.origin)
		}

		running = running.Add(o.Weight())
		if running.IsGreaterThan(b.maxWeight) {
			return fmt.Errorf("%w: batch %s would weigh %s, limit is %s",
				ErrCapacityExceeded, b.code, running, b.maxWeight)
		}
	}

	for _, o := range orders {
		if err := o.AttachToBatch(b.id); err != nil {
			return fmt.Errorf("%w: %w", ErrInvariantViolated, err)
		}
		b.members = append(b.members, Member{OrderID: o.ID(), Weight: o.Weight()})
	}
	b.totalWeight = running
	b.updatedAt = now.UTC()

	return b.checkInvariants()
}

// RemoveOrder detaches a member while the batch is OPEN.
func (b *Batch) RemoveOrder(o *order.Order, now time.Time) error {
	if err := errors.Join(b.Validate(), o.Validate()); err != nil {
		return err
	}
	if !b.status.AllowsMembershipChange() {
		return fmt.Errorf("%w: batch %s is %s", ErrBatchNotOpen, b.code, b.status)
	}

	idx := b.memberIndex(o.ID())
	if idx < 0 {
		return fmt.Errorf("%w: order %s, batch %s", ErrOrderNotInBatch, o.ID(), b.code)
	}
	if err := o.DetachFromBatch(b.id); err != nil {
		return err
	}

	removed := b.members[idx]
	b.members = slices.Delete(b.members, idx, idx+1)
	b.totalWeight = b.totalWeight.Sub(removed.Weight)
	b.updatedAt = now.UTC()

	return b.checkInvariants()
}

// Seal freezes membership. An empty batch cannot be sealed.
func (b *Batch) Seal(now time.Time) error {
	next, err := b.status.Seal()
	if err != nil {
		return err
	}
	if len(b.members) == 0 {
		return fmt.Errorf("%w: batch %s is empty", ErrInvalidTransition, b.code)
	}
	b.changeStatus(next, now)
	return nil
}

func (b *Batch) Dispatch(now time.Time) error {
	next, err := b.status.Dispatch()
	if err != nil {
		return err
	}
	b.changeStatus(next, now)
	return nil
}

func (b *Batch) MarkArrived(now time.Time) error {
	next, err := b.status.Arrive()
	if err != nil {
		return err
	}
	b.changeStatus(next, now)
	return nil
}

// Distribute closes the batch and raises one OrderArrivedAtOffice per member.
func (b *Batch) Distribute(now time.Time) error {
	next, err := b.status.Distribute()
	if err != nil {
		return err
	}
	b.changeStatus(next, now)
	for _, m := range b.members {
		b.events = append(b.events, OrderArrivedAtOffice{
			OrderID:   m.OrderID,
			BatchID:   b.id,
			BatchCode: b.code,
			OfficeID:  b.destination,
			At:        b.updatedAt,
		})
	}
	return nil
}

// Cancel releases every member back to the unbatched pool. members must be
// exactly the batch's current member orders.
func (b *Batch) Cancel(members []*order.Order, now time.Time) error {
	next, err := b.status.Cancel()
	if err != nil {
		return err
	}
	if len(members) != len(b.members) {
		return fmt.Errorf("%w: batch %s has %d members, %d supplied for release",
			ErrInvariantViolated, b.code, len(b.members), len(members))
	}
	for _, o := range members {
		if err = o.Validate(); err != nil {
			return err
		}
		if !b.Contains(o.ID()) {
			return fmt.Errorf("%w: order %s is not a member of %s", ErrInvariantViolated, o.ID(), b.code)
		}
	}

	for _, o := range members {
		if err = o.DetachFromBatch(b.id); err != nil {
			return fmt.Errorf("%w: %w", ErrInvariantViolated, err)
		}
	}
	b.members = nil
	b.totalWeight = kernel.ZeroWeight()
	b.changeStatus(next, now)

	return b.checkInvariants()
}

// DomainEvents returns events raised since the last ClearDomainEvents.
func (b *Batch) DomainEvents() []DomainEvent {
	return slices.Clone(b.events)
}

func (b *Batch) ClearDomainEvents() {
	b.events = nil
}

func (b *Batch) changeStatus(next Status, now time.Time) {
	prev := b.status
	b.status = next
	b.updatedAt = now.UTC()
	b.events = append(b.events, StatusChanged{
		BatchID:   b.id,
		BatchCode: b.code,
		From:      prev,
		To:        next,
		At:        b.updatedAt,
	})
}

func (b *Batch) memberIndex(orderID kernel.UUID) int {
	return slices.IndexFunc(b.members, func(m Member) bool {
		return m.OrderID.IsEqual(orderID)
	})
}

// checkInvariants verifies the sum, capacity, uniqueness and terminal-membership rules.
func (b *Batch) checkInvariants() error {
	sum := kernel.ZeroWeight()
	seen := make(map[kernel.UUID]struct{}, len(b.members))
	for _, m := range b.members {
		if _, dup := seen[m.OrderID]; dup {
			return fmt.Errorf("%w: order %s appears twice in %s", ErrInvariantViolated, m.OrderID, b.code)
		}
		seen[m.OrderID] = struct{}{}
		sum = sum.Add(m.Weight)
	}

	switch {
	case !sum.IsEqual(b.totalWeight):
		return fmt.Errorf("%w: %s total is %s, members sum to %s", ErrInvariantViolated, b.code, b.totalWeight, sum)
	case b.totalWeight.IsGreaterThan(b.maxWeight):
		return fmt.Errorf("%w: %s total %s exceeds %s", ErrInvariantViolated, b.code, b.totalWeight, b.maxWeight)
	case b.status == Cancelled && len(b.members) > 0:
		return fmt.Errorf("%w: cancelled batch %s still holds orders", ErrInvariantViolated, b.code)
	}
	return nil
}

func (b *Batch) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Batch) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	b.status = status
	return nil
}

func (b *Batch) setOffices(origin, destination kernel.UUID) error {
	if err := errors.Join(origin.Validate(), destination.Validate()); err != nil {
		return err
	}
	if origin.IsEqual(destination) {
		return errs.NewValueIsInvalidErrorWithCause(
			"destinationOfficeId",
			fmt.Errorf("destination %s equals origin", destination),
		)
	}
	b.origin = origin
	b.destination = destination
	return nil
}

func (b *Batch) setMaxWeight(maxWeight kernel.Weight) error {
	if maxWeight.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("maxWeight is invalid", fmt.Errorf("%s is not greater than 0", maxWeight))
	}
	b.maxWeight = maxWeight
	return nil
}
