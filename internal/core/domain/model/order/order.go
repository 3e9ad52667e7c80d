package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var (
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrAlreadyBatched is returned when attaching an order that already belongs to a batch.
	ErrAlreadyBatched = errors.New("order already batched")

	// ErrNotEligible is returned when attaching an order that left the Created status.
	ErrNotEligible = errors.New("order is not eligible for batching")

	// ErrNotInBatch is returned when detaching an order from a batch it does not belong to.
	ErrNotInBatch = errors.New("order not in batch")
)

// Order is the engine's view of an upstream parcel order.
type Order struct {
	id             kernel.UUID
	trackingNumber string
	weight         kernel.Weight
	origin         kernel.UUID
	destination    kernel.UUID
	status         Status
	batchID        *kernel.UUID
	createdAt      time.Time

	guard guard.ConstructorGuard
}

// NewOrder registers a freshly created, unbatched order.
func NewOrder(
	id kernel.UUID,
	trackingNumber string,
	weight kernel.Weight,
	origin kernel.UUID,
	destination kernel.UUID,
	createdAt time.Time,
) (*Order, error) {
	return RestoreOrder(id, trackingNumber, weight, origin, destination, Created, nil, createdAt)
}

// RestoreOrder rebuilds an order from persistence.
func RestoreOrder(
	id kernel.UUID,
	trackingNumber string,
	weight kernel.Weight,
	origin kernel.UUID,
	destination kernel.UUID,
	status Status,
	batchID *kernel.UUID,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setTrackingNumber(trackingNumber),
		o.setWeight(weight),
		o.setOffices(origin, destination),
		o.setStatus(status),
		o.setBatchID(batchID),
		o.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) TrackingNumber() string {
	return o.trackingNumber
}

func (o *Order) Weight() kernel.Weight {
	return o.weight
}

func (o *Order) OriginOfficeID() kernel.UUID {
	return o.origin
}

func (o *Order) DestinationOfficeID() kernel.UUID {
	return o.destination
}

func (o *Order) Status() Status {
	return o.status
}

// BatchID is nil while the order is unbatched.
func (o *Order) BatchID() *kernel.UUID {
	if o.batchID == nil {
		return nil
	}
	id := *o.batchID
	return &id
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) IsBatched() bool {
	return o.batchID != nil
}

// IsEligible reports whether the order may be consolidated into a batch.
func (o *Order) IsEligible() bool {
	return o.status == Created && o.batchID == nil
}

// ValidateAttach checks the order side of the add-to-batch guard without mutating anything.
func (o *Order) ValidateAttach() error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.batchID != nil {
		return fmt.Errorf("%w: order %s is in batch %s", ErrAlreadyBatched, o.id, o.batchID)
	}
	if o.status != Created {
		return fmt.Errorf("%w: order %s is %s", ErrNotEligible, o.id, o.status)
	}
	return nil
}

// AttachToBatch records batch membership.
func (o *Order) AttachToBatch(batchID kernel.UUID) error {
	if err := batchID.Validate(); err != nil {
		return err
	}
	if err := o.ValidateAttach(); err != nil {
		return err
	}
	o.batchID = &batchID
	return nil
}

// DetachFromBatch clears membership; batchID must be the batch the order is in.
func (o *Order) DetachFromBatch(batchID kernel.UUID) error {
	if o.batchID == nil || !o.batchID.IsEqual(batchID) {
		return fmt.Errorf("%w: order %s, batch %s", ErrNotInBatch, o.id, batchID)
	}
	o.batchID = nil
	return nil
}

// ChangeStatus applies an upstream pipeline move. Batch membership is untouched.
func (o *Order) ChangeStatus(next Status) error {
	newStatus, err := o.status.ChangeTo(next)
	if err != nil {
		return err
	}
	o.status = newStatus
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTrackingNumber(trackingNumber string) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return errs.NewValueIsRequiredError("trackingNumber")
	}
	o.trackingNumber = trackingNumber
	return nil
}

func (o *Order) setWeight(weight kernel.Weight) error {
	if weight.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause("weight is invalid", fmt.Errorf("%s is not greater than 0", weight))
	}
	o.weight = weight
	return nil
}

func (o *Order) setOffices(origin, destination kernel.UUID) error {
	if err := errors.Join(origin.Validate(), destination.Validate()); err != nil {
		return err
	}
	o.origin = origin
	o.destination = destination
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setBatchID(batchID *kernel.UUID) error {
	if batchID != nil {
		if err := batchID.Validate(); err != nil {
			return err
		}
		id := *batchID
		o.batchID = &id
	}
	return nil
}

func (o *Order) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	o.createdAt = createdAt.UTC()
	return nil
}
