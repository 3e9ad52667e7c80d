package commands

import (
	"errors"
	"strings"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
	"consolidation/internal/pkg/guard"
)

var ErrRegisterOrderCommandIsNotConstructed = errors.New(
	"RegisterOrderCommand must be created via NewRegisterOrderCommand constructor",
)

// RegisterOrderCommand feeds an upstream order into the ledger index.
//
// Example:
//
//	cmd, err := NewRegisterOrderCommand(id, "VN123", 2.5, origin, destination, createdAt)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	o, err := handler.Handle(ctx, cmd)
type RegisterOrderCommand struct { //nolint:recvcheck //using for validation
	orderID             kernel.UUID
	trackingNumber      string
	weight              kernel.Weight
	originOfficeID      kernel.UUID
	destinationOfficeID kernel.UUID
	createdAt           time.Time

	guard guard.ConstructorGuard
}

// NewRegisterOrderCommand validates the order shape. A zero createdAt means now.
func NewRegisterOrderCommand(
	orderID kernel.UUID,
	trackingNumber string,
	weightKg float64,
	originOfficeID kernel.UUID,
	destinationOfficeID kernel.UUID,
	createdAt time.Time,
) (RegisterOrderCommand, error) {
	cmd := RegisterOrderCommand{
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTrackingNumber(trackingNumber),
		cmd.setWeight(weightKg),
		cmd.setOffices(originOfficeID, destinationOfficeID),
	); err != nil {
		return RegisterOrderCommand{}, err
	}

	return cmd, nil
}

func (c RegisterOrderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterOrderCommandIsNotConstructed)
}

func (c RegisterOrderCommand) OrderID() kernel.UUID             { return c.orderID }
func (c RegisterOrderCommand) TrackingNumber() string           { return c.trackingNumber }
func (c RegisterOrderCommand) Weight() kernel.Weight            { return c.weight }
func (c RegisterOrderCommand) OriginOfficeID() kernel.UUID      { return c.originOfficeID }
func (c RegisterOrderCommand) DestinationOfficeID() kernel.UUID { return c.destinationOfficeID }
func (c RegisterOrderCommand) CreatedAt() time.Time             { return c.createdAt }

func (c *RegisterOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *RegisterOrderCommand) setTrackingNumber(trackingNumber string) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return errs.NewValueIsRequiredError("trackingNumber")
	}

	c.trackingNumber = trackingNumber
	return nil
}

func (c *RegisterOrderCommand) setWeight(weightKg float64) error {
	w, err := kernel.NewWeightFromKg(weightKg)
	if err != nil {
		return err
	}

	c.weight = w
	return nil
}

func (c *RegisterOrderCommand) setOffices(origin, destination kernel.UUID) error {
	var originErr, destinationErr error
	if err := origin.Validate(); err != nil {
		originErr = errs.NewValueIsRequiredErrorWithCause("originOfficeId", err)
	}
	if err := destination.Validate(); err != nil {
		destinationErr = errs.NewValueIsRequiredErrorWithCause("destinationOfficeId", err)
	}
	if err := errors.Join(originErr, destinationErr); err != nil {
		return err
	}

	c.originOfficeID = origin
	c.destinationOfficeID = destination
	return nil
}
