// Package kafka feeds upstream order events into the order ledger.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

const (
	MessageTypeRegistered    = "registered"
	MessageTypeStatusChanged = "status_changed"
)

var (
	ErrUnknownMessageType = errors.New("unknown order message type")
	ErrMalformedMessage   = errors.New("malformed order message")
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderRegistrar interface {
	Handle(ctx context.Context, cmd commands.RegisterOrderCommand) (*order.Order, error)
}

type OrderStatusChanger interface {
	Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) (*order.Order, error)
}

// OrderMessage is the intake payload. Fields unused by a type are ignored.
type OrderMessage struct {
	Type                string    `json:"type"`
	OrderID             string    `json:"orderId"`
	TrackingNumber      string    `json:"trackingNumber,omitempty"`
	WeightKg            float64   `json:"weightKg,omitempty"`
	OriginOfficeID      string    `json:"originOfficeId,omitempty"`
	DestinationOfficeID string    `json:"destinationOfficeId,omitempty"`
	CreatedAt           time.Time `json:"createdAt,omitzero"`
	Status              string    `json:"status,omitempty"`
}

// OrderConsumer reads the intake topic and commits each message once it
// has been applied or judged unprocessable. A busy destination or a store
// failure is retried until it clears or the consumer stops.
type OrderConsumer struct {
	reader       messageReader
	register     OrderRegistrar
	changeStatus OrderStatusChanger
	logger       *slog.Logger
	retryDelay   time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrderConsumer(
	reader messageReader,
	register OrderRegistrar,
	changeStatus OrderStatusChanger,
	logger *slog.Logger,
) *OrderConsumer {
	return &OrderConsumer{
		reader:       reader,
		register:     register,
		changeStatus: changeStatus,
		logger:       logger.With("component", "OrderConsumer"),
		retryDelay:   time.Second,
	}
}

// NewReader builds the consumer-group reader used in production.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

func (c *OrderConsumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.Info("order consumer started")
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Info("order consumer shutting down")
					return
				}
				c.logger.Error("failed to fetch message", "error", err)
				if !c.sleep(ctx) {
					return
				}
				continue
			}

			if !c.handle(ctx, msg) {
				return
			}

			if err = c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("failed to commit message", "offset", msg.Offset, "error", err)
			}
		}
	}()
}

func (c *OrderConsumer) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	if err := c.reader.Close(); err != nil {
		c.logger.Error("failed to close reader", "error", err)
	}
	c.logger.Info("order consumer stopped")
}

// handle returns false only when ctx ended before the message was applied.
func (c *OrderConsumer) handle(ctx context.Context, msg kafka.Message) bool {
	for {
		err := c.Process(ctx, msg.Value)
		switch {
		case err == nil:
			return true
		case errors.Is(err, ports.ErrBusy):
			c.logger.Warn("destination busy, retrying", "offset", msg.Offset)
			if !c.sleep(ctx) {
				return false
			}
		case isUnprocessable(err):
			c.logger.Error("skipping order message", "offset", msg.Offset, "error", err)
			return true
		default:
			c.logger.Error("failed to apply order message, retrying", "offset", msg.Offset, "error", err)
			if !c.sleep(ctx) {
				return false
			}
		}
	}
}

// Process decodes one message and applies it.
func (c *OrderConsumer) Process(ctx context.Context, value []byte) error {
	var m OrderMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	orderID, err := kernel.UUIDFromString(m.OrderID)
	if err != nil {
		return fmt.Errorf("%w: orderId: %w", ErrMalformedMessage, err)
	}

	switch m.Type {
	case MessageTypeRegistered:
		origin, originErr := kernel.UUIDFromString(m.OriginOfficeID)
		destination, destErr := kernel.UUIDFromString(m.DestinationOfficeID)
		if err = errors.Join(originErr, destErr); err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
		}
		cmd, err := commands.NewRegisterOrderCommand(orderID, m.TrackingNumber, m.WeightKg, origin, destination, m.CreatedAt)
		if err != nil {
			return err
		}
		_, err = c.register.Handle(ctx, cmd)
		return err

	case MessageTypeStatusChanged:
		status, err := order.ParseStatus(m.Status)
		if err != nil {
			return err
		}
		cmd, err := commands.NewChangeOrderStatusCommand(orderID, status)
		if err != nil {
			return err
		}
		_, err = c.changeStatus.Handle(ctx, cmd)
		return err

	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, m.Type)
	}
}

// isUnprocessable reports errors that no retry can fix: the message itself
// is bad or contradicts the ledger. Anything else, such as a lost database
// connection, is retried.
func isUnprocessable(err error) bool {
	for _, target := range []error{
		ErrMalformedMessage,
		ErrUnknownMessageType,
		commands.ErrOrderConflict,
		errs.ErrValueIsInvalid,
		errs.ErrValueIsOutOfRange,
		errs.ErrValueIsRequired,
		errs.ErrObjectNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (c *OrderConsumer) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.retryDelay):
		return true
	}
}
