// Package kafka publishes committed domain events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"consolidation/internal/core/domain/model/batch"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const headerEventName = "event-name"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope is the wire shape of every published event.
type Envelope struct {
	EventID     string          `json:"eventId"`
	EventName   string          `json:"eventName"`
	AggregateID string          `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Payload     json.RawMessage `json:"payload"`
}

type statusChangedPayload struct {
	BatchID   string `json:"batchId"`
	BatchCode string `json:"batchCode"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type orderArrivedPayload struct {
	OrderID   string `json:"orderId"`
	BatchID   string `json:"batchId"`
	BatchCode string `json:"batchCode"`
	OfficeID  string `json:"officeId"`
}

// EventPublisher writes one message per event, keyed by aggregate id so
// events of one aggregate stay ordered within a partition.
type EventPublisher struct {
	writer messageWriter
}

func NewEventPublisher(writer messageWriter) *EventPublisher {
	return &EventPublisher{writer: writer}
}

// NewWriter builds the kafka-go writer used in production.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, events ...batch.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := Encode(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

// Encode renders a domain event as a Kafka message.
func Encode(e batch.DomainEvent) (kafka.Message, error) {
	var payload any
	switch ev := e.(type) {
	case batch.StatusChanged:
		payload = statusChangedPayload{
			BatchID:   ev.BatchID.String(),
			BatchCode: ev.BatchCode.String(),
			From:      ev.From.String(),
			To:        ev.To.String(),
		}
	case batch.OrderArrivedAtOffice:
		payload = orderArrivedPayload{
			OrderID:   ev.OrderID.String(),
			BatchID:   ev.BatchID.String(),
			BatchCode: ev.BatchCode.String(),
			OfficeID:  ev.OfficeID.String(),
		}
	default:
		return kafka.Message{}, fmt.Errorf("kafka: unsupported event %T", e)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}

	value, err := json.Marshal(Envelope{
		EventID:     uuid.NewString(),
		EventName:   e.EventName(),
		AggregateID: e.AggregateID().String(),
		OccurredAt:  e.OccurredAt(),
		Payload:     raw,
	})
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:     []byte(e.AggregateID().String()),
		Value:   value,
		Time:    e.OccurredAt(),
		Headers: []kafka.Header{{Key: headerEventName, Value: []byte(e.EventName())}},
	}, nil
}
