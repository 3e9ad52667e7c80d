// Package eventlog publishes domain events to the structured log. It is the
// publisher used when no Kafka broker is configured.
package eventlog

import (
	"context"
	"log/slog"

	"consolidation/internal/core/domain/model/batch"
)

type Publisher struct {
	logger *slog.Logger
}

func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger.With("component", "EventLog")}
}

func (p *Publisher) Publish(ctx context.Context, events ...batch.DomainEvent) error {
	for _, e := range events {
		attrs := []any{
			"event", e.EventName(),
			"aggregate_id", e.AggregateID().String(),
			"occurred_at", e.OccurredAt(),
		}
		switch ev := e.(type) {
		case batch.StatusChanged:
			attrs = append(attrs, "batch_code", ev.BatchCode.String(), "from", ev.From.String(), "to", ev.To.String())
		case batch.OrderArrivedAtOffice:
			attrs = append(attrs, "batch_code", ev.BatchCode.String(), "office_id", ev.OfficeID.String())
		}
		p.logger.InfoContext(ctx, "domain event", attrs...)
	}
	return nil
}
