// Package metrics holds the Prometheus collectors of the consolidation engine.
// Collectors are registered on the default registry, which /metrics serves.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "consolidation"

var (
	lockWait = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "destination_lock_wait_seconds",
		Help:      "Time spent waiting for a destination lock.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"operation", "outcome"})

	busy = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "destination_busy_total",
		Help:      "Operations rejected because the destination lock was not acquired in time.",
	}, []string{"operation"})

	operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Coordinated operations by outcome.",
	}, []string{"operation", "outcome"})

	batchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_created_total",
		Help:      "Batches created, by source.",
	}, []string{"source"})

	oversizeOrders = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oversize_orders_total",
		Help:      "Orders placed alone because they exceed the batch weight limit.",
	})

	transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_transitions_total",
		Help:      "Batch lifecycle transitions applied.",
	}, []string{"to"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Domain events handed to the publisher.",
	}, []string{"event", "outcome"})

	unbatchedOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unbatched_orders",
		Help:      "Eligible orders not yet in a batch, as of the last pool scan.",
	})

	unbatchedWeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unbatched_weight_kg",
		Help:      "Total weight of the unbatched pool, as of the last pool scan.",
	})

	oldestUnbatchedAge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "oldest_unbatched_order_age_seconds",
		Help:      "Age of the oldest eligible order still waiting for a batch.",
	})
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeBusy  = "busy"
)

// Outcome maps an error to a label value. busyErr is passed in so this
// package stays free of core imports.
func Outcome(err error, busyErr error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case busyErr != nil && errors.Is(err, busyErr):
		return OutcomeBusy
	default:
		return OutcomeError
	}
}

func ObserveLockWait(operation, outcome string, d time.Duration) {
	lockWait.WithLabelValues(operation, outcome).Observe(d.Seconds())
	if outcome == OutcomeBusy {
		busy.WithLabelValues(operation).Inc()
	}
}

func ObserveOperation(operation, outcome string) {
	operations.WithLabelValues(operation, outcome).Inc()
}

func BatchesCreated(source string, n int) {
	batchesCreated.WithLabelValues(source).Add(float64(n))
}

func OversizeOrders(n int) {
	oversizeOrders.Add(float64(n))
}

func Transition(to string) {
	transitions.WithLabelValues(to).Inc()
}

func EventPublished(event, outcome string) {
	eventsPublished.WithLabelValues(event, outcome).Inc()
}

// UnbatchedPool records the latest pool scan. A zero age means the pool is empty.
func UnbatchedPool(orders int, weightKg float64, oldestAge time.Duration) {
	unbatchedOrders.Set(float64(orders))
	unbatchedWeight.Set(weightKg)
	oldestUnbatchedAge.Set(oldestAge.Seconds())
}
