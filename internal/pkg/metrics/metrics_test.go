package metrics_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"consolidation/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	errBusy := errors.New("busy")

	assert.Equal(t, metrics.OutcomeOK, metrics.Outcome(nil, errBusy))
	assert.Equal(t, metrics.OutcomeBusy, metrics.Outcome(fmt.Errorf("lock: %w", errBusy), errBusy))
	assert.Equal(t, metrics.OutcomeError, metrics.Outcome(errors.New("boom"), errBusy))
	assert.Equal(t, metrics.OutcomeError, metrics.Outcome(errors.New("boom"), nil))
}

func TestCollectorsAreRegistered(t *testing.T) {
	metrics.ObserveLockWait("seal", metrics.OutcomeBusy, 5*time.Millisecond)
	metrics.ObserveOperation("seal", metrics.OutcomeBusy)
	metrics.BatchesCreated("auto", 2)
	metrics.OversizeOrders(1)
	metrics.Transition("SEALED")
	metrics.EventPublished("batch.status_changed", metrics.OutcomeOK)
	metrics.UnbatchedPool(3, 12.5, time.Minute)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"consolidation_destination_lock_wait_seconds",
		"consolidation_destination_busy_total",
		"consolidation_operations_total",
		"consolidation_batches_created_total",
		"consolidation_oversize_orders_total",
		"consolidation_batch_transitions_total",
		"consolidation_events_published_total",
		"consolidation_unbatched_orders",
		"consolidation_unbatched_weight_kg",
		"consolidation_oldest_unbatched_order_age_seconds",
	} {
		assert.True(t, names[want], want)
	}
}
