package commands_test

import (
	"sync"
	"testing"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func autoBatch(
	t *testing.T,
	h *harness,
	defaultKg float64,
	maxKg float64,
	destination *kernel.UUID,
) (commands.AutoBatchResult, error) {
	t.Helper()
	var def kernel.Weight
	if defaultKg > 0 {
		var err error
		def, err = kernel.NewWeightFromKg(defaultKg)
		require.NoError(t, err)
	}
	cmd, err := commands.NewAutoBatchOrdersCommand(maxKg, &h.origin, destination)
	require.NoError(t, err)
	return commands.NewAutoBatchOrdersCommandHandler(h.coordinator, def, 4).Handle(t.Context(), cmd)
}

func weightsKg(batches []*batch.Batch) []float64 {
	out := make([]float64, 0, len(batches))
	for _, b := range batches {
		out = append(out, b.TotalWeight().Kg())
	}
	return out
}

func TestAutoBatchOrdersCommandHandler_NextFitKeepsArrivalOrder(t *testing.T) {
	// Arrange
	h := newHarness()
	orders := h.seedOrders(t, 10, 15, 8)

	// Act
	result, err := autoBatch(t, h, 0, 20, &h.destination)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, result.BatchesCreated)
	assert.Equal(t, 3, result.OrdersProcessed)
	assert.Equal(t, 0, result.OversizeOrders)
	require.Len(t, result.Batches, 3)
	assert.Equal(t, []float64{10, 15, 8}, weightsKg(result.Batches))
	for i, b := range result.Batches {
		assert.Equal(t, batch.Open, b.Status())
		assert.Equal(t, []kernel.UUID{orders[i].ID()}, h.batch(t, b.ID()).MemberIDs())
	}
	assert.Empty(t, h.unbatched(t))
}

func TestAutoBatchOrdersCommandHandler_PacksUntilFull(t *testing.T) {
	h := newHarness()
	h.seedOrders(t, 5, 5, 5, 5, 5)

	result, err := autoBatch(t, h, 0, 20, &h.destination)

	require.NoError(t, err)
	assert.Equal(t, []float64{20, 5}, weightsKg(result.Batches))
}

func TestAutoBatchOrdersCommandHandler_OversizeOrderGetsOwnBatch(t *testing.T) {
	// Arrange
	h := newHarness()
	h.seedOrders(t, 4, 25, 3)

	// Act
	result, err := autoBatch(t, h, 0, 20, &h.destination)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.OversizeOrders)
	require.Len(t, result.Batches, 3)
	oversize := result.Batches[1]
	assert.Equal(t, int64(25_000), oversize.MaxWeight().Grams())
	assert.Equal(t, int64(25_000), oversize.TotalWeight().Grams())
	assert.Equal(t, []float64{4, 25, 3}, weightsKg(result.Batches))
}

func TestAutoBatchOrdersCommandHandler_AllDestinationsWithDefaultWeight(t *testing.T) {
	// Arrange
	h := newHarness()
	other := kernel.NewUUID()
	h.seedOrder(t, h.destination, 6, baseTime)
	h.seedOrder(t, other, 7, baseTime.Add(time.Minute))
	h.seedOrder(t, h.destination, 6, baseTime.Add(2*time.Minute))

	// Act
	result, err := autoBatch(t, h, 12, 0, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.BatchesCreated)
	assert.Equal(t, 3, result.OrdersProcessed)

	byDestination := make(map[kernel.UUID]*batch.Batch)
	for _, b := range result.Batches {
		byDestination[b.DestinationOfficeID()] = b
		assert.Equal(t, int64(12_000), b.MaxWeight().Grams())
	}
	require.Contains(t, byDestination, h.destination)
	require.Contains(t, byDestination, other)
	assert.Equal(t, 2, byDestination[h.destination].OrderCount())
	assert.Equal(t, 1, byDestination[other].OrderCount())
}

func TestAutoBatchOrdersCommandHandler_SkipsIneligibleOrders(t *testing.T) {
	// Arrange
	h := newHarness()
	orders := h.seedOrders(t, 1, 2, 3)
	manual := h.createBatch(t, 10, orders[0])
	changeOrderStatus(t, h, orders[1].ID(), order.PickedUp)

	// Act
	result, err := autoBatch(t, h, 0, 10, &h.destination)

	// Assert
	require.NoError(t, err)
	require.Len(t, result.Batches, 1)
	assert.Equal(t, []kernel.UUID{orders[2].ID()}, result.Batches[0].MemberIDs())
	assert.Equal(t, 1, h.batch(t, manual.ID()).OrderCount())
}

func TestAutoBatchOrdersCommandHandler_EmptyPool(t *testing.T) {
	h := newHarness()

	result, err := autoBatch(t, h, 0, 20, &h.destination)

	require.NoError(t, err)
	assert.Zero(t, result.BatchesCreated)
	assert.Empty(t, h.batches(t))
}

func TestAutoBatchOrdersCommandHandler_NoWeightConfigured(t *testing.T) {
	h := newHarness()
	h.seedOrders(t, 1)

	_, err := autoBatch(t, h, 0, 0, nil)

	assert.ErrorIs(t, err, services.ErrNothingToPlan)
}

func TestAutoBatchOrdersCommandHandler_ConcurrentRunsDoNotOverlap(t *testing.T) {
	// Arrange
	h := newHarness()
	var pool []kernel.UUID
	for i := range 60 {
		o := h.seedOrder(t, h.destination, float64(1+i%7), baseTime.Add(time.Duration(i)*time.Second))
		pool = append(pool, o.ID())
	}

	cmd, err := commands.NewAutoBatchOrdersCommand(15, &h.origin, &h.destination)
	require.NoError(t, err)
	handler := commands.NewAutoBatchOrdersCommandHandler(h.coordinator, kernel.Weight{}, 4)

	// Act
	const runs = 6
	results := make([]commands.AutoBatchResult, runs)
	failures := make([]error, runs)
	var wg sync.WaitGroup
	for i := range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], failures[i] = handler.Handle(t.Context(), cmd)
		}()
	}
	wg.Wait()

	// Assert
	seen := make(map[kernel.UUID]kernel.UUID)
	for i := range runs {
		require.NoError(t, failures[i])
		for _, b := range results[i].Batches {
			for _, id := range b.MemberIDs() {
				prev, dup := seen[id]
				require.Falsef(t, dup, "order %s in batches %s and %s", id, prev, b.ID())
				seen[id] = b.ID()
			}
		}
	}
	assert.Len(t, seen, len(pool))
	for _, id := range pool {
		assert.Contains(t, seen, id)
	}
	assert.Empty(t, h.unbatched(t))
}
