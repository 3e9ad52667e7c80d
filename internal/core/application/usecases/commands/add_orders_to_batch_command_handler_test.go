package commands_test

import (
	"testing"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/batch"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addOrders(t *testing.T, h *harness, batchID kernel.UUID, ids ...kernel.UUID) (*batch.Batch, error) {
	t.Helper()
	cmd, err := commands.NewAddOrdersToBatchCommand(batchID, ids)
	require.NoError(t, err)
	return commands.NewAddOrdersToBatchCommandHandler(h.coordinator).Handle(t.Context(), cmd)
}

func removeOrder(t *testing.T, h *harness, batchID, orderID kernel.UUID) (*batch.Batch, error) {
	t.Helper()
	cmd, err := commands.NewRemoveOrderFromBatchCommand(batchID, orderID)
	require.NoError(t, err)
	return commands.NewRemoveOrderFromBatchCommandHandler(h.coordinator).Handle(t.Context(), cmd)
}

func TestAddOrdersToBatchCommandHandler_Success(t *testing.T) {
	// Arrange
	h := newHarness()
	first := h.seedOrders(t, 3)
	b := h.createBatch(t, 10, first...)
	more := h.seedOrders(t, 2, 5)

	// Act
	updated, err := addOrders(t, h, b.ID(), idsOf(more)...)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, updated.OrderCount())
	assert.Equal(t, int64(10_000), updated.TotalWeight().Grams())
	assert.True(t, updated.RemainingCapacity().IsZero())

	stored := h.batch(t, b.ID())
	assert.ElementsMatch(t, append(idsOf(first), idsOf(more)...), stored.MemberIDs())
	assert.Empty(t, h.unbatched(t))
}

func TestAddOrdersToBatchCommandHandler_SealedBatch(t *testing.T) {
	// Arrange
	h := newHarness()
	b := h.createBatch(t, 10, h.seedOrders(t, 1)...)
	h.changeStatus(t, b.ID(), commands.ActionSeal)
	extra := h.seedOrders(t, 1)

	// Act
	_, err := addOrders(t, h, b.ID(), extra[0].ID())

	// Assert
	require.ErrorIs(t, err, batch.ErrBatchNotOpen)
	assert.Nil(t, h.order(t, extra[0].ID()).BatchID())
	assert.Equal(t, 1, h.batch(t, b.ID()).OrderCount())
}

func TestAddOrdersToBatchCommandHandler_AllOrNothing(t *testing.T) {
	// Arrange
	h := newHarness()
	b := h.createBatch(t, 10)
	orders := h.seedOrders(t, 4, 4, 4)

	// Act
	_, err := addOrders(t, h, b.ID(), idsOf(orders)...)

	// Assert
	require.ErrorIs(t, err, batch.ErrCapacityExceeded)
	stored := h.batch(t, b.ID())
	assert.Equal(t, 0, stored.OrderCount())
	assert.True(t, stored.TotalWeight().IsZero())
	assert.Len(t, h.unbatched(t), 3)
}

func TestAddOrdersToBatchCommandHandler_UnknownBatch(t *testing.T) {
	h := newHarness()

	_, err := addOrders(t, h, kernel.NewUUID(), h.seedOrders(t, 1)[0].ID())

	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestRemoveOrderFromBatchCommandHandler_Success(t *testing.T) {
	// Arrange
	h := newHarness()
	orders := h.seedOrders(t, 3, 4)
	b := h.createBatch(t, 10, orders...)

	// Act
	updated, err := removeOrder(t, h, b.ID(), orders[0].ID())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, updated.OrderCount())
	assert.Equal(t, int64(4_000), updated.TotalWeight().Grams())
	assert.Nil(t, h.order(t, orders[0].ID()).BatchID())
	assert.Equal(t, []kernel.UUID{orders[1].ID()}, h.batch(t, b.ID()).MemberIDs())

	unbatched := h.unbatched(t)
	require.Len(t, unbatched, 1)
	assert.Equal(t, orders[0].ID(), unbatched[0].ID)
}

func TestRemoveOrderFromBatchCommandHandler_Rejections(t *testing.T) {
	t.Run("order is not a member", func(t *testing.T) {
		h := newHarness()
		b := h.createBatch(t, 10, h.seedOrders(t, 1)...)
		stranger := h.seedOrders(t, 1)[0]

		_, err := removeOrder(t, h, b.ID(), stranger.ID())

		assert.ErrorIs(t, err, batch.ErrOrderNotInBatch)
	})

	t.Run("order does not exist", func(t *testing.T) {
		h := newHarness()
		b := h.createBatch(t, 10, h.seedOrders(t, 1)...)

		_, err := removeOrder(t, h, b.ID(), kernel.NewUUID())

		assert.ErrorIs(t, err, batch.ErrOrderNotInBatch)
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("batch is sealed", func(t *testing.T) {
		h := newHarness()
		orders := h.seedOrders(t, 1)
		b := h.createBatch(t, 10, orders...)
		h.changeStatus(t, b.ID(), commands.ActionSeal)

		_, err := removeOrder(t, h, b.ID(), orders[0].ID())

		require.ErrorIs(t, err, batch.ErrBatchNotOpen)
		assert.NotNil(t, h.order(t, orders[0].ID()).BatchID())
	})
}
