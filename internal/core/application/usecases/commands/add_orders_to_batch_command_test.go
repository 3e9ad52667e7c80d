package commands_test

import (
	"testing"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddOrdersToBatchCommand(t *testing.T) {
	batchID := kernel.NewUUID()
	id := kernel.NewUUID()

	t.Run("valid", func(t *testing.T) {
		cmd, err := commands.NewAddOrdersToBatchCommand(batchID, []kernel.UUID{id})

		require.NoError(t, err)
		assert.NoError(t, cmd.Validate())
		assert.Equal(t, batchID, cmd.BatchID())
		assert.Equal(t, []kernel.UUID{id}, cmd.OrderIDs())
	})

	t.Run("requires batch", func(t *testing.T) {
		_, err := commands.NewAddOrdersToBatchCommand(kernel.UUID{}, []kernel.UUID{id})
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("requires at least one order", func(t *testing.T) {
		_, err := commands.NewAddOrdersToBatchCommand(batchID, nil)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := commands.NewAddOrdersToBatchCommand(batchID, []kernel.UUID{id, id})
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var cmd commands.AddOrdersToBatchCommand
		assert.ErrorIs(t, cmd.Validate(), commands.ErrAddOrdersToBatchCommandIsNotConstructed)
	})
}

func TestNewRemoveOrderFromBatchCommand(t *testing.T) {
	batchID, orderID := kernel.NewUUID(), kernel.NewUUID()

	cmd, err := commands.NewRemoveOrderFromBatchCommand(batchID, orderID)
	require.NoError(t, err)
	assert.Equal(t, batchID, cmd.BatchID())
	assert.Equal(t, orderID, cmd.OrderID())

	_, err = commands.NewRemoveOrderFromBatchCommand(kernel.UUID{}, kernel.UUID{})
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	var zero commands.RemoveOrderFromBatchCommand
	assert.ErrorIs(t, zero.Validate(), commands.ErrRemoveOrderFromBatchCommandIsNotConstructed)
}
