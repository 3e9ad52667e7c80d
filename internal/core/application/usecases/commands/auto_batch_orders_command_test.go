package commands_test

import (
	"testing"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAutoBatchOrdersCommand(t *testing.T) {
	t.Run("all optional", func(t *testing.T) {
		cmd, err := commands.NewAutoBatchOrdersCommand(0, nil, nil)

		require.NoError(t, err)
		assert.True(t, cmd.MaxWeight().IsZero())
		assert.Nil(t, cmd.OriginOfficeID())
		assert.Nil(t, cmd.DestinationOfficeID())
	})

	t.Run("scoped", func(t *testing.T) {
		origin, destination := kernel.NewUUID(), kernel.NewUUID()

		cmd, err := commands.NewAutoBatchOrdersCommand(12.5, &origin, &destination)

		require.NoError(t, err)
		assert.Equal(t, int64(12_500), cmd.MaxWeight().Grams())
		require.NotNil(t, cmd.OriginOfficeID())
		assert.Equal(t, origin, *cmd.OriginOfficeID())
		assert.Equal(t, destination, *cmd.DestinationOfficeID())

		destination = kernel.NewUUID()
		assert.NotEqual(t, destination, *cmd.DestinationOfficeID())
	})

	t.Run("rejects negative weight and zero office ids", func(t *testing.T) {
		zero := kernel.UUID{}

		_, err := commands.NewAutoBatchOrdersCommand(-1, &zero, nil)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var cmd commands.AutoBatchOrdersCommand
		assert.ErrorIs(t, cmd.Validate(), commands.ErrAutoBatchOrdersCommandIsNotConstructed)
	})
}
