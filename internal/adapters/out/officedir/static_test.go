package officedir_test

import (
	"testing"

	"consolidation/internal/adapters/out/officedir"
	"consolidation/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Exists(t *testing.T) {
	known := kernel.NewUUID()

	t.Run("should accept listed offices only", func(t *testing.T) {
		dir := officedir.NewStatic([]kernel.UUID{known})

		ok, err := dir.Exists(t.Context(), known)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = dir.Exists(t.Context(), kernel.NewUUID())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should accept any id when empty", func(t *testing.T) {
		ok, err := officedir.NewStatic(nil).Exists(t.Context(), kernel.NewUUID())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("should reject zero id", func(t *testing.T) {
		ok, err := officedir.NewStatic(nil).Exists(t.Context(), kernel.UUID{})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
