package order_test

import (
	"testing"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	weight, err := kernel.NewWeightFromKg(12.5)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), "VN123456789", weight, kernel.NewUUID(), kernel.NewUUID(), time.Now())
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	weight, _ := kernel.NewWeightFromKg(3)
	createdAt := time.Date(2026, 10, 1, 8, 0, 0, 0, time.FixedZone("ICT", 7*3600))

	t.Run("should create eligible order", func(t *testing.T) {
		id := kernel.NewUUID()

		o, err := order.NewOrder(id, " VN1 ", weight, kernel.NewUUID(), kernel.NewUUID(), createdAt)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, "VN1", o.TrackingNumber())
		assert.Equal(t, order.Created, o.Status())
		assert.Nil(t, o.BatchID())
		assert.True(t, o.IsEligible())
		assert.Equal(t, time.UTC, o.CreatedAt().Location())
	})

	t.Run("should aggregate validation errors", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, "", kernel.ZeroWeight(), kernel.UUID{}, kernel.NewUUID(), time.Time{})

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "trackingNumber")
		assert.Contains(t, err.Error(), "weight is invalid")
		assert.Contains(t, err.Error(), "createdAt")
	})
}

func TestOrder_Validate(t *testing.T) {
	var nilOrder *order.Order
	assert.Equal(t, order.ErrOrderIsNotConstructed, nilOrder.Validate())

	var zero order.Order
	assert.Equal(t, order.ErrOrderIsNotConstructed, zero.Validate())
}

func TestOrder_AttachToBatch(t *testing.T) {
	t.Run("should attach eligible order", func(t *testing.T) {
		o := newTestOrder(t)
		batchID := kernel.NewUUID()

		require.NoError(t, o.AttachToBatch(batchID))

		require.NotNil(t, o.BatchID())
		assert.True(t, o.BatchID().IsEqual(batchID))
		assert.False(t, o.IsEligible())
	})

	t.Run("should reject second batch", func(t *testing.T) {
		o := newTestOrder(t)
		first := kernel.NewUUID()
		require.NoError(t, o.AttachToBatch(first))

		err := o.AttachToBatch(kernel.NewUUID())

		require.ErrorIs(t, err, order.ErrAlreadyBatched)
		assert.True(t, o.BatchID().IsEqual(first))
	})

	t.Run("should reject picked up order", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.ChangeStatus(order.PickedUp))

		err := o.AttachToBatch(kernel.NewUUID())

		require.ErrorIs(t, err, order.ErrNotEligible)
		assert.Nil(t, o.BatchID())
	})

	t.Run("should reject invalid batch id", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.AttachToBatch(kernel.UUID{})

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})
}

func TestOrder_DetachFromBatch(t *testing.T) {
	o := newTestOrder(t)
	batchID := kernel.NewUUID()
	require.NoError(t, o.AttachToBatch(batchID))

	require.ErrorIs(t, o.DetachFromBatch(kernel.NewUUID()), order.ErrNotInBatch)
	require.NoError(t, o.DetachFromBatch(batchID))
	assert.Nil(t, o.BatchID())
	require.ErrorIs(t, o.DetachFromBatch(batchID), order.ErrNotInBatch)
}

func TestOrder_BatchIDIsCopied(t *testing.T) {
	o := newTestOrder(t)
	require.NoError(t, o.AttachToBatch(kernel.NewUUID()))

	got := o.BatchID()
	*got = kernel.NewUUID()

	assert.False(t, o.BatchID().IsEqual(*got))
}

func TestStatus_ChangeTo(t *testing.T) {
	tests := []struct {
		from, to order.Status
		ok       bool
	}{
		{order.Created, order.PickedUp, true},
		{order.Created, order.Delivered, true},
		{order.InTransit, order.AtDestinationOffice, true},
		{order.InTransit, order.Cancelled, true},
		{order.InTransit, order.Created, false},
		{order.Delivered, order.Cancelled, false},
		{order.Cancelled, order.Created, false},
		{order.Created, order.Unknown, false},
	}

	for _, tc := range tests {
		t.Run(tc.from.String()+"->"+tc.to.String(), func(t *testing.T) {
			got, err := tc.from.ChangeTo(tc.to)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, got)
				return
			}
			require.Error(t, err)
			assert.IsType(t, &errs.ValueIsInvalidError{}, err)
		})
	}
}

func TestParseStatus(t *testing.T) {
	s, err := order.ParseStatus("picked_up")
	require.NoError(t, err)
	assert.Equal(t, order.PickedUp, s)

	_, err = order.ParseStatus("UNKNOWN")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = order.ParseStatus("lost")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
