package kafka

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"consolidation/internal/core/application/usecases/commands"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/domain/model/order"
	"consolidation/internal/core/ports"
	"consolidation/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRegistrar struct{ mock.Mock }

func (m *MockRegistrar) Handle(ctx context.Context, cmd commands.RegisterOrderCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	return nil, args.Error(0)
}

type MockStatusChanger struct{ mock.Mock }

func (m *MockStatusChanger) Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	return nil, args.Error(0)
}

// fakeReader serves queued messages and blocks once they run out.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encode(t *testing.T, m OrderMessage) []byte {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return b
}

func TestOrderConsumer_Process(t *testing.T) {
	ctx := t.Context()
	orderID, origin, destination := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	t.Run("should register order", func(t *testing.T) {
		reg := new(MockRegistrar)
		reg.On("Handle", ctx, mock.MatchedBy(func(cmd commands.RegisterOrderCommand) bool {
			return cmd.OrderID().IsEqual(orderID) &&
				cmd.Weight().Grams() == 2500 &&
				cmd.DestinationOfficeID().IsEqual(destination)
		})).Return(nil).Once()

		c := NewOrderConsumer(&fakeReader{}, reg, new(MockStatusChanger), discardLogger())
		err := c.Process(ctx, encode(t, OrderMessage{
			Type:                MessageTypeRegistered,
			OrderID:             orderID.String(),
			TrackingNumber:      "VN0001",
			WeightKg:            2.5,
			OriginOfficeID:      origin.String(),
			DestinationOfficeID: destination.String(),
		}))

		require.NoError(t, err)
		reg.AssertExpectations(t)
	})

	t.Run("should change status", func(t *testing.T) {
		changer := new(MockStatusChanger)
		changer.On("Handle", ctx, mock.MatchedBy(func(cmd commands.ChangeOrderStatusCommand) bool {
			return cmd.Status() == order.PickedUp
		})).Return(nil).Once()

		c := NewOrderConsumer(&fakeReader{}, new(MockRegistrar), changer, discardLogger())
		err := c.Process(ctx, encode(t, OrderMessage{
			Type: MessageTypeStatusChanged, OrderID: orderID.String(), Status: "picked_up",
		}))

		require.NoError(t, err)
		changer.AssertExpectations(t)
	})

	t.Run("should reject unknown type", func(t *testing.T) {
		c := NewOrderConsumer(&fakeReader{}, new(MockRegistrar), new(MockStatusChanger), discardLogger())
		err := c.Process(ctx, encode(t, OrderMessage{Type: "deleted", OrderID: orderID.String()}))
		assert.ErrorIs(t, err, ErrUnknownMessageType)
	})

	t.Run("should reject malformed payload", func(t *testing.T) {
		c := NewOrderConsumer(&fakeReader{}, new(MockRegistrar), new(MockStatusChanger), discardLogger())
		assert.ErrorIs(t, c.Process(ctx, []byte("{")), ErrMalformedMessage)
		assert.ErrorIs(t, c.Process(ctx, encode(t, OrderMessage{Type: MessageTypeRegistered, OrderID: "nope"})), ErrMalformedMessage)
		assert.ErrorIs(t, c.Process(ctx, encode(t, OrderMessage{
			Type: MessageTypeRegistered, OrderID: orderID.String(), OriginOfficeID: "x", DestinationOfficeID: destination.String(),
		})), ErrMalformedMessage)
	})
}

func TestOrderConsumer_Loop(t *testing.T) {
	orderID := kernel.NewUUID()
	good := encode(t, OrderMessage{Type: MessageTypeStatusChanged, OrderID: orderID.String(), Status: "CANCELLED"})

	reader := &fakeReader{queue: []kafka.Message{
		{Offset: 1, Value: []byte("garbage")},
		{Offset: 2, Value: good},
	}}

	changer := new(MockStatusChanger)
	changer.On("Handle", mock.Anything, mock.Anything).Return(ports.ErrBusy).Once()
	changer.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()

	c := NewOrderConsumer(reader, new(MockRegistrar), changer, discardLogger())
	c.retryDelay = time.Millisecond

	c.Start(t.Context())
	assert.Eventually(t, func() bool {
		return len(reader.Committed()) == 2
	}, time.Second, 5*time.Millisecond)
	c.Stop()

	assert.Equal(t, []int64{1, 2}, reader.Committed())
	changer.AssertNumberOfCalls(t, "Handle", 2)
}

func TestOrderConsumer_StopWhileBusy(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{
		Offset: 7,
		Value:  encode(t, OrderMessage{Type: MessageTypeStatusChanged, OrderID: kernel.NewUUID().String(), Status: "DELIVERED"}),
	}}}
	var attempts atomic.Int32
	changer := new(MockStatusChanger)
	changer.On("Handle", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { attempts.Add(1) }).
		Return(ports.ErrBusy)

	c := NewOrderConsumer(reader, new(MockRegistrar), changer, discardLogger())
	c.retryDelay = time.Millisecond
	c.Start(context.Background())

	assert.Eventually(t, func() bool {
		return attempts.Load() > 1
	}, time.Second, time.Millisecond)
	c.Stop()

	assert.Empty(t, reader.Committed())
}

func TestIsUnprocessable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"malformed", fmt.Errorf("%w: eof", ErrMalformedMessage), true},
		{"unknown type", ErrUnknownMessageType, true},
		{"conflicting registration", fmt.Errorf("%w: weight differs", commands.ErrOrderConflict), true},
		{"backward status move", errs.NewValueIsInvalidError("status"), true},
		{"unknown order", errs.NewObjectNotFoundError("order", kernel.NewUUID()), true},
		{"lost connection", fmt.Errorf("update order: %w", driver.ErrBadConn), false},
		{"busy", ports.ErrBusy, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isUnprocessable(tc.err))
		})
	}
}

func TestOrderConsumer_RetriesStoreFailure(t *testing.T) {
	// Arrange
	reader := &fakeReader{queue: []kafka.Message{{
		Offset: 9,
		Value:  encode(t, OrderMessage{Type: MessageTypeStatusChanged, OrderID: kernel.NewUUID().String(), Status: "PICKED_UP"}),
	}}}
	var attempts atomic.Int32
	changer := new(MockStatusChanger)
	changer.On("Handle", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { attempts.Add(1) }).
		Return(driver.ErrBadConn).Twice()
	changer.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()

	c := NewOrderConsumer(reader, new(MockRegistrar), changer, discardLogger())
	c.retryDelay = time.Millisecond

	// Act
	c.Start(t.Context())
	assert.Eventually(t, func() bool {
		return len(reader.Committed()) == 1
	}, time.Second, time.Millisecond)
	c.Stop()

	// Assert
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, []int64{9}, reader.Committed())
	changer.AssertNumberOfCalls(t, "Handle", 3)
}

func TestOrderConsumer_StoreDownKeepsOffset(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{
		Offset: 9,
		Value:  encode(t, OrderMessage{Type: MessageTypeStatusChanged, OrderID: kernel.NewUUID().String(), Status: "PICKED_UP"}),
	}}}
	var attempts atomic.Int32
	changer := new(MockStatusChanger)
	changer.On("Handle", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { attempts.Add(1) }).
		Return(driver.ErrBadConn)

	c := NewOrderConsumer(reader, new(MockRegistrar), changer, discardLogger())
	c.retryDelay = time.Millisecond
	c.Start(context.Background())

	assert.Eventually(t, func() bool {
		return attempts.Load() > 2
	}, time.Second, time.Millisecond)
	c.Stop()

	assert.Empty(t, reader.Committed())
}
