package memlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestLocker_SerializesSameDestination(t *testing.T) {
	l := NewLocker(time.Second)
	destination := kernel.NewUUID()

	var inside, maxInside atomic.Int32
	var g errgroup.Group
	for range 20 {
		g.Go(func() error {
			unlock, err := l.Lock(t.Context(), destination)
			if err != nil {
				return err
			}
			defer unlock()

			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside.Load())
	assert.Zero(t, l.size())
}

func TestLocker_DifferentDestinationsDoNotBlock(t *testing.T) {
	l := NewLocker(50 * time.Millisecond)

	unlockA, err := l.Lock(t.Context(), kernel.NewUUID())
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := l.Lock(t.Context(), kernel.NewUUID())
	require.NoError(t, err)
	unlockB()
}

func TestLocker_TimesOutWithBusy(t *testing.T) {
	l := NewLocker(20 * time.Millisecond)
	destination := kernel.NewUUID()

	unlock, err := l.Lock(t.Context(), destination)
	require.NoError(t, err)

	_, err = l.Lock(t.Context(), destination)
	require.ErrorIs(t, err, ports.ErrBusy)

	unlock()
	unlock()

	again, err := l.Lock(t.Context(), destination)
	require.NoError(t, err)
	again()
	assert.Zero(t, l.size())
}

func TestLocker_ContextCancelled(t *testing.T) {
	l := NewLocker(0)
	destination := kernel.NewUUID()

	unlock, err := l.Lock(t.Context(), destination)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(t.Context())
	var wg sync.WaitGroup
	wg.Add(1)
	var lockErr error
	go func() {
		defer wg.Done()
		_, lockErr = l.Lock(ctx, destination)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	wg.Wait()

	assert.ErrorIs(t, lockErr, context.Canceled)
}
