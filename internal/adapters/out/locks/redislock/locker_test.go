package redislock_test

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"consolidation/internal/adapters/out/locks/redislock"
	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newLocker(t *testing.T, cfg redislock.Config) (*redislock.Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redislock.NewLocker(client, cfg, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestLocker_LockAndRelease(t *testing.T) {
	locker, mr := newLocker(t, redislock.Config{Wait: time.Second})
	destination := kernel.NewUUID()

	unlock, err := locker.Lock(t.Context(), destination)
	require.NoError(t, err)
	assert.True(t, mr.Exists("consolidation:lock:destination:"+destination.String()))

	unlock()
	assert.False(t, mr.Exists("consolidation:lock:destination:"+destination.String()))
}

func TestLocker_Busy(t *testing.T) {
	locker, _ := newLocker(t, redislock.Config{Wait: 40 * time.Millisecond, PollInterval: 5 * time.Millisecond})
	destination := kernel.NewUUID()

	unlock, err := locker.Lock(t.Context(), destination)
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(t.Context(), destination)
	assert.ErrorIs(t, err, ports.ErrBusy)
}

func TestLocker_ReleaseDoesNotDeleteForeignLock(t *testing.T) {
	locker, mr := newLocker(t, redislock.Config{Wait: time.Second, Lease: time.Second})
	destination := kernel.NewUUID()
	key := "consolidation:lock:destination:" + destination.String()

	unlock, err := locker.Lock(t.Context(), destination)
	require.NoError(t, err)

	// lease expires and another holder takes over
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set(key, "someone-else"))

	unlock()
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestLocker_ExtendsLeaseWhileHeld(t *testing.T) {
	lease := 150 * time.Millisecond
	locker, mr := newLocker(t, redislock.Config{Wait: time.Second, Lease: lease})
	destination := kernel.NewUUID()
	key := "consolidation:lock:destination:" + destination.String()

	unlock, err := locker.Lock(t.Context(), destination)
	require.NoError(t, err)

	// most of the lease has passed, the holder is still working
	mr.FastForward(120 * time.Millisecond)
	require.Less(t, mr.TTL(key), lease/2)

	assert.Eventually(t, func() bool {
		return mr.TTL(key) > lease/2
	}, time.Second, 5*time.Millisecond)
	assert.True(t, mr.Exists(key))

	unlock()
	assert.False(t, mr.Exists(key))
}

func TestLocker_StopsExtendingLostLock(t *testing.T) {
	lease := 60 * time.Millisecond
	locker, mr := newLocker(t, redislock.Config{Wait: time.Second, Lease: lease})
	destination := kernel.NewUUID()
	key := "consolidation:lock:destination:" + destination.String()

	unlock, err := locker.Lock(t.Context(), destination)
	require.NoError(t, err)
	defer unlock()

	require.NoError(t, mr.Set(key, "someone-else"))
	time.Sleep(3 * lease)

	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
	assert.Zero(t, mr.TTL(key))
}

func TestLocker_Serializes(t *testing.T) {
	locker, _ := newLocker(t, redislock.Config{Wait: 5 * time.Second, PollInterval: time.Millisecond})
	destination := kernel.NewUUID()

	var inside, overlaps atomic.Int32
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			unlock, err := locker.Lock(t.Context(), destination)
			if err != nil {
				return err
			}
			defer unlock()
			if inside.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Zero(t, overlaps.Load())
}
