// Package redislock provides a DestinationLocker shared by every engine
// instance through Redis.
//
// A lock is a key holding a random token, set with NX and a lease TTL.
// Waiters poll until the key is free, so unlike memlock there is no strict
// arrival order between instances. Release deletes the key only if it still
// holds the caller's token. While the lock is held the lease is extended
// every third of its length, so a slow operation keeps exclusion; if the
// holder process dies the key expires after one lease.
package redislock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix           = "consolidation:lock:destination:"
	DefaultLease        = 30 * time.Second
	DefaultPollInterval = 15 * time.Millisecond
	releaseTimeout      = 2 * time.Second
)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

var renewScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
end
return 0
`)

type Config struct {
	Wait         time.Duration
	Lease        time.Duration
	PollInterval time.Duration
}

type Locker struct {
	client redis.UniversalClient
	cfg    Config
	logger *slog.Logger
}

func NewLocker(client redis.UniversalClient, cfg Config, logger *slog.Logger) *Locker {
	if cfg.Lease <= 0 {
		cfg.Lease = DefaultLease
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Locker{
		client: client,
		cfg:    cfg,
		logger: logger.With("component", "RedisLocker"),
	}
}

func (l *Locker) Lock(ctx context.Context, destinationOfficeID kernel.UUID) (func(), error) {
	key := keyPrefix + destinationOfficeID.String()
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	var deadline <-chan time.Time
	if l.cfg.Wait > 0 {
		timer := time.NewTimer(l.cfg.Wait)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.cfg.Lease).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		if ok {
			stopRenew := l.keepAlive(key, token)
			return l.unlockFunc(key, token, stopRenew), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ports.ErrBusy
		case <-ticker.C:
		}
	}
}

// keepAlive extends the lease until the returned stop func is called or the
// key no longer holds token.
func (l *Locker) keepAlive(key, token string) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(max(l.cfg.Lease/3, time.Millisecond))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			n, err := renewScript.Run(ctx, l.client, []string{key}, token, l.cfg.Lease.Milliseconds()).Int()
			switch {
			case ctx.Err() != nil:
				return
			case err != nil && !errors.Is(err, redis.Nil):
				l.logger.Warn("failed to extend destination lock", "key", key, "error", err)
			case n == 0:
				l.logger.Warn("destination lock lost before release", "key", key)
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (l *Locker) unlockFunc(key, token string, stopRenew func()) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		stopRenew()

		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		switch {
		case err != nil && !errors.Is(err, redis.Nil):
			l.logger.Error("failed to release destination lock", "key", key, "error", err)
		case n == 0:
			l.logger.Warn("destination lock expired before release", "key", key)
		}
	}
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
