// Package memlock provides an in-process DestinationLocker.
//
// Each destination gets a one-slot channel; waiters queue on the channel send
// and are served in arrival order. Entries are reference counted and dropped
// once nobody holds or waits for them.
package memlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/core/ports"
)

type entry struct {
	slot chan struct{}
	refs int
}

type Locker struct {
	mu    sync.Mutex
	locks map[kernel.UUID]*entry
	wait  time.Duration
}

// NewLocker returns a locker whose Lock gives up with ports.ErrBusy after wait.
// A non-positive wait means wait until ctx is done.
func NewLocker(wait time.Duration) *Locker {
	return &Locker{
		locks: make(map[kernel.UUID]*entry),
		wait:  wait,
	}
}

func (l *Locker) Lock(ctx context.Context, destinationOfficeID kernel.UUID) (func(), error) {
	e := l.acquireRef(destinationOfficeID)

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeoutCause(ctx, l.wait, ports.ErrBusy)
		defer cancel()
	}

	select {
	case e.slot <- struct{}{}:
	case <-waitCtx.Done():
		l.releaseRef(destinationOfficeID, e)
		if cause := context.Cause(waitCtx); errors.Is(cause, ports.ErrBusy) {
			return nil, ports.ErrBusy
		}
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.slot
			l.releaseRef(destinationOfficeID, e)
		})
	}, nil
}

func (l *Locker) acquireRef(key kernel.UUID) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		e = &entry{slot: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) releaseRef(key kernel.UUID, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports tracked destinations; used by tests.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
