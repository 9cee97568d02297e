package rtthread

import (
	"context"
	"sync"
	"time"
)

// Mutex is the shim's mutex_t: a plain or recursive mutual-exclusion lock
// with Lock/TryLock/TimedLock, each returning a Status so a timed
// acquisition can be distinguished from an ordinary failure (spec.md §6),
// and Unlock.
//
// A plain Mutex is just a sync.Mutex underneath; a recursive Mutex tracks
// the owning goroutine and a depth counter so the same goroutine can lock
// it repeatedly, mirroring PTHREAD_MUTEX_RECURSIVE. Go's sync.Mutex has no
// native recursive mode (by design — recursive locking usually signals a
// design problem), so the recursive variant is implemented on top of a
// plain mutex guarding the owner/depth bookkeeping, the same pattern the
// teacher's DefaultAsyncRuntime (pkg/runtime/async.go) uses to layer
// richer semantics (external-op counting) over a bare sync.Mutex.
type Mutex struct {
	recursive bool

	mu sync.Mutex

	// recursive-mode bookkeeping, guarded by mu
	owner uint64
	depth int
	held  bool
}

// NewMutex creates a plain (non-recursive) mutex.
func NewMutex() *Mutex { return &Mutex{} }

// NewRecursiveMutex creates a mutex that the same goroutine may lock
// multiple times, unlocking the same number of times to release it.
func NewRecursiveMutex() *Mutex { return &Mutex{recursive: true} }

// Lock blocks until the mutex is acquired.
func (m *Mutex) Lock() Status {
	if !m.recursive {
		m.mu.Lock()
		return StatusOK
	}
	return m.lockRecursive(nil)
}

// TryLock acquires the mutex without blocking, returning StatusBusy if it
// is already held (by another goroutine, for a recursive mutex).
func (m *Mutex) TryLock() Status {
	if !m.recursive {
		if m.mu.TryLock() {
			return StatusOK
		}
		return StatusBusy
	}
	id := goroutineID()
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.held {
		m.held, m.owner, m.depth = true, id, 1
		return StatusOK
	}
	if m.owner == id {
		m.depth++
		return StatusOK
	}
	return StatusBusy
}

// TimedLock blocks until the mutex is acquired or ctx is done, whichever
// comes first — the Go-native replacement for an absolute-deadline
// pthread_mutex_timedlock (spec.md §5/§6): a context.Context carries the
// deadline the way every blocking call in this pack's examples already
// expresses one (e.g. pkg/modules/worker_pool.go's context.WithCancel).
func (m *Mutex) TimedLock(ctx context.Context) Status {
	if !m.recursive {
		return timedAcquire(ctx, m.mu.TryLock)
	}
	return m.lockRecursive(ctx)
}

func (m *Mutex) lockRecursive(ctx context.Context) Status {
	id := goroutineID()
	tryOnce := func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.held {
			m.held, m.owner, m.depth = true, id, 1
			return true
		}
		if m.owner == id {
			m.depth++
			return true
		}
		return false
	}
	if ctx == nil {
		for !tryOnce() {
			Yield()
		}
		return StatusOK
	}
	return timedAcquire(ctx, tryOnce)
}

// timedAcquire polls try with a short backoff until it succeeds or ctx is
// done. Go offers no primitive to wait on a sync.Mutex with a deadline, so
// a bounded poll loop is the idiomatic fallback (the same shape as
// context-bounded retries throughout this pack, e.g.
// pkg/runtime/async.go's condition-variable wait combined with an
// external caller-supplied context elsewhere in the module).
func timedAcquire(ctx context.Context, try func() bool) Status {
	if try() {
		return StatusOK
	}
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return StatusTimeout
		case <-t.C:
			if try() {
				return StatusOK
			}
		}
	}
}

// Unlock releases the mutex. For a recursive mutex this decrements the
// depth counter and only actually releases at depth zero.
func (m *Mutex) Unlock() {
	if !m.recursive {
		m.mu.Unlock()
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.depth--
	if m.depth <= 0 {
		m.held = false
		m.depth = 0
	}
}
