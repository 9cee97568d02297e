package rtthread

import (
	"context"
	"sync"
)

// Cond is the shim's condition variable, built directly on sync.Cond the
// way the teacher's DefaultAsyncRuntime (pkg/runtime/async.go) pairs a
// sync.Mutex with a sync.Cond for its BeginExternalOp/EndExternalOp/
// WaitForExternalOp trio. TimedWait adds the absolute-deadline wait
// spec.md §6 requires (cond_timedwait) on top of sync.Cond, which has no
// native timeout, by racing the wait against ctx.Done() on a helper
// goroutine — the same trick async.go's WaitForExternalOp would need if
// it had to support cancellation.
type Cond struct {
	L *Mutex
	c *sync.Cond
}

// NewCond creates a condition variable associated with the plain (not
// recursive) mutex m. Like sync.Cond, L must already be locked by the
// caller when Wait/TimedWait are called; Signal and Broadcast may be
// called with or without L held.
func NewCond(m *Mutex) *Cond {
	return &Cond{L: m, c: sync.NewCond(&m.mu)}
}

// Wait atomically unlocks L and suspends the calling goroutine until
// Signal or Broadcast wakes it, then relocks L before returning, exactly
// like sync.Cond.Wait / pthread_cond_wait.
func (c *Cond) Wait() {
	c.c.Wait()
}

// TimedWait is Wait bounded by ctx: if ctx is done before a Signal or
// Broadcast wakes this waiter, TimedWait relocks L and returns
// StatusTimeout. Because sync.Cond offers no cancellable wait, the
// deadline is enforced by a helper goroutine that calls Broadcast when ctx
// expires, and the woken goroutine distinguishes "really signaled" from
// "woken by the deadline" with the timedOut flag below.
func (c *Cond) TimedWait(ctx context.Context) Status {
	if ctx.Err() != nil {
		return StatusTimeout
	}

	stop := make(chan struct{})
	timedOut := false

	go func() {
		select {
		case <-ctx.Done():
			c.L.mu.Lock()
			timedOut = true
			c.L.mu.Unlock()
			c.c.Broadcast()
		case <-stop:
		}
	}()

	c.c.Wait()
	close(stop)

	if timedOut && ctx.Err() != nil {
		return StatusTimeout
	}
	return StatusOK
}

// Signal wakes one goroutine waiting on c, if any.
func (c *Cond) Signal() { c.c.Signal() }

// Broadcast wakes every goroutine waiting on c.
func (c *Cond) Broadcast() { c.c.Broadcast() }
