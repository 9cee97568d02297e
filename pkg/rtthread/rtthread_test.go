package rtthread

import (
	"context"
	"testing"
	"time"
)

func TestGoJoinReturnsAfterCompletion(t *testing.T) {
	done := false
	th := Go(func() {
		Sleep(10 * time.Millisecond)
		done = true
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	status, err := th.Join(ctx)
	if status != StatusOK {
		t.Errorf("expected StatusOK, got %v (err=%v)", status, err)
	}
	if !done {
		t.Error("expected the thread body to have completed before Join returned")
	}
}

func TestJoinTimesOut(t *testing.T) {
	th := Go(func() {
		Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	status, err := th.Join(ctx)
	if status != StatusTimeout {
		t.Errorf("expected StatusTimeout, got %v (err=%v)", status, err)
	}
}

func TestJoinPropagatesPanic(t *testing.T) {
	th := Go(func() {
		panic("boom")
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	status, err := th.Join(ctx)
	if status != StatusError {
		t.Errorf("expected StatusError, got %v", status)
	}
	if err == nil {
		t.Fatal("expected a non-nil error describing the panic")
	}
	var pe *PanicError
	if !asPanicError(err, &pe) {
		t.Fatalf("expected a *PanicError, got %T: %v", err, err)
	}
}

func asPanicError(err error, target **PanicError) bool {
	pe, ok := err.(*PanicError)
	if ok {
		*target = pe
	}
	return ok
}

func TestDoubleJoinReturnsErrAlreadyJoined(t *testing.T) {
	th := Go(func() {})
	ctx := context.Background()

	if _, err := th.Join(ctx); err != nil {
		t.Fatalf("first Join: unexpected error %v", err)
	}
	if _, err := th.Join(ctx); err != ErrAlreadyJoined {
		t.Errorf("second Join: expected ErrAlreadyJoined, got %v", err)
	}
}

func TestMutexMutualExclusion(t *testing.T) {
	m := NewMutex()
	counter := 0
	const n = 100

	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			m.Lock()
			defer m.Unlock()
			counter++
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	if counter != n {
		t.Errorf("expected counter == %d, got %d", n, counter)
	}
}

func TestRecursiveMutexReentrantLock(t *testing.T) {
	m := NewRecursiveMutex()
	if status := m.Lock(); status != StatusOK {
		t.Fatalf("first Lock: %v", status)
	}
	if status := m.Lock(); status != StatusOK {
		t.Fatalf("reentrant Lock: %v", status)
	}
	m.Unlock()
	m.Unlock()

	if status := m.TryLock(); status != StatusOK {
		t.Errorf("expected TryLock to succeed once fully unlocked, got %v", status)
	}
	m.Unlock()
}

func TestMutexTimedLockTimesOutWhileHeld(t *testing.T) {
	m := NewMutex()
	m.Lock()
	defer m.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if status := m.TimedLock(ctx); status != StatusTimeout {
		t.Errorf("expected StatusTimeout, got %v", status)
	}
}

func TestCondSignalWakesWaiter(t *testing.T) {
	m := NewMutex()
	c := NewCond(m)
	ready := false
	woke := make(chan struct{})

	go func() {
		m.Lock()
		for !ready {
			c.Wait()
		}
		m.Unlock()
		close(woke)
	}()

	time.Sleep(5 * time.Millisecond)
	m.Lock()
	ready = true
	m.Unlock()
	c.Signal()

	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("waiter was never woken")
	}
}

func TestCondTimedWaitReportsTimeout(t *testing.T) {
	m := NewMutex()
	c := NewCond(m)

	m.Lock()
	defer m.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if status := c.TimedWait(ctx); status != StatusTimeout {
		t.Errorf("expected StatusTimeout, got %v", status)
	}
}

func TestTSSIsPerGoroutine(t *testing.T) {
	slot := NewTSS[int]()
	slot.Set(1)

	results := make(chan bool, 1)
	go func() {
		_, ok := slot.Get()
		results <- ok
	}()

	if ok := <-results; ok {
		t.Error("expected the TSS slot to be unset on a different goroutine")
	}

	v, ok := slot.Get()
	if !ok || v != 1 {
		t.Errorf("expected (1, true) on the setting goroutine, got (%v, %v)", v, ok)
	}

	slot.Delete()
	if _, ok := slot.Get(); ok {
		t.Error("expected Get to report unset after Delete")
	}
}
