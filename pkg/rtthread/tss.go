package rtthread

import "sync"

// TSS is generic thread-specific storage: the shim's tss_create/get/set,
// keyed by goroutine id the same way pkg/except's frame registry is (see
// pkg/except/threadstate.go) — Go has no native goroutine-local storage,
// so every TLS-shaped facility in this module is built on the same
// mutex-guarded, goroutine-id-keyed map.
type TSS[T any] struct {
	mu     sync.Mutex
	values map[uint64]T
}

// NewTSS creates an empty thread-specific slot.
func NewTSS[T any]() *TSS[T] {
	return &TSS[T]{values: make(map[uint64]T)}
}

// Get returns the calling goroutine's stored value and whether one has
// been set (the zero value and false otherwise).
func (t *TSS[T]) Get() (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[goroutineID()]
	return v, ok
}

// Set stores v for the calling goroutine.
func (t *TSS[T]) Set(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[goroutineID()] = v
}

// Delete removes the calling goroutine's stored value, if any — the
// shim's tss_delete, also useful for letting a long-lived worker goroutine
// release a slot between units of work.
func (t *TSS[T]) Delete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, goroutineID())
}
