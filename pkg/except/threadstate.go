package except

import (
	"runtime"
	"sync"
)

// threadState is S_t from spec.md §3: one per goroutine, holding the stack
// of active frames and the last raised exception. Go has no native
// thread-local storage, so state is keyed by the calling goroutine's id —
// the same runtime.Stack-parsing trick this pack's event loop uses to tell
// "am I running on the loop goroutine" (joeycumines-go-utilpkg/eventloop
// loop.go:getGoroutineID), generalized into a full per-goroutine registry.
type threadState struct {
	top    *Frame
	raised *Exception // last raised record on this goroutine
}

var (
	registryMu sync.Mutex
	registry   = make(map[uint64]*threadState)
)

// goroutineID returns the calling goroutine's runtime id by parsing the
// "goroutine NNN [...]" header runtime.Stack prints. It is not a public Go
// API, but it is the standard library-free way every library in this pack
// that needs goroutine identity gets one.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}

// current returns (creating if necessary) the calling goroutine's thread
// state. Lazily initialized on first use, per spec.md §4.1.
func current() *threadState {
	id := goroutineID()

	registryMu.Lock()
	ts, ok := registry[id]
	if !ok {
		ts = &threadState{}
		registry[id] = ts
	}
	registryMu.Unlock()

	return ts
}

// Scavenge drops thread-state entries for goroutines that are no longer
// live and whose frame stack is empty, bounding the registry's memory use
// across long-running processes that spawn many short-lived goroutines
// through Try. It is safe (if conservative) to call from anywhere at any
// time: entries with a non-empty frame stack are never dropped, and a
// goroutine that calls Try again after being scavenged simply gets a fresh
// state, identical to its first-ever call.
//
// liveIDs reports which goroutine ids are still running; callers without a
// cheap way to enumerate live goroutines can pass nil to skip liveness
// filtering and only reclaim entries that were already empty.
func Scavenge(liveIDs map[uint64]bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for id, ts := range registry {
		if ts.top != nil {
			continue
		}
		if liveIDs != nil && liveIDs[id] {
			continue
		}
		delete(registry, id)
	}
}

// frameTop returns the calling goroutine's innermost active frame, or nil.
func frameTop() *Frame {
	return current().top
}

// CurrentFrame returns the calling goroutine's innermost active frame. It
// is fatal to call outside any Try region, matching every other
// frame-scoped operation (Protect, Rethrow) — it exists so other packages
// in this module (pkg/arena) can bind frame-scoped resources without
// pkg/except needing to know about them.
func CurrentFrame() *Frame {
	return requireFrame("CurrentFrame")
}

// pushFrame pushes f onto the calling goroutine's frame stack as the new
// top, linking it to the previous top as parent.
func pushFrame(f *Frame) {
	ts := current()
	f.parent = ts.top
	ts.top = f
}

// popFrame pops the calling goroutine's top frame. Popping a frame that is
// not the top is a programming error and is fatal, per spec.md §4.1.
func popFrame(f *Frame) {
	ts := current()
	if ts.top != f {
		fatal("except: pop of non-top frame")
	}
	ts.top = f.parent
}

// requireFrame returns the calling goroutine's current frame, terminating
// fatally (op names the violating operation) if there is none. Used by
// operations that are only meaningful inside a protected region.
func requireFrame(op string) *Frame {
	f := frameTop()
	if f == nil {
		fatal("except: " + op + " called outside any Try region")
	}
	return f
}

// setRaised records e as the last exception raised on the calling
// goroutine.
func setRaised(e *Exception) {
	current().raised = e
}

// getRaised returns the last exception raised on the calling goroutine, or
// nil.
func getRaised() *Exception {
	return current().raised
}
