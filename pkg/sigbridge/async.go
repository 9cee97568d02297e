package sigbridge

import (
	"os"
	"os/signal"
	"sync"

	"github.com/zelang-dev/goexc/pkg/except"
)

// watcher holds the state of one InstallAsync call: a channel-based
// listener loop, grounded directly on
// joeycumines-go-utilpkg/prompt/signal_common.go's handleExitSignals
// (signal.Notify into a buffered channel, drained by a select loop that
// also watches a stop channel so the listener can be torn down).
type watcher struct {
	mu      sync.Mutex
	pending *except.Exception
	stop    chan struct{}
	sigCh   chan os.Signal
}

var defaultWatcher *watcher

// signalDescriptors is populated per-platform in init_unix.go / init_other.go.
var signalDescriptors = map[os.Signal]*except.Descriptor{}

// InstallAsync starts (or restarts, replacing any previous listener)
// a background goroutine that converts delivery of any of sigs into a
// pending exception observable via Pending. The watcher never throws,
// neither on the caller's goroutine nor on its own: each delivered signal
// replaces the pending exception, and a signal that no caller collects
// through Pending has no further effect. Callers that want the signal
// observed synchronously must poll Pending (e.g. once per iteration of a
// long-running loop).
func InstallAsync(sigs ...os.Signal) {
	StopAsync()

	w := &watcher{
		stop:  make(chan struct{}),
		sigCh: make(chan os.Signal, 128),
	}
	defaultWatcher = w

	signal.Notify(w.sigCh, sigs...)

	go func() {
		defer signal.Stop(w.sigCh)
		for {
			select {
			case <-w.stop:
				return
			case s := <-w.sigCh:
				d, ok := signalDescriptors[s]
				if !ok {
					d = except.SigTerm
				}
				w.mu.Lock()
				w.pending = &except.Exception{Descriptor: d, Message: d.DefaultMessage}
				w.mu.Unlock()
			}
		}
	}()
}

// StopAsync tears down the current InstallAsync listener, if any.
func StopAsync() {
	if defaultWatcher == nil {
		return
	}
	close(defaultWatcher.stop)
	defaultWatcher = nil
}

// Pending returns (and clears) the most recently observed asynchronous
// signal as an exception, or nil if none is pending. Callers typically
// check this once per loop iteration and call except.Throw(e.Descriptor)
// from their own goroutine's Try region to act on it there, which is the
// only way a signal delivered asynchronously can become catchable without
// violating the engine's strictly-goroutine-local propagation rule.
func Pending() *except.Exception {
	if defaultWatcher == nil {
		return nil
	}
	defaultWatcher.mu.Lock()
	defer defaultWatcher.mu.Unlock()
	e := defaultWatcher.pending
	defaultWatcher.pending = nil
	return e
}
