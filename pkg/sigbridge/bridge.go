// Package sigbridge turns hardware-signal-shaped failures into catchable
// pkg/except exceptions inside a TrySignal region, and lets a goroutine
// opt in to observing asynchronous signals (SIGINT, SIGTERM, …) as
// exceptions too. Go's runtime already intercepts the synchronous faults
// (SIGSEGV, SIGBUS, SIGFPE-shaped divide-by-zero, SIGILL) as panics; this
// package's job is narrower than the source's: reclassify those panics
// into pkg/except's descriptor taxonomy, restore whatever fault-handling
// mode was active before the region, and do it without touching the arena
// free list or any condition variable from the recovery path itself
// (spec.md §4.5 safety contract). Like any other throw, the recovery path
// does heap-allocate the exception record and take pkg/except's
// per-goroutine state lock.
package sigbridge

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/zelang-dev/goexc/pkg/except"
)

// TrySignal begins a protected region in which synchronous hardware
// faults raised while running body are converted into the matching
// pkg/except descriptor (except.SigSegv, except.SigFpe, …) instead of
// crashing the process. It returns the same fluent builder pkg/except.Try
// does — chain Catch/CatchAny/Finally and call End to run it.
//
// TrySignal composes with except.Try rather than duplicating its
// dispatch: a fault becomes an ordinary except.Throw from inside the
// protected body, so the rest of the TRY/CATCH/FINALLY/ENDTRY machinery
// (finalizer draining, double-rethrow, uncaught diagnostics) is identical
// to a ordinary Try region.
func TrySignal(body func()) *except.TryBuilder {
	return except.Try(func() {
		prev := debug.SetPanicOnFault(true)
		except.Protect(func(ctx any) {
			debug.SetPanicOnFault(ctx.(bool))
		}, prev)

		ensureAltStack()

		runFaultTranslated(body)
	})
}

// runFaultTranslated runs body, reclassifying any recovered runtime.Error
// into the matching signal descriptor before re-panicking so the
// enclosing except.Try dispatch loop sees a normal *except.Exception.
// Anything that is not a runtime.Error (including an *except.Exception
// already raised by a nested except.Throw) passes through unchanged.
func runFaultTranslated(body func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		rerr, ok := r.(runtime.Error)
		if !ok {
			panic(r)
		}
		except.ThrowMsg(classify(rerr), "%s", rerr.Error())
	}()
	body()
}

// classify maps a recovered runtime fault to the spec.md §4.5 descriptor
// it most resembles. Go's runtime does not expose the originating signal
// number to recovered code, only an error string, so this is a best-effort
// text match over the messages the runtime is documented to produce for
// memory faults and integer division.
func classify(rerr runtime.Error) *except.Descriptor {
	msg := rerr.Error()
	switch {
	case strings.Contains(msg, "invalid memory address"), strings.Contains(msg, "nil pointer dereference"):
		return except.SigSegv
	case strings.Contains(msg, "divide by zero"):
		return except.SigFpe
	case strings.Contains(msg, "misaligned"):
		return except.SigBus
	default:
		return except.SigIll
	}
}
