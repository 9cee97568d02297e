package except

import (
	"fmt"
	"os"
	"runtime"
	"sync"
)

// uncaughtHandler, if set, is called instead of the default stderr
// diagnostic + os.Exit(1) when an exception escapes every frame on a
// goroutine. It is a narrow, additive extension point (SPEC_FULL.md
// "Diagnostics hook") — it does not change propagation semantics, only
// where the final diagnostic goes.
var (
	uncaughtMu      sync.Mutex
	uncaughtHandler func(*Exception)
)

// SetUncaughtHandler installs fn to run in place of the default
// "Uncaught <name> at <file>:<line>: <message>" stderr diagnostic when an
// exception reaches no frame at all. Passing nil restores the default.
// fn is responsible for terminating the process if termination is still
// desired; the engine does not call os.Exit after invoking a custom
// handler.
func SetUncaughtHandler(fn func(*Exception)) {
	uncaughtMu.Lock()
	defer uncaughtMu.Unlock()
	uncaughtHandler = fn
}

// Throw raises a new exception with descriptor d and its default message,
// from the caller's file:line.
func Throw(d *Descriptor) {
	throw(newException(d, d.DefaultMessage, nil, 2))
}

// ThrowMsg raises a new exception with descriptor d and a formatted
// message, from the caller's file:line.
func ThrowMsg(d *Descriptor, format string, args ...any) {
	throw(newException(d, fmt.Sprintf(format, args...), nil, 2))
}

// ThrowData is like ThrowMsg but additionally attaches an opaque payload,
// retrievable from the caught *Exception's Data field.
func ThrowData(d *Descriptor, message string, data any) {
	throw(newException(d, message, data, 2))
}

func newException(d *Descriptor, msg string, data any, skip int) *Exception {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file, line = "<unknown>", 0
	}
	return &Exception{Descriptor: d, File: file, Line: line, Message: msg, Data: data}
}

// throw raises e on the calling goroutine; Throw, ThrowMsg and ThrowData
// all go through it. Rethrow and TryBuilder.End (api.go) re-raise an
// existing record with panic directly instead.
func throw(e *Exception) {
	setRaised(e)
	f := frameTop()
	if f == nil {
		terminate(e)
		return
	}
	panic(e)
}

// Rethrow re-emits the calling goroutine's currently-active exception to
// the enclosing frame. Valid only while an exception is active and there
// is an enclosing frame to receive it; both violations are fatal
// programmer errors per spec.md §4.3.
func Rethrow() {
	f := requireFrame("Rethrow")
	e := f.current
	if e == nil {
		e = getRaised()
	}
	if e == nil {
		fatal("except: Rethrow called with no active exception")
	}
	panic(e)
}

// toException normalizes a recovered panic value into *Exception. Panics
// not raised by this package (ordinary Go panics reaching into a Try body)
// are wrapped under ErrAssertionFailure so a Try's CatchAny still observes
// something coherent, matching how the teacher's VM treats any unexpected
// internal condition as an assertion failure.
func toException(r any) *Exception {
	if e, ok := r.(*Exception); ok {
		return e
	}
	msg := fmt.Sprintf("%v", r)
	_, file, line, ok := runtime.Caller(3)
	if !ok {
		file, line = "<unknown>", 0
	}
	return &Exception{Descriptor: ErrAssertionFailure, File: file, Line: line, Message: msg}
}

// arm records e as f's deferred outer exception, to be re-raised into f's
// parent once f's finalizers finish draining. If an exception is already
// armed (a throw happened while finalizers for a prior throw were still
// running), the new record supersedes it and the superseded one is logged
// as lost — the non-fatal double-rethrow policy spec.md §4.3 names as
// primary (see SPEC_FULL.md Open Question (i)).
func arm(f *Frame, e *Exception) {
	if f.outer != nil {
		fmt.Fprintf(os.Stderr, "except: exception lost during cleanup: %s\n", f.outer.Error())
	}
	f.outer = e
}

// terminate handles an exception with no enclosing frame on the calling
// goroutine: print the spec.md §6 diagnostic and end the process, unless
// a custom uncaught handler has been installed.
func terminate(e *Exception) {
	uncaughtMu.Lock()
	h := uncaughtHandler
	uncaughtMu.Unlock()
	if h != nil {
		h(e)
		return
	}
	name := "<nil>"
	if e.Descriptor != nil {
		name = e.Descriptor.Name
	}
	fmt.Fprintf(os.Stderr, "Uncaught %s at %s:%d: %s\n", name, e.File, e.Line, e.Message)
	os.Exit(1)
}

// fatal reports a programmer-error contract violation and terminates the
// process unconditionally (never recoverable, never routed through
// SetUncaughtHandler — these are not exceptions, per spec.md §7).
func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
