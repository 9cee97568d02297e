//go:build unix

package sigbridge

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// altStackSize matches MINSIGSTKSZ-and-then-some on every unix this
// package targets; Go's own runtime uses a similarly generous size for
// its internal signal stacks.
const altStackSize = 32 * 1024

var altStackOnce sync.Once

// ensureAltStack installs an alternate signal stack once per process: the
// first TrySignal region to run locks its goroutine to the current OS
// thread and installs the stack on that thread only. Later regions, on
// that thread or on any other, install nothing. This is advisory
// best-effort in a Go program: the Go runtime manages its own signal
// handling and already arranges a safe stack for its internal fault
// handler, so this call (give the OS a stack to deliver onto if the
// goroutine's own stack is exhausted) is not load-bearing for Go's own
// recoverable-fault behavior. If the syscall fails, TrySignal still works
// as an ordinary except.Try — it just degrades, printing a one-time
// warning to stderr.
func ensureAltStack() {
	altStackOnce.Do(func() {
		runtime.LockOSThread()
		stack := make([]byte, altStackSize)
		sigstack := &unix.SigaltstackT{
			Ss_sp:    &stack[0],
			Ss_size:  uint64(len(stack)),
			Ss_flags: 0,
		}
		if err := unix.Sigaltstack(sigstack, nil); err != nil {
			fmt.Fprintf(os.Stderr, "sigbridge: could not install alternate signal stack, try_signal degrades to try: %v\n", err)
		}
	})
}
