package except

// protectNode is one entry on a frame's protection list: a (release, ctx)
// pair registered via Protect. Ordering is LIFO — the most recently
// registered node runs first, mirroring nested resource acquisition.
type protectNode struct {
	release func(ctx any)
	ctx     any
	next    *protectNode
	owner   *Frame
	consumed bool
}

// Handle is the opaque token returned by Protect, usable with Unprotect.
type Handle struct {
	node *protectNode
}

// Protect registers release(ctx) to run when the calling goroutine's
// current frame exits (normally, by throw, or by double-throw), LIFO
// relative to other Protect calls on the same frame. It is a programmer
// error to call Protect outside any Try region; like frame-pop-of-non-top,
// this is fatal (spec.md treats "no frame" conditions uniformly as fatal
// for frame-shaped operations).
func Protect(release func(ctx any), ctx any) Handle {
	f := requireFrame("Protect")
	n := &protectNode{release: release, ctx: ctx, owner: f, next: f.protections}
	f.protections = n
	return Handle{node: n}
}

// Unprotect detaches a previously registered finalizer without running it.
// A handle referring to an already-consumed (run or previously
// unprotected) record is a silent no-op. A live handle must belong to a
// frame on the calling goroutine's current frame chain; a live handle
// owned by any other frame (another goroutine's) is a programmer error
// and, like frame-pop-of-non-top, is fatal.
func Unprotect(h Handle) {
	n := h.node
	if n == nil || n.consumed {
		return
	}
	f := n.owner
	owned := false
	for cur := frameTop(); cur != nil; cur = cur.parent {
		if cur == f {
			owned = true
			break
		}
	}
	if !owned {
		fatal("except: Unprotect of a handle owned by another goroutine's frame")
	}
	// Search f's live list for n; if not found (already drained or the
	// frame is gone), treat as a no-op per spec.md.
	prev := (*protectNode)(nil)
	cur := f.protections
	for cur != nil {
		if cur == n {
			if prev == nil {
				f.protections = cur.next
			} else {
				prev.next = cur.next
			}
			n.consumed = true
			return
		}
		prev = cur
		cur = cur.next
	}
}

// drain runs every remaining finalizer on f's protection list, LIFO. A
// finalizer that panics does not stop the remaining finalizers from
// running; its exception is captured and armed onto f.outer (superseding
// any previously armed exception per the double-rethrow policy, with the
// superseded one logged as lost).
func drain(f *Frame) {
	for f.protections != nil {
		n := f.protections
		f.protections = n.next
		n.consumed = true
		runFinalizer(f, n)
	}
}

// runFinalizer invokes a single finalizer, converting a panic raised
// inside it into an armed outer exception on f rather than letting it
// escape and abort the remaining finalizers.
func runFinalizer(f *Frame, n *protectNode) {
	defer func() {
		if r := recover(); r != nil {
			arm(f, toException(r))
		}
	}()
	n.release(n.ctx)
}
