package arena

import "github.com/zelang-dev/goexc/pkg/except"

// ForFrame returns the arena bound to f, creating and binding one (plus a
// Protect finalizer that releases it during f's drain) on first use. This
// is how an arena's lifetime is tied to a protected region per spec.md
// §4.6/I5: allocations made inside a Catch belong to the catching frame's
// own arena, never the throwing frame's, because each frame gets its own
// arena lazily, bound the first time ForFrame sees it active.
func ForFrame(f *except.Frame) *Arena {
	if v := f.ArenaSlot(); v != nil {
		return v.(*Arena)
	}
	a := New()
	f.SetArenaSlot(a)
	except.Protect(func(ctx any) {
		ctx.(*Arena).Release()
	}, a)
	return a
}

// ForCurrentFrame is ForFrame(except.CurrentFrame()). It terminates the
// process (via except's fatal-on-no-frame contract) if called outside any
// Try region,
// matching every other frame-scoped operation in this module.
func ForCurrentFrame() *Arena {
	return ForFrame(except.CurrentFrame())
}
