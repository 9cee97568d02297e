package except

// clause is one Catch/CatchAny registration. A nil Descriptor means
// CatchAny: it matches whatever is currently raised, unconditionally.
type clause struct {
	d       *Descriptor
	handler func(*Exception)
}

// TryBuilder accumulates the clauses of one protected region. Construct it
// with Try, chain Catch/CatchAny/Finally in source order, and call End to
// run it — this fluent chain is the Go-native stand-in for the source
// language's TRY { } CATCH(X) { } CATCH_ANY { } FINALLY { } ENDTRY block,
// since Go has no block-delimited macro surface to expand into.
type TryBuilder struct {
	body    func()
	clauses []clause
	finally func()
}

// Try begins a protected region. Nothing runs until End is called.
func Try(body func()) *TryBuilder {
	return &TryBuilder{body: body}
}

// Catch registers a handler that runs if the body throws an exception
// whose descriptor is identical to d. Clauses are evaluated in the order
// they were chained; the first match wins.
func (b *TryBuilder) Catch(d *Descriptor, handler func(e *Exception)) *TryBuilder {
	b.clauses = append(b.clauses, clause{d: d, handler: handler})
	return b
}

// CatchAny registers a handler that matches any currently-raised
// exception, regardless of descriptor.
func (b *TryBuilder) CatchAny(handler func(e *Exception)) *TryBuilder {
	b.clauses = append(b.clauses, clause{d: nil, handler: handler})
	return b
}

// Finally registers a block that always runs last, whether or not the
// body threw and whether or not a Catch/CatchAny clause matched. It does
// not clear the raised-exception state by itself.
func (b *TryBuilder) Finally(fn func()) *TryBuilder {
	b.finally = fn
	return b
}

// End runs the protected region: push the frame, run the body, dispatch
// clauses in source order on throw, run Finally unconditionally, drain
// protected finalizers LIFO, pop the frame, and — if the frame's exit
// state is THROWN or a throw occurred while running a Catch/Finally —
// re-raise the live exception into the enclosing frame. See SPEC_FULL.md
// §4.2 for the full state-machine description.
func (b *TryBuilder) End() {
	f := &Frame{state: StateTrying}
	pushFrame(f)

	runGuarded := func(stage func()) {
		defer func() {
			if r := recover(); r != nil {
				arm(f, toException(r))
			}
		}()
		stage()
	}

	var bodyErr *Exception
	func() {
		defer func() {
			if r := recover(); r != nil {
				bodyErr = toException(r)
			}
		}()
		b.body()
	}()

	if bodyErr != nil {
		f.state = StateThrown
		f.current = bodyErr
		setRaised(bodyErr)

		matched := false
		for _, c := range b.clauses {
			if c.d == nil || bodyErr.Is(c.d) {
				matched = true
				f.state = StateHandled
				handler := c.handler
				runGuarded(func() { handler(bodyErr) })
				break
			}
		}
		if !matched {
			arm(f, bodyErr)
		}
	}

	if b.finally != nil {
		runGuarded(b.finally)
	}

	f.state = StateFinalizing
	drain(f)

	popFrame(f)
	f.state = StateDone

	if f.outer != nil {
		e := f.outer
		if frameTop() == nil {
			// No enclosing frame remains on this goroutine: this is the
			// same "no frame" condition Throw terminates on directly.
			terminate(e)
			return
		}
		panic(e)
	}
}
