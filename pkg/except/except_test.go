package except

import (
	"strings"
	"sync"
	"testing"
)

var (
	testDivByZero = NewDescriptor("division_by_zero")
	testBadAlloc  = NewDescriptor("bad_alloc")
	testE1        = NewDescriptor("e1")
	testE2        = NewDescriptor("e2")
)

// TestScenarioS1 matches spec scenario S1: an unmatched Catch falls
// through to CatchAny.
func TestScenarioS1(t *testing.T) {
	var out strings.Builder
	Try(func() {
		Throw(testDivByZero)
	}).Catch(testBadAlloc, func(e *Exception) {
		out.WriteString("A")
	}).CatchAny(func(e *Exception) {
		out.WriteString("B")
	}).End()

	if got := out.String(); got != "B" {
		t.Errorf("expected %q, got %q", "B", got)
	}
}

// TestScenarioS2 matches spec scenario S2: Finally runs after the
// matching Catch, even on throw.
func TestScenarioS2(t *testing.T) {
	var out strings.Builder
	Try(func() {
		Throw(testDivByZero)
	}).CatchAny(func(e *Exception) {
		out.WriteString("C")
	}).Finally(func() {
		out.WriteString("F")
	}).End()

	if got := out.String(); got != "CF" {
		t.Errorf("expected %q, got %q", "CF", got)
	}
}

// TestScenarioS3 matches spec scenario S3: a protected cleanup runs
// exactly once even though the body throws past it.
func TestScenarioS3(t *testing.T) {
	freed := 0
	Try(func() {
		Protect(func(ctx any) {
			*(ctx.(*int))++
		}, &freed)
		Throw(testDivByZero)
	}).CatchAny(func(e *Exception) {}).End()

	if freed != 1 {
		t.Errorf("expected cleanup to run exactly once, ran %d times", freed)
	}
}

// TestScenarioS4 matches spec scenario S4: a throw from inside a Catch
// supersedes the exception it caught; the enclosing CatchAny observes
// the later one.
func TestScenarioS4(t *testing.T) {
	var caught *Exception
	Try(func() {
		Try(func() {
			Throw(testE1)
		}).Catch(testE1, func(e *Exception) {
			Throw(testE2)
		}).End()
	}).CatchAny(func(e *Exception) {
		caught = e
	}).End()

	if caught == nil {
		t.Fatal("expected the outer CatchAny to observe an exception")
	}
	if !caught.Is(testE2) {
		t.Errorf("expected the superseding exception %q, got %q", testE2.Name, caught.Descriptor.Name)
	}
}

// TestR1ProtectUnprotectRoundTrip checks property R1: protect immediately
// followed by unprotect must not run the finalizer.
func TestR1ProtectUnprotectRoundTrip(t *testing.T) {
	ran := false
	Try(func() {
		h := Protect(func(ctx any) { ran = true }, nil)
		Unprotect(h)
	}).End()

	if ran {
		t.Error("finalizer ran after Unprotect; expected a no-op round trip")
	}
}

// TestR3RethrowPreservesRecord checks property R3: a throw immediately
// followed by a matching catch that only rethrows re-emits the identical
// record to the enclosing frame.
func TestR3RethrowPreservesRecord(t *testing.T) {
	var observed *Exception
	Try(func() {
		Try(func() {
			Throw(testE1)
		}).Catch(testE1, func(e *Exception) {
			Rethrow()
		}).End()
	}).CatchAny(func(e *Exception) {
		observed = e
	}).End()

	if observed == nil {
		t.Fatal("expected the rethrown exception to reach the outer frame")
	}
	if observed.Descriptor != testE1 {
		t.Errorf("expected descriptor %q, got %q", testE1.Name, observed.Descriptor.Name)
	}
}

// TestQ1FinalizersRunExactlyOnce checks property Q1 for two Protect
// registrations made before a throw inside the body: each runs exactly
// once, in LIFO order.
func TestQ1FinalizersRunExactlyOnce(t *testing.T) {
	var order []string
	Try(func() {
		Protect(func(ctx any) { order = append(order, "first") }, nil)
		Protect(func(ctx any) { order = append(order, "second") }, nil)
		Throw(testDivByZero)
	}).CatchAny(func(e *Exception) {}).End()

	want := []string{"second", "first"}
	if len(order) != len(want) {
		t.Fatalf("expected %d finalizer runs, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("finalizer order[%d] = %q, want %q (order=%v)", i, order[i], want[i], order)
		}
	}
}

// TestQ2PropagationReachesEachFrame checks property Q2: an uncaught
// throw reaches every enclosing frame in order before termination (here,
// before the innermost-to-outermost Catch chain intercepts it).
func TestQ2PropagationReachesEachFrame(t *testing.T) {
	var seenOuter, seenMiddle bool
	Try(func() {
		Try(func() {
			Try(func() {
				Throw(testDivByZero)
			}).Catch(testBadAlloc, func(e *Exception) {
				t.Error("inner frame should not match bad_alloc")
			}).End()
		}).CatchAny(func(e *Exception) {
			seenMiddle = true
			Rethrow()
		}).End()
	}).CatchAny(func(e *Exception) {
		seenOuter = true
	}).End()

	if !seenMiddle || !seenOuter {
		t.Errorf("expected propagation through middle and outer frames, got middle=%v outer=%v", seenMiddle, seenOuter)
	}
}

// TestQ4ThreadLocalIsolation checks property Q4: an exception raised on
// one goroutine must never be visible as the current frame on another.
func TestQ4ThreadLocalIsolation(t *testing.T) {
	var wg sync.WaitGroup
	results := make(chan bool, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if frameTop() != nil {
			results <- false
			return
		}
		Try(func() {
			results <- true
		}).End()
	}()
	go func() {
		defer wg.Done()
		Try(func() {
			Throw(testDivByZero)
		}).CatchAny(func(e *Exception) {}).End()
	}()
	wg.Wait()
	close(results)

	for ok := range results {
		if !ok {
			t.Error("a goroutine observed a non-nil frame top before entering its own Try")
		}
	}
}

// B1 (throw outside any Try) and B2 (rethrow with no raised record) both
// call os.Exit and so are not exercised as in-process unit tests here;
// they terminate the process by design, matching spec.md's boundary-
// condition contract for both.

func TestExceptionErrorFormatting(t *testing.T) {
	e := &Exception{Descriptor: testDivByZero, File: "foo.go", Line: 42, Message: "oops"}
	want := "division_by_zero at foo.go:42: oops"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUncaughtHandlerOverride(t *testing.T) {
	var got *Exception
	SetUncaughtHandler(func(e *Exception) { got = e })
	defer SetUncaughtHandler(nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		Throw(testDivByZero)
	}()
	<-done

	if got == nil {
		t.Fatal("expected the custom uncaught handler to observe the exception")
	}
	if got.Descriptor != testDivByZero {
		t.Errorf("expected descriptor %q, got %q", testDivByZero.Name, got.Descriptor.Name)
	}
}
