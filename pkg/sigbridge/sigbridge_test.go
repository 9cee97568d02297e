package sigbridge

import (
	"os"
	"testing"

	"github.com/zelang-dev/goexc/pkg/except"
)

// TestScenarioS5 matches spec scenario S5: a synchronous fault inside
// TrySignal becomes a catchable sig_fpe, and execution resumes normally
// after End returns.
func TestScenarioS5(t *testing.T) {
	caught := false
	TrySignal(func() {
		var zero int
		_ = 1 / zero
	}).Catch(except.SigFpe, func(e *except.Exception) {
		caught = true
	}).End()

	if !caught {
		t.Fatal("expected the divide-by-zero fault to be caught as SigFpe")
	}

	// Execution must resume normally after End, i.e. a second ordinary
	// Try region on the same goroutine behaves as if nothing happened.
	ran := false
	except.Try(func() { ran = true }).End()
	if !ran {
		t.Error("expected normal Try execution to resume after a TrySignal region")
	}
}

func TestNilDereferenceClassifiedAsSigSegv(t *testing.T) {
	var descriptor *except.Descriptor
	TrySignal(func() {
		var p *int
		_ = *p
	}).CatchAny(func(e *except.Exception) {
		descriptor = e.Descriptor
	}).End()

	if descriptor != except.SigSegv {
		t.Errorf("expected SigSegv, got %v", descriptor)
	}
}

// TestNonFaultExceptionPassesThrough checks that an ordinary except.Throw
// from inside a TrySignal body is not misclassified as a hardware fault.
func TestNonFaultExceptionPassesThrough(t *testing.T) {
	custom := except.NewDescriptor("custom")
	var descriptor *except.Descriptor
	TrySignal(func() {
		except.Throw(custom)
	}).CatchAny(func(e *except.Exception) {
		descriptor = e.Descriptor
	}).End()

	if descriptor != custom {
		t.Errorf("expected the original descriptor %v to pass through unchanged, got %v", custom, descriptor)
	}
}

func TestInstallAsyncAndPending(t *testing.T) {
	InstallAsync(os.Interrupt)
	defer StopAsync()

	if e := Pending(); e != nil {
		t.Errorf("expected no pending signal before delivery, got %v", e)
	}
}
