// Command goexc-demo runs one of the engine's canonical scenarios and
// prints its observable output, mirroring how paserati's own cmd/paserati
// dispatches on flags rather than subcommands.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zelang-dev/goexc/pkg/arena"
	"github.com/zelang-dev/goexc/pkg/except"
	"github.com/zelang-dev/goexc/pkg/sigbridge"
)

var divisionByZero = except.NewDescriptor("division_by_zero")
var badAlloc = except.NewDescriptor("bad_alloc")
var errE1 = except.NewDescriptor("e1")
var errE2 = except.NewDescriptor("e2")

func main() {
	scenario := flag.String("scenario", "", "scenario to run: s1..s6")
	list := flag.Bool("list", false, "list available scenarios")
	flag.Parse()

	if *list || *scenario == "" {
		fmt.Println("available scenarios: s1 s2 s3 s4 s5 s6")
		if *scenario == "" && !*list {
			os.Exit(64)
		}
		return
	}

	fn, ok := scenarios[*scenario]
	if !ok {
		fmt.Fprintf(os.Stderr, "goexc-demo: unknown scenario %q\n", *scenario)
		os.Exit(64)
	}
	fn()
}

var scenarios = map[string]func(){
	"s1": scenarioS1,
	"s2": scenarioS2,
	"s3": scenarioS3,
	"s4": scenarioS4,
	"s5": scenarioS5,
	"s6": scenarioS6,
}

// scenarioS1: unmatched catch falls through to CatchAny.
func scenarioS1() {
	except.Try(func() {
		except.Throw(divisionByZero)
	}).Catch(badAlloc, func(e *except.Exception) {
		fmt.Print("A")
	}).CatchAny(func(e *except.Exception) {
		fmt.Print("B")
	}).End()
	fmt.Println()
}

// scenarioS2: Finally always runs, after the matching Catch.
func scenarioS2() {
	except.Try(func() {
		except.Throw(divisionByZero)
	}).CatchAny(func(e *except.Exception) {
		fmt.Print("C")
	}).Finally(func() {
		fmt.Print("F")
	}).End()
	fmt.Println()
}

// scenarioS3: a protected cleanup runs exactly once even though the body
// throws past it.
func scenarioS3() {
	freed := 0
	except.Try(func() {
		p := &freed
		except.Protect(func(ctx any) {
			*(ctx.(*int))++
		}, p)
		except.Throw(divisionByZero)
	}).CatchAny(func(e *except.Exception) {}).End()
	fmt.Printf("freed=%d\n", freed)
}

// scenarioS4: a throw from inside a Catch supersedes the exception it
// caught; the enclosing CatchAny observes the later one.
func scenarioS4() {
	except.Try(func() {
		except.Try(func() {
			except.Throw(errE1)
		}).Catch(errE1, func(e *except.Exception) {
			except.Throw(errE2)
		}).End()
	}).CatchAny(func(e *except.Exception) {
		fmt.Println(e.Descriptor.Name)
	}).End()
}

// scenarioS5: a synchronous fault inside TrySignal becomes a catchable
// sig_fpe, and execution resumes normally afterward.
func scenarioS5() {
	sigbridge.TrySignal(func() {
		var zero int
		_ = 1 / zero
	}).Catch(except.SigFpe, func(e *except.Exception) {
		fmt.Println("ok")
	}).End()
}

// scenarioS6: clearing an arena and reallocating the same size must not
// grow the backing store a second time.
func scenarioS6() {
	a := arena.New()
	a.Alloc(4096)
	a.Clear()
	totalBefore := a.Total()
	a.Alloc(4096)
	totalAfter := a.Total()
	fmt.Printf("free_list_len<=threshold: %v, growth_on_reuse: %d\n",
		arena.FreeListLen() <= arena.Threshold, totalAfter-totalBefore)
}
