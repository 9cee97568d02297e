// Command goexc-bench times the throw/catch fast path and the arena
// allocator's throughput, in the same flag-driven single-file style as
// the teacher's cmd/paserati-v8bench benchmark runner.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/zelang-dev/goexc/pkg/arena"
	"github.com/zelang-dev/goexc/pkg/except"
)

var benchDescriptor = except.NewDescriptor("bench")

func main() {
	iterations := flag.Int("n", 1_000_000, "iterations per benchmark")
	allocSize := flag.Int("alloc-size", 64, "bytes per arena allocation")
	which := flag.String("bench", "all", "throw|arena|all")
	flag.Parse()

	if *which == "throw" || *which == "all" {
		benchThrowCatch(*iterations)
	}
	if *which == "arena" || *which == "all" {
		benchArena(*iterations, *allocSize)
	}
}

func benchThrowCatch(n int) {
	start := time.Now()
	for i := 0; i < n; i++ {
		except.Try(func() {
			except.Throw(benchDescriptor)
		}).CatchAny(func(e *except.Exception) {}).End()
	}
	elapsed := time.Since(start)
	report("throw+catch", n, elapsed)
}

func benchArena(n, size int) {
	a := arena.New()
	start := time.Now()
	for i := 0; i < n; i++ {
		a.Alloc(size)
		if i%4096 == 0 {
			a.Clear()
		}
	}
	a.Release()
	elapsed := time.Since(start)
	report(fmt.Sprintf("arena.Alloc(%d)", size), n, elapsed)
}

func report(label string, n int, elapsed time.Duration) {
	perOp := elapsed / time.Duration(n)
	fmt.Printf("%-20s %10d ops  %12s total  %8s/op\n", label, n, elapsed, perOp)
}
