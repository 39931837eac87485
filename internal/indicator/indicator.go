// Package indicator provides the lifecycle machinery every line-producing
// node in the pipeline shares: minimum-period propagation and the two
// equivalent evaluation modes (streaming "next" and whole-history "once")
// described in spec.md §4.2.
package indicator

import "backline/internal/linebuf"

// Indicator is the capability set the pipeline driver needs from any node
// in the dependency DAG (spec.md §9 "replace the inheritance hierarchy...
// with an indicator-side capability set").
type Indicator interface {
	// Lines returns the indicator's output collection.
	Lines() *linebuf.Collection
	// MinPeriod is the first bar count at which every output line is
	// guaranteed non-NaN (spec.md §3.4, §4.2.2).
	MinPeriod() int
	// Inputs lists the upstream nodes that must be evaluated before this
	// one on any given bar (spec.md O1).
	Inputs() []Indicator
	// Tick evaluates exactly one more bar in streaming mode. The driver
	// guarantees every input already has one more bar available than this
	// node's own output length.
	Tick()
	// RunBatch evaluates the indicator's entire output in one pass, given
	// that every input already has n bars available.
	RunBatch(n int)
}

// Step dispatches to the right phase of streaming evaluation
// (spec.md §4.2.1) based on how many bars this indicator has already
// produced (out) relative to its minimum period (mp):
//
//	out < mp-1   -> prenext   (still warming up, output stays NaN)
//	out == mp-1  -> nextstart (first valid bar)
//	out >= mp    -> next      (steady state)
func Step(out int, mp int, prenext, nextstart, next func()) {
	switch {
	case out < mp-1:
		prenext()
	case out == mp-1:
		nextstart()
	default:
		next()
	}
}

// RunOnce drives the three batch phases (spec.md §4.2.1) over the half-open
// range [0, n): preonce covers the warm-up region, oncestart the single
// first-valid bar, and once the steady-state region through n.
func RunOnce(mp, n int, preonce, oncestart, once func(start, end int)) {
	if mp > n {
		preonce(0, n)
		return
	}
	if mp >= 1 {
		preonce(0, mp-1)
	}
	oncestart(mp-1, mp)
	once(mp, n)
}
