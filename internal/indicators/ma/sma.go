// Package ma implements the moving-average family of spec.md §4.3: SMA,
// EMA, WMA, DEMA, TEMA, HMA, KAMA, ZLEMA and ZLIND. Every indicator here
// consumes one input line (conventionally close) and produces one output
// line named after itself (spec.md §6.2).
package ma

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// SMA is the simple moving average: out[t] = mean(in[t-P+1..t]).
// mp = P (spec.md §4.3.1).
type SMA struct {
	indicator.Base
	period int
	in     indicator.Source
	out    *linebuf.Line
}

// NewSMA constructs an SMA of the given period over `in`.
func NewSMA(in indicator.Source, period int) (*SMA, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	if in.L == nil {
		return nil, indicator.ErrMissingInput
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("sma")
	mp := indicator.Windowed(period, in.MP)
	s := &SMA{period: period, in: in, out: out}
	s.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return s, nil
}

// smaWindow sums in-order (ascending) over [t-period+1, t] and divides by
// period, the canonical accumulation order of spec.md §4.3.1 — used
// identically by both Tick and RunBatch so the two modes agree bit-for-bit.
func smaWindow(get func(ago int) float64, period int) float64 {
	sum := 0.0
	for i := period - 1; i >= 0; i-- {
		sum += get(-i)
	}
	return sum / float64(period)
}

// Value exposes the current SMA value without going through Lines(), used
// by composite indicators and generic wrappers (Envelope...) that chain
// moving averages directly.
func (s *SMA) Value() float64 { return s.out.Get(0) }

func (s *SMA) Tick() {
	indicator.Step(s.Len(), s.MinPeriod(),
		func() { s.out.Append(linebuf.NaN) },
		func() { s.out.Append(smaWindow(s.in.L.Get, s.period)) },
		func() { s.out.Append(smaWindow(s.in.L.Get, s.period)) },
	)
}

func (s *SMA) RunBatch(n int) {
	getAt := func(t int) func(ago int) float64 {
		return func(ago int) float64 { return indicator.AbsGet(s.in.L, t+ago, n) }
	}
	indicator.RunOnce(s.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				s.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				s.out.Append(smaWindow(getAt(t), s.period))
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				s.out.Append(smaWindow(getAt(t), s.period))
			}
		},
	)
}
