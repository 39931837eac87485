package ma

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// WMA is the linearly weighted moving average: newest sample carries the
// largest weight. mp = P (spec.md §4.3.3).
type WMA struct {
	indicator.Base
	period int
	coef   float64
	in     indicator.Source
	out    *linebuf.Line
}

// NewWMA constructs a WMA of the given period over `in`.
func NewWMA(in indicator.Source, period int) (*WMA, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	if in.L == nil {
		return nil, indicator.ErrMissingInput
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("wma")
	mp := indicator.Windowed(period, in.MP)
	w := &WMA{
		period: period,
		coef:   2.0 / float64(period*(period+1)),
		in:     in,
		out:    out,
	}
	w.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return w, nil
}

// wmaWindow computes c * sum_{i=0..P-1} (i+1) * in[t-P+1+i], weight i+1
// attached to the sample `i` steps after the oldest one in the window —
// i.e. weight P attaches to the current bar (ago=0).
func wmaWindow(get func(ago int) float64, period int, coef float64) float64 {
	sum := 0.0
	for i := 0; i < period; i++ {
		weight := float64(i + 1)
		ago := -(period - 1 - i)
		sum += weight * get(ago)
	}
	return coef * sum
}

// Value exposes the current WMA value without going through Lines(), used
// by composite indicators (HMA...) that chain WMAs directly.
func (w *WMA) Value() float64 { return w.out.Get(0) }

func (w *WMA) Tick() {
	indicator.Step(w.Len(), w.MinPeriod(),
		func() { w.out.Append(linebuf.NaN) },
		func() { w.out.Append(wmaWindow(w.in.L.Get, w.period, w.coef)) },
		func() { w.out.Append(wmaWindow(w.in.L.Get, w.period, w.coef)) },
	)
}

func (w *WMA) RunBatch(n int) {
	indicator.RunOnce(w.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				w.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				getAt := func(ago int) float64 { return indicator.AbsGet(w.in.L, t+ago, n) }
				w.out.Append(wmaWindow(getAt, w.period, w.coef))
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				getAt := func(ago int) float64 { return indicator.AbsGet(w.in.L, t+ago, n) }
				w.out.Append(wmaWindow(getAt, w.period, w.coef))
			}
		},
	)
}
