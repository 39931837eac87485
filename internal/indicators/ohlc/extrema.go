package ohlc

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// Lowest is a rolling window minimum over P bars (spec.md §4.5.4). mp = P.
type Lowest struct {
	indicator.Base
	period int
	in     indicator.Source
	out    *linebuf.Line
}

// NewLowest constructs a Lowest of the given period over `in`.
func NewLowest(in indicator.Source, period int) (*Lowest, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	if in.L == nil {
		return nil, indicator.ErrMissingInput
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("lowest")
	l := &Lowest{period: period, in: in, out: out}
	l.Base = indicator.NewBase(lines, indicator.Windowed(period, in.MP), indicator.CollectInputs(in)...)
	return l, nil
}

func rollingExtreme(get func(ago int) float64, period int, keepIf func(candidate, best float64) bool) float64 {
	best := get(0)
	for i := 1; i < period; i++ {
		v := get(-i)
		if keepIf(v, best) {
			best = v
		}
	}
	return best
}

func (l *Lowest) Tick() {
	indicator.Step(l.Len(), l.MinPeriod(),
		func() { l.out.Append(linebuf.NaN) },
		func() { l.out.Append(rollingExtreme(l.in.L.Get, l.period, func(c, b float64) bool { return c < b })) },
		func() { l.out.Append(rollingExtreme(l.in.L.Get, l.period, func(c, b float64) bool { return c < b })) },
	)
}

func (l *Lowest) RunBatch(n int) {
	indicator.RunOnce(l.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				l.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) { l.emitBatch(from, to, n) },
		func(from, to int) { l.emitBatch(from, to, n) },
	)
}

func (l *Lowest) emitBatch(from, to, n int) {
	for t := from; t < to; t++ {
		getAt := func(ago int) float64 { return indicator.AbsGet(l.in.L, t+ago, n) }
		l.out.Append(rollingExtreme(getAt, l.period, func(c, b float64) bool { return c < b }))
	}
}

// Highest is a rolling window maximum over P bars (spec.md §4.5.4). mp = P.
type Highest struct {
	indicator.Base
	period int
	in     indicator.Source
	out    *linebuf.Line
}

// NewHighest constructs a Highest of the given period over `in`.
func NewHighest(in indicator.Source, period int) (*Highest, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	if in.L == nil {
		return nil, indicator.ErrMissingInput
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("highest")
	h := &Highest{period: period, in: in, out: out}
	h.Base = indicator.NewBase(lines, indicator.Windowed(period, in.MP), indicator.CollectInputs(in)...)
	return h, nil
}

func (h *Highest) Tick() {
	indicator.Step(h.Len(), h.MinPeriod(),
		func() { h.out.Append(linebuf.NaN) },
		func() { h.out.Append(rollingExtreme(h.in.L.Get, h.period, func(c, b float64) bool { return c > b })) },
		func() { h.out.Append(rollingExtreme(h.in.L.Get, h.period, func(c, b float64) bool { return c > b })) },
	)
}

func (h *Highest) RunBatch(n int) {
	indicator.RunOnce(h.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				h.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) { h.emitBatch(from, to, n) },
		func(from, to int) { h.emitBatch(from, to, n) },
	)
}

func (h *Highest) emitBatch(from, to, n int) {
	for t := from; t < to; t++ {
		getAt := func(ago int) float64 { return indicator.AbsGet(h.in.L, t+ago, n) }
		h.out.Append(rollingExtreme(getAt, h.period, func(c, b float64) bool { return c > b }))
	}
}
