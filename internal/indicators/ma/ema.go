package ma

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// EMA is the exponential moving average, seeded by an SMA of the first P
// values and recurring forward from there (spec.md §4.3.2). mp = P.
type EMA struct {
	indicator.Base
	period int
	alpha  float64
	in     indicator.Source
	out    *linebuf.Line

	prev    float64 // previous EMA value, steady-state recurrence state
	hasPrev bool
}

// NewEMA constructs an EMA of the given period over `in`.
func NewEMA(in indicator.Source, period int) (*EMA, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	if in.L == nil {
		return nil, indicator.ErrMissingInput
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("ema")
	mp := indicator.EMASeeded(period, in.MP)
	e := &EMA{period: period, alpha: 2.0 / (float64(period) + 1.0), in: in, out: out}
	e.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return e, nil
}

// kahanSeed sums the last `period` values (ascending order) with Kahan
// compensation, matching the reference implementation's seed precision
// (spec.md §4.3.2, §7).
func kahanSeed(get func(ago int) float64, period int) float64 {
	sum, c := 0.0, 0.0
	for i := period - 1; i >= 0; i-- {
		y := get(-i) - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}
	return sum / float64(period)
}

func (e *EMA) emaStep(cur float64) float64 {
	v := e.alpha*cur + (1.0-e.alpha)*e.prev
	e.prev = v
	return v
}

func (e *EMA) Tick() {
	indicator.Step(e.Len(), e.MinPeriod(),
		func() { e.out.Append(linebuf.NaN) },
		func() {
			seed := kahanSeed(e.in.L.Get, e.period)
			e.prev = seed
			e.hasPrev = true
			e.out.Append(seed)
		},
		func() { e.out.Append(e.emaStep(e.in.L.Get(0))) },
	)
}

func (e *EMA) RunBatch(n int) {
	indicator.RunOnce(e.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				e.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				getAt := func(ago int) float64 { return indicator.AbsGet(e.in.L, t+ago, n) }
				seed := kahanSeed(getAt, e.period)
				e.prev = seed
				e.hasPrev = true
				e.out.Append(seed)
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				cur := indicator.AbsGet(e.in.L, t, n)
				e.out.Append(e.emaStep(cur))
			}
		},
	)
}

// Value exposes the current EMA value without going through Lines(), used
// by composite indicators (MACD, DEMA, TEMA...) that chain EMAs directly.
func (e *EMA) Value() float64 { return e.out.Get(0) }
