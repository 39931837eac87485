package ma

import (
	"math"

	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// KAMA is Kaufman's adaptive moving average: an EMA whose smoothing
// constant is driven by an efficiency ratio of directional change over
// period-bar noise (spec.md §4.3.4, §6.3 {period, fast, slow}).
//
// mp = period + input.mp: the efficiency ratio needs `period` one-bar
// differences, which in turn needs one bar before the window starts.
type KAMA struct {
	indicator.Base
	period         int
	fastSC, slowSC float64
	in             indicator.Source
	out            *linebuf.Line

	prev    float64
	hasPrev bool
}

// NewKAMA constructs a KAMA with the given period and fast/slow EMA
// constants expressed as periods (spec.md §6.3).
func NewKAMA(in indicator.Source, period, fast, slow int) (*KAMA, error) {
	if period < 1 || fast < 1 || slow < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	if in.L == nil {
		return nil, indicator.ErrMissingInput
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("kama")
	mp := period + in.MP
	k := &KAMA{
		period: period,
		fastSC: 2.0 / (float64(fast) + 1.0),
		slowSC: 2.0 / (float64(slow) + 1.0),
		in:     in,
		out:    out,
	}
	k.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return k, nil
}

func (k *KAMA) efficiencyRatio(get func(ago int) float64) float64 {
	change := math.Abs(get(0) - get(-k.period))
	volatility := 0.0
	for i := 0; i < k.period; i++ {
		volatility += math.Abs(get(-i) - get(-i-1))
	}
	if volatility == 0 {
		return 0
	}
	return change / volatility
}

func (k *KAMA) smoothingConstant(er float64) float64 {
	sc := er*(k.fastSC-k.slowSC) + k.slowSC
	return sc * sc
}

func (k *KAMA) step(get func(ago int) float64) float64 {
	sc := k.smoothingConstant(k.efficiencyRatio(get))
	v := k.prev + sc*(get(0)-k.prev)
	k.prev = v
	return v
}

// Value exposes the current KAMA value without going through Lines().
func (k *KAMA) Value() float64 { return k.out.Get(0) }

func (k *KAMA) Tick() {
	indicator.Step(k.Len(), k.MinPeriod(),
		func() { k.out.Append(linebuf.NaN) },
		func() {
			k.prev = k.in.L.Get(0)
			k.hasPrev = true
			k.out.Append(k.prev)
		},
		func() { k.out.Append(k.step(k.in.L.Get)) },
	)
}

func (k *KAMA) RunBatch(n int) {
	indicator.RunOnce(k.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				k.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				k.prev = indicator.AbsGet(k.in.L, t, n)
				k.hasPrev = true
				k.out.Append(k.prev)
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				getAt := func(ago int) float64 { return indicator.AbsGet(k.in.L, t+ago, n) }
				k.out.Append(k.step(getAt))
			}
		},
	)
}
