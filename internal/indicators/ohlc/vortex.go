package ohlc

import (
	"math"

	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// Vortex is the positive/negative vortex indicator (spec.md §4.5.4):
// rolling sums of directional movement normalized by rolling true range
// over period P. mp = P + 1 (one bar needed for the first prev high/low).
type Vortex struct {
	indicator.Base
	period           int
	high, low, close *linebuf.Line
	plusVM, minusVM  *linebuf.Line // manufactured per-bar primitives
	tr               *linebuf.Line
	plusOut, minusOut *linebuf.Line
}

// NewVortex constructs a Vortex of the given period over the OHLC feed.
func NewVortex(f feed.OHLC, period int) (*Vortex, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	lines := linebuf.NewCollection()
	v := &Vortex{
		period: period,
		high:   feed.HighLine(f), low: feed.LowLine(f), close: feed.CloseLine(f),
		plusVM: linebuf.New(), minusVM: linebuf.New(), tr: linebuf.New(),
	}
	v.plusOut = lines.AddNamed("vi_plus")
	v.minusOut = lines.AddNamed("vi_minus")
	v.Base = indicator.NewBase(lines, period+1)
	return v, nil
}

func trueRange(high, low, prevClose float64) float64 {
	r := high - low
	if d := math.Abs(high - prevClose); d > r {
		r = d
	}
	if d := math.Abs(low - prevClose); d > r {
		r = d
	}
	return r
}

func (v *Vortex) primitives(high, low, prevHigh, prevLow, prevClose float64) (plusVM, minusVM, tr float64) {
	return math.Abs(high - prevLow), math.Abs(low - prevHigh), trueRange(high, low, prevClose)
}

func (v *Vortex) viValue(ago int) (plus, minus float64) {
	plusSum, minusSum, trSum := 0.0, 0.0, 0.0
	for i := 0; i < v.period; i++ {
		plusSum += v.plusVM.Get(ago - i)
		minusSum += v.minusVM.Get(ago - i)
		trSum += v.tr.Get(ago - i)
	}
	if trSum == 0 {
		return 0, 0
	}
	return plusSum / trSum, minusSum / trSum
}

func (v *Vortex) Tick() {
	first := v.high.Len() <= 1
	prevHigh, prevLow, prevClose := v.high.Get(0), v.low.Get(0), v.close.Get(0)
	if !first {
		prevHigh, prevLow, prevClose = v.high.Get(-1), v.low.Get(-1), v.close.Get(-1)
	}
	plusVM, minusVM, tr := v.primitives(v.high.Get(0), v.low.Get(0), prevHigh, prevLow, prevClose)
	v.plusVM.Append(plusVM)
	v.minusVM.Append(minusVM)
	v.tr.Append(tr)
	indicator.Step(v.Len(), v.MinPeriod(),
		func() { v.plusOut.Append(linebuf.NaN); v.minusOut.Append(linebuf.NaN) },
		func() { p, m := v.viValue(0); v.plusOut.Append(p); v.minusOut.Append(m) },
		func() { p, m := v.viValue(0); v.plusOut.Append(p); v.minusOut.Append(m) },
	)
}

func (v *Vortex) RunBatch(n int) {
	for t := 0; t < n; t++ {
		first := t == 0
		prevHigh, prevLow, prevClose := indicator.AbsGet(v.high, t, n), indicator.AbsGet(v.low, t, n), indicator.AbsGet(v.close, t, n)
		if !first {
			prevHigh = indicator.AbsGet(v.high, t-1, n)
			prevLow = indicator.AbsGet(v.low, t-1, n)
			prevClose = indicator.AbsGet(v.close, t-1, n)
		}
		plusVM, minusVM, tr := v.primitives(indicator.AbsGet(v.high, t, n), indicator.AbsGet(v.low, t, n), prevHigh, prevLow, prevClose)
		v.plusVM.Append(plusVM)
		v.minusVM.Append(minusVM)
		v.tr.Append(tr)
	}
	indicator.RunOnce(v.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				v.plusOut.Append(linebuf.NaN)
				v.minusOut.Append(linebuf.NaN)
			}
		},
		func(from, to int) { v.emitBatch(from, to, n) },
		func(from, to int) { v.emitBatch(from, to, n) },
	)
}

func (v *Vortex) emitBatch(from, to, n int) {
	for t := from; t < to; t++ {
		ago := -(n - 1 - t)
		p, m := v.viValue(ago)
		v.plusOut.Append(p)
		v.minusOut.Append(m)
	}
}
