package osc

import (
	"math"

	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/linebuf"
)

// TSI is the true strength index: a double-smoothed momentum normalized by
// a double-smoothed absolute momentum, bounded to [-100, 100] (spec.md
// §4.4.5). mp = pchange + P1 + P2 - 1.
type TSI struct {
	indicator.Base
	in             indicator.Source
	pchange        int
	m              *linebuf.Line // manufactured: in[t] - in[t-pchange]
	absM           *linebuf.Line // manufactured: |m[t]|
	mEma1, amEma1  *ma.EMA       // EMA_P1(m), EMA_P1(|m|)
	dblM, dblAM    *ma.EMA       // EMA_P2(EMA_P1(m)), EMA_P2(EMA_P1(|m|))
	out            *linebuf.Line
}

// NewTSI constructs a TSI with momentum lookback pchange and smoothing
// periods p1, p2.
func NewTSI(in indicator.Source, pchange, p1, p2 int) (*TSI, error) {
	if pchange < 1 {
		return nil, indicator.ErrInvalidParameter
	}
	m := linebuf.New()
	absM := linebuf.New()
	mMP := in.MP + pchange

	mEma1, err := ma.NewEMA(indicator.Source{L: m, MP: mMP}, p1)
	if err != nil {
		return nil, err
	}
	dblM, err := ma.NewEMA(indicator.FromOutput(mEma1, mEma1.Lines().Primary()), p2)
	if err != nil {
		return nil, err
	}
	amEma1, err := ma.NewEMA(indicator.Source{L: absM, MP: mMP}, p1)
	if err != nil {
		return nil, err
	}
	dblAM, err := ma.NewEMA(indicator.FromOutput(amEma1, amEma1.Lines().Primary()), p2)
	if err != nil {
		return nil, err
	}

	lines := linebuf.NewCollection()
	out := lines.AddNamed("tsi")
	mp := pchange + p1 + p2 - 1
	ts := &TSI{
		in: in, pchange: pchange, m: m, absM: absM,
		mEma1: mEma1, amEma1: amEma1, dblM: dblM, dblAM: dblAM, out: out,
	}
	ts.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return ts, nil
}

func (ts *TSI) tsiValue(dblMV, dblAMV float64) float64 {
	if dblAMV == 0 {
		return 0
	}
	v := 100.0 * dblMV / dblAMV
	if v > 100 {
		v = 100
	}
	if v < -100 {
		v = -100
	}
	return v
}

func (ts *TSI) Tick() {
	momentum := linebuf.NaN
	if ts.in.L.Len() > ts.pchange {
		momentum = ts.in.L.Get(0) - ts.in.L.Get(-ts.pchange)
	}
	ts.m.Append(momentum)
	ts.absM.Append(math.Abs(momentum))
	ts.mEma1.Tick()
	ts.amEma1.Tick()
	ts.dblM.Tick()
	ts.dblAM.Tick()
	ts.out.Append(ts.tsiValue(ts.dblM.Value(), ts.dblAM.Value()))
}

func (ts *TSI) RunBatch(n int) {
	for t := 0; t < n; t++ {
		momentum := linebuf.NaN
		if t >= ts.pchange {
			momentum = indicator.AbsGet(ts.in.L, t, n) - indicator.AbsGet(ts.in.L, t-ts.pchange, n)
		}
		ts.m.Append(momentum)
		ts.absM.Append(math.Abs(momentum))
	}
	ts.mEma1.RunBatch(n)
	ts.amEma1.RunBatch(n)
	ts.dblM.RunBatch(n)
	ts.dblAM.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		ts.out.Append(ts.tsiValue(ts.dblM.Lines().Primary().Get(ago), ts.dblAM.Lines().Primary().Get(ago)))
	}
}
