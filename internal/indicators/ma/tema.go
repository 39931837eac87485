package ma

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// TEMA is the triple exponential moving average:
// 3*EMA - 3*EMA(EMA) + EMA(EMA(EMA)), all three stages sharing period P.
// mp = 3P-2 (spec.md §4.3.4).
type TEMA struct {
	indicator.Base
	ema1 *EMA
	ema2 *EMA
	ema3 *EMA
	out  *linebuf.Line
}

// NewTEMA constructs a TEMA of the given period over `in`.
func NewTEMA(in indicator.Source, period int) (*TEMA, error) {
	ema1, err := NewEMA(in, period)
	if err != nil {
		return nil, err
	}
	ema2, err := NewEMA(indicator.FromOutput(ema1, ema1.out), period)
	if err != nil {
		return nil, err
	}
	ema3, err := NewEMA(indicator.FromOutput(ema2, ema2.out), period)
	if err != nil {
		return nil, err
	}

	lines := linebuf.NewCollection()
	out := lines.AddNamed("tema")
	mp := ema3.MinPeriod()
	tm := &TEMA{ema1: ema1, ema2: ema2, ema3: ema3, out: out}
	tm.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return tm, nil
}

// Value exposes the current TEMA value without going through Lines().
func (tm *TEMA) Value() float64 { return tm.out.Get(0) }

func (tm *TEMA) Tick() {
	tm.ema1.Tick()
	tm.ema2.Tick()
	tm.ema3.Tick()
	tm.out.Append(3*tm.ema1.Value() - 3*tm.ema2.Value() + tm.ema3.Value())
}

func (tm *TEMA) RunBatch(n int) {
	tm.ema1.RunBatch(n)
	tm.ema2.RunBatch(n)
	tm.ema3.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		tm.out.Append(3*tm.ema1.out.Get(ago) - 3*tm.ema2.out.Get(ago) + tm.ema3.out.Get(ago))
	}
}
