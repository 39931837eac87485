package ma

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// DEMA is the double exponential moving average: 2*EMA(in) - EMA(EMA(in)),
// both stages sharing period P. mp = 2P-1 (spec.md §4.3.4). It is a
// composition: the two internal EMAs are driven directly by DEMA's own
// Tick/RunBatch and never exposed to the pipeline driver (spec.md §4.2.3).
type DEMA struct {
	indicator.Base
	ema1 *EMA
	ema2 *EMA
	out  *linebuf.Line
}

// NewDEMA constructs a DEMA of the given period over `in`.
func NewDEMA(in indicator.Source, period int) (*DEMA, error) {
	ema1, err := NewEMA(in, period)
	if err != nil {
		return nil, err
	}
	ema2, err := NewEMA(indicator.FromOutput(ema1, ema1.out), period)
	if err != nil {
		return nil, err
	}

	lines := linebuf.NewCollection()
	out := lines.AddNamed("dema")
	mp := ema2.MinPeriod()
	d := &DEMA{ema1: ema1, ema2: ema2, out: out}
	d.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return d, nil
}

// Value exposes the current DEMA value without going through Lines().
func (d *DEMA) Value() float64 { return d.out.Get(0) }

func (d *DEMA) Tick() {
	d.ema1.Tick()
	d.ema2.Tick()
	d.out.Append(2*d.ema1.Value() - d.ema2.Value())
}

func (d *DEMA) RunBatch(n int) {
	d.ema1.RunBatch(n)
	d.ema2.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		d.out.Append(2*d.ema1.out.Get(ago) - d.ema2.out.Get(ago))
	}
}
