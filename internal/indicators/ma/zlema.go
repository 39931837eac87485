package ma

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// ZLEMA is the zero-lag EMA: an EMA of period P applied to
// 2*in[t] - in[t-L], lag L = (P-1)/2. mp = P + L (spec.md §4.3.4).
type ZLEMA struct {
	indicator.Base
	lag    int
	in     indicator.Source
	delag  *linebuf.Line
	ema    *EMA
	out    *linebuf.Line
}

// NewZLEMA constructs a ZLEMA of the given period over `in`.
func NewZLEMA(in indicator.Source, period int) (*ZLEMA, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	if in.L == nil {
		return nil, indicator.ErrMissingInput
	}
	lag := (period - 1) / 2
	delag := linebuf.New()
	ema, err := NewEMA(indicator.Source{L: delag, MP: in.MP + lag}, period)
	if err != nil {
		return nil, err
	}

	lines := linebuf.NewCollection()
	out := lines.AddNamed("zlema")
	z := &ZLEMA{lag: lag, in: in, delag: delag, ema: ema, out: out}
	z.Base = indicator.NewBase(lines, ema.MinPeriod(), indicator.CollectInputs(in)...)
	return z, nil
}

// Value exposes the current ZLEMA value without going through Lines().
func (z *ZLEMA) Value() float64 { return z.out.Get(0) }

func (z *ZLEMA) Tick() {
	z.delag.Append(2*z.in.L.Get(0) - z.in.L.Get(-z.lag))
	z.ema.Tick()
	z.out.Append(z.ema.Value())
}

func (z *ZLEMA) RunBatch(n int) {
	for t := 0; t < n; t++ {
		z.delag.Append(2*indicator.AbsGet(z.in.L, t, n) - indicator.AbsGet(z.in.L, t-z.lag, n))
	}
	z.ema.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		z.out.Append(z.ema.out.Get(ago))
	}
}
