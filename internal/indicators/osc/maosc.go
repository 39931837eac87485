package osc

import (
	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/linebuf"
)

// singleLineMA is the shape every ma package indicator has in common: an
// output line plus its own minimum period. Envelope and the single-period
// oscillator variants below are generic over it instead of special-casing
// each concrete moving average.
type singleLineMA interface {
	indicator.Indicator
	Value() float64
}

// DEMAOsc is the single-period oscillator in - DEMA(in) (spec.md §4.4.7).
// mp equals the underlying DEMA's.
type DEMAOsc struct{ *maOsc }

// NewDEMAOsc constructs a DEMAOsc of the given period.
func NewDEMAOsc(in indicator.Source, period int) (*DEMAOsc, error) {
	d, err := ma.NewDEMA(in, period)
	if err != nil {
		return nil, err
	}
	return &DEMAOsc{newMAOsc(in, d, "demaosc")}, nil
}

// TEMAOsc is the single-period oscillator in - TEMA(in) (spec.md §4.4.7).
type TEMAOsc struct{ *maOsc }

// NewTEMAOsc constructs a TEMAOsc of the given period.
func NewTEMAOsc(in indicator.Source, period int) (*TEMAOsc, error) {
	tm, err := ma.NewTEMA(in, period)
	if err != nil {
		return nil, err
	}
	return &TEMAOsc{newMAOsc(in, tm, "temaosc")}, nil
}

// WMAOsc is the single-period oscillator in - WMA(in) (spec.md §4.4.7).
type WMAOsc struct{ *maOsc }

// NewWMAOsc constructs a WMAOsc of the given period.
func NewWMAOsc(in indicator.Source, period int) (*WMAOsc, error) {
	w, err := ma.NewWMA(in, period)
	if err != nil {
		return nil, err
	}
	return &WMAOsc{newMAOsc(in, w, "wmaosc")}, nil
}

// maOsc is the shared "in - MA(in)" kernel backing DEMAOsc/TEMAOsc/WMAOsc:
// a generic single-line-MA oscillator, since all three differ only in which
// moving average they wrap (spec.md §4.4.7 "generic form").
type maOsc struct {
	indicator.Base
	in  indicator.Source
	avg singleLineMA
	out *linebuf.Line
}

func newMAOsc(in indicator.Source, avg singleLineMA, name string) *maOsc {
	lines := linebuf.NewCollection()
	out := lines.AddNamed(name)
	o := &maOsc{in: in, avg: avg, out: out}
	o.Base = indicator.NewBase(lines, avg.MinPeriod(), indicator.CollectInputs(in)...)
	return o
}

func (o *maOsc) Tick() {
	o.avg.Tick()
	indicator.Step(o.Len(), o.MinPeriod(),
		func() { o.out.Append(linebuf.NaN) },
		func() { o.out.Append(o.in.L.Get(0) - o.avg.Value()) },
		func() { o.out.Append(o.in.L.Get(0) - o.avg.Value()) },
	)
}

func (o *maOsc) RunBatch(n int) {
	o.avg.RunBatch(n)
	indicator.RunOnce(o.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				o.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) { o.emitBatch(from, to, n) },
		func(from, to int) { o.emitBatch(from, to, n) },
	)
}

func (o *maOsc) emitBatch(from, to, n int) {
	for t := from; t < to; t++ {
		ago := -(n - 1 - t)
		o.out.Append(indicator.AbsGet(o.in.L, t, n) - o.avg.Lines().Primary().Get(ago))
	}
}
