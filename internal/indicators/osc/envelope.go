package osc

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// Envelope wraps any single-line moving average with a symmetric percentage
// band (spec.md §4.4.8, §6.3 {period, perc}). mp equals the wrapped MA's.
type Envelope struct {
	indicator.Base
	ma       singleLineMA
	perc     float64
	midOut   *linebuf.Line
	upperOut *linebuf.Line
	lowerOut *linebuf.Line
}

// NewEnvelope wraps an already-constructed single-line moving average
// indicator with an envelope of +/- perc percent.
func NewEnvelope(m singleLineMA, perc float64) (*Envelope, error) {
	if perc < 0 {
		return nil, indicator.ErrInvalidParameter
	}
	lines := linebuf.NewCollection()
	midOut := lines.AddNamed("mid")
	upperOut := lines.AddNamed("upper")
	lowerOut := lines.AddNamed("lower")
	e := &Envelope{ma: m, perc: perc, midOut: midOut, upperOut: upperOut, lowerOut: lowerOut}
	e.Base = indicator.NewBase(lines, m.MinPeriod(), m)
	return e, nil
}

func (e *Envelope) emit(mid float64) {
	e.midOut.Append(mid)
	e.upperOut.Append(mid * (1 + e.perc/100))
	e.lowerOut.Append(mid * (1 - e.perc/100))
}

func (e *Envelope) Tick() {
	e.ma.Tick()
	indicator.Step(e.Len(), e.MinPeriod(),
		func() {
			e.midOut.Append(linebuf.NaN)
			e.upperOut.Append(linebuf.NaN)
			e.lowerOut.Append(linebuf.NaN)
		},
		func() { e.emit(e.ma.Value()) },
		func() { e.emit(e.ma.Value()) },
	)
}

func (e *Envelope) RunBatch(n int) {
	e.ma.RunBatch(n)
	indicator.RunOnce(e.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				e.midOut.Append(linebuf.NaN)
				e.upperOut.Append(linebuf.NaN)
				e.lowerOut.Append(linebuf.NaN)
			}
		},
		func(from, to int) { e.emitBatch(from, to, n) },
		func(from, to int) { e.emitBatch(from, to, n) },
	)
}

func (e *Envelope) emitBatch(from, to, n int) {
	for t := from; t < to; t++ {
		ago := -(n - 1 - t)
		e.emit(e.ma.Lines().Primary().Get(ago))
	}
}
