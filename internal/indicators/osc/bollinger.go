package osc

import (
	"math"

	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/linebuf"
)

// Bollinger is a moving-average envelope sized by rolling population
// standard deviation (spec.md §4.4.3, Open Question (a): population, not
// sample, stddev). mp = P.
type Bollinger struct {
	indicator.Base
	period    int
	devfactor float64
	in        indicator.Source
	mid       *ma.SMA
	midOut    *linebuf.Line
	topOut    *linebuf.Line
	botOut    *linebuf.Line
	pctbOut   *linebuf.Line
}

// NewBollinger constructs a Bollinger band set of the given period and
// standard-deviation multiplier.
func NewBollinger(in indicator.Source, period int, devfactor float64) (*Bollinger, error) {
	if devfactor < 0 {
		return nil, indicator.ErrNegativeDevFactor
	}
	mid, err := ma.NewSMA(in, period)
	if err != nil {
		return nil, err
	}
	lines := linebuf.NewCollection()
	midOut := lines.AddNamed("mid")
	topOut := lines.AddNamed("top")
	botOut := lines.AddNamed("bot")
	pctbOut := lines.AddNamed("pctb")

	b := &Bollinger{
		period: period, devfactor: devfactor, in: in, mid: mid,
		midOut: midOut, topOut: topOut, botOut: botOut, pctbOut: pctbOut,
	}
	b.Base = indicator.NewBase(lines, mid.MinPeriod(), indicator.CollectInputs(in)...)
	return b, nil
}

// populationStdDev computes sqrt(mean((x[i]-mean)^2)) over the trailing
// `period` samples ending at ago=0, ascending-order summation to match the
// accumulation order used throughout this package for parity.
func populationStdDev(get func(ago int) float64, period int, mean float64) float64 {
	sumSq := 0.0
	for i := period - 1; i >= 0; i-- {
		d := get(-i) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(period))
}

func (b *Bollinger) bands(get func(ago int) float64, midV, price float64) (top, bot, pctb float64) {
	sigma := populationStdDev(get, b.period, midV)
	top = midV + b.devfactor*sigma
	bot = midV - b.devfactor*sigma
	width := top - bot
	if width == 0 {
		return top, bot, linebuf.NaN
	}
	return top, bot, (price - bot) / width
}

func (b *Bollinger) Tick() {
	b.mid.Tick()
	indicator.Step(b.Len(), b.MinPeriod(),
		func() {
			b.midOut.Append(linebuf.NaN)
			b.topOut.Append(linebuf.NaN)
			b.botOut.Append(linebuf.NaN)
			b.pctbOut.Append(linebuf.NaN)
		},
		func() { b.emit(b.in.L.Get) },
		func() { b.emit(b.in.L.Get) },
	)
}

func (b *Bollinger) emit(get func(ago int) float64) {
	midV := b.mid.Value()
	top, bot, pctb := b.bands(get, midV, get(0))
	b.midOut.Append(midV)
	b.topOut.Append(top)
	b.botOut.Append(bot)
	b.pctbOut.Append(pctb)
}

func (b *Bollinger) RunBatch(n int) {
	b.mid.RunBatch(n)
	indicator.RunOnce(b.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				b.midOut.Append(linebuf.NaN)
				b.topOut.Append(linebuf.NaN)
				b.botOut.Append(linebuf.NaN)
				b.pctbOut.Append(linebuf.NaN)
			}
		},
		func(from, to int) { b.emitBatch(from, to, n) },
		func(from, to int) { b.emitBatch(from, to, n) },
	)
}

func (b *Bollinger) emitBatch(from, to, n int) {
	for t := from; t < to; t++ {
		getAt := func(ago int) float64 { return indicator.AbsGet(b.in.L, t+ago, n) }
		ago := -(n - 1 - t)
		midV := b.mid.Lines().Primary().Get(ago)
		top, bot, pctb := b.bands(getAt, midV, getAt(0))
		b.midOut.Append(midV)
		b.topOut.Append(top)
		b.botOut.Append(bot)
		b.pctbOut.Append(pctb)
	}
}
