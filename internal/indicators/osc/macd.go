// Package osc implements the oscillator/band family of spec.md §4.4: MACD,
// PPO/PriceOsc, Bollinger Bands, TRIX, TSI, Ultimate Oscillator, the
// DEMA/TEMA/WMA oscillator variants, and generic MA envelopes. Every
// indicator here composes the ma package's building blocks the same way
// ma's own composites (DEMA, TEMA...) compose EMAs: internal sub-indicators
// are driven directly by the owning Tick/RunBatch and never exposed to the
// pipeline driver.
package osc

import (
	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/linebuf"
)

// MACD is moving-average convergence/divergence: the spread between a fast
// and slow EMA, plus a signal EMA of that spread (spec.md §4.4.1).
// mp = slow + sig - 1.
type MACD struct {
	indicator.Base
	fast, slow *ma.EMA
	signal     *ma.EMA
	spread     *linebuf.Line // manufactured: fast - slow, feeds the signal EMA
	macdOut    *linebuf.Line
	signalOut  *linebuf.Line
	histoOut   *linebuf.Line
}

// NewMACD constructs a MACD with the given fast, slow and signal periods.
func NewMACD(in indicator.Source, fastP, slowP, sigP int) (*MACD, error) {
	fast, err := ma.NewEMA(in, fastP)
	if err != nil {
		return nil, err
	}
	slow, err := ma.NewEMA(in, slowP)
	if err != nil {
		return nil, err
	}
	spread := linebuf.New()
	// spread is the pointwise difference of two lines with differing
	// warmups: it only becomes valid once the slower of the two does.
	spreadMP := fast.MinPeriod()
	if slow.MinPeriod() > spreadMP {
		spreadMP = slow.MinPeriod()
	}
	signal, err := ma.NewEMA(indicator.Source{L: spread, MP: spreadMP}, sigP)
	if err != nil {
		return nil, err
	}

	lines := linebuf.NewCollection()
	macdOut := lines.AddNamed("macd")
	signalOut := lines.AddNamed("signal")
	histoOut := lines.AddNamed("histo")

	mp := spreadMP + sigP - 1
	m := &MACD{
		fast: fast, slow: slow, signal: signal,
		spread: spread, macdOut: macdOut, signalOut: signalOut, histoOut: histoOut,
	}
	m.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return m, nil
}

func (m *MACD) Tick() {
	m.fast.Tick()
	m.slow.Tick()
	spread := m.fast.Value() - m.slow.Value()
	m.spread.Append(spread)
	m.signal.Tick()
	m.macdOut.Append(spread)
	sig := m.signal.Value()
	m.signalOut.Append(sig)
	m.histoOut.Append(spread - sig)
}

func (m *MACD) RunBatch(n int) {
	m.fast.RunBatch(n)
	m.slow.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		m.spread.Append(m.fast.Lines().Primary().Get(ago) - m.slow.Lines().Primary().Get(ago))
	}
	m.signal.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		spread := m.spread.Get(ago)
		sig := m.signal.Lines().Primary().Get(ago)
		m.macdOut.Append(spread)
		m.signalOut.Append(sig)
		m.histoOut.Append(spread - sig)
	}
}
