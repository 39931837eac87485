package osc

import (
	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/linebuf"
)

// Denominator selects which EMA normalizes a PPO's spread (spec.md §4.4.2,
// §6.3 {denominator: long, short}).
type Denominator int

const (
	// DenomLong divides by the slow EMA.
	DenomLong Denominator = iota
	// DenomShort divides by the fast EMA.
	DenomShort
)

// PPO is the percentage price oscillator: a MACD-shaped spread normalized
// by one of its own EMAs, expressed as a percentage (spec.md §4.4.2).
// mp = max(fast, slow) + sig - 1.
type PPO struct {
	indicator.Base
	fast, slow *ma.EMA
	signal     *ma.EMA
	denom      Denominator
	spread     *linebuf.Line // manufactured: 100*(fast-slow)/D
	ppoOut     *linebuf.Line
	signalOut  *linebuf.Line
	histoOut   *linebuf.Line
}

// NewPPO constructs a PPO with the given fast, slow and signal periods.
func NewPPO(in indicator.Source, fastP, slowP, sigP int, denom Denominator) (*PPO, error) {
	fast, err := ma.NewEMA(in, fastP)
	if err != nil {
		return nil, err
	}
	slow, err := ma.NewEMA(in, slowP)
	if err != nil {
		return nil, err
	}
	spread := linebuf.New()
	spreadMP := fast.MinPeriod()
	if slow.MinPeriod() > spreadMP {
		spreadMP = slow.MinPeriod()
	}
	signal, err := ma.NewEMA(indicator.Source{L: spread, MP: spreadMP}, sigP)
	if err != nil {
		return nil, err
	}

	lines := linebuf.NewCollection()
	ppoOut := lines.AddNamed("ppo")
	signalOut := lines.AddNamed("signal")
	histoOut := lines.AddNamed("histo")

	mp := spreadMP + sigP - 1
	p := &PPO{
		fast: fast, slow: slow, signal: signal, denom: denom,
		spread: spread, ppoOut: ppoOut, signalOut: signalOut, histoOut: histoOut,
	}
	p.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return p, nil
}

func (p *PPO) denominator(fastV, slowV float64) float64 {
	if p.denom == DenomShort {
		return fastV
	}
	return slowV
}

func (p *PPO) ppoValue(fastV, slowV float64) float64 {
	d := p.denominator(fastV, slowV)
	if d == 0 {
		return linebuf.NaN
	}
	return 100.0 * (fastV - slowV) / d
}

func (p *PPO) Tick() {
	p.fast.Tick()
	p.slow.Tick()
	v := p.ppoValue(p.fast.Value(), p.slow.Value())
	p.spread.Append(v)
	p.signal.Tick()
	p.ppoOut.Append(v)
	sig := p.signal.Value()
	p.signalOut.Append(sig)
	p.histoOut.Append(v - sig)
}

func (p *PPO) RunBatch(n int) {
	p.fast.RunBatch(n)
	p.slow.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		v := p.ppoValue(p.fast.Lines().Primary().Get(ago), p.slow.Lines().Primary().Get(ago))
		p.spread.Append(v)
	}
	p.signal.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		v := p.spread.Get(ago)
		sig := p.signal.Lines().Primary().Get(ago)
		p.ppoOut.Append(v)
		p.signalOut.Append(sig)
		p.histoOut.Append(v - sig)
	}
}

// PriceOsc is the unnormalized spread EMA_fast - EMA_slow (spec.md §4.4.2).
// mp = max(fast, slow).
type PriceOsc struct {
	indicator.Base
	fast, slow *ma.EMA
	out        *linebuf.Line
}

// NewPriceOsc constructs a PriceOsc with the given fast/slow periods.
func NewPriceOsc(in indicator.Source, fastP, slowP int) (*PriceOsc, error) {
	fast, err := ma.NewEMA(in, fastP)
	if err != nil {
		return nil, err
	}
	slow, err := ma.NewEMA(in, slowP)
	if err != nil {
		return nil, err
	}
	mp := fast.MinPeriod()
	if slow.MinPeriod() > mp {
		mp = slow.MinPeriod()
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("priceosc")
	po := &PriceOsc{fast: fast, slow: slow, out: out}
	po.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return po, nil
}

func (po *PriceOsc) Tick() {
	po.fast.Tick()
	po.slow.Tick()
	po.out.Append(po.fast.Value() - po.slow.Value())
}

func (po *PriceOsc) RunBatch(n int) {
	po.fast.RunBatch(n)
	po.slow.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		po.out.Append(po.fast.Lines().Primary().Get(ago) - po.slow.Lines().Primary().Get(ago))
	}
}
