package ohlc

import (
	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/linebuf"
)

// Stochastic is the %K/%D oscillator (spec.md §4.5.4), optionally slowed by
// pre-smoothing %K with an SMA of period DSlow before the %D smoothing is
// applied (the "slow stochastic" variant).
type Stochastic struct {
	indicator.Base
	period              int
	high, low, close    *linebuf.Line
	lowest              *Lowest
	highest             *Highest
	rawK                *linebuf.Line // manufactured: unsmoothed %K
	slowK               *ma.SMA       // nil when not slowed
	percD               *ma.SMA
	kOut, dOut          *linebuf.Line
}

// NewStochastic constructs a Stochastic with window P, %D smoothing period
// D, and optional slow-%K smoothing period dSlow (0 disables slowing).
func NewStochastic(f feed.OHLC, period, d, dSlow int) (*Stochastic, error) {
	high, low, close := feed.HighLine(f), feed.LowLine(f), feed.CloseLine(f)
	lowest, err := NewLowest(indicator.FromLine(low), period)
	if err != nil {
		return nil, err
	}
	highest, err := NewHighest(indicator.FromLine(high), period)
	if err != nil {
		return nil, err
	}
	rawK := linebuf.New()
	kMP := lowest.MinPeriod()

	s := &Stochastic{
		period: period, high: high, low: low, close: close,
		lowest: lowest, highest: highest, rawK: rawK,
	}

	kSource := indicator.Source{L: rawK, MP: kMP}
	if dSlow > 0 {
		slowK, err := ma.NewSMA(kSource, dSlow)
		if err != nil {
			return nil, err
		}
		s.slowK = slowK
		kSource = indicator.FromOutput(slowK, slowK.Lines().Primary())
	}
	percD, err := ma.NewSMA(kSource, d)
	if err != nil {
		return nil, err
	}
	s.percD = percD

	lines := linebuf.NewCollection()
	s.kOut = lines.AddNamed("%K")
	s.dOut = lines.AddNamed("%D")
	s.Base = indicator.NewBase(lines, percD.MinPeriod())
	return s, nil
}

func (s *Stochastic) rawKValue(lo, hi, c float64) float64 {
	width := hi - lo
	if width == 0 {
		return linebuf.NaN
	}
	return 100.0 * (c - lo) / width
}

func (s *Stochastic) Tick() {
	s.lowest.Tick()
	s.highest.Tick()
	s.rawK.Append(s.rawKValue(s.lowest.Lines().Primary().Get(0), s.highest.Lines().Primary().Get(0), s.close.Get(0)))
	kLine := s.rawK
	if s.slowK != nil {
		s.slowK.Tick()
		kLine = s.slowK.Lines().Primary()
	}
	s.percD.Tick()
	s.kOut.Append(kLine.Get(0))
	s.dOut.Append(s.percD.Value())
}

func (s *Stochastic) RunBatch(n int) {
	s.lowest.RunBatch(n)
	s.highest.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		s.rawK.Append(s.rawKValue(
			s.lowest.Lines().Primary().Get(ago), s.highest.Lines().Primary().Get(ago),
			indicator.AbsGet(s.close, t, n),
		))
	}
	kLine := s.rawK
	if s.slowK != nil {
		s.slowK.RunBatch(n)
		kLine = s.slowK.Lines().Primary()
	}
	s.percD.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		s.kOut.Append(kLine.Get(ago))
		s.dOut.Append(s.percD.Lines().Primary().Get(ago))
	}
}
