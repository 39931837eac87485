package ohlc

import (
	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// Fractal marks local extrema in a symmetric window (spec.md §4.5.4). A
// fractal can only be confirmed once `BarDist` bars have elapsed past its
// candidate center, so each bar first appends a NaN placeholder for both
// output lines and then, once enough history exists, corrects the
// already-appended bar at the center position via Line.Set — the shift is
// a property of line emission, the same technique Ichimoku uses for its
// backward-shifted chikou line (spec.md §4.5.1).
//
// BarDist and ShiftToPotentialFractal are carried over from the original
// implementation's fractal.h (SPEC_FULL.md §5) as the same value: the
// number of bars on each side of the candidate center that must confirm it
// as a strict extremum.
type Fractal struct {
	indicator.Base
	period         int
	BarDist        int
	high, low      *linebuf.Line
	upOut, downOut *linebuf.Line
}

// NewFractal constructs a Fractal detector with the given window period.
// ShiftToPotentialFractal equals BarDist = period/2.
func NewFractal(f feed.OHLC, period int) (*Fractal, error) {
	if period < 3 || period%2 == 0 {
		return nil, indicator.ErrInvalidParameter
	}
	bardist := period / 2
	lines := linebuf.NewCollection()
	fr := &Fractal{
		period: period, BarDist: bardist,
		high: feed.HighLine(f), low: feed.LowLine(f),
	}
	fr.upOut = lines.AddNamed("up")
	fr.downOut = lines.AddNamed("down")
	fr.Base = indicator.NewBase(lines, period)
	return fr, nil
}

// ShiftToPotentialFractal is an alias for BarDist, named to match the
// original's parameter (SPEC_FULL.md §5).
func (fr *Fractal) ShiftToPotentialFractal() int { return fr.BarDist }

// absGetter returns a function reading line `l` by absolute bar index,
// valid regardless of how many bars l currently holds, since it always
// reads relative to l's own current cursor.
func absGetter(l *linebuf.Line) func(idx int) float64 {
	return func(idx int) float64 { return l.Get(idx - l.Cursor()) }
}

// checkCenter tests the absolute bar index `center` for a strict extremum
// against the BarDist bars on either side.
func (fr *Fractal) checkCenter(getHigh, getLow func(idx int) float64, center int) (up, down bool, highV, lowV float64) {
	highV, lowV = getHigh(center), getLow(center)
	up, down = true, true
	for i := 1; i <= fr.BarDist; i++ {
		if getHigh(center-i) >= highV || getHigh(center+i) >= highV {
			up = false
		}
		if getLow(center-i) <= lowV || getLow(center+i) <= lowV {
			down = false
		}
	}
	return up, down, highV, lowV
}

func (fr *Fractal) Tick() {
	fr.upOut.Append(linebuf.NaN)
	fr.downOut.Append(linebuf.NaN)
	if fr.Len() < fr.period {
		return
	}
	center := fr.high.Cursor() - fr.BarDist
	up, down, highV, lowV := fr.checkCenter(absGetter(fr.high), absGetter(fr.low), center)
	ago := center - fr.upOut.Cursor()
	if up {
		fr.upOut.Set(ago, highV)
	}
	if down {
		fr.downOut.Set(ago, lowV)
	}
}

func (fr *Fractal) RunBatch(n int) {
	for t := 0; t < n; t++ {
		fr.upOut.Append(linebuf.NaN)
		fr.downOut.Append(linebuf.NaN)
	}
	getHigh := func(idx int) float64 { return indicator.AbsGet(fr.high, idx, n) }
	getLow := func(idx int) float64 { return indicator.AbsGet(fr.low, idx, n) }
	for t := fr.period - 1; t < n; t++ {
		center := t - fr.BarDist
		up, down, highV, lowV := fr.checkCenter(getHigh, getLow, center)
		ago := center - (n - 1)
		if up {
			fr.upOut.Set(ago, highV)
		}
		if down {
			fr.downOut.Set(ago, lowV)
		}
	}
}
