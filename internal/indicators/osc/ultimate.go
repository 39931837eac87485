package osc

import (
	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// Ultimate is the Ultimate Oscillator: a weighted blend of three rolling
// buying-pressure/true-range ratios over increasing periods (spec.md
// §4.4.6). mp = p3 + 1 (one bar needed for the very first previous-close).
type Ultimate struct {
	indicator.Base
	p1, p2, p3       int
	high, low, close *linebuf.Line
	bp, tr           *linebuf.Line // manufactured per-bar primitives
	out              *linebuf.Line
}

// NewUltimate constructs an Ultimate Oscillator over the given OHLC source
// with periods p1 < p2 < p3.
func NewUltimate(f feed.OHLC, p1, p2, p3 int) (*Ultimate, error) {
	if p1 < 1 || p2 <= p1 || p3 <= p2 {
		return nil, indicator.ErrInvalidParameter
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("uo")
	u := &Ultimate{
		p1: p1, p2: p2, p3: p3,
		high: feed.HighLine(f), low: feed.LowLine(f), close: feed.CloseLine(f),
		bp: linebuf.New(), tr: linebuf.New(), out: out,
	}
	u.Base = indicator.NewBase(lines, p3+1)
	return u, nil
}

// primitives computes this bar's buying pressure and true range against the
// previous close (spec.md §4.4.6). At the very first bar (no previous
// close), prevClose falls back to the current close.
func (u *Ultimate) primitives(high, low, close, prevClose float64) (bp, tr float64) {
	minLP := low
	if prevClose < minLP {
		minLP = prevClose
	}
	maxHP := high
	if prevClose > maxHP {
		maxHP = prevClose
	}
	return close - minLP, maxHP - minLP
}

// uoValue computes the weighted Ultimate Oscillator value from bp/tr windows
// ending at bar `ago` (0 for the current bar in streaming mode).
func (u *Ultimate) uoValue(ago int) float64 {
	avg := func(period int) float64 {
		trSum, bpSum := 0.0, 0.0
		for i := 0; i < period; i++ {
			trSum += u.tr.Get(ago - i)
			bpSum += u.bp.Get(ago - i)
		}
		if trSum == 0 {
			return 0
		}
		return bpSum / trSum
	}
	av1, av2, av3 := avg(u.p1), avg(u.p2), avg(u.p3)
	return 100.0 * (4*av1 + 2*av2 + av3) / 7.0
}

func (u *Ultimate) Tick() {
	prevClose := u.close.Get(0)
	if u.close.Len() > 1 {
		prevClose = u.close.Get(-1)
	}
	bp, tr := u.primitives(u.high.Get(0), u.low.Get(0), u.close.Get(0), prevClose)
	u.bp.Append(bp)
	u.tr.Append(tr)
	indicator.Step(u.Len(), u.MinPeriod(),
		func() { u.out.Append(linebuf.NaN) },
		func() { u.out.Append(u.uoValue(0)) },
		func() { u.out.Append(u.uoValue(0)) },
	)
}

func (u *Ultimate) RunBatch(n int) {
	for t := 0; t < n; t++ {
		prevClose := indicator.AbsGet(u.close, t, n)
		if t > 0 {
			prevClose = indicator.AbsGet(u.close, t-1, n)
		}
		bp, tr := u.primitives(
			indicator.AbsGet(u.high, t, n), indicator.AbsGet(u.low, t, n),
			indicator.AbsGet(u.close, t, n), prevClose,
		)
		u.bp.Append(bp)
		u.tr.Append(tr)
	}
	indicator.RunOnce(u.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				u.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				u.out.Append(u.uoValue(-(n - 1 - t)))
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				u.out.Append(u.uoValue(-(n - 1 - t)))
			}
		},
	)
}
