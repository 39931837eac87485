// Package ohlc implements the multi-line indicators of spec.md §4.5 that
// consume more than a single input line: Ichimoku, Heikin-Ashi, Directional
// Movement/ADX, Stochastic, Vortex, Fractal and Lowest/Highest. Every
// constructor here takes a feed.OHLC rather than a single indicator.Source.
package ohlc

import (
	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// HeikinAshi synthesizes smoothed OHLC candles from the underlying feed
// (spec.md §4.5.2). mp = 2: the recurrence's own seed is computed at t=0,
// but that bar is not reported as valid output since the open/close
// recurrence has nothing prior to reference yet (spec.md §4.5.2).
type HeikinAshi struct {
	indicator.Base
	open, high, low, close        *linebuf.Line
	haOpen, haHigh, haLow, haClose *linebuf.Line

	prevOpen, prevClose float64
}

// NewHeikinAshi constructs a Heikin-Ashi transform over the given OHLC feed.
func NewHeikinAshi(f feed.OHLC) *HeikinAshi {
	lines := linebuf.NewCollection()
	h := &HeikinAshi{
		open: feed.OpenLine(f), high: feed.HighLine(f), low: feed.LowLine(f), close: feed.CloseLine(f),
		haOpen:  lines.AddNamed("ha_open"),
		haHigh:  lines.AddNamed("ha_high"),
		haLow:   lines.AddNamed("ha_low"),
		haClose: lines.AddNamed("ha_close"),
	}
	h.Base = indicator.NewBase(lines, 2)
	return h
}

// recur advances the open/close recurrence state and returns this bar's
// full synthetic candle, seeding haOpen from (o+c)/2 on the very first call.
func (h *HeikinAshi) recur(o, hi, lo, c float64, first bool) (haOpen, haHigh, haLow, haClose float64) {
	haClose = (o + hi + lo + c) / 4
	if first {
		haOpen = (o + c) / 2
	} else {
		haOpen = (h.prevOpen + h.prevClose) / 2
	}
	haHigh = maxOf3(hi, haOpen, haClose)
	haLow = minOf3(lo, haOpen, haClose)
	h.prevOpen, h.prevClose = haOpen, haClose
	return haOpen, haHigh, haLow, haClose
}

func maxOf3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minOf3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func (h *HeikinAshi) appendNaN() {
	h.haOpen.Append(linebuf.NaN)
	h.haHigh.Append(linebuf.NaN)
	h.haLow.Append(linebuf.NaN)
	h.haClose.Append(linebuf.NaN)
}

func (h *HeikinAshi) appendCandle(o, hi, lo, c float64) {
	h.haOpen.Append(o)
	h.haHigh.Append(hi)
	h.haLow.Append(lo)
	h.haClose.Append(c)
}

func (h *HeikinAshi) Tick() {
	first := h.Len() == 0
	o, hi, lo, c := h.recur(h.open.Get(0), h.high.Get(0), h.low.Get(0), h.close.Get(0), first)
	indicator.Step(h.Len(), h.MinPeriod(),
		func() { h.appendNaN() },
		func() { h.appendCandle(o, hi, lo, c) },
		func() { h.appendCandle(o, hi, lo, c) },
	)
}

func (h *HeikinAshi) RunBatch(n int) {
	candles := make([][4]float64, n)
	for t := 0; t < n; t++ {
		o, hi, lo, c := h.recur(
			indicator.AbsGet(h.open, t, n), indicator.AbsGet(h.high, t, n),
			indicator.AbsGet(h.low, t, n), indicator.AbsGet(h.close, t, n),
			t == 0,
		)
		candles[t] = [4]float64{o, hi, lo, c}
	}
	indicator.RunOnce(h.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				h.appendNaN()
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				ca := candles[t]
				h.appendCandle(ca[0], ca[1], ca[2], ca[3])
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				ca := candles[t]
				h.appendCandle(ca[0], ca[1], ca[2], ca[3])
			}
		},
	)
}
