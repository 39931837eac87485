package ohlc

import (
	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// ichimokuWindow bundles the paired Highest/Lowest sub-indicators driving a
// single Ichimoku window (tenkan, kijun, and the senkou-B lookback all use
// the same rolling max/min shape, just different periods).
type ichimokuWindow struct {
	hi *Highest
	lo *Lowest
}

func newIchimokuWindow(high, low *linebuf.Line, period int) (*ichimokuWindow, error) {
	hi, err := NewHighest(indicator.FromLine(high), period)
	if err != nil {
		return nil, err
	}
	lo, err := NewLowest(indicator.FromLine(low), period)
	if err != nil {
		return nil, err
	}
	return &ichimokuWindow{hi: hi, lo: lo}, nil
}

func (w *ichimokuWindow) tick()          { w.hi.Tick(); w.lo.Tick() }
func (w *ichimokuWindow) runBatch(n int) { w.hi.RunBatch(n); w.lo.RunBatch(n) }
func (w *ichimokuWindow) mid(ago int) float64 {
	return (w.hi.Lines().Primary().Get(ago) + w.lo.Lines().Primary().Get(ago)) / 2
}

// Ichimoku is the five-line cloud indicator (spec.md §4.5.1). Its lines
// become valid at different bar counts by construction — tenkan/kijun
// follow their own windows, the senkou spans are lagged reads of an
// internal average shifted forward L bars, and chikou is close shifted
// backward C bars — so, unlike single-window indicators, Ichimoku does not
// drive every line through one shared Step dispatch; each line tracks its
// own readiness. mp = max(T, K, S) + L, the bar count at which tenkan,
// kijun and both senkou spans have a value; chikou is filled backward, so
// its newest C bars stay NaN.
//
// The forward shift of senkou_A/senkou_B is implemented as a plain lagged
// read of an internal running average (avgTK, avgHL) rather than writing
// ahead of the cursor: senkou_A[t] = avg(tenkan[t-L], kijun[t-L]) reads
// purely from the past, so no retroactive Set is needed there. chikou is
// the opposite case — chikou[t-C] = close[t] is only known once bar t
// arrives — and is built with the same NaN-then-Set backfill technique
// Fractal uses for its lagged confirmation.
type Ichimoku struct {
	indicator.Base
	tenkanP, kijunP, senkouP, lead, chikouLag int

	close *linebuf.Line

	tenkan, kijun, senkou *ichimokuWindow

	avgTK *linebuf.Line // manufactured: (tenkan+kijun)/2, lagged into senkou_A
	avgHL *linebuf.Line // manufactured: senkou window mid, lagged into senkou_B

	tenkanOut, kijunOut, senkouAOut, senkouBOut, chikouOut *linebuf.Line
}

// NewIchimoku constructs an Ichimoku with tenkan window T, kijun window K,
// senkou-B window S, forward displacement L, and chikou backward shift C.
func NewIchimoku(f feed.OHLC, tenkanP, kijunP, senkouP, lead, chikouLag int) (*Ichimoku, error) {
	high, low, close := feed.HighLine(f), feed.LowLine(f), feed.CloseLine(f)

	tenkan, err := newIchimokuWindow(high, low, tenkanP)
	if err != nil {
		return nil, err
	}
	kijun, err := newIchimokuWindow(high, low, kijunP)
	if err != nil {
		return nil, err
	}
	senkou, err := newIchimokuWindow(high, low, senkouP)
	if err != nil {
		return nil, err
	}

	ic := &Ichimoku{
		tenkanP: tenkanP, kijunP: kijunP, senkouP: senkouP, lead: lead, chikouLag: chikouLag,
		close:  close,
		tenkan: tenkan, kijun: kijun, senkou: senkou,
		avgTK: linebuf.New(), avgHL: linebuf.New(),
	}

	lines := linebuf.NewCollection()
	ic.tenkanOut = lines.AddNamed("tenkan_sen")
	ic.kijunOut = lines.AddNamed("kijun_sen")
	ic.senkouAOut = lines.AddNamed("senkou_span_a")
	ic.senkouBOut = lines.AddNamed("senkou_span_b")
	ic.chikouOut = lines.AddNamed("chikou_span")

	mp := tenkanP
	if kijunP > mp {
		mp = kijunP
	}
	if senkouP > mp {
		mp = senkouP
	}
	mp += lead
	ic.Base = indicator.NewBase(lines, mp)
	return ic, nil
}

func (ic *Ichimoku) Tick() {
	ic.tenkan.tick()
	ic.kijun.tick()
	ic.senkou.tick()

	tenkanV := ic.tenkan.mid(0)
	kijunV := ic.kijun.mid(0)
	ic.avgTK.Append((tenkanV + kijunV) / 2)
	ic.avgHL.Append(ic.senkou.mid(0))

	if ic.Len() < ic.tenkanP-1 {
		ic.tenkanOut.Append(linebuf.NaN)
	} else {
		ic.tenkanOut.Append(tenkanV)
	}
	if ic.Len() < ic.kijunP-1 {
		ic.kijunOut.Append(linebuf.NaN)
	} else {
		ic.kijunOut.Append(kijunV)
	}

	if ic.avgTK.Len() > ic.lead {
		ic.senkouAOut.Append(ic.avgTK.Get(-ic.lead))
		ic.senkouBOut.Append(ic.avgHL.Get(-ic.lead))
	} else {
		ic.senkouAOut.Append(linebuf.NaN)
		ic.senkouBOut.Append(linebuf.NaN)
	}

	ic.chikouOut.Append(linebuf.NaN)
	if ic.close.Len() > ic.chikouLag {
		ic.chikouOut.Set(-ic.chikouLag, ic.close.Get(0))
	}
}

func (ic *Ichimoku) RunBatch(n int) {
	ic.tenkan.runBatch(n)
	ic.kijun.runBatch(n)
	ic.senkou.runBatch(n)

	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		tenkanV := ic.tenkan.mid(ago)
		kijunV := ic.kijun.mid(ago)
		ic.avgTK.Append((tenkanV + kijunV) / 2)
		ic.avgHL.Append(ic.senkou.mid(ago))

		if t < ic.tenkanP-1 {
			ic.tenkanOut.Append(linebuf.NaN)
		} else {
			ic.tenkanOut.Append(tenkanV)
		}
		if t < ic.kijunP-1 {
			ic.kijunOut.Append(linebuf.NaN)
		} else {
			ic.kijunOut.Append(kijunV)
		}

		if t >= ic.lead {
			ic.senkouAOut.Append(ic.avgTK.Get(-ic.lead))
			ic.senkouBOut.Append(ic.avgHL.Get(-ic.lead))
		} else {
			ic.senkouAOut.Append(linebuf.NaN)
			ic.senkouBOut.Append(linebuf.NaN)
		}
		ic.chikouOut.Append(linebuf.NaN)
	}

	for t := 0; t+ic.chikouLag < n; t++ {
		closeAtFuture := indicator.AbsGet(ic.close, t+ic.chikouLag, n)
		ago := t - (n - 1)
		ic.chikouOut.Set(ago, closeAtFuture)
	}
}
