package ohlc

import (
	"math"

	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// smma is Wilder's smoothed moving average: a recursive EMA with
// alpha = 1/P, SMA-seeded (spec.md §4.5.3 uses it to smooth +DM/-DM/TR).
// It shares the same kernel discipline as ma.EMA (one pure step function
// driven identically by streaming and batch callers) but lives here since
// DM/ADX is its only consumer and the recurrence is a plain 1/P-alpha EMA,
// not the full ma.EMA type (no separate indicator node, no Lines()).
type smma struct {
	period  int
	prev    float64
	hasPrev bool
}

func newSMMA(period int) *smma { return &smma{period: period} }

func (s *smma) seed(sum float64) float64 {
	s.prev = sum / float64(s.period)
	s.hasPrev = true
	return s.prev
}

func (s *smma) step(cur float64) float64 {
	s.prev = (s.prev*float64(s.period-1) + cur) / float64(s.period)
	return s.prev
}

// DM is the Directional Movement / Average Directional Index family
// (spec.md §4.5.3). mp = 2P + 1 (Wilder's warm-up).
type DM struct {
	indicator.Base
	period           int
	high, low, close *linebuf.Line
	plusDMRaw, minusDMRaw, trRaw *linebuf.Line // manufactured per-bar primitives
	plusDMSm, minusDMSm, trSm    *smma
	dx                           *linebuf.Line // manufactured

	plusDIOut, minusDIOut, dxOut, adxOut *linebuf.Line
	plusDMOut, minusDMOut                *linebuf.Line // supplemented raw smoothed DM (SPEC_FULL §5)

	adxSMMA *smma
}

// NewDM constructs a Directional Movement/ADX indicator of period P over
// the given OHLC feed.
func NewDM(f feed.OHLC, period int) (*DM, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	lines := linebuf.NewCollection()
	d := &DM{
		period: period,
		high:   feed.HighLine(f), low: feed.LowLine(f), close: feed.CloseLine(f),
		plusDMRaw: linebuf.New(), minusDMRaw: linebuf.New(), trRaw: linebuf.New(),
		plusDMSm: newSMMA(period), minusDMSm: newSMMA(period), trSm: newSMMA(period),
		dx:      linebuf.New(),
		adxSMMA: newSMMA(period),
	}
	d.plusDIOut = lines.AddNamed("plusDI")
	d.minusDIOut = lines.AddNamed("minusDI")
	d.dxOut = lines.AddNamed("dx")
	d.adxOut = lines.AddNamed("adx")
	d.plusDMOut = lines.AddNamed("plusDM")
	d.minusDMOut = lines.AddNamed("minusDM")
	d.Base = indicator.NewBase(lines, 2*period+1)
	return d, nil
}

func (d *DM) primitives(high, low, prevHigh, prevLow, prevClose float64) (plusDM, minusDM, tr float64) {
	up := high - prevHigh
	down := prevLow - low
	if up > down && up > 0 {
		plusDM = up
	}
	if down > up && down > 0 {
		minusDM = down
	}
	tr = trueRange(high, low, prevClose)
	return plusDM, minusDM, tr
}

func diValue(smoothedDM, smoothedTR float64) float64 {
	if smoothedTR == 0 {
		return 0
	}
	return 100.0 * smoothedDM / smoothedTR
}

func dxValue(plusDI, minusDI float64) float64 {
	sum := plusDI + minusDI
	if sum == 0 {
		return 0
	}
	return 100.0 * math.Abs(plusDI-minusDI) / sum
}

// recordPrimitives appends this bar's raw +DM/-DM/TR to the three primitive
// lines. It does not smooth them and reports nothing about readiness.
func (d *DM) recordPrimitives(plusDM, minusDM, tr float64) {
	d.plusDMRaw.Append(plusDM)
	d.minusDMRaw.Append(minusDM)
	d.trRaw.Append(tr)
}

// dxReady reports whether ADX's own Wilder smoother has accumulated enough
// real (non-padding) DX values to seed or step. ADX needs one more DX value
// than the DI smoothers needed raw primitives, matching mp = 2*period+1:
// period bars of +DM/-DM/TR warm-up, then period+1 DX bars before ADX seeds.
func (d *DM) dxReady() bool {
	return d.dx.Len() >= d.period+1
}

// smoothCurrent advances the three Wilder smoothers using the primitive
// just recorded by recordPrimitives (always at ago=0 relative to the
// current cursor — identical logic whether driven from Tick or RunBatch,
// since both append exactly one primitive before calling this).
func (d *DM) smoothCurrent() (plusDM, minusDM, tr float64, ok bool) {
	if d.plusDMRaw.Len() < d.period {
		return 0, 0, 0, false
	}
	if !d.plusDMSm.hasPrev {
		sumP, sumM, sumT := 0.0, 0.0, 0.0
		for i := 0; i < d.period; i++ {
			sumP += d.plusDMRaw.Get(-i)
			sumM += d.minusDMRaw.Get(-i)
			sumT += d.trRaw.Get(-i)
		}
		return d.plusDMSm.seed(sumP), d.minusDMSm.seed(sumM), d.trSm.seed(sumT), true
	}
	return d.plusDMSm.step(d.plusDMRaw.Get(0)), d.minusDMSm.step(d.minusDMRaw.Get(0)), d.trSm.step(d.trRaw.Get(0)), true
}

func (d *DM) Tick() {
	if d.high.Len() <= 1 {
		// No prior bar to diff against yet; Wilder's DM primitives start at
		// bar 1, not bar 0 (a self-referential prev would manufacture a
		// spurious TR/DM reading here).
		d.appendNaN()
		return
	}
	prevHigh, prevLow, prevClose := d.high.Get(-1), d.low.Get(-1), d.close.Get(-1)
	plusDM, minusDM, tr := d.primitives(d.high.Get(0), d.low.Get(0), prevHigh, prevLow, prevClose)
	d.recordPrimitives(plusDM, minusDM, tr)

	smP, smM, smT, ok := d.smoothCurrent()
	if !ok {
		d.appendNaN()
		return
	}
	d.emit(smP, smM, smT)
}

func (d *DM) appendNaN() {
	d.plusDIOut.Append(linebuf.NaN)
	d.minusDIOut.Append(linebuf.NaN)
	d.dxOut.Append(linebuf.NaN)
	d.adxOut.Append(linebuf.NaN)
	d.plusDMOut.Append(linebuf.NaN)
	d.minusDMOut.Append(linebuf.NaN)
}

func (d *DM) emit(smP, smM, smT float64) {
	plusDI := diValue(smP, smT)
	minusDI := diValue(smM, smT)
	dxV := dxValue(plusDI, minusDI)
	d.dx.Append(dxV)

	d.plusDIOut.Append(plusDI)
	d.minusDIOut.Append(minusDI)
	d.dxOut.Append(dxV)
	d.plusDMOut.Append(smP)
	d.minusDMOut.Append(smM)

	if !d.dxReady() {
		d.adxOut.Append(linebuf.NaN)
		return
	}
	if !d.adxSMMA.hasPrev {
		sum := 0.0
		for i := 0; i < d.period; i++ {
			sum += d.dx.Get(-i)
		}
		d.adxOut.Append(d.adxSMMA.seed(sum))
		return
	}
	d.adxOut.Append(d.adxSMMA.step(dxV))
}

func (d *DM) RunBatch(n int) {
	for t := 0; t < n; t++ {
		if t == 0 {
			d.appendNaN()
			continue
		}
		prevHigh := indicator.AbsGet(d.high, t-1, n)
		prevLow := indicator.AbsGet(d.low, t-1, n)
		prevClose := indicator.AbsGet(d.close, t-1, n)
		plusDM, minusDM, tr := d.primitives(indicator.AbsGet(d.high, t, n), indicator.AbsGet(d.low, t, n), prevHigh, prevLow, prevClose)
		d.recordPrimitives(plusDM, minusDM, tr)

		smP, smM, smT, ok := d.smoothCurrent()
		if !ok {
			d.appendNaN()
			continue
		}
		d.emit(smP, smM, smT)
	}
}
