package osc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/linebuf"
)

func ramp(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = base + float64(i)*0.7 + math.Sin(float64(i)*0.2)*1.5
	}
	return out
}

func assertNaNAwareEqual(t *testing.T, want, got []float64) {
	t.Helper()
	require.Equal(t, len(want), len(got))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.Truef(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDeltaf(t, want[i], got[i], 1e-6, "index %d", i)
	}
}

func feedBar(f *feed.Feed, o, h, l, c float64) {
	f.Append(feed.Bar{Open: o, High: h, Low: l, Close: c})
}

func TestMACD_StreamingBatchParityAndHistogramIdentity(t *testing.T) {
	vals := ramp(80, 100)

	streamLine := linebuf.New()
	streamMACD, err := NewMACD(indicator.FromLine(streamLine), 12, 26, 9)
	require.NoError(t, err)
	for _, v := range vals {
		streamLine.Append(v)
		streamMACD.Tick()
	}
	streamMACDOut := streamMACD.macdOut.Slice()
	streamSignalOut := streamMACD.signalOut.Slice()
	streamHistoOut := streamMACD.histoOut.Slice()

	batchLine := linebuf.New()
	batchMACD, err := NewMACD(indicator.FromLine(batchLine), 12, 26, 9)
	require.NoError(t, err)
	for _, v := range vals {
		batchLine.Append(v)
	}
	batchMACD.RunBatch(len(vals))

	assertNaNAwareEqual(t, streamMACDOut, batchMACD.macdOut.Slice())
	assertNaNAwareEqual(t, streamSignalOut, batchMACD.signalOut.Slice())
	assertNaNAwareEqual(t, streamHistoOut, batchMACD.histoOut.Slice())

	// P8: histogram = macd - signal, exactly, same-order subtraction.
	for i := range streamMACDOut {
		if math.IsNaN(streamMACDOut[i]) || math.IsNaN(streamSignalOut[i]) {
			continue
		}
		assert.InDelta(t, streamMACDOut[i]-streamSignalOut[i], streamHistoOut[i], 1e-12)
	}

	require.Equal(t, 26+9-1, streamMACD.MinPeriod())
}

func TestPPO_ConstantSeriesGivesZero(t *testing.T) {
	in := linebuf.New()
	ppo, err := NewPPO(indicator.FromLine(in), 12, 26, 9, DenomLong)
	require.NoError(t, err)
	for i := 0; i < 60; i++ {
		in.Append(50.0)
		ppo.Tick()
	}
	// P5: constant series -> oscillator settles to 0 once fully warmed up.
	assert.InDelta(t, 0.0, ppo.ppoOut.Get(0), 1e-9)
	assert.InDelta(t, 0.0, ppo.signalOut.Get(0), 1e-9)
	assert.InDelta(t, 0.0, ppo.histoOut.Get(0), 1e-9)
}

func TestPPO_LongVsShortDenominatorDiffer(t *testing.T) {
	vals := ramp(60, 100)

	longIn := linebuf.New()
	longPPO, err := NewPPO(indicator.FromLine(longIn), 12, 26, 9, DenomLong)
	require.NoError(t, err)
	shortIn := linebuf.New()
	shortPPO, err := NewPPO(indicator.FromLine(shortIn), 12, 26, 9, DenomShort)
	require.NoError(t, err)

	for _, v := range vals {
		longIn.Append(v)
		longPPO.Tick()
		shortIn.Append(v)
		shortPPO.Tick()
	}
	assert.NotEqual(t, longPPO.ppoOut.Get(0), shortPPO.ppoOut.Get(0))
}

func TestBollinger_BandOrderingAndSymmetry(t *testing.T) {
	in := linebuf.New()
	b, err := NewBollinger(indicator.FromLine(in), 20, 2.0)
	require.NoError(t, err)
	for _, v := range ramp(40, 100) {
		in.Append(v)
		b.Tick()
	}
	for ago := 0; ago > -15; ago-- {
		mid, top, bot := b.midOut.Get(ago), b.topOut.Get(ago), b.botOut.Get(ago)
		if math.IsNaN(mid) {
			continue
		}
		// P6
		assert.LessOrEqual(t, bot, mid)
		assert.LessOrEqual(t, mid, top)
		assert.InDelta(t, top-mid, mid-bot, 1e-9)
	}
}

func TestBollinger_ConstantSeriesCollapsesBands(t *testing.T) {
	in := linebuf.New()
	b, err := NewBollinger(indicator.FromLine(in), 10, 2.0)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		in.Append(77.0)
		b.Tick()
	}
	assert.InDelta(t, 77.0, b.midOut.Get(0), 1e-9)
	assert.InDelta(t, 77.0, b.topOut.Get(0), 1e-9)
	assert.InDelta(t, 77.0, b.botOut.Get(0), 1e-9)
}

func TestTRIX_StreamingBatchParity(t *testing.T) {
	vals := ramp(90, 100)

	streamLine := linebuf.New()
	streamTRIX, err := NewTRIX(indicator.FromLine(streamLine), 15, 1, 9)
	require.NoError(t, err)
	for _, v := range vals {
		streamLine.Append(v)
		streamTRIX.Tick()
	}
	streamOut := streamTRIX.out.Slice()
	streamSig := streamTRIX.signalOut.Slice()

	batchLine := linebuf.New()
	batchTRIX, err := NewTRIX(indicator.FromLine(batchLine), 15, 1, 9)
	require.NoError(t, err)
	for _, v := range vals {
		batchLine.Append(v)
	}
	batchTRIX.RunBatch(len(vals))

	assertNaNAwareEqual(t, streamOut, batchTRIX.out.Slice())
	assertNaNAwareEqual(t, streamSig, batchTRIX.signalOut.Slice())
	assert.Equal(t, 3*15-2+1, streamTRIX.MinPeriod())
}

func TestTSI_BoundedAndMinPeriod(t *testing.T) {
	in := linebuf.New()
	tsi, err := NewTSI(indicator.FromLine(in), 1, 25, 13)
	require.NoError(t, err)
	require.Equal(t, 1+25+13-1, tsi.MinPeriod())

	for _, v := range ramp(70, 100) {
		in.Append(v)
		tsi.Tick()
	}
	for ago := 0; ago > -20; ago-- {
		v := tsi.out.Get(ago)
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, -100.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestUltimate_MinPeriodAndBounded(t *testing.T) {
	f := feed.New()
	u, err := NewUltimate(f, 7, 14, 28)
	require.NoError(t, err)
	require.Equal(t, 29, u.MinPeriod())

	for i := 0; i < 50; i++ {
		base := 100 + float64(i)
		feedBar(f, base, base+2, base-2, base+1)
		u.Tick()
	}
	for ago := 0; ago > -10; ago-- {
		v := u.out.Get(ago)
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestUltimate_RejectsUnorderedPeriods(t *testing.T) {
	f := feed.New()
	_, err := NewUltimate(f, 14, 7, 28)
	assert.ErrorIs(t, err, indicator.ErrInvalidParameter)
}

func TestDEMAOsc_ConstantSeriesIsZero(t *testing.T) {
	in := linebuf.New()
	osc, err := NewDEMAOsc(indicator.FromLine(in), 8)
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		in.Append(33.0)
		osc.Tick()
	}
	assert.InDelta(t, 0.0, osc.out.Get(0), 1e-9)
}

func TestWMAOsc_StreamingBatchParity(t *testing.T) {
	vals := ramp(50, 100)

	streamLine := linebuf.New()
	streamOsc, err := NewWMAOsc(indicator.FromLine(streamLine), 10)
	require.NoError(t, err)
	for _, v := range vals {
		streamLine.Append(v)
		streamOsc.Tick()
	}
	streamOut := streamOsc.out.Slice()

	batchLine := linebuf.New()
	batchOsc, err := NewWMAOsc(indicator.FromLine(batchLine), 10)
	require.NoError(t, err)
	for _, v := range vals {
		batchLine.Append(v)
	}
	batchOsc.RunBatch(len(vals))

	assertNaNAwareEqual(t, streamOut, batchOsc.out.Slice())
}

func TestEnvelope_WrapsAnySingleLineMA(t *testing.T) {
	in := linebuf.New()
	sma, err := ma.NewSMA(indicator.FromLine(in), 5)
	require.NoError(t, err)
	env, err := NewEnvelope(sma, 2.0)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		in.Append(100.0)
		env.Tick()
	}
	assert.InDelta(t, 100.0, env.midOut.Get(0), 1e-9)
	assert.InDelta(t, 102.0, env.upperOut.Get(0), 1e-9)
	assert.InDelta(t, 98.0, env.lowerOut.Get(0), 1e-9)
}
