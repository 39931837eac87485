package ma

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// series is a small deterministic ramp-with-wobble fixture, long enough to
// exercise every indicator's warmup past its minimum period.
func series(n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = 100 + float64(i)*0.5 + math.Sin(float64(i)*0.3)*2
	}
	return out
}

// runStreaming feeds vals one at a time through in and ticks ind after each,
// returning the resulting output slice.
func runStreaming(in *linebuf.Line, ind indicator.Indicator, vals []float64) []float64 {
	for _, v := range vals {
		in.Append(v)
		ind.Tick()
	}
	return ind.Lines().Primary().Slice()
}

// runBatch appends every value up front then drives a single RunBatch call.
func runBatch(in *linebuf.Line, ind indicator.Indicator, vals []float64) []float64 {
	for _, v := range vals {
		in.Append(v)
	}
	ind.RunBatch(len(vals))
	return ind.Lines().Primary().Slice()
}

// assertNaNAwareEqual compares two float64 slices treating NaN == NaN.
func assertNaNAwareEqual(t *testing.T, want, got []float64) {
	t.Helper()
	require.Equal(t, len(want), len(got), "length mismatch")
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.Truef(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDeltaf(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

// parityCheck builds two fresh instances of an indicator via newFn, drives
// one streaming and one in batch over the same series, and asserts the
// outputs are bit-for-bit (within float rounding) identical — spec.md's
// streaming/batch parity property.
func parityCheck(t *testing.T, newFn func(indicator.Source) (indicator.Indicator, error)) {
	t.Helper()
	vals := series(60)

	streamLine := linebuf.New()
	streamInd, err := newFn(indicator.FromLine(streamLine))
	require.NoError(t, err)
	streamOut := runStreaming(streamLine, streamInd, vals)

	batchLine := linebuf.New()
	batchInd, err := newFn(indicator.FromLine(batchLine))
	require.NoError(t, err)
	batchOut := runBatch(batchLine, batchInd, vals)

	assertNaNAwareEqual(t, streamOut, batchOut)
}

func TestSMA_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewSMA(s, 10) })
}

func TestEMA_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewEMA(s, 10) })
}

func TestWMA_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewWMA(s, 10) })
}

func TestDEMA_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewDEMA(s, 8) })
}

func TestTEMA_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewTEMA(s, 8) })
}

func TestHMA_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewHMA(s, 9) })
}

func TestZLEMA_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewZLEMA(s, 9) })
}

func TestKAMA_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewKAMA(s, 10, 2, 30) })
}

func TestZLIND_StreamingBatchParity(t *testing.T) {
	parityCheck(t, func(s indicator.Source) (indicator.Indicator, error) { return NewZLIND(s, 10, 50) })
}

func TestSMA_MinPeriodAndConstantSeries(t *testing.T) {
	in := linebuf.New()
	sma, err := NewSMA(indicator.FromLine(in), 5)
	require.NoError(t, err)
	require.Equal(t, 5, sma.MinPeriod())

	for i := 0; i < 10; i++ {
		in.Append(42.0)
		sma.Tick()
	}
	out := sma.Lines().Primary()
	for ago := 0; ago > -5; ago-- {
		assert.InDelta(t, 42.0, out.Get(ago), 1e-9)
	}
	// before the window fills, output must be NaN (spec.md I1/I2)
	assert.True(t, math.IsNaN(out.Get(-9)))
}

func TestEMA_MinPeriodAndSeedsFromSMA(t *testing.T) {
	in := linebuf.New()
	ema, err := NewEMA(indicator.FromLine(in), 4)
	require.NoError(t, err)
	require.Equal(t, 4, ema.MinPeriod())

	vals := []float64{10, 12, 14, 16, 18}
	for _, v := range vals {
		in.Append(v)
		ema.Tick()
	}
	// seed at t=3 (mp-1) is the plain mean of the first 4 values: 13
	out := ema.Lines().Primary()
	assert.InDelta(t, 13.0, out.Get(-1), 1e-9)
}

func TestWMA_WeightsFavorRecentBars(t *testing.T) {
	in := linebuf.New()
	wma, err := NewWMA(indicator.FromLine(in), 3)
	require.NoError(t, err)

	for _, v := range []float64{1, 1, 10} {
		in.Append(v)
		wma.Tick()
	}
	// weights 1,2,3 over [1,1,10]: (1*1+2*1+3*10)/6 = 33/6 = 5.5
	assert.InDelta(t, 5.5, wma.Lines().Primary().Get(0), 1e-9)
}

func TestDEMA_MinPeriodIsChainFormula(t *testing.T) {
	in := linebuf.New()
	dema, err := NewDEMA(indicator.FromLine(in), 5)
	require.NoError(t, err)
	// mp = 2P-1 for period 5 => 9
	assert.Equal(t, 9, dema.MinPeriod())
}

func TestHMA_RejectsNonPositivePeriod(t *testing.T) {
	in := linebuf.New()
	_, err := NewHMA(indicator.FromLine(in), 1)
	assert.ErrorIs(t, err, indicator.ErrNonPositivePeriod)
}

func TestKAMA_RejectsBadParameters(t *testing.T) {
	in := linebuf.New()
	_, err := NewKAMA(indicator.FromLine(in), 0, 2, 30)
	assert.ErrorIs(t, err, indicator.ErrNonPositivePeriod)
}

func TestKAMA_FlatSeriesTracksPriceExactly(t *testing.T) {
	in := linebuf.New()
	kama, err := NewKAMA(indicator.FromLine(in), 10, 2, 30)
	require.NoError(t, err)
	for i := 0; i < 30; i++ {
		in.Append(50.0)
		kama.Tick()
	}
	assert.InDelta(t, 50.0, kama.Lines().Primary().Get(0), 1e-9)
}

func TestZLIND_RejectsBadGainLimit(t *testing.T) {
	in := linebuf.New()
	_, err := NewZLIND(indicator.FromLine(in), 10, 0)
	assert.ErrorIs(t, err, indicator.ErrInvalidParameter)
}

func TestZLIND_FlatSeriesConverges(t *testing.T) {
	in := linebuf.New()
	z, err := NewZLIND(indicator.FromLine(in), 10, 50)
	require.NoError(t, err)
	for i := 0; i < 40; i++ {
		in.Append(25.0)
		z.Tick()
	}
	assert.InDelta(t, 25.0, z.Lines().Primary().Get(0), 1e-6)
}

func TestMissingInputRejected(t *testing.T) {
	_, err := NewSMA(indicator.Source{}, 5)
	assert.ErrorIs(t, err, indicator.ErrMissingInput)
}
