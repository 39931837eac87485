package linebuf_test

import (
	"math"
	"testing"

	"backline/internal/linebuf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine_AppendAdvancesCursor(t *testing.T) {
	l := linebuf.New()
	assert.Equal(t, -1, l.Cursor())
	assert.Equal(t, 0, l.Len())

	l.Append(1.0)
	l.Append(2.0)
	l.Append(3.0)

	assert.Equal(t, 2, l.Cursor())
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, 3.0, l.Get(0))
	assert.Equal(t, 2.0, l.Get(-1))
	assert.Equal(t, 1.0, l.Get(-2))
}

func TestLine_OutOfRangeReadsAreNaN(t *testing.T) {
	l := linebuf.New()
	l.Append(1.0)

	assert.True(t, math.IsNaN(l.Get(-5)))
	assert.True(t, math.IsNaN(l.Get(1))) // ago > 0 is "future", never valid
}

func TestLine_SetRejectsFutureWrites(t *testing.T) {
	l := linebuf.New()
	l.Append(1.0)

	assert.False(t, l.Set(1, 9.0))
}

func TestLine_SetOverwritesPastBar(t *testing.T) {
	l := linebuf.New()
	l.Append(1.0)
	l.Append(2.0)

	require.True(t, l.Set(-1, 99.0))
	assert.Equal(t, 99.0, l.Get(-1))
	assert.Equal(t, 2.0, l.Get(0)) // current bar untouched

	assert.False(t, l.Set(-5, 42.0)) // target below zero is rejected
}

func TestLine_ForwardPadsNaN(t *testing.T) {
	l := linebuf.New()
	l.Append(1.0)
	l.Forward(3)

	assert.Equal(t, 4, l.Len())
	assert.True(t, math.IsNaN(l.Get(0)))
	assert.True(t, math.IsNaN(l.Get(-1)))
	assert.True(t, math.IsNaN(l.Get(-2)))
	assert.Equal(t, 1.0, l.Get(-3))
}

func TestLine_ResetAndClear(t *testing.T) {
	l := linebuf.New()
	l.Append(1.0)
	l.Append(2.0)

	l.Reset()
	assert.Equal(t, 0, l.Cursor())
	assert.Equal(t, 1, l.Len())
	assert.True(t, math.IsNaN(l.Get(0)))

	l.Clear()
	assert.Equal(t, -1, l.Cursor())
	assert.Equal(t, 0, l.Len())
}

func TestLine_BindMirrorsAppends(t *testing.T) {
	src := linebuf.New()
	dst := linebuf.New()
	require.NoError(t, src.Bind(dst))

	src.Append(10)
	src.Append(20)

	assert.Equal(t, 20.0, dst.Get(0))
	assert.Equal(t, 10.0, dst.Get(-1))
}

func TestLine_BindRejectsCycles(t *testing.T) {
	a := linebuf.New()
	b := linebuf.New()
	require.NoError(t, a.Bind(b))

	err := b.Bind(a)
	assert.ErrorIs(t, err, linebuf.ErrCyclicBind)

	err = a.Bind(a)
	assert.ErrorIs(t, err, linebuf.ErrCyclicBind)
}

func TestLine_QBufferRetainsOnlyWindow(t *testing.T) {
	l := linebuf.NewBounded(3)
	for i := 1; i <= 10; i++ {
		l.Append(float64(i))
	}

	assert.Equal(t, 10, l.Len()) // logical length still grows
	assert.Equal(t, 10.0, l.Get(0))
	assert.Equal(t, 9.0, l.Get(-1))
	assert.Equal(t, 8.0, l.Get(-2))
	// anything older than the retained window reads back as NaN
	assert.True(t, math.IsNaN(l.Get(-3)))
}

func TestLine_Determinism(t *testing.T) {
	run := func() []float64 {
		l := linebuf.New()
		for i := 0; i < 50; i++ {
			l.Append(float64(i) * 1.5)
		}
		return l.Slice()
	}

	a := run()
	b := run()
	assert.Equal(t, a, b)
}

func TestCollection_NamedLookup(t *testing.T) {
	c := linebuf.NewCollection()
	close := c.AddNamed("close")
	c.AddNamed("volume")

	close.Append(100)

	got, err := c.Line("close")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Get(0))

	_, err = c.Line("nope")
	assert.ErrorIs(t, err, linebuf.ErrUnknownLine)

	assert.Equal(t, c.LineAt(0), c.Primary())
	assert.Equal(t, 100.0, c.PrimaryAt(0))
}
