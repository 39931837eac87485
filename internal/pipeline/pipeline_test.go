package pipeline

import (
	"math"
	"testing"

	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/indicators/ma"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syntheticBars(n int) []feed.Bar {
	bars := make([]feed.Bar, n)
	base := 100.0
	for i := 0; i < n; i++ {
		drift := float64(i) * 0.1
		osc := math.Sin(float64(i) * 0.3)
		c := base + drift + osc
		bars[i] = feed.Bar{DateTime: float64(i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c, Volume: 1000}
	}
	return bars
}

func syntheticFeed(n int) *feed.Feed {
	f := feed.New()
	for _, b := range syntheticBars(n) {
		f.Append(b)
	}
	return f
}

// buildChain registers close -> SMA(5) -> SMA(3 on top of the first SMA's
// output), exercising AddIndicator's input-before-output ordering when a
// node's input is itself a pipeline node rather than a raw feed line.
func buildChain(t *testing.T, f *feed.Feed) (*Graph, NodeID, NodeID) {
	t.Helper()
	g := NewGraph()
	closeLine := feed.CloseLine(f)

	fastSMA, err := ma.NewSMA(indicator.FromLine(closeLine), 5)
	require.NoError(t, err)
	fastID, err := g.AddIndicator("sma_fast", fastSMA)
	require.NoError(t, err)

	slowIn := indicator.FromOutput(fastSMA, fastSMA.Lines().Primary())
	slowSMA, err := ma.NewSMA(slowIn, 3)
	require.NoError(t, err)
	slowID, err := g.AddIndicator("sma_slow", slowSMA, fastID)
	require.NoError(t, err)

	return g, fastID, slowID
}

func TestGraph_AddIndicatorRejectsForwardReference(t *testing.T) {
	f := syntheticFeed(10)
	g := NewGraph()
	sma, err := ma.NewSMA(indicator.FromLine(feed.CloseLine(f)), 5)
	require.NoError(t, err)
	_, err = g.AddIndicator("sma", sma, NodeID(3))
	assert.ErrorIs(t, err, ErrForwardReference)
}

func TestGraph_AddIndicatorRejectsDuplicateName(t *testing.T) {
	f := syntheticFeed(10)
	g := NewGraph()
	sma1, err := ma.NewSMA(indicator.FromLine(feed.CloseLine(f)), 5)
	require.NoError(t, err)
	_, err = g.AddIndicator("sma", sma1)
	require.NoError(t, err)

	sma2, err := ma.NewSMA(indicator.FromLine(feed.CloseLine(f)), 7)
	require.NoError(t, err)
	_, err = g.AddIndicator("sma", sma2)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestGraph_TickEvaluatesInputBeforeOutput(t *testing.T) {
	n := 20
	f := syntheticFeed(n)
	g, fastID, slowID := buildChain(t, f)

	for t := 0; t < n; t++ {
		g.Tick()
	}

	fast := g.Node(fastID).Ind.Lines().Primary()
	slow := g.Node(slowID).Ind.Lines().Primary()
	require.Equal(t, fast.Len(), slow.Len())
	// The slow SMA is a 3-period average of the fast SMA's own output, so
	// once both are warm it must lie within the fast line's recent range.
	assert.False(t, math.IsNaN(slow.Get(0)))
	assert.False(t, math.IsNaN(fast.Get(0)))
}

func TestGraph_TickAndRunBatchAgree(t *testing.T) {
	n := 30
	streamFeed := feed.New()
	batchFeed := syntheticFeed(n)

	streamGraph, _, streamSlow := buildChain(t, streamFeed)
	for _, b := range syntheticBars(n) {
		streamFeed.Append(b)
		streamGraph.Tick()
	}

	batchGraph, _, batchSlow := buildChain(t, batchFeed)
	batchGraph.RunBatch(n)

	sLine := streamGraph.Node(streamSlow).Ind.Lines().Primary()
	bLine := batchGraph.Node(batchSlow).Ind.Lines().Primary()
	require.Equal(t, sLine.Len(), bLine.Len())
	for ago := 0; ago > -sLine.Len(); ago-- {
		sv, bv := sLine.Get(ago), bLine.Get(ago)
		if math.IsNaN(sv) {
			assert.True(t, math.IsNaN(bv))
			continue
		}
		assert.InDelta(t, sv, bv, 1e-9)
	}
}

func TestGraph_MaxMinPeriod(t *testing.T) {
	f := syntheticFeed(10)
	g, _, _ := buildChain(t, f)
	// sma_fast mp=5, sma_slow mp = Windowed(3, 5) = 3+5-1 = 7.
	assert.Equal(t, 7, g.MaxMinPeriod())
}

func TestGraph_ResolveBindingsMirrorsProducerAppends(t *testing.T) {
	n := 10
	f := syntheticFeed(n)
	g, fastID, _ := buildChain(t, f)
	fast := g.Node(fastID).Ind.Lines().Primary()

	aliasID, err := g.AddIndicator("sma_fast_alias", NewAlias("sma_fast_alias", fast.Cursor()+1), fastID)
	require.NoError(t, err)
	mirror := g.Node(aliasID).Ind.Lines().Primary()

	require.NoError(t, g.Bind(fastID, 0, aliasID, 0))
	require.NoError(t, g.ResolveBindings())

	for t := 0; t < n; t++ {
		g.Tick()
	}
	// Every append to the fast SMA's line is mirrored onto the alias's
	// otherwise-untouched line, so the two agree bar for bar.
	assertNaNAwareEqual(t, fast.Get(0), mirror.Get(0))
}

func TestGraph_ResolveBindingsRejectsSelfBind(t *testing.T) {
	f := syntheticFeed(5)
	g := NewGraph()
	sma, err := ma.NewSMA(indicator.FromLine(feed.CloseLine(f)), 3)
	require.NoError(t, err)
	smaID, err := g.AddIndicator("sma", sma)
	require.NoError(t, err)

	require.NoError(t, g.Bind(smaID, 0, smaID, 0))
	assert.Error(t, g.ResolveBindings())
}

func assertNaNAwareEqual(t *testing.T, want, got float64) {
	t.Helper()
	if math.IsNaN(want) {
		assert.True(t, math.IsNaN(got))
		return
	}
	assert.InDelta(t, want, got, 1e-9)
}

func TestPipeline_SnapshotIsDeterministicallyOrdered(t *testing.T) {
	n := 15
	f := syntheticFeed(n)
	g, _, _ := buildChain(t, f)
	p := NewPipeline(g, 0)
	for t := 0; t < n; t++ {
		p.Tick(int64(t))
	}

	snap := g.Snapshot(p.Ctx)
	require.Len(t, snap.Values, 2)
	assert.Equal(t, "sma_fast", snap.Values[0].Name)
	assert.Equal(t, "sma_slow", snap.Values[1].Name)
	assert.Equal(t, n-1, snap.Bar)
}

func TestSnapshot_AppendMsgPackIsPrefixedByArrayHeaderAndCounts(t *testing.T) {
	n := 15
	f := syntheticFeed(n)
	g, _, _ := buildChain(t, f)
	p := NewPipeline(g, 0)
	for t := 0; t < n; t++ {
		p.Tick(int64(t))
	}
	snap := g.Snapshot(p.Ctx)
	buf := snap.AppendMsgPack(nil)
	require.NotEmpty(t, buf)
	// 2 header fields + len(Values) values, all fixarray (n<16) so header is one byte.
	assert.Equal(t, byte(0x90|byte(2+len(snap.Values))), buf[0])
}
