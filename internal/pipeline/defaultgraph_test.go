package pipeline

import (
	"testing"

	"backline/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultGraph_RunsEndToEnd(t *testing.T) {
	n := 120
	f := syntheticFeed(n)
	g, err := BuildDefaultGraph(f)
	require.NoError(t, err)
	require.Greater(t, g.Len(), 0)

	g.RunBatch(n)
	snap := g.Snapshot(&Context{Bar: n - 1, ClockUnix: int64(n - 1)})
	assert.NotEmpty(t, snap.Values)
}

func TestBuildDefaultGraph_TickMatchesBatch(t *testing.T) {
	n := 100
	streamFeed := feed.New()
	batchFeed := syntheticFeed(n)

	streamGraph, err := BuildDefaultGraph(streamFeed)
	require.NoError(t, err)
	for _, b := range syntheticBars(n) {
		streamFeed.Append(b)
		streamGraph.Tick()
	}

	batchGraph, err := BuildDefaultGraph(batchFeed)
	require.NoError(t, err)
	batchGraph.RunBatch(n)

	require.Equal(t, streamGraph.Len(), batchGraph.Len())
	sSnap := streamGraph.Snapshot(&Context{Bar: n - 1})
	bSnap := batchGraph.Snapshot(&Context{Bar: n - 1})
	require.Equal(t, len(sSnap.Values), len(bSnap.Values))
	for i := range sSnap.Values {
		assertNaNAwareEqual(t, sSnap.Values[i].V, bSnap.Values[i].V)
	}
}
