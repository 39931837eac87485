// Package fixture generates a deterministic synthetic OHLCV series for
// tests and demos, standing in for the reference CSV named in spec.md §8
// that isn't present in the retrieval pack. Every value is seeded
// arithmetic — no RNG, no clock reads — so two calls with the same n
// produce byte-identical feeds.
package fixture

import (
	"math"

	"backline/internal/feed"
)

// Generate builds an n-bar feed: a slow upward drift with a bounded
// sinusoidal oscillation, so high != low and ranges never collapse to
// zero — enough shape to exercise every indicator family's window logic
// without hiding warm-up bugs behind a flat series.
func Generate(n int) *feed.Feed {
	f := feed.New()
	for _, b := range GenerateBars(n) {
		f.Append(b)
	}
	return f
}

// GenerateBars returns the same n-bar series as Generate without attaching
// it to a feed, so a caller can append bars one at a time (driving a
// streaming cursor) instead of pre-loading the whole run.
func GenerateBars(n int) []feed.Bar {
	bars := make([]feed.Bar, n)
	const base = 100.0
	for i := 0; i < n; i++ {
		t := float64(i)
		drift := t * 0.1
		osc := math.Sin(t * 0.3)
		o := base + drift + osc
		c := o + 0.3 + 0.1*osc
		hi := math.Max(o, c) + 0.5
		lo := math.Min(o, c) - 0.5
		vol := 1000 + 50*math.Abs(math.Sin(t*0.7))
		bars[i] = feed.Bar{
			DateTime: t,
			Open:     o,
			High:     hi,
			Low:      lo,
			Close:    c,
			Volume:   vol,
		}
	}
	return bars
}

// Bars is the fixture size every cmd/backline subcommand (stream, batch and
// serve) generates and runs — long enough to warm up even
// the widest window in the pack (Ichimoku's senkou-B at 52 plus a 26-bar
// lead).
const Bars = 255
