// Package feed defines the data-feed contract: a line collection fixed to
// the seven OHLCV channels every indicator ultimately reads from
// (spec.md §3.3, §6.1). Ingestion itself — CSV, exchange sockets, replay
// files — is explicitly external to the core; this package only defines the
// shape a producer must fill in.
package feed

import "backline/internal/linebuf"

// Line indices within a Feed's Collection, fixed by spec.md §3.3.
const (
	DateTime = iota
	Open
	High
	Low
	Close
	Volume
	OpenInterest
	numLines
)

var lineNames = [numLines]string{
	DateTime:     "datetime",
	Open:         "open",
	High:         "high",
	Low:          "low",
	Close:        "close",
	Volume:       "volume",
	OpenInterest: "openinterest",
}

// Bar is a single OHLCV observation a producer hands to Feed.Append.
type Bar struct {
	DateTime     float64
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest float64
}

// Feed is a Collection holding exactly the seven OHLCV lines in the order
// spec.md §3.3 mandates.
type Feed struct {
	*linebuf.Collection
}

// New constructs an empty feed with its seven named lines pre-registered.
func New() *Feed {
	c := linebuf.NewCollection()
	for i := 0; i < numLines; i++ {
		c.AddNamed(lineNames[i])
	}
	return &Feed{Collection: c}
}

// Append pushes one bar onto every line. volume/openinterest default to 0
// when the producer leaves them unset (Bar's zero value), per spec.md §3.3;
// open/high/low/close are left as whatever the producer supplies, including
// NaN before the first valid bar.
//
// The OHLC shape invariant (low <= min(o,c) <= max(o,c) <= high) is the
// ingester's responsibility, not the feed's (spec.md §3.3, §7) — Feed does
// not validate it.
func (f *Feed) Append(b Bar) {
	f.LineAt(DateTime).Append(b.DateTime)
	f.LineAt(Open).Append(b.Open)
	f.LineAt(High).Append(b.High)
	f.LineAt(Low).Append(b.Low)
	f.LineAt(Close).Append(b.Close)
	f.LineAt(Volume).Append(b.Volume)
	f.LineAt(OpenInterest).Append(b.OpenInterest)
}

// Len reports how many bars have been appended.
func (f *Feed) Len() int {
	return f.LineAt(DateTime).Len()
}

// OHLC is the minimal contract multi-line indicators (Ichimoku, DM, Stochastic,
// Vortex, HeikinAshi, Ultimate Oscillator...) need from an upstream producer:
// named access to the four price lines. *Feed satisfies it directly.
type OHLC interface {
	LineAt(i int) *linebuf.Line
}

// High/Low/Close/OpenLine are small accessors so OHLC-consuming indicators
// don't need to know Feed's internal line ordering.
func OpenLine(f OHLC) *linebuf.Line  { return f.LineAt(Open) }
func HighLine(f OHLC) *linebuf.Line  { return f.LineAt(High) }
func LowLine(f OHLC) *linebuf.Line   { return f.LineAt(Low) }
func CloseLine(f OHLC) *linebuf.Line { return f.LineAt(Close) }
