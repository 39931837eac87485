package pipeline

import (
	"backline/internal/feed"
	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/indicators/ohlc"
	"backline/internal/indicators/osc"
)

// BuildDefaultGraph registers a representative cross-section of every
// indicator family over f's close/OHLC lines: SMA(20) and EMA(9) of
// close, MACD and Bollinger bands over close, and the Stochastic,
// Ichimoku and Heikin-Ashi OHLC indicators, plus an EMA(5) computed over
// SMA(20)'s output to exercise a node-on-node edge. This is what
// `cmd/backline`'s demo subcommands drive; real deployments register
// their own graph instead of calling this.
func BuildDefaultGraph(f feed.OHLC) (*Graph, error) {
	g := NewGraph()
	closeLine := feed.CloseLine(f)

	sma20, err := ma.NewSMA(indicator.FromLine(closeLine), 20)
	if err != nil {
		return nil, err
	}
	smaID, err := g.AddIndicator("sma20", sma20)
	if err != nil {
		return nil, err
	}

	ema9, err := ma.NewEMA(indicator.FromLine(closeLine), 9)
	if err != nil {
		return nil, err
	}
	if _, err := g.AddIndicator("ema9", ema9); err != nil {
		return nil, err
	}

	emaOfSMA, err := ma.NewEMA(indicator.FromOutput(sma20, sma20.Lines().Primary()), 5)
	if err != nil {
		return nil, err
	}
	if _, err := g.AddIndicator("ema5_of_sma20", emaOfSMA, smaID); err != nil {
		return nil, err
	}

	macd, err := osc.NewMACD(indicator.FromLine(closeLine), 12, 26, 9)
	if err != nil {
		return nil, err
	}
	if _, err := g.AddIndicator("macd", macd); err != nil {
		return nil, err
	}

	boll, err := osc.NewBollinger(indicator.FromLine(closeLine), 20, 2)
	if err != nil {
		return nil, err
	}
	if _, err := g.AddIndicator("bollinger20", boll); err != nil {
		return nil, err
	}

	stoch, err := ohlc.NewStochastic(f, 14, 3, 3)
	if err != nil {
		return nil, err
	}
	if _, err := g.AddIndicator("stochastic", stoch); err != nil {
		return nil, err
	}

	ichimoku, err := ohlc.NewIchimoku(f, 9, 26, 52, 26, 26)
	if err != nil {
		return nil, err
	}
	if _, err := g.AddIndicator("ichimoku", ichimoku); err != nil {
		return nil, err
	}

	ha := ohlc.NewHeikinAshi(f)
	if _, err := g.AddIndicator("heikin_ashi", ha); err != nil {
		return nil, err
	}

	return g, nil
}
