package osc

import (
	"backline/internal/indicator"
	"backline/internal/indicators/ma"
	"backline/internal/linebuf"
)

// TRIX is the rate of change of a triple-smoothed EMA (spec.md §4.4.4).
// mp = 3P + R - 2, plus an optional signal EMA of period S.
type TRIX struct {
	indicator.Base
	rate             int
	ema1, ema2, ema3 *ma.EMA
	out              *linebuf.Line
	signal           *ma.EMA // nil if no signal period was requested
	signalOut        *linebuf.Line
}

// NewTRIX constructs a TRIX of period P with rate-of-change lookback R. If
// sigP > 0, a signal line (EMA of TRIX, period sigP) is added.
func NewTRIX(in indicator.Source, period, rate, sigP int) (*TRIX, error) {
	if rate < 1 {
		return nil, indicator.ErrInvalidParameter
	}
	ema1, err := ma.NewEMA(in, period)
	if err != nil {
		return nil, err
	}
	ema2, err := ma.NewEMA(indicator.FromOutput(ema1, ema1.Lines().Primary()), period)
	if err != nil {
		return nil, err
	}
	ema3, err := ma.NewEMA(indicator.FromOutput(ema2, ema2.Lines().Primary()), period)
	if err != nil {
		return nil, err
	}

	lines := linebuf.NewCollection()
	out := lines.AddNamed("trix")
	mp := ema3.MinPeriod() + rate

	tx := &TRIX{rate: rate, ema1: ema1, ema2: ema2, ema3: ema3, out: out}

	if sigP > 0 {
		signal, err := ma.NewEMA(indicator.Source{L: out, MP: mp}, sigP)
		if err != nil {
			return nil, err
		}
		tx.signal = signal
		tx.signalOut = lines.AddNamed("signal")
	}

	tx.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return tx, nil
}

func (tx *TRIX) trixValue(cur, prior float64) float64 {
	if prior == 0 {
		return linebuf.NaN
	}
	return 100.0 * (cur/prior - 1.0)
}

func (tx *TRIX) Tick() {
	tx.ema1.Tick()
	tx.ema2.Tick()
	tx.ema3.Tick()
	out3 := tx.ema3.Lines().Primary()
	v := linebuf.NaN
	if out3.Len() > tx.rate {
		v = tx.trixValue(out3.Get(0), out3.Get(-tx.rate))
	}
	tx.out.Append(v)
	if tx.signal != nil {
		tx.signal.Tick()
		tx.signalOut.Append(tx.signal.Value())
	}
}

func (tx *TRIX) RunBatch(n int) {
	tx.ema1.RunBatch(n)
	tx.ema2.RunBatch(n)
	tx.ema3.RunBatch(n)
	out3 := tx.ema3.Lines().Primary()
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		v := linebuf.NaN
		if t-tx.rate >= 0 {
			v = tx.trixValue(out3.Get(ago), out3.Get(ago-tx.rate))
		}
		tx.out.Append(v)
	}
	if tx.signal != nil {
		tx.signal.RunBatch(n)
		for t := 0; t < n; t++ {
			ago := -(n - 1 - t)
			tx.signalOut.Append(tx.signal.Lines().Primary().Get(ago))
		}
	}
}
