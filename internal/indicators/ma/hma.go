package ma

import (
	"math"

	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// HMA is the Hull moving average:
// WMA(2*WMA_{P/2}(in) - WMA_P(in), floor(sqrt(P))) (spec.md §4.3.4).
type HMA struct {
	indicator.Base
	wmaHalf *WMA
	wmaFull *WMA
	diff    *linebuf.Line
	final   *WMA
	out     *linebuf.Line
}

// NewHMA constructs an HMA of the given period over `in`.
func NewHMA(in indicator.Source, period int) (*HMA, error) {
	if period < 2 {
		return nil, indicator.ErrNonPositivePeriod
	}
	halfPeriod := period / 2
	sqrtPeriod := int(math.Sqrt(float64(period)))
	if sqrtPeriod < 1 {
		sqrtPeriod = 1
	}

	wmaHalf, err := NewWMA(in, halfPeriod)
	if err != nil {
		return nil, err
	}
	wmaFull, err := NewWMA(in, period)
	if err != nil {
		return nil, err
	}

	diffMP := wmaHalf.MinPeriod()
	if wmaFull.MinPeriod() > diffMP {
		diffMP = wmaFull.MinPeriod()
	}
	diff := linebuf.New()
	final, err := NewWMA(indicator.Source{L: diff, MP: diffMP}, sqrtPeriod)
	if err != nil {
		return nil, err
	}

	lines := linebuf.NewCollection()
	out := lines.AddNamed("hma")
	h := &HMA{wmaHalf: wmaHalf, wmaFull: wmaFull, diff: diff, final: final, out: out}
	h.Base = indicator.NewBase(lines, final.MinPeriod(), indicator.CollectInputs(in)...)
	return h, nil
}

// Value exposes the current HMA value without going through Lines().
func (h *HMA) Value() float64 { return h.out.Get(0) }

func (h *HMA) Tick() {
	h.wmaHalf.Tick()
	h.wmaFull.Tick()
	h.diff.Append(2*h.wmaHalf.Value() - h.wmaFull.Value())
	h.final.Tick()
	h.out.Append(h.final.Value())
}

func (h *HMA) RunBatch(n int) {
	h.wmaHalf.RunBatch(n)
	h.wmaFull.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		h.diff.Append(2*h.wmaHalf.out.Get(ago) - h.wmaFull.out.Get(ago))
	}
	h.final.RunBatch(n)
	for t := 0; t < n; t++ {
		ago := -(n - 1 - t)
		h.out.Append(h.final.out.Get(ago))
	}
}
