package ma

import (
	"math"

	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// ZLIND is Ehlers' zero-lag error-correcting moving average: an EMA
// corrected each bar by an integer-searched gain that best cancels the
// error against two bars back (spec.md §4.3.4, §6.3 {period, gainlimit}).
//
// mp = EMASeeded(period) + 2: the error term reaches back to ec[t-2], so
// two bars of ec history must exist before the search is well-formed.
type ZLIND struct {
	indicator.Base
	alpha     float64
	gainlimit int
	in        indicator.Source
	out       *linebuf.Line

	ema, ec1, ec2 float64
}

// NewZLIND constructs a ZLIND of the given period and gain search range.
func NewZLIND(in indicator.Source, period, gainlimit int) (*ZLIND, error) {
	if period < 1 {
		return nil, indicator.ErrNonPositivePeriod
	}
	if gainlimit < 1 {
		return nil, indicator.ErrInvalidParameter
	}
	if in.L == nil {
		return nil, indicator.ErrMissingInput
	}
	lines := linebuf.NewCollection()
	out := lines.AddNamed("zlind")
	mp := indicator.EMASeeded(period, in.MP) + 2
	z := &ZLIND{
		alpha:     2.0 / (float64(period) + 1.0),
		gainlimit: gainlimit,
		in:        in,
		out:       out,
	}
	z.Base = indicator.NewBase(lines, mp, indicator.CollectInputs(in)...)
	return z, nil
}

// step runs the EMA update and the integer gain search for a single bar,
// returning the corrected value while advancing the struct's ema/ec1/ec2
// state.
func (z *ZLIND) step(cur float64) float64 {
	z.ema = z.alpha*cur + (1-z.alpha)*z.ema

	best := z.ec1
	bestErr := math.Inf(1)
	for g := -z.gainlimit; g <= z.gainlimit; g++ {
		gain := float64(g) / 10.0
		candidate := z.alpha*(z.ema+gain*(cur-z.ec2)) + (1-z.alpha)*z.ec1
		err := math.Abs(cur - candidate)
		if err < bestErr {
			bestErr = err
			best = candidate
		}
	}

	z.ec2 = z.ec1
	z.ec1 = best
	return best
}

func (z *ZLIND) seed(cur float64) float64 {
	z.ema = cur
	z.ec1 = cur
	z.ec2 = cur
	return cur
}

// Value exposes the current ZLIND value without going through Lines().
func (z *ZLIND) Value() float64 { return z.out.Get(0) }

func (z *ZLIND) Tick() {
	indicator.Step(z.Len(), z.MinPeriod(),
		func() { z.out.Append(linebuf.NaN) },
		func() { z.out.Append(z.seed(z.in.L.Get(0))) },
		func() { z.out.Append(z.step(z.in.L.Get(0))) },
	)
}

func (z *ZLIND) RunBatch(n int) {
	indicator.RunOnce(z.MinPeriod(), n,
		func(from, to int) {
			for t := from; t < to; t++ {
				z.out.Append(linebuf.NaN)
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				z.out.Append(z.seed(indicator.AbsGet(z.in.L, t, n)))
			}
		},
		func(from, to int) {
			for t := from; t < to; t++ {
				z.out.Append(z.step(indicator.AbsGet(z.in.L, t, n)))
			}
		},
	)
}
