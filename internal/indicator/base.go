package indicator

import "backline/internal/linebuf"

// Base holds the bookkeeping every concrete indicator needs and implements
// the Lines/MinPeriod/Inputs third of the Indicator interface, so each
// indicator type only has to implement Tick and RunBatch. Embed it by
// value: `indicator.Base` is cheap and has no methods that need a pointer
// receiver to stay correct.
type Base struct {
	lines  *linebuf.Collection
	mp     int
	inputs []Indicator
}

// NewBase wires up the shared state. Concrete constructors call this after
// validating parameters and computing mp via the helpers in minperiod.go.
func NewBase(lines *linebuf.Collection, mp int, inputs ...Indicator) Base {
	return Base{lines: lines, mp: mp, inputs: inputs}
}

func (b *Base) Lines() *linebuf.Collection { return b.lines }
func (b *Base) MinPeriod() int             { return b.mp }
func (b *Base) Inputs() []Indicator        { return b.inputs }

// Len reports how many bars this indicator has produced so far, using its
// primary output line as the length marker (every output line of a node
// advances in lockstep, one bar at a time).
func (b *Base) Len() int {
	p := b.lines.Primary()
	if p == nil {
		return 0
	}
	return p.Len()
}
