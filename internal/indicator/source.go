package indicator

import "backline/internal/linebuf"

// Source is a typed handle to one upstream line: the line itself, the
// minimum period already guaranteed on it, and — when it came from another
// indicator rather than a raw feed/external producer — the node that owns
// it, so the pipeline can walk the DAG in input-before-output order
// (spec.md O1).
type Source struct {
	L  *linebuf.Line
	MP int
	Up Indicator // nil when L comes straight from a feed or other external producer
}

// FromLine wraps a line that isn't produced by any Indicator node (a data
// feed channel, or any externally-supplied series). Its effective minimum
// period is 1: the very first bar is already valid input.
func FromLine(l *linebuf.Line) Source {
	return Source{L: l, MP: 1}
}

// FromOutput wraps one of another indicator's output lines, carrying that
// indicator's minimum period and registering it as an upstream dependency.
func FromOutput(up Indicator, l *linebuf.Line) Source {
	return Source{L: l, MP: up.MinPeriod(), Up: up}
}

// AbsGet reads the value at absolute bar index t from a line that currently
// holds `total` bars (cursor == total-1), used by Once/batch kernels that
// think in absolute bar indices rather than cursor-relative ago offsets.
func AbsGet(l *linebuf.Line, t, total int) float64 {
	return l.Get(t - (total - 1))
}

// CollectInputs dedups the Up references carried by a set of sources into
// the Inputs() list a Base should report, preserving first-seen order.
func CollectInputs(sources ...Source) []Indicator {
	var inputs []Indicator
	seen := make(map[Indicator]bool, len(sources))
	for _, s := range sources {
		if s.Up == nil || seen[s.Up] {
			continue
		}
		seen[s.Up] = true
		inputs = append(inputs, s.Up)
	}
	return inputs
}
