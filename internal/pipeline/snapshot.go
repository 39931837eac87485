package pipeline

import (
	"fmt"
	"math"
)

// Value is one named output reading captured at a single bar.
type Value struct {
	Name string
	V    float64
}

// Snapshot is the full set of indicator outputs at one bar, in graph
// registration order — a deterministic ordering downstream consumers
// (export, broadcast) can rely on without re-sorting.
type Snapshot struct {
	Bar    int
	Time   int64
	Values []Value
}

// qualifiedName joins a node's own name to one of its output line's alias.
// A node with a single line (the common case: SMA, EMA, ...) is reported
// under its own name with no suffix, whatever its line is called; a
// multi-line node without line names falls back to a numeric suffix so
// every column still has a stable identity.
func qualifiedName(nodeName, lineName string, lineIdx, lineCount int) string {
	if lineCount == 1 {
		return nodeName
	}
	if lineName == "" {
		return fmt.Sprintf("%s.%d", nodeName, lineIdx)
	}
	return nodeName + "." + lineName
}

// Snapshot captures every registered node's current (ago=0) line values.
func (g *Graph) Snapshot(ctx *Context) Snapshot {
	snap := Snapshot{Bar: ctx.Bar, Time: ctx.ClockUnix}
	for _, n := range g.nodes {
		lines := n.Ind.Lines()
		count := lines.Len()
		for i := 0; i < count; i++ {
			line := lines.LineAt(i)
			v := math.NaN()
			if line != nil && line.Len() > 0 {
				v = line.Get(0)
			}
			snap.Values = append(snap.Values, Value{
				Name: qualifiedName(n.Name, lines.Name(i), i, count),
				V:    v,
			})
		}
	}
	return snap
}

// AppendMsgPack encodes the snapshot with zero heap allocations beyond the
// growth of b itself: a MsgPack array of [bar, time, then one float64 per
// value in registration order] — the same raw-marker technique the
// original broadcaster used for its trade/candle wire format, generalized
// from a fixed struct layout to a variable-length value list since a
// pipeline's column set is only known at graph-construction time.
func (s *Snapshot) AppendMsgPack(b []byte) []byte {
	n := len(s.Values)
	b = appendArrayHeader(b, 2+n)
	b = appendInt64(b, int64(s.Bar))
	b = appendInt64(b, s.Time)
	for _, v := range s.Values {
		b = appendFloat64(b, v.V)
	}
	return b
}

// appendArrayHeader writes a MsgPack array header for up to 65535 elements,
// using the fixarray form below 16 and array16 above it — snapshots with
// more than 15 columns are routine once a few indicators are registered.
func appendArrayHeader(b []byte, n int) []byte {
	if n < 16 {
		return append(b, 0x90|byte(n))
	}
	return append(b, 0xdc, byte(n>>8), byte(n))
}

func appendFloat64(b []byte, v float64) []byte {
	b = append(b, 0xcb)
	bits := math.Float64bits(v)
	return append(b, byte(bits>>56), byte(bits>>48), byte(bits>>40), byte(bits>>32),
		byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
}

func appendInt64(b []byte, v int64) []byte {
	if v >= 0 && v <= 127 {
		return append(b, byte(v))
	}
	if v < 0 && v >= -32 {
		return append(b, byte(v))
	}
	b = append(b, 0xd3)
	return append(b, byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
