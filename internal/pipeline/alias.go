package pipeline

import (
	"backline/internal/indicator"
	"backline/internal/linebuf"
)

// Alias is a pass-through node whose output line is never appended to
// directly — it exists purely as a Bind target, so a composite's internal
// line (or any other node's output) can be re-exposed under a second name
// in the graph without recomputing it. Its Tick/RunBatch are no-ops: values
// arrive exclusively through the mirrored Bind relation set up with
// Graph.Bind/ResolveBindings (spec.md §9's `oncebinding`).
type Alias struct {
	indicator.Base
}

// NewAlias builds an empty Alias node with the given minimum period — the
// mp a downstream consumer should expect once the bound source starts
// mirroring values onto it.
func NewAlias(name string, mp int) *Alias {
	lines := linebuf.NewCollection()
	lines.AddNamed(name)
	a := &Alias{}
	a.Base = indicator.NewBase(lines, mp)
	return a
}

// Tick is a no-op: Alias produces no value of its own.
func (a *Alias) Tick() {}

// RunBatch is a no-op for the same reason.
func (a *Alias) RunBatch(int) {}
