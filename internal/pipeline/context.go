package pipeline

// Context carries the per-run state the original program kept in a
// process-wide bar counter and global clock: which bar is currently being
// evaluated, the replay clock alignment, and the memory policy in force.
// A Pipeline owns exactly one Context; nothing about a node or a Graph is
// shared across runs (spec.md §9 "no process-wide singletons").
type Context struct {
	// Bar is the zero-based index of the bar most recently ticked.
	Bar int
	// ClockUnix is the epoch-seconds timestamp of the most recent bar, used
	// to align replayed bars with wall-clock-driven consumers (broadcast,
	// export) without reading time.Now().
	ClockUnix int64
	// Savemem is the caller's requested retention window in bars; 0 means
	// unbounded. The effective q-buffer capacity a bounded feed should use
	// is max(Savemem, the graph's largest MinPeriod).
	Savemem int
}

// Pipeline binds a Graph to one Context and drives them together: Tick
// advances both the graph and the bar counter in lockstep so consumers
// reading ctx.Bar after a Tick see the bar that call just produced.
type Pipeline struct {
	Graph *Graph
	Ctx   *Context
}

// NewPipeline wires a graph to a fresh context with the given savemem
// policy (0 for unbounded retention).
func NewPipeline(g *Graph, savemem int) *Pipeline {
	return &Pipeline{Graph: g, Ctx: &Context{Bar: -1, Savemem: savemem}}
}

// Tick advances every node by one bar and records the new bar number and
// clock alignment.
func (p *Pipeline) Tick(clockUnix int64) {
	p.Graph.Tick()
	p.Ctx.Bar++
	p.Ctx.ClockUnix = clockUnix
}

// RunBatch evaluates every node's full n-bar history and leaves the
// context positioned at the last bar.
func (p *Pipeline) RunBatch(n int, clockUnix int64) {
	p.Graph.RunBatch(n)
	p.Ctx.Bar = n - 1
	p.Ctx.ClockUnix = clockUnix
}
