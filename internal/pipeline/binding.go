package pipeline

// Binding is a queued mirror relation between two output lines already
// registered in the graph: once resolved, every append to the producer
// line is duplicated onto the consumer line (linebuf.Line.Bind). Bindings
// are additive and collected as plain (producer, consumer) index pairs
// rather than applied immediately, matching the original's `oncebinding`
// phase — Bind only records a pair whose two nodes are already
// registered, and ResolveBindings wires every recorded pair in one pass
// (spec.md §9).
type Binding struct {
	ProducerNode, ConsumerNode NodeID
	ProducerLine, ConsumerLine int
}

// Bind queues a mirror from node `from`'s output line `fromLine` onto node
// `to`'s output line `toLine`. Both nodes must already be registered;
// nothing is wired until ResolveBindings runs.
func (g *Graph) Bind(from NodeID, fromLine int, to NodeID, toLine int) error {
	if from < 0 || int(from) >= len(g.nodes) || to < 0 || int(to) >= len(g.nodes) {
		return ErrUnknownNode
	}
	g.bindings = append(g.bindings, Binding{
		ProducerNode: from, ProducerLine: fromLine,
		ConsumerNode: to, ConsumerLine: toLine,
	})
	return nil
}

// ResolveBindings applies every queued Binding in the order it was
// declared. It is not idempotent: each call binds every queued pair again,
// so a second call adds a second mirror per binding. Line.Bind itself rejects
// cycles, so a binding that would close a loop across two already-bound
// lines surfaces as an error here rather than corrupting either line.
func (g *Graph) ResolveBindings() error {
	for _, b := range g.bindings {
		producer := g.Node(b.ProducerNode).Ind.Lines().LineAt(b.ProducerLine)
		consumer := g.Node(b.ConsumerNode).Ind.Lines().LineAt(b.ConsumerLine)
		if producer == nil || consumer == nil {
			return ErrUnknownNode
		}
		if err := producer.Bind(consumer); err != nil {
			return err
		}
	}
	return nil
}
