package pipeline

import "errors"

var (
	// ErrUnknownNode is returned when a NodeID referenced as an input
	// wasn't produced by this Graph's own AddIndicator calls.
	ErrUnknownNode = errors.New("pipeline: unknown node id")
	// ErrForwardReference is returned when an input NodeID is not strictly
	// smaller than the node being added — the only way a cycle could enter
	// the arena, since registration order doubles as topological order
	// (spec.md §9, §3.5: "cycles are illegal and must be rejected at
	// construction").
	ErrForwardReference = errors.New("pipeline: input node must already be registered")
	// ErrDuplicateName is returned by AddIndicator when name is already
	// taken by an earlier node in the same Graph.
	ErrDuplicateName = errors.New("pipeline: duplicate node name")
)
