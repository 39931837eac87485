package linebuf

import "errors"

// ErrCyclicBind is returned by Line.Bind when mirroring would introduce a
// cycle in the binding graph (spec.md §3.5, §4.1).
var ErrCyclicBind = errors.New("linebuf: bind would create a cycle")

// ErrUnknownLine is returned by Collection.Line when no line with the given
// name was registered.
var ErrUnknownLine = errors.New("linebuf: unknown line name")
