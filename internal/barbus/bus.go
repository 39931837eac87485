// Package barbus is the per-bar pub/sub fabric across replicated DAGs
// (spec.md §5's parallelism note: independent symbol/run pipelines share
// no state, but something still needs to fan a finished bar's snapshot out
// to whatever is listening — broadcast clients, the export writer, a
// Redis relay). It is a direct generalization of the teacher's trade bus
// from one hardcoded payload type to pipeline.Snapshot.
package barbus

import (
	"sync"

	"backline/internal/metrics"
	"backline/internal/pipeline"
)

// Bus fans out snapshots to any number of subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan pipeline.Snapshot
}

// New builds an empty bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe returns a read-only channel of future snapshots, buffered to
// bufferSize so a slow subscriber doesn't block Publish.
func (b *Bus) Subscribe(bufferSize int) <-chan pipeline.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan pipeline.Snapshot, bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish fans snap out to every subscriber. Non-blocking: a subscriber
// whose buffer is full has the snapshot dropped rather than stalling the
// driver that produced it.
func (b *Bus) Publish(snap pipeline.Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- snap:
		default:
			metrics.IncSnapshotsDropped()
		}
	}
}
