// Package motion owns the waypoint queue and the executor that drains it
// against the robot's blocking move API.
package motion

import (
	"sync"

	"github.com/hrilab/go-duo/pkg/kachaka"
)

// Queue is a FIFO of move targets shared between the negotiation path
// (producer) and the executor (sole consumer). It is the only structure
// crossing that boundary, so it is guarded by a real lock.
type Queue struct {
	mu    sync.Mutex
	items []kachaka.Location
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// PushBatch appends a full route (waypoints plus destination) in one
// critical section. Concurrent rounds can never interleave partial routes.
func (q *Queue) PushBatch(batch []kachaka.Location) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, batch...)
}

// PopFront removes and returns the next target, or false when empty.
func (q *Queue) PopFront() (kachaka.Location, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return kachaka.Location{}, false
	}
	loc := q.items[0]
	q.items = q.items[1:]
	return loc, true
}

// Len returns the number of queued targets.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
