package session

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// Locks serializes submissions for the same session. IDs hash onto a fixed
// set of mutexes, so unrelated sessions may occasionally share one.
type Locks struct {
	stripes [lockStripes]sync.Mutex
}

// Lock acquires the mutex for id and returns its release function.
func (l *Locks) Lock(id string) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
