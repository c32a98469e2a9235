package snapshot

import (
	"container/list"
	"sync"
)

// Registry is a bounded, insertion-ordered map of snapshots. When full, Put
// evicts the oldest inserted snapshot. Eviction never touches disk.
type Registry struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = newest
}

// NewRegistry returns a Registry holding at most capacity snapshots.
// A capacity below 1 is treated as 1.
func NewRegistry(capacity int) *Registry {
	if capacity < 1 {
		capacity = 1
	}
	return &Registry{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Put inserts s and returns the ids evicted to make room. It returns false
// without changing anything if s.ID is already registered.
func (r *Registry) Put(s *Snapshot) ([]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[s.ID]; ok {
		return nil, false
	}
	var evicted []string
	for r.order.Len() >= r.capacity {
		oldest := r.order.Back()
		id := oldest.Value.(*Snapshot).ID
		r.order.Remove(oldest)
		delete(r.items, id)
		evicted = append(evicted, id)
	}
	r.items[s.ID] = r.order.PushFront(s)
	return evicted, true
}

// Get returns the snapshot for id.
func (r *Registry) Get(id string) (*Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	el, ok := r.items[id]
	if !ok {
		return nil, false
	}
	return el.Value.(*Snapshot), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Remove deletes id and reports whether it was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.items[id]
	if !ok {
		return false
	}
	r.order.Remove(el)
	delete(r.items, id)
	return true
}

// List returns the registered snapshots, newest first.
func (r *Registry) List() []*Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Snapshot, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Snapshot))
	}
	return out
}

// Len returns the number of registered snapshots.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.order.Len()
}

// Capacity returns the maximum number of snapshots held.
func (r *Registry) Capacity() int { return r.capacity }
