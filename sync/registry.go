package sync

import (
	"container/list"
	"sync"
)

// Default high-water marks for the registry sets. Oldest entries are evicted
// once a set reaches its capacity, so memory stays bounded without the
// blanket amnesia of clearing a whole set.
const (
	DefaultProcessedCapacity = 1000
	DefaultFailedCapacity    = 100
)

// idSet is a bounded insertion-ordered set of track identifiers.
type idSet struct {
	members  map[string]*list.Element
	order    *list.List // Front is oldest
	capacity int
}

func newIDSet(capacity int) *idSet {
	return &idSet{
		members:  make(map[string]*list.Element),
		order:    list.New(),
		capacity: capacity,
	}
}

func (s *idSet) contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

// add inserts id, evicting the oldest member at capacity. Idempotent.
func (s *idSet) add(id string) {
	if _, ok := s.members[id]; ok {
		return
	}
	if len(s.members) >= s.capacity {
		oldest := s.order.Front()
		if oldest != nil {
			delete(s.members, oldest.Value.(string))
			s.order.Remove(oldest)
		}
	}
	s.members[id] = s.order.PushBack(id)
}

func (s *idSet) remove(id string) {
	if elem, ok := s.members[id]; ok {
		delete(s.members, id)
		s.order.Remove(elem)
	}
}

// drain removes every member and returns them in insertion order.
func (s *idSet) drain() []string {
	ids := make([]string, 0, len(s.members))
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		ids = append(ids, elem.Value.(string))
	}
	s.members = make(map[string]*list.Element)
	s.order.Init()
	return ids
}

func (s *idSet) len() int {
	return len(s.members)
}

// Registry is the engine's in-memory dedup state: track ids that have been
// processed and track ids that have permanently failed. An id is never in
// both sets at once. State is process-lifetime only; a restart loses it.
type Registry struct {
	mu        sync.Mutex
	processed *idSet
	failed    *idSet
}

// NewRegistry creates an empty registry with the default capacities.
func NewRegistry() *Registry {
	return NewRegistryWithCapacity(DefaultProcessedCapacity, DefaultFailedCapacity)
}

// NewRegistryWithCapacity creates an empty registry with explicit set
// capacities.
func NewRegistryWithCapacity(processedCapacity, failedCapacity int) *Registry {
	if processedCapacity <= 0 {
		processedCapacity = DefaultProcessedCapacity
	}
	if failedCapacity <= 0 {
		failedCapacity = DefaultFailedCapacity
	}
	return &Registry{
		processed: newIDSet(processedCapacity),
		failed:    newIDSet(failedCapacity),
	}
}

// IsPending reports whether id is in neither set, i.e. it has not been
// handled and has not permanently failed.
func (r *Registry) IsPending(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.processed.contains(id) && !r.failed.contains(id)
}

// MarkProcessed records id as handled. Clears any failed marking so the
// sets stay disjoint.
func (r *Registry) MarkProcessed(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed.remove(id)
	r.processed.add(id)
}

// MarkFailed records id as permanently failed. Clears any processed marking
// so the sets stay disjoint.
func (r *Registry) MarkFailed(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed.remove(id)
	r.failed.add(id)
}

// RetryFailed clears the failed set and returns the cleared ids as retry
// candidates, oldest first. The processed set is untouched.
func (r *Registry) RetryFailed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed.drain()
}

// Counts returns the current processed and failed set sizes.
func (r *Registry) Counts() (processed, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed.len(), r.failed.len()
}
