package cqrs

import (
	"fmt"
	"sync"
)

// Repository is the keyed store hosting aggregate roots.
type Repository[K comparable, A any] interface {
	// Find returns the aggregate and whether it exists.
	Find(id K) (A, bool)
	// Read returns the aggregate and expects it to be present.
	Read(id K) (A, error)
	// CreateIfAbsent stores the aggregate unless one already exists under
	// the same id. Returns true if it was stored.
	CreateIfAbsent(id K, aggregate A) bool
	CreateOrUpdate(id K, aggregate A)
	// UpdateIfPresent overwrites an existing aggregate. Returns true if an
	// existing aggregate was overwritten.
	UpdateIfPresent(id K, aggregate A) bool
	Delete(id K) (A, bool)
}

type MemoryRepository[K comparable, A any] struct {
	mu      sync.RWMutex
	entries map[K]A
}

func NewMemoryRepository[K comparable, A any]() *MemoryRepository[K, A] {
	return &MemoryRepository[K, A]{entries: make(map[K]A)}
}

func (r *MemoryRepository[K, A]) Find(id K) (A, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	aggregate, ok := r.entries[id]
	return aggregate, ok
}

func (r *MemoryRepository[K, A]) Read(id K) (A, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	aggregate, ok := r.entries[id]
	if !ok {
		var zero A
		return zero, fmt.Errorf("aggregate %v not found", id)
	}
	return aggregate, nil
}

func (r *MemoryRepository[K, A]) CreateIfAbsent(id K, aggregate A) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = aggregate
	return true
}

func (r *MemoryRepository[K, A]) CreateOrUpdate(id K, aggregate A) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[id] = aggregate
}

func (r *MemoryRepository[K, A]) UpdateIfPresent(id K, aggregate A) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return false
	}
	r.entries[id] = aggregate
	return true
}

func (r *MemoryRepository[K, A]) Delete(id K) (A, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	aggregate, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	return aggregate, ok
}

// Keys snapshots the ids of every stored aggregate.
func (r *MemoryRepository[K, A]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	return keys
}
