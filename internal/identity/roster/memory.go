package roster

import (
	"context"
	"sync"

	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

type InMemory struct {
	mu      sync.RWMutex
	entries map[domain.DoctorID]string
}

func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[domain.DoctorID]string)}
}

func (r *InMemory) Add(_ context.Context, id domain.DoctorID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[id]; ok {
		if existing != name {
			return sentinel.ErrConflict
		}
		return nil
	}
	r.entries[id] = name
	return nil
}

func (r *InMemory) Lookup(_ context.Context, id domain.DoctorID) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.entries[id]
	return name, ok, nil
}
