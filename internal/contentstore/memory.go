package contentstore

import (
	"context"
	"slices"
	"sync"

	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

type InMemory struct {
	mu    sync.RWMutex
	blobs map[domain.ContentRef][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{blobs: make(map[domain.ContentRef][]byte)}
}

func (s *InMemory) Put(_ context.Context, data []byte) (domain.ContentRef, error) {
	ref := RefFor(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		s.blobs[ref] = slices.Clone(data)
	}
	return ref, nil
}

func (s *InMemory) Get(_ context.Context, ref domain.ContentRef) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[ref]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return slices.Clone(data), nil
}

func (s *InMemory) Has(_ context.Context, ref domain.ContentRef) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[ref]
	return ok, nil
}
