package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"medledger/internal/history"
	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
	txcontext "medledger/pkg/platform/tx"
)

// InMemoryStore keeps history entries and their outbox in process memory.
// Appends made inside a journaled transaction are undone on rollback.
type InMemoryStore struct {
	mu        sync.RWMutex
	entries   []*history.Entry
	byID      map[uuid.UUID]*history.Entry
	outbox    []history.OutboxRecord
	processed map[int64]bool
	seq       uint64
	outboxSeq int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:      make(map[uuid.UUID]*history.Entry),
		processed: make(map[int64]bool),
	}
}

func (s *InMemoryStore) Append(ctx context.Context, entry *history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[entry.ID]; exists {
		return sentinel.ErrConflict
	}
	stored := *entry
	stored.Sequence = s.seq + 1
	payload, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	s.seq = stored.Sequence
	entry.Sequence = stored.Sequence
	s.entries = append(s.entries, &stored)
	s.byID[stored.ID] = &stored

	s.outboxSeq++
	outboxID := s.outboxSeq
	s.outbox = append(s.outbox, history.OutboxRecord{ID: outboxID, EntryID: stored.ID, Payload: payload})

	txcontext.OnRollback(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.byID, stored.ID)
		s.entries = removeEntry(s.entries, stored.ID)
		s.outbox = removeOutbox(s.outbox, outboxID)
	})
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *e
	return &out, nil
}

// ListByPatient returns the patient's entries oldest first, capped at limit.
func (s *InMemoryStore) ListByPatient(_ context.Context, patientID domain.PatientID, limit int) ([]*history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*history.Entry, 0)
	for _, e := range s.entries {
		if e.PatientID != patientID {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// ListRecent returns the newest entries first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]*history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*history.Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		cp := *s.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) Pending(_ context.Context, limit int) ([]history.OutboxRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]history.OutboxRecord, 0)
	for _, rec := range s.outbox {
		if s.processed[rec.ID] {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkProcessed(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.processed[id] = true
	}
	return nil
}

func removeEntry(entries []*history.Entry, id uuid.UUID) []*history.Entry {
	for i, e := range entries {
		if e.ID == id {
			return append(entries[:i], entries[i+1:]...)
		}
	}
	return entries
}

func removeOutbox(records []history.OutboxRecord, id int64) []history.OutboxRecord {
	for i, r := range records {
		if r.ID == id {
			return append(records[:i], records[i+1:]...)
		}
	}
	return records
}
