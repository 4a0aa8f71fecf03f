package ingest

import (
	"context"
	"sync"
)

// Store holds completed ingestion outcomes keyed by message id.
type Store interface {
	// Get returns the stored outcome for a message id, if any.
	Get(ctx context.Context, messageID string) (*Outcome, bool, error)

	// Put stores the outcome for a message id.
	Put(ctx context.Context, messageID string, outcome *Outcome) error
}

// MemoryStore keeps outcomes for the lifetime of the process. This is the
// default: the dedup set starts empty at process start and is not durable
// across restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	outcomes map[string]*Outcome
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{outcomes: make(map[string]*Outcome)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, messageID string) (*Outcome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	outcome, ok := s.outcomes[messageID]
	if !ok {
		return nil, false, nil
	}
	copied := *outcome
	return &copied, true, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, messageID string, outcome *Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *outcome
	s.outcomes[messageID] = &copied
	return nil
}

// Len returns the number of stored outcomes.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outcomes)
}
