package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store persists thread state between turns. Get returns (nil, nil) for an
// unknown thread; Put is last-write-wins.
type Store interface {
	Get(ctx context.Context, threadID string) (*State, error)
	Put(ctx context.Context, threadID string, state *State) error
}

// MemoryStore keeps serialized snapshots in process memory. Snapshots are
// deep copies: mutating a returned state never leaks into the store.
type MemoryStore struct {
	mtx    *sync.RWMutex
	states map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mtx:    new(sync.RWMutex),
		states: make(map[string][]byte),
	}
}

// Get returns the snapshot for threadID, (nil, nil) when absent.
func (s *MemoryStore) Get(_ context.Context, threadID string) (*State, error) {
	s.mtx.RLock()
	bs, ok := s.states[threadID]
	s.mtx.RUnlock()
	if !ok {
		return nil, nil
	}
	state := new(State)
	if err := json.Unmarshal(bs, state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

// Put stores a snapshot of state under threadID.
func (s *MemoryStore) Put(_ context.Context, threadID string, state *State) error {
	bs, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	s.mtx.Lock()
	s.states[threadID] = bs
	s.mtx.Unlock()
	return nil
}

// Len returns the number of stored threads.
func (s *MemoryStore) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.states)
}
