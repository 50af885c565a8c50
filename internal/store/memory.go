package store

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu         sync.RWMutex
	selections map[string][]int
	messages   map[string][]Message
	directions map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		selections: make(map[string][]int),
		messages:   make(map[string][]Message),
		directions: make(map[string]string),
	}
}

func (s *MemoryStore) Selection(_ context.Context, clientID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, len(s.selections[clientID]))
	copy(out, s.selections[clientID])
	return out, nil
}

func (s *MemoryStore) SaveSelection(_ context.Context, clientID string, productIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[clientID] = dedupeIDs(productIDs)
	return nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, clientID string, msg Message) (Message, error) {
	msg = prepareMessage(clientID, msg)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[clientID] = append(s.messages[clientID], msg)
	return msg, nil
}

func (s *MemoryStore) Messages(_ context.Context, clientID string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.messages[clientID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]Message, len(all))
	copy(out, all)
	return out, nil
}

func (s *MemoryStore) ClearMessages(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, clientID)
	return nil
}

func (s *MemoryStore) Direction(_ context.Context, clientID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.directions[clientID]; ok {
		return d, nil
	}
	return DirectionLTR, nil
}

func (s *MemoryStore) SaveDirection(_ context.Context, clientID, direction string) error {
	d, err := NormalizeDirection(direction)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.directions[clientID] = d
	return nil
}

func (s *MemoryStore) Close() error { return nil }
