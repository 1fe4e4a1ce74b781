package store

import (
	"context"
	"sync"
	"time"

	"github.com/tribly-hq/dashboard-cli/internal/model"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu        sync.Mutex
	sessions  map[string]string
	connected map[string]ConnectedInfo
	done      map[string][]string
	creds     *model.Credentials
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]string),
		connected: make(map[string]ConnectedInfo),
		done:      make(map[string][]string),
	}
}

func (s *MemoryStore) SaveAuthSession(_ context.Context, businessKey, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[businessKey] = sessionID
	return nil
}

func (s *MemoryStore) AuthSessionID(_ context.Context, businessKey string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[businessKey]
	return id, ok, nil
}

func (s *MemoryStore) ClearAuthSession(_ context.Context, businessKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, businessKey)
	return nil
}

func (s *MemoryStore) SetConnected(_ context.Context, businessKey string, info ConnectedInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if info.ConnectedAt.IsZero() {
		info.ConnectedAt = time.Now().UTC()
	}
	s.connected[businessKey] = info
	return nil
}

func (s *MemoryStore) Connected(_ context.Context, businessKey string) (*ConnectedInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.connected[businessKey]
	if !ok {
		return nil, false, nil
	}
	return &info, true, nil
}

func (s *MemoryStore) MarkActionItemDone(_ context.Context, businessKey, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.done[businessKey] {
		if id == itemID {
			return nil
		}
	}
	s.done[businessKey] = append(s.done[businessKey], itemID)
	return nil
}

func (s *MemoryStore) UndoActionItemDone(_ context.Context, businessKey, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.done[businessKey]
	for i, id := range items {
		if id == itemID {
			s.done[businessKey] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) DoneActionItems(_ context.Context, businessKey string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.done[businessKey]...), nil
}

func (s *MemoryStore) SaveCredentials(_ context.Context, creds model.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
	return nil
}

func (s *MemoryStore) Credentials(_ context.Context) (*model.Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds == nil {
		return nil, false, nil
	}
	creds := *s.creds
	return &creds, true, nil
}

func (s *MemoryStore) ClearCredentials(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
	return nil
}

func (s *MemoryStore) Migrate(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
