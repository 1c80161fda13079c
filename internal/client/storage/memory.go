package storage

import (
	"sort"
	"sync"
	"time"
)

// memoryStore keeps the queue and snapshots in process memory. Used by tests
// and as the degraded online-only mode when sqlite cannot be opened.
type memoryStore struct {
	mu        sync.Mutex
	nextID    uint
	mutations map[uint]QueuedMutation
	snapshots map[string]CacheSnapshot
}

func NewMemoryStore() Store {
	return &memoryStore{
		nextID:    1,
		mutations: make(map[uint]QueuedMutation),
		snapshots: make(map[string]CacheSnapshot),
	}
}

func (s *memoryStore) AppendMutation(m *QueuedMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextID
	s.nextID++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.UpdatedAt = time.Now()
	s.mutations[m.ID] = *m
	return nil
}

func (s *memoryStore) ListMutations(statuses ...string) ([]QueuedMutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}
	var out []QueuedMutation
	for _, m := range s.mutations {
		if len(wanted) == 0 || wanted[m.Status] {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) GetMutation(id uint) (*QueuedMutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mutations[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *memoryStore) UpdateMutation(m *QueuedMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.UpdatedAt = time.Now()
	s.mutations[m.ID] = *m
	return nil
}

func (s *memoryStore) DeleteMutation(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mutations, id)
	return nil
}

func (s *memoryStore) SaveSnapshot(key string, data []byte, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[key] = CacheSnapshot{Key: key, Data: data, UpdatedAt: updatedAt}
	return nil
}

func (s *memoryStore) LoadSnapshot(key string) (*CacheSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[key]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (s *memoryStore) Close() error { return nil }
