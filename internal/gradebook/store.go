package gradebook

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store persists the course list as one opaque unit. Load returns (nil, nil)
// when no prior data exists; that is not an error. Save failures are logged
// by callers and never block or roll back in-memory edits: during a session
// the in-memory course list is the source of truth and persistence is
// best-effort, last writer wins.
type Store interface {
	Load(ctx context.Context) ([]*Course, error)
	Save(ctx context.Context, courses []*Course) error
}

// MemoryStore keeps the serialized course list in memory. It backs tests and
// ephemeral runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Seed pre-populates the store with a course list.
func (s *MemoryStore) Seed(courses []*Course) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("marshal courses: %w", err)
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context) ([]*Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, nil
	}
	var courses []*Course
	if err := json.Unmarshal(s.data, &courses); err != nil {
		return nil, fmt.Errorf("unmarshal courses: %w", err)
	}
	return courses, nil
}

func (s *MemoryStore) Save(ctx context.Context, courses []*Course) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("marshal courses: %w", err)
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}
