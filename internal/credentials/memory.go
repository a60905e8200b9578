package credentials

import (
	"sync"

	"gitpen-go/internal/gitpen"
)

// MemoryStore is an in-memory credential store for testing.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", gitpen.ErrNotLoggedIn
	}
	return s.token, nil
}

// Compile-time check that MemoryStore implements gitpen.CredentialStore
var _ gitpen.CredentialStore = (*MemoryStore)(nil)
