package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gitpen-go/internal/gitpen"
)

// MemoryStore is an in-memory implementation of the ObjectStore interface,
// useful for testing. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailPutKey, when set, makes PutObject fail for that key. Used to
	// exercise mid-batch upload failures.
	FailPutKey string
}

// NewMemoryStore creates an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) PutObject(_ context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPutKey != "" && key == m.FailPutKey {
		return fmt.Errorf("upload failed for %s", key)
	}
	m.objects[key] = data
	return nil
}

func (m *MemoryStore) GetObject(_ context.Context, key string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return fmt.Errorf("object %s: %w", key, gitpen.ErrNotFound)
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing content: %w", err)
	}
	return nil
}

func (m *MemoryStore) ListObjects(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) SignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("object %s: %w", key, gitpen.ErrNotFound)
	}
	return fmt.Sprintf("memory://%s?expires=%ds", key, int(expiry.Seconds())), nil
}

// Object returns the stored content for key, for test assertions.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Compile-time check that MemoryStore implements gitpen.ObjectStore
var _ gitpen.ObjectStore = (*MemoryStore)(nil)
