package store

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"gitpen-go/internal/gitpen"
)

// MemoryStore is an in-memory implementation of the ContentStore
// interface, useful for testing. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	staging     map[string][]byte            // name -> content
	commits     map[string]map[string][]byte // commitID -> name -> content

	// FailCommitFile, when set, makes WriteCommitFile fail for that file
	// name. Used to exercise partial-failure paths.
	FailCommitFile string
}

// NewMemoryStore creates an initialized in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		initialized: true,
		staging:     make(map[string][]byte),
		commits:     make(map[string]map[string][]byte),
	}
}

// NewUninitializedMemoryStore creates a store with no staging area, for
// exercising missing-staging preconditions.
func NewUninitializedMemoryStore() *MemoryStore {
	s := NewMemoryStore()
	s.initialized = false
	return s
}

func (s *MemoryStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	return nil
}

func (s *MemoryStore) StageFile(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return gitpen.ErrNoStaging
	}
	s.staging[name] = data
	return nil
}

func (s *MemoryStore) StagedFiles() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil, gitpen.ErrNoStaging
	}

	names := make([]string, 0, len(s.staging))
	for name := range s.staging {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) OpenStaged(name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.staging[name]
	if !ok {
		return nil, fmt.Errorf("staged file %s: %w", name, gitpen.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStore) ClearStaging() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staging = make(map[string][]byte)
	return nil
}

func (s *MemoryStore) WriteCommitFile(commitID, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCommitFile != "" && name == s.FailCommitFile {
		return fmt.Errorf("write failed for %s", name)
	}
	if s.commits[commitID] == nil {
		s.commits[commitID] = make(map[string][]byte)
	}
	s.commits[commitID][name] = data
	return nil
}

func (s *MemoryStore) ListCommitIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.commits))
	for id := range s.commits {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) CommitFiles(commitID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, ok := s.commits[commitID]
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", commitID, gitpen.ErrNotFound)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) OpenCommitFile(commitID, name string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, ok := s.commits[commitID]
	if !ok {
		return nil, fmt.Errorf("commit %s: %w", commitID, gitpen.ErrNotFound)
	}
	data, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("commit file %s/%s: %w", commitID, name, gitpen.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Compile-time check that MemoryStore implements gitpen.ContentStore
var _ gitpen.ContentStore = (*MemoryStore)(nil)
