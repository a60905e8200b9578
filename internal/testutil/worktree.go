package testutil

import (
	"fmt"
	"io"
	"sync"

	"gitpen-go/internal/gitpen"
)

// MemoryWorkingTree records restored files in memory for assertions.
type MemoryWorkingTree struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemoryWorkingTree creates an empty in-memory working tree.
func NewMemoryWorkingTree() *MemoryWorkingTree {
	return &MemoryWorkingTree{files: make(map[string][]byte)}
}

func (t *MemoryWorkingTree) WriteFile(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading content: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files[name] = data
	return nil
}

// File returns the restored content for name, for test assertions.
func (t *MemoryWorkingTree) File(name string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	data, ok := t.files[name]
	return data, ok
}

// Len returns the number of restored files.
func (t *MemoryWorkingTree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.files)
}

// Compile-time check that MemoryWorkingTree implements gitpen.WorkingTree
var _ gitpen.WorkingTree = (*MemoryWorkingTree)(nil)
