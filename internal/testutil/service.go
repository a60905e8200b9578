package testutil

import (
	"strings"
	"testing"

	"gitpen-go/internal/credentials"
	"gitpen-go/internal/gitpen"
	"gitpen-go/internal/remote"
	"gitpen-go/internal/store"
)

// ServiceFixture bundles a Service with its in-memory collaborators so
// tests can both drive operations and inspect resulting state.
type ServiceFixture struct {
	Service *gitpen.Service
	Store   *store.MemoryStore
	Remote  *remote.MemoryStore
	Creds   *credentials.MemoryStore
	Tree    *MemoryWorkingTree
	Clock   *StubClock
	IDGen   *SequentialIDGenerator
}

// NewServiceFixture creates a fully in-memory Service wired for testing.
func NewServiceFixture(t *testing.T) *ServiceFixture {
	t.Helper()

	f := &ServiceFixture{
		Store:  store.NewMemoryStore(),
		Remote: remote.NewMemoryStore(),
		Creds:  credentials.NewMemoryStore(),
		Tree:   NewMemoryWorkingTree(),
		Clock:  FixedClock(),
		IDGen:  NewSequentialIDGenerator("commit"),
	}
	f.Service = gitpen.NewService(f.Store, f.Remote, f.Creds, f.Tree, gitpen.NewNopLogger(), f.Clock, f.IDGen)
	return f
}

// StageFiles stages the given name -> content pairs.
func (f *ServiceFixture) StageFiles(t *testing.T, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := f.Service.Add(name, strings.NewReader(content)); err != nil {
			t.Fatalf("Add(%s) error = %v", name, err)
		}
	}
}

// LoggedIn stores a token so push preconditions pass.
func (f *ServiceFixture) LoggedIn(t *testing.T) {
	t.Helper()
	if err := f.Creds.Save("test-token"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}
