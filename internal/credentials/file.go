package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitpen-go/internal/gitpen"
)

// FileStore persists the auth token as a single file on disk. Each Save
// overwrites the previous token; there is only ever one slot.
type FileStore struct {
	path string
}

// NewFileStore creates a credential store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the token, creating parent directories as needed. The file
// is user-readable only.
func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// Load returns the stored token. A missing or empty file means the user
// has not logged in.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", gitpen.ErrNotLoggedIn
		}
		return "", fmt.Errorf("reading credential file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", gitpen.ErrNotLoggedIn
	}
	return token, nil
}

// Compile-time check that FileStore implements gitpen.CredentialStore
var _ gitpen.CredentialStore = (*FileStore)(nil)
