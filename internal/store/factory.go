package store

import (
	"fmt"

	"gitpen-go/internal/config"
	"gitpen-go/internal/gitpen"
)

// NewStoreFromConfig creates a ContentStore based on the store config type.
// repoRoot is the resolved repository directory for filesystem stores.
func NewStoreFromConfig(cfg config.StoreConfig, repoRoot string) (gitpen.ContentStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem", "":
		if repoRoot == "" {
			return nil, fmt.Errorf("filesystem store requires a repository directory")
		}
		return NewFileSystemStore(repoRoot), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
