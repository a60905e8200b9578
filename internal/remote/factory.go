package remote

import (
	"context"
	"fmt"

	"gitpen-go/internal/config"
	"gitpen-go/internal/gitpen"
)

// NewRemoteFromConfig creates an ObjectStore based on the remote config type.
func NewRemoteFromConfig(ctx context.Context, cfg config.RemoteConfig) (gitpen.ObjectStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "s3", "":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown remote type: %s", cfg.Type)
	}
}
