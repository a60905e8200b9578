package gitpen

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the client interface for the remote blob namespace.
// Keys are flat strings; "directories" exist only as key prefixes.
// Every operation takes a context because all remote calls are network I/O.
type ObjectStore interface {
	// PutObject uploads content under key, overwriting any existing object.
	// Overwrite semantics make pushes idempotent and safe to retry.
	PutObject(ctx context.Context, key string, r io.Reader) error

	// GetObject fetches the object at key and writes it to w.
	// Returns ErrNotFound if no object exists at key.
	GetObject(ctx context.Context, key string, w io.Writer) error

	// ListObjects returns every key under the given prefix.
	ListObjects(ctx context.Context, prefix string) ([]string, error)

	// SignedURL returns a time-limited pre-authorized read URL for key.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
