package store

import (
	"context"
	"errors"
	"io"
)

// Store is the artifact storage backend contract. All content moves through
// io.Reader/io.Writer so large artifacts stream instead of being buffered
// whole in memory.
//
// Path semantics are shared by every backend: paths are caller-supplied,
// relative, slash-separated keys scoped to the backend's root. A path that
// resolves outside the root is never touched; Exists reports it as absent,
// Read as not found, and Write fails with ErrInvalidPath.
type Store interface {
	// Exists reports whether path refers to a stored artifact.
	Exists(ctx context.Context, path string) (bool, error)

	// Read streams the artifact at path to w.
	Read(ctx context.Context, path string, w io.Writer) error

	// Write stores the content read from r at path, creating or replacing
	// the artifact. Concurrent readers observe either the prior content or
	// the new content in full, never a partial write.
	Write(ctx context.Context, path string, r io.Reader) error

	// Ping verifies the backend is reachable and serviceable.
	Ping(ctx context.Context) error
}

var (
	// ErrNotFound means the artifact does not exist at the given path.
	ErrNotFound = errors.New("store: artifact not found")

	// ErrInvalidPath means the path is empty, absolute, or escapes the root.
	ErrInvalidPath = errors.New("store: invalid artifact path")

	// ErrUnavailable means the backend failed at the I/O level. Transient;
	// safe for the caller to retry.
	ErrUnavailable = errors.New("store: backend unavailable")

	// ErrUnsupported means the configured store type has no implementation.
	ErrUnsupported = errors.New("store: unsupported store type")
)
