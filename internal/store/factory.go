package store

import (
	"fmt"

	"artifact-cache/internal/config"
)

// New creates a Store implementation from the configured store type.
// Adding a backend means adding a case here; callers dispatch through the
// Store interface and never see the concrete type.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Type {
	case "local":
		if cfg.URI == "" {
			return nil, fmt.Errorf("%w: local store requires a root URI", ErrUnsupported)
		}
		return NewLocal(cfg.URI)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, cfg.Type)
	}
}
