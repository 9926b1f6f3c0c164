package store

import (
	"errors"
	"path/filepath"
	"testing"

	"artifact-cache/internal/config"
)

func TestNewLocalStoreFromConfig(t *testing.T) {
	s, err := New(config.StoreConfig{Type: "local", URI: filepath.Join(t.TempDir(), "store")})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := s.(*Local); !ok {
		t.Fatalf("expected *Local, got %T", s)
	}
}

func TestNewMemoryStoreFromConfig(t *testing.T) {
	s, err := New(config.StoreConfig{Type: "memory"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := s.(*Memory); !ok {
		t.Fatalf("expected *Memory, got %T", s)
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	if _, err := New(config.StoreConfig{Type: "s3"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestNewRejectsLocalWithoutURI(t *testing.T) {
	if _, err := New(config.StoreConfig{Type: "local"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
