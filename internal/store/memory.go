package store

import (
	"bytes"
	"context"
	"io"
	gopath "path"
	"strings"
	"sync"
)

// Memory is an in-memory Store for tests and local development.
// It is not intended for production use.
type Memory struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{artifacts: make(map[string][]byte)}
}

func (s *Memory) Exists(ctx context.Context, path string) (bool, error) {
	key, err := memoryKey(path)
	if err != nil {
		return false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.artifacts[key]
	return ok, nil
}

func (s *Memory) Read(ctx context.Context, path string, w io.Writer) error {
	key, err := memoryKey(path)
	if err != nil {
		return ErrNotFound
	}
	s.mu.RLock()
	content, ok := s.artifacts[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	if _, err := io.Copy(w, bytes.NewReader(content)); err != nil {
		return err
	}
	return nil
}

func (s *Memory) Write(ctx context.Context, path string, r io.Reader) error {
	key, err := memoryKey(path)
	if err != nil {
		return err
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.artifacts[key] = content
	s.mu.Unlock()
	return nil
}

func (s *Memory) Ping(ctx context.Context) error { return nil }

// memoryKey applies the same path discipline as the filesystem backend so
// behavior does not diverge between variants.
func memoryKey(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") {
		return "", ErrInvalidPath
	}
	clean := gopath.Clean(path)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	return clean, nil
}

var _ Store = (*Memory)(nil)
