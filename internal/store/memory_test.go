package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestMemoryRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	writeString(t, s, "a/b.txt", "hello")

	if got := readString(t, s, "a/b.txt"); got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}

	ok, err := s.Exists(ctx, "a/b.txt")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatalf("expected artifact to exist")
	}

	ok, err = s.Exists(ctx, "missing.txt")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("expected missing artifact to not exist")
	}
}

func TestMemoryMatchesLocalPathDiscipline(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, p := range []string{"../etc/passwd", "/etc/passwd", "", "..", "."} {
		ok, err := s.Exists(ctx, p)
		if err != nil {
			t.Fatalf("exists %q: %v", p, err)
		}
		if ok {
			t.Fatalf("exists %q: expected false", p)
		}
		if err := s.Read(ctx, p, &bytes.Buffer{}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("read %q: expected ErrNotFound, got %v", p, err)
		}
		if err := s.Write(ctx, p, strings.NewReader("x")); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("write %q: expected ErrInvalidPath, got %v", p, err)
		}
	}
}

func TestMemoryNormalizesEquivalentPaths(t *testing.T) {
	s := NewMemory()

	writeString(t, s, "a/./b.txt", "hello")
	if got := readString(t, s, "a/b.txt"); got != "hello" {
		t.Fatalf("expected cleaned path to resolve to same artifact, got %q", got)
	}
}
