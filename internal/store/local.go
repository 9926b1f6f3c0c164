package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores artifacts as plain files under a root directory.
//
// Layout: the artifact path maps directly onto the filesystem below the root,
// so "a/b.txt" lives at <root>/a/b.txt. Writes go to a temp file in the final
// directory and are renamed into place, so a reader never sees a truncated
// artifact.
type Local struct {
	root string
}

// NewLocal resolves uri to an absolute root directory, creating it (and
// parents) if absent. Idempotent: an existing root is reused as-is.
func NewLocal(uri string) (*Local, error) {
	root, err := ensureRoot(uri)
	if err != nil {
		return nil, err
	}
	return &Local{root: root}, nil
}

// Root returns the resolved absolute store root.
func (s *Local) Root() string { return s.root }

func ensureRoot(uri string) (string, error) {
	if uri == "" {
		return "", fmt.Errorf("%w: empty store root", ErrUnavailable)
	}
	abs, err := filepath.Abs(uri)
	if err != nil {
		return "", fmt.Errorf("%w: resolving root: %v", ErrUnavailable, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating root: %v", ErrUnavailable, err)
	}
	// Canonicalize so the ancestry check below compares resolved paths.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: resolving root: %v", ErrUnavailable, err)
	}
	return resolved, nil
}

func (s *Local) Exists(ctx context.Context, path string) (bool, error) {
	target, err := s.resolve(path)
	if err != nil {
		// Paths outside the root read as absent; a probing caller learns
		// nothing about the layout around the root.
		return false, nil
	}
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat: %v", ErrUnavailable, err)
	}
	return info.Mode().IsRegular(), nil
}

func (s *Local) Read(ctx context.Context, path string, w io.Writer) error {
	target, err := s.resolve(path)
	if err != nil {
		// Same non-disclosure as Exists: outside the root reads as absent.
		return ErrNotFound
	}
	f, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: open: %v", ErrUnavailable, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat: %v", ErrUnavailable, err)
	}
	if !info.Mode().IsRegular() {
		return ErrNotFound
	}

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("%w: read: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Local) Write(ctx context.Context, path string, r io.Reader) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directories: %v", ErrUnavailable, err)
	}

	// Temp file lives next to the target so the rename stays on one
	// filesystem and is atomic.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrUnavailable, err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing content: %v", ErrUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: syncing content: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing temp file: %v", ErrUnavailable, err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("%w: publishing artifact: %v", ErrUnavailable, err)
	}
	success = true
	return nil
}

func (s *Local) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("%w: root not accessible: %v", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root is not a directory", ErrUnavailable)
	}
	return nil
}

// resolve maps a caller-supplied relative path to an absolute path under the
// root, or fails with ErrInvalidPath if the path escapes it.
//
// A prefix compare of the joined path against the root is not enough: it
// would accept a sibling like /data/store-evil for root /data/store, and it
// ignores symlinks inside the root pointing elsewhere. The check here is
// segment-wise via filepath.Rel, after resolving symlinks on the deepest
// existing ancestor of the target.
func (s *Local) resolve(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return "", ErrInvalidPath
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}

	target := filepath.Join(s.root, clean)
	if !isWithin(s.root, target) {
		return "", ErrInvalidPath
	}
	if err := s.checkResolvedAncestry(target); err != nil {
		return "", err
	}
	return target, nil
}

// checkResolvedAncestry walks up from target to the deepest path component
// that exists, resolves its symlinks, and verifies the result is still inside
// the root. This catches a symlinked directory (or the artifact itself) that
// points outside the store.
func (s *Local) checkResolvedAncestry(target string) error {
	p := target
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			if !isWithin(s.root, resolved) {
				return ErrInvalidPath
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("%w: resolving path: %v", ErrUnavailable, err)
		}
		parent := filepath.Dir(p)
		if parent == p {
			// Walked off the top without finding anything that exists;
			// the root itself exists, so this cannot be inside it.
			return ErrInvalidPath
		}
		p = parent
	}
}

func isWithin(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// Compile-time check that Local implements Store.
var _ Store = (*Local)(nil)
