// Package file stores uploaded blobs on local disk under per-owner
// directories. References are opaque to callers: a UUID prefix plus the
// sanitized original name, so the name survives for downloads while
// collisions cannot happen.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/keepson/keepson/internal/domain"
)

const maxNameLen = 100

// Store is a disk-backed blob store.
type Store struct {
	root     string
	maxBytes int64
}

// New creates the store, ensuring the root directory exists.
func New(root string, maxBytes int64) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("file store root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create file root %s: %w", root, err)
	}
	return &Store{root: root, maxBytes: maxBytes}, nil
}

// Save streams the blob to disk and returns its reference. Uploads past
// the size cap are rejected and the partial file removed.
func (s *Store) Save(ctx context.Context, owner, filename string, r io.Reader) (string, error) {
	ref := uuid.NewString() + "_" + sanitizeName(filename)
	path, err := s.path(owner, ref)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create owner dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	written, err := io.Copy(dst, io.LimitReader(r, s.maxBytes+1))
	if err == nil && written > s.maxBytes {
		err = domain.NewFileTooLarge(s.maxBytes)
	}
	if err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return ref, nil
}

// Open returns the blob for reading. The handle seeks, which range-request
// serving needs.
func (s *Store) Open(ctx context.Context, owner, ref string) (io.ReadSeekCloser, error) {
	path, err := s.path(owner, ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrFileNotFound
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Delete removes the blob.
func (s *Store) Delete(ctx context.Context, owner, ref string) error {
	path, err := s.path(owner, ref)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return domain.ErrFileNotFound
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// path validates the owner and reference before joining them under the
// root. Separators and dot-dot segments never reach the filesystem.
func (s *Store) path(owner, ref string) (string, error) {
	if owner == "" || strings.ContainsAny(owner, `/\`) || strings.Contains(owner, "..") {
		return "", fmt.Errorf("%w: bad owner", domain.ErrInvalidInput)
	}
	if ref == "" || strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return "", fmt.Errorf("%w: bad file reference", domain.ErrInvalidInput)
	}
	return filepath.Join(s.root, owner, ref), nil
}

// sanitizeName reduces an upload filename to a safe ASCII base name.
func sanitizeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)

	if name == "" || strings.Trim(name, "._") == "" {
		return "file"
	}
	if len(name) > maxNameLen {
		// keep the tail so the extension survives
		name = name[len(name)-maxNameLen:]
	}
	return name
}
