package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/marcelsud/n8n-gateway/image"
)

/* Flat directory implementation of image.Store
 * One file per image, no index; the directory is created on demand
 */

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the storage directory
func (s *Store) Dir() string {
	return s.dir
}

// Create writes data to a new file. O_EXCL makes it fail instead of overwriting.
func (s *Store) Create(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// MkdirAll is idempotent and safe under concurrent first use
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return &image.StorageError{Op: "mkdir", Err: err}
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return err
		}
		return &image.StorageError{Op: "open", Err: err}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return &image.StorageError{Op: "write", Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return &image.StorageError{Op: "close", Err: err}
	}
	return nil
}

// Open opens a stored file for reading
func (s *Store) Open(ctx context.Context, name string) (image.File, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, image.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat image: %w", err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, image.ErrNotFound
	}
	return f, nil
}

// Sweep removes regular files last modified before cutoff
func (s *Store) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading image dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed concurrently
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("removing %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}
